package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/workbench-cli/internal/faults"
	"github.com/clauselens/workbench-cli/internal/model"
)

func testDoc(id string) model.Document {
	return model.Document{ID: id, Name: id + ".pdf", MimeClassification: "application/pdf"}
}

func testClauses(n int) []model.Clause {
	clauses := make([]model.Clause, 0, n)
	for i := 1; i <= n; i++ {
		clauses = append(clauses, model.Clause{
			ClauseNumber:  i,
			SectionNumber: "1",
			Title:         "Clause",
			Content:       "content",
		})
	}
	return clauses
}

func TestSessionOpenResetsEverything(t *testing.T) {
	s := NewSession()

	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(3)))
	_, sel, err := s.Select(2)
	require.NoError(t, err)
	require.True(t, s.SetMatches(sel, []model.SimilarFileMatch{{FileID: "D2"}}))
	require.True(t, s.SetTags(st, []string{"nda"}))
	require.True(t, s.SetSaved(sel, true))

	vm := s.Snapshot()
	require.NotNil(t, vm.Selected)
	require.NotEmpty(t, vm.Tags)

	s.Open(testDoc("D9"))
	vm = s.Snapshot()
	assert.True(t, vm.Open)
	assert.Equal(t, "D9", vm.Document.ID)
	assert.Nil(t, vm.Selected)
	assert.Nil(t, vm.Clauses)
	assert.Nil(t, vm.Matches)
	assert.False(t, vm.MatchesLoaded)
	assert.Nil(t, vm.Tags)
	assert.Nil(t, vm.Risk)
	assert.False(t, vm.SavedToLibrary)
}

func TestSessionOpenPreservesIdentity(t *testing.T) {
	s := NewSession()
	s.SetIdentity("user@example.com")

	s.Open(testDoc("D1"))
	assert.Equal(t, "user@example.com", s.Identity())

	s.Open(testDoc("D2"))
	assert.Equal(t, "user@example.com", s.Identity())

	s.Close()
	assert.Equal(t, "", s.Identity())
}

func TestSessionCloseDiscardsInFlightResults(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(2)))
	_, sel, err := s.Select(1)
	require.NoError(t, err)

	s.Close()

	assert.False(t, s.SetMatches(sel, []model.SimilarFileMatch{{FileID: "D2"}}))
	assert.False(t, s.SetTags(st, []string{"late"}))
	assert.False(t, s.SetRisk(st, &model.RiskAssessment{RiskScore: 1}))

	vm := s.Snapshot()
	assert.False(t, vm.Open)
	assert.Nil(t, vm.Matches)
	assert.Nil(t, vm.Tags)
	assert.Nil(t, vm.Risk)
}

func TestSetCachedClausesEmptyFlipsExtractionNeeded(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))

	require.True(t, s.SetCachedClauses(st, nil))
	vm := s.Snapshot()
	assert.True(t, vm.ExtractionNeeded)
	assert.Nil(t, vm.Clauses)

	require.True(t, s.SetCachedClauses(st, testClauses(4)))
	vm = s.Snapshot()
	assert.False(t, vm.ExtractionNeeded)
	assert.Len(t, vm.Clauses, 4)
}

func TestSelectUnknownClauseKeepsPriorSelection(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(3)))

	_, _, err := s.Select(2)
	require.NoError(t, err)

	_, _, err = s.Select(99)
	require.Error(t, err)
	assert.True(t, faults.IsNotFound(err))

	selected, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 2, selected.ClauseNumber)
}

func TestSelectClearsComparisonAndMatches(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(3)))

	_, sel, err := s.Select(1)
	require.NoError(t, err)
	require.True(t, s.SetMatches(sel, []model.SimilarFileMatch{{FileID: "D2"}}))
	_, err = s.SetComparison("D2")
	require.NoError(t, err)

	_, _, err = s.Select(2)
	require.NoError(t, err)

	vm := s.Snapshot()
	assert.Nil(t, vm.ComparisonTarget)
	assert.Nil(t, vm.Matches)
	assert.False(t, vm.MatchesLoaded)
}

func TestReplaceClausesInvalidatesSelection(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(3)))
	_, sel, err := s.Select(2)
	require.NoError(t, err)
	require.True(t, s.SetMatches(sel, []model.SimilarFileMatch{{FileID: "D2"}}))
	_, err = s.SetComparison("D2")
	require.NoError(t, err)

	newStamp, ok := s.ReplaceClauses(st, testClauses(5))
	require.True(t, ok)
	assert.NotEqual(t, st.Generation, newStamp.Generation)

	vm := s.Snapshot()
	assert.Nil(t, vm.Selected)
	assert.Nil(t, vm.ComparisonTarget)
	assert.Nil(t, vm.Matches)
	assert.Len(t, vm.Clauses, 5)

	// Results from the old generation's selection no longer land.
	assert.False(t, s.SetMatches(sel, []model.SimilarFileMatch{{FileID: "D3"}}))
	assert.Nil(t, s.Snapshot().Matches)
}

func TestReplaceClausesRejectsOtherDocument(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))

	s.Open(testDoc("D2"))

	_, ok := s.ReplaceClauses(st, testClauses(3))
	assert.False(t, ok)
	assert.Nil(t, s.Snapshot().Clauses)
}

func TestStaleSelectionResultDiscarded(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(3)))

	_, selA, err := s.Select(1)
	require.NoError(t, err)
	_, selB, err := s.Select(2)
	require.NoError(t, err)

	// The response for the first selection arrives after the user has moved
	// on: it must be dropped, then the current selection's response applies.
	assert.False(t, s.SetMatches(selA, []model.SimilarFileMatch{{FileID: "stale"}}))
	assert.True(t, s.SetMatches(selB, []model.SimilarFileMatch{{FileID: "fresh"}}))

	matches := s.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, "fresh", matches[0].FileID)
}

func TestDocScopedResultsSurviveSelectionChange(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(3)))
	_, _, err := s.Select(1)
	require.NoError(t, err)

	// Tags and risk carry no clause number; changing the selection must not
	// invalidate them.
	assert.True(t, s.SetTags(st, []string{"msa"}))
	assert.True(t, s.SetRisk(st, &model.RiskAssessment{RiskScore: 72, RiskLevel: model.RiskLevelHigh}))

	_, _, err = s.Select(3)
	require.NoError(t, err)

	vm := s.Snapshot()
	assert.Equal(t, []string{"msa"}, vm.Tags)
	require.NotNil(t, vm.Risk)
	assert.Equal(t, 72, vm.Risk.RiskScore)
}

func TestSetComparisonRadioSemantics(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(1)))
	_, sel, err := s.Select(1)
	require.NoError(t, err)
	require.True(t, s.SetMatches(sel, []model.SimilarFileMatch{
		{FileID: "D2", MatchType: model.MatchExact},
		{FileID: "D3", MatchType: model.MatchSimilar},
	}))

	first, err := s.SetComparison("D2")
	require.NoError(t, err)
	assert.Equal(t, "D2", first.FileID)

	second, err := s.SetComparison("D3")
	require.NoError(t, err)
	assert.Equal(t, "D3", second.FileID)

	target, ok := s.Comparison()
	require.True(t, ok)
	assert.Equal(t, "D3", target.FileID)

	_, err = s.SetComparison("D99")
	require.Error(t, err)
	assert.True(t, faults.IsNotFound(err))

	// A failed switch leaves the prior target in place.
	target, ok = s.Comparison()
	require.True(t, ok)
	assert.Equal(t, "D3", target.FileID)
}

func TestSetComparisonWithoutSelection(t *testing.T) {
	s := NewSession()
	s.Open(testDoc("D1"))

	_, err := s.SetComparison("D2")
	require.Error(t, err)
	assert.True(t, faults.IsNotFound(err))
}

func TestSimilarityNoticeClearedByResult(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(1)))
	_, sel, err := s.Select(1)
	require.NoError(t, err)

	require.True(t, s.SetSimilarityNotice(sel, "similarity service unavailable"))
	assert.Equal(t, "similarity service unavailable", s.Snapshot().SimilarityNotice)

	require.True(t, s.SetMatches(sel, nil))
	assert.Equal(t, "", s.Snapshot().SimilarityNotice)
	assert.True(t, s.Snapshot().MatchesLoaded)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewSession()
	st := s.Open(testDoc("D1"))
	require.True(t, s.SetCachedClauses(st, testClauses(2)))
	require.True(t, s.SetTags(st, []string{"a", "b"}))

	vm := s.Snapshot()
	vm.Clauses[0].Title = "mutated"
	vm.Tags[0] = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "Clause", fresh.Clauses[0].Title)
	assert.Equal(t, "a", fresh.Tags[0])
}
