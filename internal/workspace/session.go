package workspace

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/clauselens/workbench-cli/internal/faults"
	"github.com/clauselens/workbench-cli/internal/model"
)

// Stamp identifies the workspace state an asynchronous operation was started
// against. Completions present their stamp back to the session; results
// whose stamp no longer matches are discarded instead of applied, so a
// response for a selection the user already navigated away from can never
// overwrite newer state. ClauseNumber zero means the result is scoped to the
// document, not to a particular selection.
type Stamp struct {
	DocumentID   string
	Generation   string
	ClauseNumber int
}

// Session holds the full client-side state for one open document. All
// access is serialized by an internal mutex; asynchronous mutations go
// through the stamped setters.
type Session struct {
	mu sync.Mutex

	open       bool
	doc        model.Document
	generation string

	clauses          *model.ClauseList
	extractionNeeded bool

	selected   *model.Clause
	comparison *model.SimilarFileMatch

	matches          []model.SimilarFileMatch
	matchesLoaded    bool
	similarityNotice string

	tags []string

	risk       *model.RiskAssessment
	riskNotice string

	savedToLibrary bool
	identity       string
}

// NewSession creates an empty, closed session.
func NewSession() *Session {
	return &Session{}
}

// Open resets every clause, selection, tag and risk field before any fetch
// begins, then binds the session to the document. Opening over an already
// open session discards the prior document entirely; no state is merged.
func (s *Session) Open(doc model.Document) Stamp {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity := s.identity // survives across documents; it is account-scoped
	s.reset()
	s.open = true
	s.doc = doc
	s.generation = uuid.New().String()
	s.identity = identity

	return Stamp{DocumentID: doc.ID, Generation: s.generation}
}

// Close clears all fields. Any in-flight results are discarded on arrival
// because their stamps no longer match.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// reset zeroes every field. Callers must hold the lock.
func (s *Session) reset() {
	s.open = false
	s.doc = model.Document{}
	s.generation = ""
	s.clauses = nil
	s.extractionNeeded = false
	s.selected = nil
	s.comparison = nil
	s.matches = nil
	s.matchesLoaded = false
	s.similarityNotice = ""
	s.tags = nil
	s.risk = nil
	s.riskNotice = ""
	s.savedToLibrary = false
	s.identity = ""
}

// IsOpen reports whether a document is currently open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Document returns the open document handle.
func (s *Session) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// CurrentStamp returns a stamp for the session's current document,
// generation and selection.
func (s *Session) CurrentStamp() Stamp {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stamp{DocumentID: s.doc.ID, Generation: s.generation}
	if s.selected != nil {
		st.ClauseNumber = s.selected.ClauseNumber
	}
	return st
}

// current reports whether the stamp still matches the session. Callers must
// hold the lock.
func (s *Session) current(st Stamp) bool {
	if !s.open || s.doc.ID != st.DocumentID || s.generation != st.Generation {
		return false
	}
	if st.ClauseNumber != 0 {
		if s.selected == nil || s.selected.ClauseNumber != st.ClauseNumber {
			return false
		}
	}
	return true
}

// SetCachedClauses installs clauses loaded from the document store's cache.
// An empty list flips the session into the extraction-needed state instead.
func (s *Session) SetCachedClauses(st Stamp, clauses []model.Clause) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(st) {
		return false
	}
	if len(clauses) == 0 {
		s.clauses = nil
		s.extractionNeeded = true
		return true
	}
	s.clauses = &model.ClauseList{Generation: s.generation, Clauses: clauses}
	s.extractionNeeded = false
	return true
}

// ReplaceClauses installs a freshly extracted clause list as a new
// generation. The prior selection, comparison target and similarity matches
// reference clause numbers from the old generation, so they are invalidated
// atomically with the replacement.
func (s *Session) ReplaceClauses(st Stamp, clauses []model.Clause) (Stamp, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Extraction results are document-scoped; tolerate a generation change
	// only when it came from the same document.
	if !s.open || s.doc.ID != st.DocumentID {
		return Stamp{}, false
	}

	s.generation = uuid.New().String()
	s.clauses = &model.ClauseList{Generation: s.generation, Clauses: clauses}
	s.extractionNeeded = len(clauses) == 0
	s.selected = nil
	s.comparison = nil
	s.matches = nil
	s.matchesLoaded = false
	s.similarityNotice = ""
	s.savedToLibrary = false

	return Stamp{DocumentID: s.doc.ID, Generation: s.generation}, true
}

// Select makes the clause with the given number the active selection and
// clears any comparison state from the previous one. A number outside the
// current generation reports NotFound and leaves the prior selection
// untouched.
func (s *Session) Select(clauseNumber int) (model.Clause, Stamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return model.Clause{}, Stamp{}, faults.NewNotFound("open workspace")
	}
	clause := s.clauses.Find(clauseNumber)
	if clause == nil {
		return model.Clause{}, Stamp{}, faults.NewNotFound(fmt.Sprintf("clause %d", clauseNumber))
	}

	selected := *clause
	s.selected = &selected
	s.comparison = nil
	s.matches = nil
	s.matchesLoaded = false
	s.similarityNotice = ""
	s.savedToLibrary = false

	return selected, Stamp{
		DocumentID:   s.doc.ID,
		Generation:   s.generation,
		ClauseNumber: clauseNumber,
	}, nil
}

// Selected returns a copy of the active clause, if any.
func (s *Session) Selected() (model.Clause, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return model.Clause{}, false
	}
	return *s.selected, true
}

// SetMatches replaces the similarity match set wholesale. Matches are never
// merged across selections.
func (s *Session) SetMatches(st Stamp, matches []model.SimilarFileMatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(st) {
		return false
	}
	s.matches = matches
	s.matchesLoaded = true
	s.similarityNotice = ""
	return true
}

// SetSimilarityNotice records a degraded similarity outcome for the view.
func (s *Session) SetSimilarityNotice(st Stamp, notice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(st) {
		return false
	}
	s.similarityNotice = notice
	return true
}

// Matches returns the current similarity match set.
func (s *Session) Matches() []model.SimilarFileMatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SimilarFileMatch, len(s.matches))
	copy(out, s.matches)
	return out
}

// SetComparison makes the match with the given file ID the comparison
// target. At most one match is the target at any time; choosing a new one
// clears the prior target first.
func (s *Session) SetComparison(fileID string) (model.SimilarFileMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return model.SimilarFileMatch{}, faults.NewNotFound("selected clause")
	}
	for _, m := range s.matches {
		if m.FileID == fileID {
			target := m
			s.comparison = &target
			return target, nil
		}
	}
	return model.SimilarFileMatch{}, faults.NewNotFound(fmt.Sprintf("similar file %s", fileID))
}

// Comparison returns the active comparison target, if any.
func (s *Session) Comparison() (model.SimilarFileMatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.comparison == nil {
		return model.SimilarFileMatch{}, false
	}
	return *s.comparison, true
}

// SetSaved records the library save-status of the selected clause.
func (s *Session) SetSaved(st Stamp, saved bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(st) {
		return false
	}
	s.savedToLibrary = saved
	return true
}

// SetTags replaces the document's tag set.
func (s *Session) SetTags(st Stamp, tags []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Tags are document-scoped and survive re-extraction.
	if !s.open || s.doc.ID != st.DocumentID {
		return false
	}
	s.tags = tags
	return true
}

// Tags returns the document's current tag set.
func (s *Session) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// SetRisk merges a risk assessment into the view model, fully replacing any
// prior one.
func (s *Session) SetRisk(st Stamp, risk *model.RiskAssessment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.doc.ID != st.DocumentID {
		return false
	}
	s.risk = risk
	s.riskNotice = ""
	return true
}

// SetRiskNotice records a degraded risk outcome without blocking the rest
// of the workspace.
func (s *Session) SetRiskNotice(st Stamp, notice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.doc.ID != st.DocumentID {
		return false
	}
	s.riskNotice = notice
	return true
}

// SetIdentity caches the resolved account identity for library saves.
func (s *Session) SetIdentity(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = email
}

// Identity returns the cached account identity, if resolved.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}
