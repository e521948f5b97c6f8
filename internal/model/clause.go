package model

// Clause is one extracted clause of a document. ClauseNumber is an ordinal,
// unique within a document and within one extraction generation only.
type Clause struct {
	ClauseNumber  int       `json:"clause_number"`
	SectionNumber string    `json:"section_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	RiskLevel     RiskLevel `json:"risk_level,omitempty"`
	RiskScore     int       `json:"risk_score,omitempty"`
}

// ClauseList is one extraction generation of a document's clauses. The
// Generation stamp changes on every replacement; clause numbers from a
// prior generation must never be resolved against a newer list.
type ClauseList struct {
	Generation string   `json:"generation"`
	Clauses    []Clause `json:"clauses"`
}

// Find returns the clause with the given number, or nil if the number does
// not exist in this generation.
func (l *ClauseList) Find(clauseNumber int) *Clause {
	if l == nil {
		return nil
	}
	for i := range l.Clauses {
		if l.Clauses[i].ClauseNumber == clauseNumber {
			return &l.Clauses[i]
		}
	}
	return nil
}

// Len returns the number of clauses in the list.
func (l *ClauseList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Clauses)
}

// MatchType classifies a similar clause found in another document.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchSimilar MatchType = "similar"
)

// SimilarFileMatch is another document containing a clause matching the
// selected one. The set is transient, scoped to (document, selected clause),
// and replaced wholesale on every new selection.
type SimilarFileMatch struct {
	FileID        string    `json:"file_id"`
	FileName      string    `json:"file_name"`
	SectionNumber string    `json:"section_number"`
	ClauseTitle   string    `json:"clause_title"`
	ClauseContent string    `json:"clause_content"`
	MatchType     MatchType `json:"match_type"`
}
