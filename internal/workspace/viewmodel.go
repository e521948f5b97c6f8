package workspace

import "github.com/clauselens/workbench-cli/internal/model"

// ViewModel is a plain snapshot of the workspace state for a rendering
// layer. It carries no behavior and no references into the session; taking
// a snapshot never blocks a mutation for longer than the copy.
type ViewModel struct {
	Open     bool           `json:"open"`
	Document model.Document `json:"document"`

	ExtractionNeeded bool           `json:"extraction_needed"`
	Clauses          []model.Clause `json:"clauses,omitempty"`

	Selected *model.Clause `json:"selected,omitempty"`

	Matches          []model.SimilarFileMatch `json:"matches,omitempty"`
	MatchesLoaded    bool                     `json:"matches_loaded"`
	SimilarityNotice string                   `json:"similarity_notice,omitempty"`

	ComparisonTarget *model.SimilarFileMatch `json:"comparison_target,omitempty"`

	Tags []string `json:"tags,omitempty"`

	Risk       *model.RiskAssessment `json:"risk,omitempty"`
	RiskNotice string                `json:"risk_notice,omitempty"`

	SavedToLibrary bool   `json:"saved_to_library"`
	Identity       string `json:"identity,omitempty"`
}

// Snapshot produces a view model of the current session state.
func (s *Session) Snapshot() ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm := ViewModel{
		Open:             s.open,
		Document:         s.doc,
		ExtractionNeeded: s.extractionNeeded,
		MatchesLoaded:    s.matchesLoaded,
		SimilarityNotice: s.similarityNotice,
		RiskNotice:       s.riskNotice,
		SavedToLibrary:   s.savedToLibrary,
		Identity:         s.identity,
	}

	if s.clauses != nil {
		vm.Clauses = make([]model.Clause, len(s.clauses.Clauses))
		copy(vm.Clauses, s.clauses.Clauses)
	}
	if s.selected != nil {
		selected := *s.selected
		vm.Selected = &selected
	}
	if len(s.matches) > 0 {
		vm.Matches = make([]model.SimilarFileMatch, len(s.matches))
		copy(vm.Matches, s.matches)
	}
	if s.comparison != nil {
		target := *s.comparison
		vm.ComparisonTarget = &target
	}
	if len(s.tags) > 0 {
		vm.Tags = make([]string, len(s.tags))
		copy(vm.Tags, s.tags)
	}
	if s.risk != nil {
		risk := *s.risk
		vm.Risk = &risk
	}

	return vm
}
