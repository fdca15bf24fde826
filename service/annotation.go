package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/AnTengye/contractreview/backend/model"
)

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrInvalidTransition  = errors.New("invalid suggestion status transition")
)

// AnnotationStore holds suggestions, counterparty arguments and legal
// references in insertion order. Annotation bodies never change after
// construction; only the reviewer decision on a suggestion is mutable.
type AnnotationStore struct {
	suggestions []model.EditSuggestion
	arguments   []model.CounterPartyArgument
	references  []model.LegalReference

	mu       sync.RWMutex
	statuses map[string]model.SuggestionStatus
}

func NewAnnotationStore(suggestions []model.EditSuggestion, arguments []model.CounterPartyArgument, references []model.LegalReference) *AnnotationStore {
	statuses := make(map[string]model.SuggestionStatus, len(suggestions))
	for _, s := range suggestions {
		statuses[s.ID] = model.SuggestionPending
	}
	return &AnnotationStore{
		suggestions: append([]model.EditSuggestion(nil), suggestions...),
		arguments:   append([]model.CounterPartyArgument(nil), arguments...),
		references:  append([]model.LegalReference(nil), references...),
		statuses:    statuses,
	}
}

// Validate checks every argument carries a known strength
func (s *AnnotationStore) Validate() error {
	for _, a := range s.arguments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SuggestionsFor returns the suggestions attached to clauseID. Unknown ids
// yield an empty, non-nil slice.
func (s *AnnotationStore) SuggestionsFor(clauseID string) []model.EditSuggestion {
	return filterByClause(s.suggestions, clauseID, func(e model.EditSuggestion) string { return e.ClauseID })
}

// ArgumentsFor returns the counterparty arguments attached to clauseID
func (s *AnnotationStore) ArgumentsFor(clauseID string) []model.CounterPartyArgument {
	return filterByClause(s.arguments, clauseID, func(a model.CounterPartyArgument) string { return a.ClauseID })
}

// ReferencesFor returns the legal references attached to clauseID
func (s *AnnotationStore) ReferencesFor(clauseID string) []model.LegalReference {
	return filterByClause(s.references, clauseID, func(r model.LegalReference) string { return r.ClauseID })
}

func filterByClause[T any](items []T, clauseID string, key func(T) string) []T {
	result := make([]T, 0)
	for _, item := range items {
		if key(item) == clauseID {
			result = append(result, item)
		}
	}
	return result
}

// Suggestion looks up a single suggestion by id
func (s *AnnotationStore) Suggestion(id string) (model.EditSuggestion, bool) {
	for _, e := range s.suggestions {
		if e.ID == id {
			return e, true
		}
	}
	return model.EditSuggestion{}, false
}

// SuggestionStatus returns the current decision on a suggestion
func (s *AnnotationStore) SuggestionStatus(id string) (model.SuggestionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
	}
	return status, nil
}

// Decide records an accept or reject decision. Clause text is left untouched.
func (s *AnnotationStore) Decide(id string, next model.SuggestionStatus) (model.SuggestionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.statuses[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
	}
	if !current.CanTransition(next) {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	s.statuses[id] = next
	return next, nil
}

// ResetDecisions moves every suggestion back to pending
func (s *AnnotationStore) ResetDecisions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.statuses {
		s.statuses[id] = model.SuggestionPending
	}
}

// Dangling returns the ids of annotations whose clause is not part of contract
func (s *AnnotationStore) Dangling(contract *model.Contract) []string {
	var ids []string
	for _, e := range s.suggestions {
		if !contract.HasClause(e.ClauseID) {
			ids = append(ids, e.ID)
		}
	}
	for _, a := range s.arguments {
		if !contract.HasClause(a.ClauseID) {
			ids = append(ids, a.ID)
		}
	}
	for _, r := range s.references {
		if !contract.HasClause(r.ClauseID) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
