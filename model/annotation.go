package model

import "fmt"

// EditSuggestion proposes replacement text for a clause
type EditSuggestion struct {
	ID        string `json:"id"`
	ClauseID  string `json:"clause_id"`
	Original  string `json:"original"`
	Suggested string `json:"suggested"`
	Reasoning string `json:"reasoning"`
	Impact    string `json:"impact"`
}

// ArgumentStrength rates how compelling a counterparty argument is
type ArgumentStrength string

const (
	StrengthWeak     ArgumentStrength = "weak"
	StrengthModerate ArgumentStrength = "moderate"
	StrengthStrong   ArgumentStrength = "strong"
)

// Valid reports whether s is one of the three known strengths
func (s ArgumentStrength) Valid() bool {
	switch s {
	case StrengthWeak, StrengthModerate, StrengthStrong:
		return true
	}
	return false
}

// CounterPartyArgument is a simulated objection from the other side
type CounterPartyArgument struct {
	ID       string           `json:"id"`
	ClauseID string           `json:"clause_id"`
	Argument string           `json:"argument"`
	Strength ArgumentStrength `json:"strength"`
}

// Validate rejects arguments with an unknown strength
func (a CounterPartyArgument) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "argument.id", Reason: "must not be empty"}
	}
	if !a.Strength.Valid() {
		return &ValidationError{Field: "argument.strength", Reason: fmt.Sprintf("unknown strength %q for %s", a.Strength, a.ID)}
	}
	return nil
}

// LegalReference points at a source supporting the analysis of a clause
type LegalReference struct {
	ID        string `json:"id"`
	ClauseID  string `json:"clause_id"`
	Source    string `json:"source"`
	Citation  string `json:"citation"`
	Relevance string `json:"relevance"`
	URL       string `json:"url,omitempty"`
}

// SuggestionStatus tracks the reviewer decision on an edit suggestion
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

// CanTransition reports whether a decision may move from s to next.
// Pending is the only state with outgoing transitions; repeating the current
// state is allowed and has no effect.
func (s SuggestionStatus) CanTransition(next SuggestionStatus) bool {
	if s == next {
		return true
	}
	return s == SuggestionPending && (next == SuggestionAccepted || next == SuggestionRejected)
}
