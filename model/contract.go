package model

import (
	"errors"
	"fmt"
)

// RiskLevel is the severity attached to a clause
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the three known levels
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ErrInvalidContract is returned when a contract fails validation at load time
var ErrInvalidContract = errors.New("invalid contract")

// ValidationError carries the reason a contract or annotation was rejected
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidContract
}

// Clause is a single provision within a contract
type Clause struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Type    string    `json:"type"`
	Risk    RiskLevel `json:"risk"`
}

// Contract is a loaded document. Clauses are kept in document order.
type Contract struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Parties []string `json:"parties"`
	Clauses []Clause `json:"clauses"`
}

// NewContract builds a contract and validates it
func NewContract(id, title string, parties []string, clauses []Clause) (*Contract, error) {
	c := &Contract{
		ID:      id,
		Title:   title,
		Parties: append([]string(nil), parties...),
		Clauses: append([]Clause(nil), clauses...),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks identity and clause invariants. Duplicate clause ids are
// rejected rather than collapsed.
func (c *Contract) Validate() error {
	if c.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if len(c.Parties) == 0 {
		return &ValidationError{Field: "parties", Reason: "at least one party is required"}
	}

	seen := make(map[string]struct{}, len(c.Clauses))
	for i, clause := range c.Clauses {
		if clause.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("clauses[%d].id", i), Reason: "must not be empty"}
		}
		if _, dup := seen[clause.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("clauses[%d].id", i), Reason: fmt.Sprintf("duplicate clause id %q", clause.ID)}
		}
		seen[clause.ID] = struct{}{}

		if !clause.Risk.Valid() {
			return &ValidationError{Field: fmt.Sprintf("clauses[%d].risk", i), Reason: fmt.Sprintf("unknown risk level %q", clause.Risk)}
		}
	}
	return nil
}

// Clause looks up a clause by id
func (c *Contract) Clause(id string) (Clause, bool) {
	for _, clause := range c.Clauses {
		if clause.ID == id {
			return clause, true
		}
	}
	return Clause{}, false
}

// HasClause reports whether id belongs to the contract
func (c *Contract) HasClause(id string) bool {
	_, ok := c.Clause(id)
	return ok
}

// Clone returns a deep copy so callers cannot mutate a loaded contract
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	return &Contract{
		ID:      c.ID,
		Title:   c.Title,
		Parties: append([]string(nil), c.Parties...),
		Clauses: append([]Clause(nil), c.Clauses...),
	}
}
