package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AnTengye/contractreview/backend/model"
	"github.com/AnTengye/contractreview/backend/pkg/logger"
)

var (
	// ErrInvalidSelection means the clause is not part of the loaded contract
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNoContract means no contract has been loaded yet
	ErrNoContract = errors.New("no contract loaded")
)

// SelectionState constants
type SelectionState string

const (
	StateEmpty             SelectionState = "empty"
	StateLoadedNoSelection SelectionState = "loaded_no_selection"
	StateLoadedSelected    SelectionState = "loaded_selected"
)

// Snapshot is a read-only copy of the controller state. Seq grows with every
// effective transition, so observers can drop a snapshot older than one they
// have already seen.
type Snapshot struct {
	Seq      uint64
	State    SelectionState
	Contract *model.Contract
	Clause   *model.Clause
}

// ClauseID returns the selected clause id, or "" without a selection
func (s Snapshot) ClauseID() string {
	if s.Clause == nil {
		return ""
	}
	return s.Clause.ID
}

// SelectionController owns the loaded contract and the selected clause.
// It is the only mutator of either.
type SelectionController struct {
	mu        sync.RWMutex
	seq       uint64
	contract  *model.Contract
	clause    *model.Clause
	loadHooks []func(*model.Contract)
	observers []func(Snapshot)
}

func NewSelectionController() *SelectionController {
	return &SelectionController{}
}

// Subscribe registers fn to run after every effective transition
func (s *SelectionController) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// OnLoad registers fn to run inside every LoadContract transition, before it
// returns and before any observer. fn runs with the controller locked and must
// not call back into it.
func (s *SelectionController) OnLoad(fn func(*model.Contract)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadHooks = append(s.loadHooks, fn)
}

// LoadContract replaces the current contract and clears the selection.
// An invalid contract is rejected and the prior state is kept.
func (s *SelectionController) LoadContract(ctx context.Context, contract *model.Contract) error {
	if contract == nil {
		return &model.ValidationError{Field: "contract", Reason: "must not be nil"}
	}
	if err := contract.Validate(); err != nil {
		logger.Warn(ctx, "contract rejected", "contract_id", contract.ID, "error", err)
		return err
	}

	s.mu.Lock()
	s.seq++
	s.contract = contract.Clone()
	s.clause = nil
	for _, fn := range s.loadHooks {
		fn(s.contract)
	}
	snap := s.snapshotLocked()
	observers := s.observers
	s.mu.Unlock()

	logger.Info(ctx, "contract loaded",
		"contract_id", contract.ID,
		"clauses", len(contract.Clauses),
	)
	notify(observers, snap)
	return nil
}

// SelectClause selects the clause with the given id. Selecting the current
// clause again is a no-op.
func (s *SelectionController) SelectClause(ctx context.Context, clauseID string) (model.Clause, error) {
	s.mu.Lock()

	if s.contract == nil {
		s.mu.Unlock()
		return model.Clause{}, ErrNoContract
	}

	clause, ok := s.contract.Clause(clauseID)
	if !ok {
		contractID := s.contract.ID
		s.mu.Unlock()
		logger.Error(ctx, "selection rejected: clause not in current contract",
			"contract_id", contractID,
			"clause_id", clauseID,
		)
		return model.Clause{}, fmt.Errorf("%w: clause %q not in contract %q", ErrInvalidSelection, clauseID, contractID)
	}

	if s.clause != nil && s.clause.ID == clauseID {
		s.mu.Unlock()
		return clause, nil
	}

	s.seq++
	s.clause = &clause
	snap := s.snapshotLocked()
	observers := s.observers
	s.mu.Unlock()

	logger.Debug(ctx, "clause selected", "contract_id", snap.Contract.ID, "clause_id", clauseID)
	notify(observers, snap)
	return clause, nil
}

// Select selects clause by its id
func (s *SelectionController) Select(ctx context.Context, clause model.Clause) (model.Clause, error) {
	return s.SelectClause(ctx, clause.ID)
}

// Snapshot returns a copy of the current state
func (s *SelectionController) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// State returns the current state only
func (s *SelectionController) State() SelectionState {
	return s.Snapshot().State
}

// CurrentContract returns a copy of the loaded contract
func (s *SelectionController) CurrentContract() (*model.Contract, bool) {
	snap := s.Snapshot()
	return snap.Contract, snap.Contract != nil
}

// CurrentClause returns the selected clause
func (s *SelectionController) CurrentClause() (model.Clause, bool) {
	snap := s.Snapshot()
	if snap.Clause == nil {
		return model.Clause{}, false
	}
	return *snap.Clause, true
}

// Must be called with lock held
func (s *SelectionController) snapshotLocked() Snapshot {
	snap := Snapshot{Seq: s.seq, State: StateEmpty}
	if s.contract == nil {
		return snap
	}
	snap.Contract = s.contract.Clone()
	snap.State = StateLoadedNoSelection
	if s.clause != nil {
		clause := *s.clause
		snap.Clause = &clause
		snap.State = StateLoadedSelected
	}
	return snap
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

// seqGate admits snapshots in increasing Seq order
type seqGate struct {
	mu   sync.Mutex
	last uint64
}

func (g *seqGate) admit(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq <= g.last {
		return false
	}
	g.last = seq
	return true
}
