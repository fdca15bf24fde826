package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/AnTengye/contractreview/backend/config"
	"github.com/AnTengye/contractreview/backend/model"
)

// Workspace is the single-document review session of one tenant
type Workspace struct {
	Tenant      string
	Selection   *SelectionController
	Annotations *AnnotationStore
	Loads       *LoadCoordinator
	Suggestions *SuggestionView
	Arguments   *ArgumentView
	CreatedAt   time.Time
}

// WorkspaceOptions configures the collaborators of new workspaces
type WorkspaceOptions struct {
	MaxWorkspaces int // 0 = unlimited
	Loader        Loader
	Validator     UploadValidator
	Archive       Archive
	// NewAnnotations builds the annotation store of each workspace
	NewAnnotations func() *AnnotationStore
}

// OptionsFromConfig derives workspace options from the service configuration
func OptionsFromConfig(cfg *config.Config, archive Archive) WorkspaceOptions {
	return WorkspaceOptions{
		MaxWorkspaces:  cfg.Store.MaxWorkspaces,
		Loader:         FixtureLoader{Delay: time.Duration(cfg.Upload.ProcessingDelayMS) * time.Millisecond},
		Validator:      UploadValidator{MaxBytes: cfg.Upload.MaxBytes()},
		Archive:        archive,
		NewAnnotations: NewFixtureAnnotationStore,
	}
}

func newWorkspace(tenant string, opts WorkspaceOptions) *Workspace {
	selection := NewSelectionController()
	annotations := opts.NewAnnotations()
	if err := annotations.Validate(); err != nil {
		slog.Warn("annotation store failed validation", "tenant", tenant, "error", err)
	}

	// Decisions belong to the loaded document; a new load starts them over
	selection.OnLoad(func(*model.Contract) { annotations.ResetDecisions() })
	selection.Subscribe(func(s Snapshot) {
		if s.Clause != nil {
			return
		}
		if dangling := annotations.Dangling(s.Contract); len(dangling) > 0 {
			slog.Warn("annotations reference clauses missing from contract",
				"tenant", tenant,
				"contract_id", s.Contract.ID,
				"annotation_ids", dangling,
			)
		}
	})

	return &Workspace{
		Tenant:      tenant,
		Selection:   selection,
		Annotations: annotations,
		Loads:       NewLoadCoordinator(tenant, opts.Loader, opts.Validator, selection, opts.Archive),
		Suggestions: NewSuggestionView(selection, annotations),
		Arguments:   NewArgumentView(selection, annotations),
		CreatedAt:   time.Now(),
	}
}

// WorkspaceRegistry is an in-memory registry of tenant workspaces
type WorkspaceRegistry struct {
	workspaces map[string]*Workspace
	mu         sync.Mutex
	opts       WorkspaceOptions
}

func NewWorkspaceRegistry(opts WorkspaceOptions) *WorkspaceRegistry {
	if opts.MaxWorkspaces < 0 {
		opts.MaxWorkspaces = 0
	}
	if opts.Loader == nil {
		opts.Loader = FixtureLoader{}
	}
	if opts.NewAnnotations == nil {
		opts.NewAnnotations = NewFixtureAnnotationStore
	}
	slog.Info("workspace registry initialized", "max_workspaces", opts.MaxWorkspaces)
	return &WorkspaceRegistry{
		workspaces: make(map[string]*Workspace),
		opts:       opts,
	}
}

// Get returns the tenant workspace, creating it on first use
func (r *WorkspaceRegistry) Get(tenant string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[tenant]; ok {
		return ws
	}

	ws := newWorkspace(tenant, r.opts)
	r.workspaces[tenant] = ws
	r.cleanupIfNeeded(tenant)
	return ws
}

// Lookup returns an existing workspace without creating one
func (r *WorkspaceRegistry) Lookup(tenant string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[tenant]
	return ws, ok
}

// Delete drops the tenant workspace and cancels its in-flight load
func (r *WorkspaceRegistry) Delete(tenant string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.workspaces[tenant]; ok {
		ws.Loads.Stop()
		delete(r.workspaces, tenant)
	}
}

// cleanupIfNeeded removes the oldest workspaces beyond maxWorkspaces, never
// the one just created.
// Must be called with lock held
func (r *WorkspaceRegistry) cleanupIfNeeded(keep string) {
	if r.opts.MaxWorkspaces <= 0 {
		return // Unlimited
	}

	if len(r.workspaces) <= r.opts.MaxWorkspaces {
		return
	}

	workspaces := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		if ws.Tenant != keep {
			workspaces = append(workspaces, ws)
		}
	}
	sort.Slice(workspaces, func(i, j int) bool {
		return workspaces[i].CreatedAt.Before(workspaces[j].CreatedAt)
	})

	removeCount := len(r.workspaces) - r.opts.MaxWorkspaces
	for i := 0; i < removeCount && i < len(workspaces); i++ {
		slog.Info("evicting idle workspace",
			"tenant", workspaces[i].Tenant,
			"created_at", workspaces[i].CreatedAt,
		)
		workspaces[i].Loads.Stop()
		delete(r.workspaces, workspaces[i].Tenant)
	}
}

// Count returns the number of live workspaces
func (r *WorkspaceRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// LoadFixture loads the sample agreement straight into a workspace
func (ws *Workspace) LoadFixture(ctx context.Context) error {
	return ws.Selection.LoadContract(ctx, FixtureContract())
}
