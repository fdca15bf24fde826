package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AnTengye/contractreview/backend/model"
	"github.com/AnTengye/contractreview/backend/pkg/logger"
	"github.com/google/uuid"
)

var (
	// ErrLoadSuperseded is recorded on a load overtaken by a newer submission
	ErrLoadSuperseded = errors.New("load superseded by a newer upload")
	ErrLoadNotFound   = errors.New("load not found")
)

const (
	// maxLoadHistory bounds the number of finished loads kept for Wait
	maxLoadHistory       = 16
	archiveRemoveTimeout = 10 * time.Second
)

type loadRecord struct {
	done   chan struct{}
	status model.LoadStatus
}

// LoadCoordinator runs uploads through the loader one at a time. A newer
// submission cancels the in-flight one, and a completion that arrives after
// it was superseded never reaches the selection controller.
type LoadCoordinator struct {
	tenant    string
	loader    Loader
	validator UploadValidator
	selection *SelectionController
	archive   Archive

	applyMu    sync.Mutex
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     string
	loads      map[string]*loadRecord
	order      []string
}

func NewLoadCoordinator(tenant string, loader Loader, validator UploadValidator, selection *SelectionController, archive Archive) *LoadCoordinator {
	return &LoadCoordinator{
		tenant:    tenant,
		loader:    loader,
		validator: validator,
		selection: selection,
		archive:   archive,
		loads:     make(map[string]*loadRecord),
	}
}

// Submit validates the upload and starts loading it in the background.
// Validation failures return immediately and leave all state untouched.
func (c *LoadCoordinator) Submit(ctx context.Context, u Upload) (model.LoadStatus, error) {
	mimeType, err := c.validator.Validate(u)
	if err != nil {
		logger.Warn(ctx, "upload rejected", "filename", u.Filename, "mime_type", u.MIMEType, "error", err)
		return model.LoadStatus{}, err
	}

	loadID := uuid.New().String()
	now := time.Now()
	status := model.LoadStatus{
		LoadID:    loadID,
		Filename:  u.Filename,
		MIMEType:  mimeType,
		State:     model.LoadProcessing,
		StartedAt: now,
		UpdatedAt: now,
	}

	// Detach from the request so the load outlives the HTTP call
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	loadCtx = context.WithValue(loadCtx, logger.LoadIDKey, loadID)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if prev, ok := c.loads[c.latest]; ok && !prev.status.Done() {
		c.finishLocked(prev, model.LoadSuperseded, ErrLoadSuperseded.Error())
		logger.Info(ctx, "load superseded", "load_id", prev.status.LoadID, "by", loadID)
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.latest = loadID
	c.loads[loadID] = &loadRecord{done: make(chan struct{}), status: status}
	c.order = append(c.order, loadID)
	c.pruneLocked()
	c.mu.Unlock()

	logger.Info(loadCtx, "load started", "filename", u.Filename, "mime_type", mimeType, "size", len(u.Data))
	go c.run(loadCtx, cancel, gen, loadID, u, mimeType)

	return status, nil
}

func (c *LoadCoordinator) run(ctx context.Context, cancel context.CancelFunc, gen uint64, loadID string, u Upload, mimeType string) {
	defer cancel()

	objectName := ObjectName(c.tenant, loadID, u.Filename)
	var archiveURL string
	if c.archive != nil {
		url, err := c.archive.Store(ctx, objectName, u.Data, mimeType)
		if err != nil {
			logger.Warn(ctx, "failed to archive upload", "error", err)
		} else {
			archiveURL = url
		}
	}

	contract, err := c.loader.Parse(ctx, u.Data, mimeType)

	// applyMu serializes the contract hand-off of overlapping runs. c.mu is
	// released while selection observers run.
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	if !c.isLatest(gen, loadID) {
		logger.Info(ctx, "stale load completion ignored")
		c.discard(ctx, archiveURL, objectName)
		return
	}

	if err == nil {
		err = c.selection.LoadContract(ctx, contract)
	}
	if err != nil {
		var perr *ParseError
		if !errors.As(err, &perr) {
			err = &ParseError{MIMEType: mimeType, Err: err}
		}
		logger.Error(ctx, "load failed", "error", err)
		c.finish(loadID, archiveURL, "", model.LoadFailed, err.Error())
		c.discard(ctx, archiveURL, objectName)
		return
	}

	if !c.finish(loadID, archiveURL, contract.ID, model.LoadCompleted, "") {
		logger.Info(ctx, "load superseded while contract was applied", "contract_id", contract.ID)
		c.discard(ctx, archiveURL, objectName)
		return
	}
	logger.Info(ctx, "load completed", "contract_id", contract.ID)
}

// isLatest reports whether loadID is still the newest submission
func (c *LoadCoordinator) isLatest(gen uint64, loadID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loads[loadID]
	return ok && gen == c.generation
}

// finish records the outcome of a load unless it was already finished,
// e.g. superseded by Submit while the contract was being applied
func (c *LoadCoordinator) finish(loadID, archiveURL, contractID, state, errMsg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.loads[loadID]
	if !ok || rec.status.Done() {
		return false
	}
	rec.status.ArchiveURL = archiveURL
	rec.status.ContractID = contractID
	c.finishLocked(rec, state, errMsg)
	return true
}

// discard removes the archived copy of an upload that never became the
// current contract
func (c *LoadCoordinator) discard(ctx context.Context, archiveURL, objectName string) {
	if c.archive == nil || archiveURL == "" {
		return
	}
	// The load context is usually cancelled by now
	rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveRemoveTimeout)
	defer cancel()
	if err := c.archive.Remove(rmCtx, objectName); err != nil {
		logger.Warn(ctx, "failed to remove archived upload", "object", objectName, "error", err)
		return
	}
	logger.Debug(ctx, "archived upload removed", "object", objectName)
}

// Must be called with lock held
func (c *LoadCoordinator) finishLocked(rec *loadRecord, state, errMsg string) {
	rec.status.State = state
	rec.status.ErrorMsg = errMsg
	rec.status.UpdatedAt = time.Now()
	close(rec.done)
}

// Must be called with lock held
func (c *LoadCoordinator) pruneLocked() {
	for len(c.order) > maxLoadHistory {
		oldest := c.order[0]
		if rec, ok := c.loads[oldest]; ok && !rec.status.Done() {
			break
		}
		delete(c.loads, oldest)
		c.order = c.order[1:]
	}
}

// Stop cancels the in-flight load, if any
func (c *LoadCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Status returns the status of the most recent submission
func (c *LoadCoordinator) Status() model.LoadStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.loads[c.latest]
	if !ok {
		return model.LoadStatus{State: model.LoadIdle}
	}
	return rec.status
}

// Wait blocks until the given load finishes or ctx is done
func (c *LoadCoordinator) Wait(ctx context.Context, loadID string) (model.LoadStatus, error) {
	c.mu.Lock()
	rec, ok := c.loads[loadID]
	c.mu.Unlock()
	if !ok {
		return model.LoadStatus{}, fmt.Errorf("%w: %s", ErrLoadNotFound, loadID)
	}

	select {
	case <-ctx.Done():
		return model.LoadStatus{}, ctx.Err()
	case <-rec.done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return rec.status, nil
}
