package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AnTengye/contractreview/backend/model"
)

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	err     error
}

func (a *fakeArchive) Store(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[objectName] = data
	return "http://archive/" + objectName, nil
}

func (a *fakeArchive) Remove(ctx context.Context, objectName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, objectName)
	a.removed = append(a.removed, objectName)
	return nil
}

func (a *fakeArchive) stored(objectName string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objects[objectName]
	return ok
}

func pdfUpload(name string) Upload {
	return Upload{Filename: name, MIMEType: MIMETypePDF, Data: samplePDF}
}

func waitLoad(t *testing.T, c *LoadCoordinator, loadID string) model.LoadStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := c.Wait(ctx, loadID)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return status
}

func TestLoadCoordinatorSubmit(t *testing.T) {
	ctrl := NewSelectionController()
	archive := &fakeArchive{}
	c := NewLoadCoordinator("acme", FixtureLoader{}, UploadValidator{MaxBytes: 1 << 20}, ctrl, archive)

	if c.Status().State != model.LoadIdle {
		t.Errorf("Expected idle before any upload, got %s", c.Status().State)
	}

	started, err := c.Submit(context.Background(), pdfUpload("nda.pdf"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if started.State != model.LoadProcessing || started.LoadID == "" {
		t.Errorf("Unexpected initial status %+v", started)
	}

	status := waitLoad(t, c, started.LoadID)
	if status.State != model.LoadCompleted {
		t.Fatalf("Expected completed, got %s (%s)", status.State, status.ErrorMsg)
	}
	if status.ContractID != "1" {
		t.Errorf("Expected contract 1, got %s", status.ContractID)
	}
	if !strings.HasSuffix(status.ArchiveURL, "acme/"+started.LoadID+"/nda.pdf") {
		t.Errorf("Unexpected archive url %s", status.ArchiveURL)
	}
	if ctrl.State() != StateLoadedNoSelection {
		t.Errorf("Expected contract to be loaded, got state %s", ctrl.State())
	}
	if c.Status().LoadID != started.LoadID {
		t.Error("Expected Status to report the latest load")
	}
}

func TestLoadCoordinatorRejectsInvalidUpload(t *testing.T) {
	ctrl := loadedController(t)
	ctrl.SelectClause(context.Background(), "c2")
	c := NewLoadCoordinator("acme", FixtureLoader{}, UploadValidator{}, ctrl, nil)

	_, err := c.Submit(context.Background(), Upload{Filename: "notes.txt", MIMEType: "text/plain", Data: []byte("hi")})
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("Expected ErrUnsupportedFileType, got %v", err)
	}
	if c.Status().State != model.LoadIdle {
		t.Errorf("Expected no load to start, got %s", c.Status().State)
	}
	if current, _ := ctrl.CurrentClause(); current.ID != "c2" {
		t.Error("Expected selection to be untouched")
	}
}

func TestLoadCoordinatorParseErrorKeepsPriorContract(t *testing.T) {
	ctrl := loadedController(t)
	ctrl.SelectClause(context.Background(), "c4")

	cause := errors.New("corrupt document")
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		return nil, cause
	})
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, ctrl, &fakeArchive{err: errors.New("archive down")})

	started, err := c.Submit(context.Background(), pdfUpload("broken.pdf"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	status := waitLoad(t, c, started.LoadID)
	if status.State != model.LoadFailed {
		t.Fatalf("Expected failed, got %s", status.State)
	}
	if !strings.Contains(status.ErrorMsg, "corrupt document") {
		t.Errorf("Expected cause in error message, got %q", status.ErrorMsg)
	}
	if status.ArchiveURL != "" {
		t.Error("Expected no archive url when archiving fails")
	}

	contract, _ := ctrl.CurrentContract()
	if contract.ID != "1" {
		t.Error("Expected prior contract to be preserved")
	}
	if current, _ := ctrl.CurrentClause(); current.ID != "c4" {
		t.Error("Expected prior selection to be preserved")
	}
}

func TestLoadCoordinatorInvalidContractFails(t *testing.T) {
	ctrl := NewSelectionController()
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		return &model.Contract{ID: "dup", Parties: []string{"A"}, Clauses: []model.Clause{
			{ID: "x", Risk: model.RiskLow},
			{ID: "x", Risk: model.RiskHigh},
		}}, nil
	})
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, ctrl, nil)

	started, _ := c.Submit(context.Background(), pdfUpload("dup.pdf"))
	status := waitLoad(t, c, started.LoadID)
	if status.State != model.LoadFailed {
		t.Fatalf("Expected failed, got %s", status.State)
	}
	if ctrl.State() != StateEmpty {
		t.Errorf("Expected controller to stay empty, got %s", ctrl.State())
	}
}

func TestLoadCoordinatorSupersedesInFlightLoad(t *testing.T) {
	ctrl := NewSelectionController()

	first := make(chan struct{})
	var calls int
	var mu sync.Mutex
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			// Ignore cancellation to simulate a completion racing the newer load
			<-first
			contract := FixtureContract()
			contract.ID = "stale"
			return contract, nil
		}
		contract := FixtureContract()
		contract.ID = "fresh"
		return contract, nil
	})
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, ctrl, nil)
	ctx := context.Background()

	one, err := c.Submit(ctx, pdfUpload("one.pdf"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Make sure the first load is running before the second arrives
	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("First load never started")
		}
		time.Sleep(time.Millisecond)
	}

	two, err := c.Submit(ctx, pdfUpload("two.pdf"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if status := waitLoad(t, c, one.LoadID); status.State != model.LoadSuperseded {
		t.Errorf("Expected first load superseded, got %s", status.State)
	}
	if status := waitLoad(t, c, two.LoadID); status.State != model.LoadCompleted {
		t.Fatalf("Expected second load completed, got %s", status.State)
	}

	close(first)
	time.Sleep(20 * time.Millisecond)

	contract, _ := ctrl.CurrentContract()
	if contract.ID != "fresh" {
		t.Errorf("Expected newest contract to win, got %s", contract.ID)
	}
	if c.Status().LoadID != two.LoadID {
		t.Error("Expected Status to track the newest load")
	}
}

func TestLoadCoordinatorCancelsSupersededLoader(t *testing.T) {
	ctrl := NewSelectionController()

	cancelled := make(chan struct{})
	var calls int
	var mu sync.Mutex
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return FixtureContract(), nil
	})
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, ctrl, nil)
	ctx := context.Background()

	one, _ := c.Submit(ctx, pdfUpload("slow.pdf"))
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	two, _ := c.Submit(ctx, pdfUpload("fast.pdf"))

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected superseded loader to observe cancellation")
	}

	if status := waitLoad(t, c, one.LoadID); status.State != model.LoadSuperseded {
		t.Errorf("Expected superseded, got %s", status.State)
	}
	if status := waitLoad(t, c, two.LoadID); status.State != model.LoadCompleted {
		t.Errorf("Expected completed, got %s", status.State)
	}
}

func TestLoadCoordinatorWaitUnknown(t *testing.T) {
	c := NewLoadCoordinator("acme", FixtureLoader{}, UploadValidator{}, NewSelectionController(), nil)
	if _, err := c.Wait(context.Background(), "nope"); !errors.Is(err, ErrLoadNotFound) {
		t.Errorf("Expected ErrLoadNotFound, got %v", err)
	}
}

func TestLoadCoordinatorHistoryIsBounded(t *testing.T) {
	c := NewLoadCoordinator("acme", FixtureLoader{}, UploadValidator{}, NewSelectionController(), nil)
	ctx := context.Background()

	var last string
	for i := 0; i < maxLoadHistory+5; i++ {
		status, err := c.Submit(ctx, pdfUpload("n.pdf"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		waitLoad(t, c, status.LoadID)
		last = status.LoadID
	}

	c.mu.Lock()
	n := len(c.loads)
	c.mu.Unlock()
	if n > maxLoadHistory {
		t.Errorf("Expected at most %d tracked loads, got %d", maxLoadHistory, n)
	}
	if c.Status().LoadID != last {
		t.Error("Expected latest load to remain tracked")
	}
}

func TestLoadCoordinatorObserversMayCallBack(t *testing.T) {
	ctrl := NewSelectionController()
	store := NewFixtureAnnotationStore()
	c := NewLoadCoordinator("acme", FixtureLoader{}, UploadValidator{}, ctrl, nil)

	seen := make(chan model.LoadStatus, 1)
	NewSuggestionView(ctrl, store).Watch(func(SuggestionPanel) {
		seen <- c.Status()
	})

	started, err := c.Submit(context.Background(), pdfUpload("nda.pdf"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	select {
	case status := <-seen:
		if status.LoadID != started.LoadID {
			t.Errorf("Expected observer to see load %s, got %+v", started.LoadID, status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Observer never ran or blocked on the coordinator")
	}
	if status := waitLoad(t, c, started.LoadID); status.State != model.LoadCompleted {
		t.Errorf("Expected completed, got %s", status.State)
	}
}

func TestLoadCoordinatorRemovesArchiveOnFailure(t *testing.T) {
	archive := &fakeArchive{}
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		return nil, errors.New("corrupt document")
	})
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, NewSelectionController(), archive)

	started, _ := c.Submit(context.Background(), pdfUpload("broken.pdf"))
	if status := waitLoad(t, c, started.LoadID); status.State != model.LoadFailed {
		t.Fatalf("Expected failed, got %s", status.State)
	}

	object := ObjectName("acme", started.LoadID, "broken.pdf")
	// Removal happens after the record is finished
	deadline := time.Now().Add(5 * time.Second)
	for archive.stored(object) {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %s to be removed from the archive", object)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoadCoordinatorRemovesArchiveOfSupersededLoad(t *testing.T) {
	archive := &fakeArchive{}
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-release
		}
		return FixtureContract(), nil
	})
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, NewSelectionController(), archive)
	ctx := context.Background()

	one, _ := c.Submit(ctx, pdfUpload("one.pdf"))
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	two, _ := c.Submit(ctx, pdfUpload("two.pdf"))
	waitLoad(t, c, two.LoadID)
	close(release)

	stale := ObjectName("acme", one.LoadID, "one.pdf")
	deadline := time.Now().Add(5 * time.Second)
	for archive.stored(stale) {
		if time.Now().After(deadline) {
			t.Fatalf("Expected superseded upload %s to be removed", stale)
		}
		time.Sleep(time.Millisecond)
	}
	if !archive.stored(ObjectName("acme", two.LoadID, "two.pdf")) {
		t.Error("Expected the current upload to stay archived")
	}
}

func TestLoadCoordinatorStop(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ctrl := NewSelectionController()
	c := NewLoadCoordinator("acme", loader, UploadValidator{}, ctrl, nil)

	started, _ := c.Submit(context.Background(), pdfUpload("slow.pdf"))
	c.Stop()

	status := waitLoad(t, c, started.LoadID)
	if status.State != model.LoadFailed || !strings.Contains(status.ErrorMsg, "canceled") {
		t.Errorf("Expected cancelled load to fail, got %s (%s)", status.State, status.ErrorMsg)
	}
	if ctrl.State() != StateEmpty {
		t.Errorf("Expected no contract after stop, got %s", ctrl.State())
	}
}
