package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/AnTengye/contractreview/backend/middleware"
	"github.com/AnTengye/contractreview/backend/model"
	"github.com/AnTengye/contractreview/backend/service"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed on top of the file size for form
// boundaries and headers
const multipartOverhead = 1 << 20

type ContractHandler struct {
	registry       *service.WorkspaceRegistry
	maxUploadBytes int64
}

func NewContractHandler(registry *service.WorkspaceRegistry, maxUploadBytes int64) *ContractHandler {
	return &ContractHandler{registry: registry, maxUploadBytes: maxUploadBytes}
}

// workspace returns the caller's workspace, resolving it when the
// Workspace middleware is not installed
func (h *ContractHandler) workspace(c *gin.Context) *service.Workspace {
	if ws := middleware.GetWorkspace(c); ws != nil {
		return ws
	}
	return h.registry.Get(tenantOf(c))
}

func tenantOf(c *gin.Context) string {
	if tenant := middleware.GetTenant(c); tenant != "" {
		return tenant
	}
	return middleware.DefaultTenant
}

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrFileTooLarge), errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrUnsupportedFileType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrEmptyFile), errors.Is(err, model.ErrInvalidContract):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSuggestionNotFound), errors.Is(err, service.ErrLoadNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, service.ErrNoContract),
		errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// Upload accepts a contract document and starts loading it in the background
func (h *ContractHandler) Upload(c *gin.Context) {
	ws := h.workspace(c)

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, service.ErrFileTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		respondError(c, service.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	status, err := ws.Loads.Submit(c.Request.Context(), service.Upload{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"load_id":   status.LoadID,
		"filename":  status.Filename,
		"mime_type": status.MIMEType,
		"status":    status.State,
	})
}

// LoadStatus reports the most recent upload of the workspace
func (h *ContractHandler) LoadStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace(c).Loads.Status())
}

// Contract returns the loaded contract
func (h *ContractHandler) Contract(c *gin.Context) {
	contract, ok := h.workspace(c).Selection.CurrentContract()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No contract loaded"})
		return
	}
	c.JSON(http.StatusOK, contract)
}

// Report returns the whole-document analysis; ?risk=high keeps only high
// risk clauses
func (h *ContractHandler) Report(c *gin.Context) {
	ws := h.workspace(c)
	contract, ok := ws.Selection.CurrentContract()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No contract loaded"})
		return
	}

	report := service.BuildReport(contract, ws.Annotations)
	if c.Query("risk") == string(model.RiskHigh) {
		report.Analysis = report.HighRisk()
	}
	c.JSON(http.StatusOK, report)
}

// clause resolves :id against the loaded contract
func (h *ContractHandler) clause(c *gin.Context) (*service.Workspace, model.Clause, bool) {
	ws := h.workspace(c)
	contract, ok := ws.Selection.CurrentContract()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No contract loaded"})
		return nil, model.Clause{}, false
	}
	clause, ok := contract.Clause(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clause not found"})
		return nil, model.Clause{}, false
	}
	return ws, clause, true
}

// ClauseSuggestions lists edit suggestions of a clause with their decisions
func (h *ContractHandler) ClauseSuggestions(c *gin.Context) {
	ws, clause, ok := h.clause(c)
	if !ok {
		return
	}

	items := make([]service.SuggestionItem, 0)
	for _, s := range ws.Annotations.SuggestionsFor(clause.ID) {
		status, err := ws.Annotations.SuggestionStatus(s.ID)
		if err != nil {
			status = model.SuggestionPending
		}
		items = append(items, service.SuggestionItem{EditSuggestion: s, Status: status})
	}
	c.JSON(http.StatusOK, gin.H{"clause_id": clause.ID, "suggestions": items})
}

// ClauseArguments lists predicted counterparty arguments of a clause
func (h *ContractHandler) ClauseArguments(c *gin.Context) {
	ws, clause, ok := h.clause(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"clause_id": clause.ID, "arguments": ws.Annotations.ArgumentsFor(clause.ID)})
}

// ClauseReferences lists legal references of a clause
func (h *ContractHandler) ClauseReferences(c *gin.Context) {
	ws, clause, ok := h.clause(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"clause_id": clause.ID, "references": ws.Annotations.ReferencesFor(clause.ID)})
}

type SelectRequest struct {
	ClauseID string `json:"clause_id" binding:"required"`
}

// Select makes a clause of the loaded contract the current selection
func (h *ContractHandler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	clause, err := h.workspace(c).Selection.SelectClause(c.Request.Context(), req.ClauseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    service.StateLoadedSelected,
		"selected": true,
		"analysis": service.DescribeClause(clause),
	})
}

// Selection returns the selection state and the analysis of the selected
// clause, if any
func (h *ContractHandler) Selection(c *gin.Context) {
	snap := h.workspace(c).Selection.Snapshot()
	if snap.Clause == nil {
		c.JSON(http.StatusOK, gin.H{
			"state":    snap.State,
			"selected": false,
			"prompt":   service.SelectClausePrompt,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":    snap.State,
		"selected": true,
		"analysis": service.DescribeClause(*snap.Clause),
	})
}

// SelectionSuggestions renders the edit suggestion panel
func (h *ContractHandler) SelectionSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace(c).Suggestions.Render())
}

// SelectionArguments renders the negotiation simulator panel
func (h *ContractHandler) SelectionArguments(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace(c).Arguments.Render())
}

// Accept records that the reviewer accepted a suggestion
func (h *ContractHandler) Accept(c *gin.Context) {
	h.decide(c, model.SuggestionAccepted)
}

// Reject records that the reviewer rejected a suggestion
func (h *ContractHandler) Reject(c *gin.Context) {
	h.decide(c, model.SuggestionRejected)
}

func (h *ContractHandler) decide(c *gin.Context, next model.SuggestionStatus) {
	id := c.Param("id")
	status, err := h.workspace(c).Annotations.Decide(id, next)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// CloseWorkspace discards the caller's workspace: the loaded contract, the
// selection and all decisions. The next request starts from an empty one.
func (h *ContractHandler) CloseWorkspace(c *gin.Context) {
	tenant := tenantOf(c)
	if _, ok := h.registry.Lookup(tenant); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No workspace"})
		return
	}

	h.registry.Delete(tenant)

	c.JSON(http.StatusOK, gin.H{"message": "Workspace closed"})
}
