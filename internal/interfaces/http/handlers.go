package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/entity"
)

const maxListLimit = 200

// Handlers contains all HTTP request handlers
type Handlers struct {
	backend Backend
	pricing PricingConfig
	logger  Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(backend Backend, pricing PricingConfig, logger Logger) *Handlers {
	return &Handlers{
		backend: backend,
		pricing: pricing,
		logger:  logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ActionRequest is the body of a workflow action.
type ActionRequest struct {
	Remark string `json:"remark"`
	Reason string `json:"reason"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListDocuments handles GET /api/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	var filter entity.DocumentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	filter.Kind = entity.DocumentKind(strings.ToUpper(string(filter.Kind)))
	filter.Status = entity.DocumentStatus(strings.ToUpper(string(filter.Status)))
	if filter.Kind != "" && !filter.Kind.IsValid() {
		badRequest(c, "unknown document kind "+string(filter.Kind))
		return
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		badRequest(c, "unknown document status "+string(filter.Status))
		return
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	docs, err := h.backend.Documents.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "list documents", err)
		return
	}
	if docs == nil {
		docs = []*entity.DocumentRecord{}
	}
	ok(c, http.StatusOK, docs)
}

// GetDocument handles GET /api/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	id, valid := documentID(c)
	if !valid {
		return
	}
	doc, err := h.backend.Documents.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get document", err)
		return
	}
	ok(c, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents
func (h *Handlers) CreateDocument(c *gin.Context) {
	payload, valid := bindPayload(c)
	if !valid {
		return
	}
	doc, err := h.backend.Documents.Create(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, "create document", err)
		return
	}
	h.logger.Info("Document created", "id", doc.ID, "kind", doc.Kind, "doc_no", doc.DocNo, "status", doc.Status)
	ok(c, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/:id
func (h *Handlers) UpdateDocument(c *gin.Context) {
	id, valid := documentID(c)
	if !valid {
		return
	}
	payload, valid := bindPayload(c)
	if !valid {
		return
	}
	doc, err := h.backend.Documents.Update(c.Request.Context(), id, payload)
	if err != nil {
		h.fail(c, "update document", err)
		return
	}
	ok(c, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/:id. Only drafts can be deleted.
func (h *Handlers) DeleteDocument(c *gin.Context) {
	id, valid := documentID(c)
	if !valid {
		return
	}
	deleted, err := h.backend.Documents.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "delete document", err)
		return
	}
	if !deleted {
		notFound(c, "document not found")
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// Submit handles POST /api/documents/:id/submit
func (h *Handlers) Submit(c *gin.Context) {
	h.action(c, entity.ActionSubmit, false, func(ctx context.Context, id int64, req ActionRequest) (*entity.ActionResult, error) {
		return h.backend.Workflow.Submit(ctx, id)
	})
}

// Approve handles POST /api/documents/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	h.action(c, entity.ActionApprove, false, func(ctx context.Context, id int64, req ActionRequest) (*entity.ActionResult, error) {
		return h.backend.Workflow.Approve(ctx, id, req.Remark)
	})
}

// Reject handles POST /api/documents/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	h.action(c, entity.ActionReject, true, func(ctx context.Context, id int64, req ActionRequest) (*entity.ActionResult, error) {
		return h.backend.Workflow.Reject(ctx, id, req.Reason)
	})
}

// Cancel handles POST /api/documents/:id/cancel
func (h *Handlers) Cancel(c *gin.Context) {
	h.action(c, entity.ActionCancel, true, func(ctx context.Context, id int64, req ActionRequest) (*entity.ActionResult, error) {
		return h.backend.Workflow.Cancel(ctx, id, req.Reason)
	})
}

type actionFunc func(ctx context.Context, id int64, req ActionRequest) (*entity.ActionResult, error)

// action runs one workflow action. A transition refused by the stored status
// answers 409 with the ActionResult as data.
func (h *Handlers) action(c *gin.Context, name string, needsReason bool, call actionFunc) {
	id, valid := documentID(c)
	if !valid {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if needsReason && req.Reason == "" {
		badRequest(c, "reason is required to "+strings.ToLower(name))
		return
	}

	result, err := call(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, strings.ToLower(name)+" document", err)
		return
	}
	if !result.Success {
		h.logger.Warn("Workflow action refused", "id", id, "action", name, "status", result.Status)
		c.JSON(http.StatusConflict, Response{Success: false, Data: result, Error: result.Message})
		return
	}
	h.logger.Info("Workflow action applied", "id", id, "action", name, "status", result.Status)
	ok(c, http.StatusOK, result)
}

// GetHistory handles GET /api/documents/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	if h.backend.History == nil {
		notImplemented(c, "history is not available for this backend")
		return
	}
	id, valid := documentID(c)
	if !valid {
		return
	}
	rows, err := h.backend.History.GetByDocumentID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get history", err)
		return
	}
	if rows == nil {
		rows = []*entity.DocumentHistory{}
	}
	ok(c, http.StatusOK, rows)
}

// ExportDocument handles GET /api/documents/:id/export and streams the file.
func (h *Handlers) ExportDocument(c *gin.Context) {
	if h.backend.Exporter == nil {
		notImplemented(c, "export is not configured")
		return
	}
	id, valid := documentID(c)
	if !valid {
		return
	}
	doc, err := h.backend.Documents.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "export document", err)
		return
	}

	var buf bytes.Buffer
	if err := h.backend.Exporter.Export(c.Request.Context(), doc, &buf); err != nil {
		h.fail(c, "export document", err)
		return
	}
	name := h.backend.Exporter.FileName(doc)
	if h.backend.Archive != nil {
		path, err := h.backend.Archive.Save(c.Request.Context(), string(doc.Kind), name, buf.Bytes())
		if err != nil {
			h.logger.Warn("Failed to archive export", "id", id, "error", err)
		} else {
			h.logger.Info("Export archived", "id", id, "path", path)
		}
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, h.backend.Exporter.ContentType(), buf.Bytes())
}

func bindPayload(c *gin.Context) (*entity.DocumentPayload, bool) {
	var payload entity.DocumentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return nil, false
	}
	payload.Kind = entity.DocumentKind(strings.ToUpper(string(payload.Kind)))
	if !payload.Kind.IsValid() {
		badRequest(c, "unknown document kind "+string(payload.Kind))
		return nil, false
	}
	if payload.Status != "" && !payload.Status.IsValid() {
		badRequest(c, "unknown document status "+string(payload.Status))
		return nil, false
	}
	return &payload, true
}

func documentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid document id")
		return 0, false
	}
	return id, true
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Success: false, Error: msg})
}

func notImplemented(c *gin.Context, msg string) {
	c.JSON(http.StatusNotImplemented, Response{Success: false, Error: msg})
}

// fail maps a backend error onto a status code. Unexpected errors are logged
// and answered with a generic message.
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	var verr *draft.ValidationError
	switch {
	case errors.Is(err, port.ErrNotFound):
		notFound(c, err.Error())
	case errors.Is(err, port.ErrConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Data: verr.Fields, Error: verr.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, Response{Success: false, Error: "failed to " + op + ": timed out"})
	default:
		h.logger.Error("Request failed", "op", op, "error", err, "request_id", c.GetString(ctxRequestID))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to " + op})
	}
}
