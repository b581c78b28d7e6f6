package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driftfly/driftfly-backend/internal/http/response"
	"github.com/driftfly/driftfly-backend/internal/pkg/logger"
	"github.com/driftfly/driftfly-backend/internal/platform/apierr"
	"github.com/driftfly/driftfly-backend/internal/services"
)

// ExtractionHandler exposes the review workflow over staged
// extractions: the queue listing, the approve/reject decisions and the
// approve-and-ingest trigger.
type ExtractionHandler struct {
	log    *logger.Logger
	review services.ReviewService
}

func NewExtractionHandler(log *logger.Logger, review services.ReviewService) *ExtractionHandler {
	return &ExtractionHandler{
		log:    log.With("handler", "ExtractionHandler"),
		review: review,
	}
}

type reviewRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// GET /api/extractions?status=&limit=&offset=
func (h *ExtractionHandler) ListExtractions(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	rows, err := h.review.ListExtractions(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"extractions": rows})
}

// GET /api/extractions/:id
func (h *ExtractionHandler) GetExtraction(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	row, err := h.review.GetExtraction(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /api/extractions/:id/approve
func (h *ExtractionHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	req, ok := h.reviewBody(c)
	if !ok {
		return
	}
	if err := h.review.Approve(c.Request.Context(), id, req.Notes); err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "approved"})
}

// POST /api/extractions/:id/reject
func (h *ExtractionHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	req, ok := h.reviewBody(c)
	if !ok {
		return
	}
	if err := h.review.Reject(c.Request.Context(), id, req.Notes); err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "rejected"})
}

// POST /api/extractions/:id/approve-and-ingest
func (h *ExtractionHandler) ApproveAndIngest(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	req, ok := h.reviewBody(c)
	if !ok {
		return
	}
	result, err := h.review.ApproveAndIngest(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *ExtractionHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_extraction_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ExtractionHandler) reviewBody(c *gin.Context) (reviewRequest, bool) {
	var req reviewRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
			return req, false
		}
	}
	return req, true
}

func (h *ExtractionHandler) respondServiceError(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		response.RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
		return
	}
	var ingErr *services.IngestionError
	if errors.As(err, &ingErr) {
		response.RespondError(c, http.StatusInternalServerError, "ingestion_failed", ingErr)
		return
	}
	h.log.Error("review request failed", "error", err)
	response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
}

func queryInt(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
