package handler

import (
	"net/http"

	"github.com/gabito1451/Aframp/internal/adapter/http/dto"
	"github.com/gabito1451/Aframp/internal/core/domain"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/pkg/apperror"
	"github.com/gabito1451/Aframp/pkg/response"

	"github.com/gin-gonic/gin"
)

// DraftHandler handles form draft persistence endpoints.
type DraftHandler struct {
	drafts ports.DraftStore
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(drafts ports.DraftStore) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// SaveDraft handles PUT /api/v1/drafts/:id. Saving restarts the draft's
// expiry window.
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	draft := &domain.FormDraft{Data: req.Data}
	if err := h.drafts.Save(c.Request.Context(), c.Param("id"), draft); err != nil {
		response.Error(c, apperror.ErrStorage(err))
		return
	}
	response.OK(c, dto.DraftResponse{Data: draft.Data, Timestamp: draft.Timestamp})
}

// GetDraft handles GET /api/v1/drafts/:id. A missing or expired draft is a
// 404; expired drafts are indistinguishable from never-saved ones.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrStorage(err))
		return
	}
	if draft == nil {
		response.Error(c, apperror.New("DRF_001", "draft not found", http.StatusNotFound))
		return
	}
	response.OK(c, dto.DraftResponse{Data: draft.Data, Timestamp: draft.Timestamp})
}

// DeleteDraft handles DELETE /api/v1/drafts/:id.
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, apperror.ErrStorage(err))
		return
	}
	response.NoContent(c)
}
