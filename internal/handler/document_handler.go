package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/internal/service"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
	"github.com/ouerghi-selim/merelformation-api/pkg/response"
)

// DocumentHandler exposes the document review endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List godoc
// @Summary List documents of an entity
// @Tags Documents
// @Produce json
// @Param entityId query string false "Parent entity ID"
// @Param workflow query string false "Workflow (enrollment or rental)"
// @Param state query string false "Review state filter"
// @Success 200 {object} response.Envelope
// @Router /admin/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter := models.DocumentFilter{
		EntityID: c.Query("entityId"),
		Workflow: models.WorkflowKind(c.Query("workflow")),
		State:    models.DocumentState(c.Query("state")),
	}
	documents, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documents, nil)
}

// Validate godoc
// @Summary Validate a pending document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /admin/documents/{id}/validate [put]
func (h *DocumentHandler) Validate(c *gin.Context) {
	reviewer := "system"
	if claims := claimsFromContext(c); claims != nil {
		reviewer = claims.Email
	}
	document, err := h.documents.Validate(c.Request.Context(), c.Param("id"), reviewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document, nil)
}

// Reject godoc
// @Summary Reject a pending document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body service.RejectDocumentRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /admin/documents/{id}/reject [put]
func (h *DocumentHandler) Reject(c *gin.Context) {
	var req service.RejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reviewer := "system"
	if claims := claimsFromContext(c); claims != nil {
		reviewer = claims.Email
	}
	document, err := h.documents.Reject(c.Request.Context(), c.Param("id"), reviewer, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document, nil)
}
