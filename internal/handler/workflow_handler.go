package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/internal/service"
	"github.com/ouerghi-selim/merelformation-api/pkg/response"
)

// WorkflowHandler exposes the status catalog discovery endpoints.
type WorkflowHandler struct {
	workflows *service.WorkflowService
}

// NewWorkflowHandler constructs WorkflowHandler.
func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

// Statuses godoc
// @Summary List every status of a workflow with its metadata
// @Tags Workflows
// @Produce json
// @Param workflow path string true "Workflow (enrollment or rental)"
// @Success 200 {object} response.Envelope
// @Router /workflows/{workflow}/statuses [get]
func (h *WorkflowHandler) Statuses(c *gin.Context) {
	infos, err := h.workflows.Statuses(c.Param("workflow"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, infos, nil)
}

// Transitions godoc
// @Summary List the statuses reachable from a given status
// @Tags Workflows
// @Produce json
// @Param workflow path string true "Workflow (enrollment or rental)"
// @Param from query string true "Origin status"
// @Success 200 {object} response.Envelope
// @Router /workflows/{workflow}/transitions [get]
func (h *WorkflowHandler) Transitions(c *gin.Context) {
	options, err := h.workflows.TransitionsFrom(c.Param("workflow"), models.Status(c.Query("from")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}
