package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/internal/service"
	"github.com/ouerghi-selim/merelformation-api/pkg/response"
)

// AuditHandler exposes the status transition audit trail.
type AuditHandler struct {
	audits *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audits *service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List godoc
// @Summary List status transition audit records
// @Tags Audits
// @Produce json
// @Param entityId query string false "Filter by entity"
// @Param workflow query string false "Filter by workflow"
// @Param actor query string false "Filter by actor"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/audits [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.StatusAuditFilter
	filter.EntityID = c.Query("entityId")
	filter.Workflow = models.WorkflowKind(c.Query("workflow"))
	filter.Actor = c.Query("actor")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")

	audits, pagination, err := h.audits.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audits, pagination)
}

// Export godoc
// @Summary Export the audit trail as CSV or PDF
// @Tags Audits
// @Produce json
// @Param format query string true "Export format (csv or pdf)"
// @Param entityId query string false "Filter by entity"
// @Param workflow query string false "Filter by workflow"
// @Success 200 {object} response.Envelope
// @Router /admin/audits/export [post]
func (h *AuditHandler) Export(c *gin.Context) {
	filter := models.StatusAuditFilter{
		EntityID: c.Query("entityId"),
		Workflow: models.WorkflowKind(c.Query("workflow")),
		Actor:    c.Query("actor"),
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.audits.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a previously generated audit export
// @Tags Audits
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /admin/audits/export/{token} [get]
func (h *AuditHandler) Download(c *gin.Context) {
	file, err := h.audits.OpenExport(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	name := filepath.Base(file.Name())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/octet-stream")
	http.ServeContent(c.Writer, c.Request, name, fileModTime(file), file)
}

func fileModTime(file *os.File) time.Time {
	info, err := file.Stat()
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
