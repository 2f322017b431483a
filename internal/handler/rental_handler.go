package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/internal/service"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
	"github.com/ouerghi-selim/merelformation-api/pkg/response"
)

// RentalHandler exposes vehicle rental endpoints.
type RentalHandler struct {
	rentals    *service.RentalService
	dispatcher *service.NotificationDispatcher
}

// NewRentalHandler constructs RentalHandler.
func NewRentalHandler(rentals *service.RentalService, dispatcher *service.NotificationDispatcher) *RentalHandler {
	return &RentalHandler{rentals: rentals, dispatcher: dispatcher}
}

// List godoc
// @Summary List vehicle rentals
// @Tags Rentals
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search client name, email or vehicle"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/rentals [get]
func (h *RentalHandler) List(c *gin.Context) {
	var filter models.VehicleRentalFilter
	filter.Status = models.Status(c.Query("status"))
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	rentals, pagination, err := h.rentals.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rentals, pagination)
}

// Get godoc
// @Summary Get one rental
// @Tags Rentals
// @Produce json
// @Param id path string true "Rental ID"
// @Success 200 {object} response.Envelope
// @Router /admin/rentals/{id} [get]
func (h *RentalHandler) Get(c *gin.Context) {
	rental, err := h.rentals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rental, nil)
}

// Transitions godoc
// @Summary List allowed next statuses for a rental
// @Tags Rentals
// @Produce json
// @Param id path string true "Rental ID"
// @Success 200 {object} response.Envelope
// @Router /admin/rentals/{id}/transitions [get]
func (h *RentalHandler) Transitions(c *gin.Context) {
	options, err := h.rentals.AllowedTransitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// UpdateStatus godoc
// @Summary Change the status of a rental
// @Tags Rentals
// @Accept json
// @Produce json
// @Param id path string true "Rental ID"
// @Param payload body UpdateStatusRequest true "Status change payload"
// @Success 200 {object} response.Envelope
// @Router /admin/rentals/{id}/status [put]
func (h *RentalHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	actor := "system"
	if claims := claimsFromContext(c); claims != nil {
		actor = claims.Email
	}

	result, err := h.dispatcher.Transition(c.Request.Context(), service.TransitionRequest{
		EntityID:      c.Param("id"),
		Workflow:      models.WorkflowRental,
		NewStatus:     models.Status(req.Status),
		Actor:         actor,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
