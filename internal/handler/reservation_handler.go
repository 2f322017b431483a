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

// UpdateStatusRequest is the payload of a status change request. The
// optional custom message travels into the notification, never into the
// stored entity.
type UpdateStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	CustomMessage *string `json:"custom_message"`
}

// ReservationHandler exposes session reservation endpoints.
type ReservationHandler struct {
	reservations *service.ReservationService
	dispatcher   *service.NotificationDispatcher
}

// NewReservationHandler constructs ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService, dispatcher *service.NotificationDispatcher) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, dispatcher: dispatcher}
}

// List godoc
// @Summary List session reservations
// @Tags Reservations
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search client name, email or formation"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	var filter models.SessionReservationFilter
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

	reservations, pagination, err := h.reservations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, pagination)
}

// Get godoc
// @Summary Get one reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /admin/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	reservation, err := h.reservations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Transitions godoc
// @Summary List allowed next statuses for a reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /admin/reservations/{id}/transitions [get]
func (h *ReservationHandler) Transitions(c *gin.Context) {
	options, err := h.reservations.AllowedTransitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// UpdateStatus godoc
// @Summary Change the status of a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param payload body UpdateStatusRequest true "Status change payload"
// @Success 200 {object} response.Envelope
// @Router /admin/reservations/{id}/status [put]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
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
		Workflow:      models.WorkflowEnrollment,
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
