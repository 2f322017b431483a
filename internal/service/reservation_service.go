package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

type reservationRepository interface {
	List(ctx context.Context, filter models.SessionReservationFilter) ([]models.SessionReservationDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.SessionReservationDetail, error)
	GetStatus(ctx context.Context, id string) (models.Status, error)
}

// ReservationService serves the admin reservation listings and per-entity
// transition discovery. Status changes go through the dispatcher, never
// through this service.
type ReservationService struct {
	repo   reservationRepository
	logger *zap.Logger
}

// NewReservationService constructs ReservationService.
func NewReservationService(repo reservationRepository, logger *zap.Logger) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{repo: repo, logger: logger}
}

// List returns reservations with pagination metadata.
func (s *ReservationService) List(ctx context.Context, filter models.SessionReservationFilter) ([]models.SessionReservationDetail, *models.Pagination, error) {
	if filter.Status != "" && !models.KnownStatus(models.WorkflowEnrollment, filter.Status) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnknownStatus, "unknown enrollment status filter")
	}
	reservations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reservations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return reservations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single reservation with its client and session context.
func (s *ReservationService) Get(ctx context.Context, id string) (*models.SessionReservationDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	return detail, nil
}

// AllowedTransitions returns the statuses the reservation can move to from
// its current status.
func (s *ReservationService) AllowedTransitions(ctx context.Context, id string) ([]models.TransitionOption, error) {
	current, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation status")
	}
	successors, ok := models.LegalSuccessors(models.WorkflowEnrollment, current)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnknownStatus, "stored status is not part of the enrollment workflow")
	}
	options := make([]models.TransitionOption, 0, len(successors))
	for _, to := range successors {
		options = append(options, models.TransitionOption{
			To:     to,
			Label:  to.Label(),
			Guards: models.RequiredGuards(models.WorkflowEnrollment, current, to),
		})
	}
	return options, nil
}
