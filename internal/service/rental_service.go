package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

type rentalRepository interface {
	List(ctx context.Context, filter models.VehicleRentalFilter) ([]models.VehicleRentalDetail, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.VehicleRentalDetail, error)
	GetStatus(ctx context.Context, id string) (models.Status, error)
}

// RentalService serves the admin rental listings and per-entity transition
// discovery.
type RentalService struct {
	repo   rentalRepository
	logger *zap.Logger
}

// NewRentalService constructs RentalService.
func NewRentalService(repo rentalRepository, logger *zap.Logger) *RentalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalService{repo: repo, logger: logger}
}

// List returns rentals with pagination metadata.
func (s *RentalService) List(ctx context.Context, filter models.VehicleRentalFilter) ([]models.VehicleRentalDetail, *models.Pagination, error) {
	if filter.Status != "" && !models.KnownStatus(models.WorkflowRental, filter.Status) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnknownStatus, "unknown rental status filter")
	}
	rentals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rentals")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return rentals, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single rental with its client and vehicle context.
func (s *RentalService) Get(ctx context.Context, id string) (*models.VehicleRentalDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rental not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rental")
	}
	return detail, nil
}

// AllowedTransitions returns the statuses the rental can move to from its
// current status.
func (s *RentalService) AllowedTransitions(ctx context.Context, id string) ([]models.TransitionOption, error) {
	current, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rental not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rental status")
	}
	successors, ok := models.LegalSuccessors(models.WorkflowRental, current)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnknownStatus, "stored status is not part of the rental workflow")
	}
	options := make([]models.TransitionOption, 0, len(successors))
	for _, to := range successors {
		options = append(options, models.TransitionOption{
			To:     to,
			Label:  to.Label(),
			Guards: models.RequiredGuards(models.WorkflowRental, current, to),
		})
	}
	return options, nil
}
