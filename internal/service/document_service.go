package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

type documentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	UpdateReview(ctx context.Context, id string, state models.DocumentState, reviewer string, reason *string, reviewedAt time.Time) error
	CountRequiredNotValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (int, error)
}

// RejectDocumentRequest carries the mandatory rejection reason.
type RejectDocumentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// DocumentService runs the document review sub-workflow: pending documents
// are validated or rejected exactly once; the aggregate validation state
// feeds the parent workflow's documentsValidated guard.
type DocumentService struct {
	repo      documentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs DocumentService.
func NewDocumentService(repo documentRepository, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{repo: repo, validator: validate, logger: logger}
}

// List returns the documents attached to an entity.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	documents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, nil
}

// Validate marks a pending document as validated by the reviewer.
func (s *DocumentService) Validate(ctx context.Context, id, reviewer string) (*models.Document, error) {
	return s.review(ctx, id, reviewer, models.DocumentValidated, nil)
}

// Reject marks a pending document as rejected. The reason is mandatory and
// must not be blank; the document state is untouched when validation fails.
func (s *DocumentService) Reject(ctx context.Context, id, reviewer string, req RejectDocumentRequest) (*models.Document, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rejection reason is required")
	}
	return s.review(ctx, id, reviewer, models.DocumentRejected, &req.Reason)
}

func (s *DocumentService) review(ctx context.Context, id, reviewer string, state models.DocumentState, reason *string) (*models.Document, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if document.State != models.DocumentPending {
		return nil, appErrors.Clone(appErrors.ErrDocumentFinalized, "document already reviewed, upload a new one instead")
	}
	reviewedAt := time.Now().UTC()
	if err := s.repo.UpdateReview(ctx, id, state, reviewer, reason, reviewedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document review")
	}
	document.State = state
	document.ValidatedBy = &reviewer
	document.ValidatedAt = &reviewedAt
	document.RejectionReason = reason
	s.logger.Info("document reviewed",
		zap.String("document_id", id),
		zap.String("state", string(state)),
		zap.String("reviewer", reviewer))
	return document, nil
}

// AllRequiredValidated reports whether every required document of the entity
// has been validated. Used as the documentsValidated guard input.
func (s *DocumentService) AllRequiredValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (bool, error) {
	pending, err := s.repo.CountRequiredNotValidated(ctx, workflow, entityID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check document state")
	}
	return pending == 0, nil
}
