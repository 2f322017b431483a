package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
)

// DocumentRepository handles persistence of uploaded documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, entity_id, workflow, type, file_name, required, state, validated_by, validated_at, rejection_reason, uploaded_at`

// FindByID returns a document by its ID.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentColumns)
	var document models.Document
	if err := r.db.GetContext(ctx, &document, query, id); err != nil {
		return nil, err
	}
	return &document, nil
}

// List returns documents matching the filter, newest upload first.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	var conditions []string
	var args []interface{}

	if filter.EntityID != "" {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)+1))
		args = append(args, filter.EntityID)
	}
	if filter.Workflow != "" {
		conditions = append(conditions, fmt.Sprintf("workflow = $%d", len(args)+1))
		args = append(args, filter.Workflow)
	}
	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("state = $%d", len(args)+1))
		args = append(args, filter.State)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM documents%s ORDER BY uploaded_at DESC", documentColumns, clause)
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// Create persists a freshly uploaded document in the pending state.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	if document.UploadedAt.IsZero() {
		document.UploadedAt = time.Now().UTC()
	}
	if document.State == "" {
		document.State = models.DocumentPending
	}
	const query = `INSERT INTO documents (id, entity_id, workflow, type, file_name, required, state, validated_by, validated_at, rejection_reason, uploaded_at)
        VALUES (:id, :entity_id, :workflow, :type, :file_name, :required, :state, :validated_by, :validated_at, :rejection_reason, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// UpdateReview records the review verdict for a document.
func (r *DocumentRepository) UpdateReview(ctx context.Context, id string, state models.DocumentState, reviewer string, reason *string, reviewedAt time.Time) error {
	const query = `UPDATE documents SET state = $2, validated_by = $3, validated_at = $4, rejection_reason = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, state, reviewer, reviewedAt, reason); err != nil {
		return fmt.Errorf("update document review: %w", err)
	}
	return nil
}

// CountRequiredNotValidated counts required documents of the entity that are
// not yet validated.
func (r *DocumentRepository) CountRequiredNotValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (int, error) {
	const query = `SELECT COUNT(*) FROM documents WHERE workflow = $1 AND entity_id = $2 AND required = TRUE AND state <> $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, workflow, entityID, models.DocumentValidated); err != nil {
		return 0, fmt.Errorf("count pending documents: %w", err)
	}
	return count, nil
}
