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

// AuditRepository handles the append-only status transition trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, entity_id, workflow, old_status, new_status, actor, template_key, notified, created_at`

// Create appends one transition record. ID and CreatedAt are filled in when
// missing.
func (r *AuditRepository) Create(ctx context.Context, audit *models.StatusAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO status_audits (id, entity_id, workflow, old_status, new_status, actor, template_key, notified, created_at)
        VALUES (:id, :entity_id, :workflow, :old_status, :new_status, :actor, :template_key, :notified, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, audit); err != nil {
		return fmt.Errorf("create status audit: %w", err)
	}
	return nil
}

// SetTemplateKey records which template served the transition's notification.
func (r *AuditRepository) SetTemplateKey(ctx context.Context, auditID, templateKey string) error {
	const query = `UPDATE status_audits SET template_key = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, auditID, templateKey); err != nil {
		return fmt.Errorf("set audit template key: %w", err)
	}
	return nil
}

// MarkNotified flips the notified flag after confirmed delivery.
func (r *AuditRepository) MarkNotified(ctx context.Context, auditID string) error {
	const query = `UPDATE status_audits SET notified = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, auditID); err != nil {
		return fmt.Errorf("mark audit notified: %w", err)
	}
	return nil
}

// List returns audit rows matching the filter, with the total count for
// pagination.
func (r *AuditRepository) List(ctx context.Context, filter models.StatusAuditFilter) ([]models.StatusAudit, int, error) {
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
	if filter.Actor != "" {
		conditions = append(conditions, fmt.Sprintf("actor = $%d", len(args)+1))
		args = append(args, filter.Actor)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM status_audits%s ORDER BY created_at %s LIMIT %d OFFSET %d",
		auditColumns, clause, order, size, offset)
	var audits []models.StatusAudit
	if err := r.db.SelectContext(ctx, &audits, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list status audits: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM status_audits%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count status audits: %w", err)
	}
	return audits, total, nil
}
