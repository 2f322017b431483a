package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
)

// PaymentRepository answers the paymentReceived guard from the payments
// table maintained by the billing side of the platform.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Received reports whether a completed payment exists for the entity.
func (r *PaymentRepository) Received(ctx context.Context, workflow models.WorkflowKind, entityID string) (bool, error) {
	const query = `SELECT 1 FROM payments WHERE workflow = $1 AND entity_id = $2 AND status = 'completed' LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, workflow, entityID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check payment: %w", err)
	}
	return true, nil
}
