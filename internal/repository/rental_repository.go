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

// RentalRepository handles persistence of vehicle rentals.
type RentalRepository struct {
	db *sqlx.DB
}

// NewRentalRepository constructs the repository.
func NewRentalRepository(db *sqlx.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

const rentalDetailColumns = `r.id, r.user_id, r.vehicle_id, r.status, r.exam_center, r.pickup_place, r.start_date, r.end_date,
        r.total_price, r.notes, r.submitted_at, r.updated_at,
        u.first_name AS client_first_name, u.last_name AS client_last_name, u.email AS client_email, u.phone AS client_phone,
        v.model AS vehicle_model, v.plate AS vehicle_plate`

const rentalDetailJoins = `FROM vehicle_rentals r
JOIN users u ON u.id = r.user_id
JOIN vehicles v ON v.id = r.vehicle_id`

// List returns rentals with client and vehicle context, filtered and
// paginated.
func (r *RentalRepository) List(ctx context.Context, filter models.VehicleRentalFilter) ([]models.VehicleRentalDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d OR v.model ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"submitted_at": "r.submitted_at",
		"start_date":   "r.start_date",
		"status":       "r.status",
		"client_name":  "u.last_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "r.submitted_at"
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
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, rentalDetailColumns, rentalDetailJoins+clause, orderBy, order, size, offset)

	var rentals []models.VehicleRentalDetail
	if err := r.db.SelectContext(ctx, &rentals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rentals: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", rentalDetailJoins+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rentals: %w", err)
	}
	return rentals, total, nil
}

// FindByID returns a rental by its ID.
func (r *RentalRepository) FindByID(ctx context.Context, id string) (*models.VehicleRental, error) {
	const query = `SELECT id, user_id, vehicle_id, status, exam_center, pickup_place, start_date, end_date, total_price, notes, submitted_at, updated_at
        FROM vehicle_rentals WHERE id = $1`
	var rental models.VehicleRental
	if err := r.db.GetContext(ctx, &rental, query, id); err != nil {
		return nil, err
	}
	return &rental, nil
}

// FindDetailByID returns a rental with client and vehicle context.
func (r *RentalRepository) FindDetailByID(ctx context.Context, id string) (*models.VehicleRentalDetail, error) {
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE r.id = $1`, rentalDetailColumns, rentalDetailJoins)
	var detail models.VehicleRentalDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetStatus returns the stored status of a rental.
func (r *RentalRepository) GetStatus(ctx context.Context, id string) (models.Status, error) {
	const query = `SELECT status FROM vehicle_rentals WHERE id = $1`
	var status models.Status
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return "", err
	}
	return status, nil
}

// UpdateStatusIf advances the status only when the stored value still equals
// from. A false return means a concurrent writer won.
func (r *RentalRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.Status) (bool, error) {
	const query = `UPDATE vehicle_rentals SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update rental status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update rental status: %w", err)
	}
	return affected == 1, nil
}

// Create persists a new rental in the submitted status.
func (r *RentalRepository) Create(ctx context.Context, rental *models.VehicleRental) error {
	if rental.ID == "" {
		rental.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rental.SubmittedAt.IsZero() {
		rental.SubmittedAt = now
	}
	rental.UpdatedAt = now
	if rental.Status == "" {
		rental.Status = models.StatusSubmitted
	}
	const query = `INSERT INTO vehicle_rentals (id, user_id, vehicle_id, status, exam_center, pickup_place, start_date, end_date, total_price, notes, submitted_at, updated_at)
        VALUES (:id, :user_id, :vehicle_id, :status, :exam_center, :pickup_place, :start_date, :end_date, :total_price, :notes, :submitted_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rental); err != nil {
		return fmt.Errorf("create rental: %w", err)
	}
	return nil
}
