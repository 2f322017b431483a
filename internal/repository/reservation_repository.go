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

// ReservationRepository handles persistence of session reservations.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository constructs the repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationDetailColumns = `r.id, r.user_id, r.session_id, r.status, r.notes, r.submitted_at, r.updated_at,
        u.first_name AS client_first_name, u.last_name AS client_last_name, u.email AS client_email, u.phone AS client_phone,
        f.title AS formation_title, s.start_date AS session_start_date, s.location AS session_location, s.price AS session_price`

const reservationDetailJoins = `FROM session_reservations r
JOIN users u ON u.id = r.user_id
JOIN sessions s ON s.id = r.session_id
JOIN formations f ON f.id = s.formation_id`

// List returns reservations with client and session context for the admin
// listing, filtered and paginated.
func (r *ReservationRepository) List(ctx context.Context, filter models.SessionReservationFilter) ([]models.SessionReservationDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d OR f.title ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"submitted_at": "r.submitted_at",
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
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, reservationDetailColumns, reservationDetailJoins+clause, orderBy, order, size, offset)

	var reservations []models.SessionReservationDetail
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", reservationDetailJoins+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}
	return reservations, total, nil
}

// FindByID returns a reservation by its ID.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*models.SessionReservation, error) {
	const query = `SELECT id, user_id, session_id, status, notes, submitted_at, updated_at FROM session_reservations WHERE id = $1`
	var reservation models.SessionReservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindDetailByID returns a reservation with client and session context.
func (r *ReservationRepository) FindDetailByID(ctx context.Context, id string) (*models.SessionReservationDetail, error) {
	query := fmt.Sprintf(`SELECT %s
        %s
        WHERE r.id = $1`, reservationDetailColumns, reservationDetailJoins)
	var detail models.SessionReservationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetStatus returns the stored status of a reservation.
func (r *ReservationRepository) GetStatus(ctx context.Context, id string) (models.Status, error) {
	const query = `SELECT status FROM session_reservations WHERE id = $1`
	var status models.Status
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return "", err
	}
	return status, nil
}

// UpdateStatusIf advances the status only when the stored value still equals
// from. A false return means a concurrent writer won.
func (r *ReservationRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.Status) (bool, error) {
	const query = `UPDATE session_reservations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update reservation status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update reservation status: %w", err)
	}
	return affected == 1, nil
}

// Create persists a new reservation in the submitted status.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.SessionReservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reservation.SubmittedAt.IsZero() {
		reservation.SubmittedAt = now
	}
	reservation.UpdatedAt = now
	if reservation.Status == "" {
		reservation.Status = models.StatusSubmitted
	}
	const query = `INSERT INTO session_reservations (id, user_id, session_id, status, notes, submitted_at, updated_at)
        VALUES (:id, :user_id, :session_id, :status, :notes, :submitted_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reservation); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}
