package models

import "time"

// SessionReservation is a training-session enrollment request. Its status
// follows the enrollment workflow catalog.
type SessionReservation struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Status      Status    `db:"status" json:"status"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SessionReservationDetail enriches a reservation with the client and
// formation columns the notification context and admin listings need.
type SessionReservationDetail struct {
	SessionReservation
	ClientFirstName  string    `db:"client_first_name" json:"client_first_name"`
	ClientLastName   string    `db:"client_last_name" json:"client_last_name"`
	ClientEmail      string    `db:"client_email" json:"client_email"`
	ClientPhone      *string   `db:"client_phone" json:"client_phone,omitempty"`
	FormationTitle   string    `db:"formation_title" json:"formation_title"`
	SessionStartDate time.Time `db:"session_start_date" json:"session_start_date"`
	SessionLocation  string    `db:"session_location" json:"session_location"`
	SessionPrice     string    `db:"session_price" json:"session_price"`
}

// SessionReservationFilter filters admin reservation listings.
type SessionReservationFilter struct {
	Status    Status
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
