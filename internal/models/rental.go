package models

import "time"

// VehicleRental is an exam-vehicle rental request. Its status follows the
// rental workflow catalog.
type VehicleRental struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	VehicleID   string    `db:"vehicle_id" json:"vehicle_id"`
	Status      Status    `db:"status" json:"status"`
	ExamCenter  string    `db:"exam_center" json:"exam_center"`
	PickupPlace string    `db:"pickup_place" json:"pickup_place"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	TotalPrice  string    `db:"total_price" json:"total_price"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// VehicleRentalDetail enriches a rental with client and vehicle columns.
type VehicleRentalDetail struct {
	VehicleRental
	ClientFirstName string  `db:"client_first_name" json:"client_first_name"`
	ClientLastName  string  `db:"client_last_name" json:"client_last_name"`
	ClientEmail     string  `db:"client_email" json:"client_email"`
	ClientPhone     *string `db:"client_phone" json:"client_phone,omitempty"`
	VehicleModel    string  `db:"vehicle_model" json:"vehicle_model"`
	VehiclePlate    string  `db:"vehicle_plate" json:"vehicle_plate"`
}

// VehicleRentalFilter filters admin rental listings.
type VehicleRentalFilter struct {
	Status    Status
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
