package models

import "time"

// StatusAudit is the append-only record of one accepted status transition.
// Rows are written once when the transition commits; only the notified flag
// may flip afterwards, when delivery of the notification is confirmed.
type StatusAudit struct {
	ID          string       `db:"id" json:"id"`
	EntityID    string       `db:"entity_id" json:"entity_id"`
	Workflow    WorkflowKind `db:"workflow" json:"workflow"`
	OldStatus   Status       `db:"old_status" json:"old_status"`
	NewStatus   Status       `db:"new_status" json:"new_status"`
	Actor       string       `db:"actor" json:"actor"`
	TemplateKey *string      `db:"template_key" json:"template_key,omitempty"`
	Notified    bool         `db:"notified" json:"notified"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// StatusAuditFilter filters audit trail listings.
type StatusAuditFilter struct {
	EntityID  string
	Workflow  WorkflowKind
	Actor     string
	Page      int
	PageSize  int
	SortOrder string
}
