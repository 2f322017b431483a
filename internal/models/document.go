package models

import "time"

// DocumentState is the review state of an uploaded document. validated and
// rejected are terminal for the document: a rejected document is replaced by
// a fresh upload, never re-reviewed.
type DocumentState string

const (
	DocumentPending   DocumentState = "pending"
	DocumentValidated DocumentState = "validated"
	DocumentRejected  DocumentState = "rejected"
)

// Document is an uploaded supporting document attached to a reservation or
// rental. Required documents gate the parent workflow's documentsValidated
// guard.
type Document struct {
	ID              string        `db:"id" json:"id"`
	EntityID        string        `db:"entity_id" json:"entity_id"`
	Workflow        WorkflowKind  `db:"workflow" json:"workflow"`
	Type            string        `db:"type" json:"type"`
	FileName        string        `db:"file_name" json:"file_name"`
	Required        bool          `db:"required" json:"required"`
	State           DocumentState `db:"state" json:"state"`
	ValidatedBy     *string       `db:"validated_by" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time    `db:"validated_at" json:"validated_at,omitempty"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	UploadedAt      time.Time     `db:"uploaded_at" json:"uploaded_at"`
}

// DocumentFilter filters document listings per parent entity.
type DocumentFilter struct {
	EntityID string
	Workflow WorkflowKind
	State    DocumentState
}
