package models

import "fmt"

// RecipientRole selects which audience variant of a status template is sent.
type RecipientRole string

const (
	RoleRecipientStudent RecipientRole = "student"
	RoleRecipientAdmin   RecipientRole = "admin"
)

// EmailTemplate is an immutable, seeded message template. Body and Subject
// may contain {{name}} placeholders; Body may additionally contain a single
// {{#customMessage}}...{{/customMessage}} block that is dropped when no
// administrator message accompanies the transition.
type EmailTemplate struct {
	Key       string        `json:"key"`
	Name      string        `json:"name"`
	Role      RecipientRole `json:"role"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Variables []string      `json:"variables"`
}

// TemplateKey builds the catalog key for a workflow/status/role triple.
func TemplateKey(workflow WorkflowKind, status Status, role RecipientRole) string {
	return fmt.Sprintf("%s_status_%s_%s", workflow, status, role)
}

// FallbackTemplateKey is the per-role generic key used when no exact
// template exists for a transition.
func FallbackTemplateKey(role RecipientRole) string {
	return fmt.Sprintf("status_changed_%s", role)
}

// RenderContext is the flat variable map fed into template substitution for
// one transition. Built fresh per transition, never persisted.
type RenderContext map[string]string

// CustomMessageVariable carries the optional administrator free-text block.
// It is exempt from the declared-variable completeness check.
const CustomMessageVariable = "customMessage"

// RenderedMessage is the final subject/body pair produced by the renderer.
type RenderedMessage struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// OutboundEmail is what the delivery sink accepts. DedupKey is stable across
// redeliveries of the same transition attempt so at-least-once delivery
// never double-flips the audit notified flag.
type OutboundEmail struct {
	DedupKey  string          `json:"dedup_key"`
	Recipient string          `json:"recipient"`
	Message   RenderedMessage `json:"message"`
	AuditID   string          `json:"audit_id"`
}
