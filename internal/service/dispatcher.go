package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

// statusStore reads and conditionally advances the persisted status of one
// entity kind. UpdateStatusIf must only apply the write when the stored
// status still equals from, reporting false otherwise.
type statusStore interface {
	GetStatus(ctx context.Context, id string) (models.Status, error)
	UpdateStatusIf(ctx context.Context, id string, from, to models.Status) (bool, error)
}

type auditRecorder interface {
	Create(ctx context.Context, audit *models.StatusAudit) error
	SetTemplateKey(ctx context.Context, auditID, templateKey string) error
}

type documentsGuard interface {
	AllRequiredValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (bool, error)
}

type paymentsGuard interface {
	Received(ctx context.Context, workflow models.WorkflowKind, entityID string) (bool, error)
}

// DeliverySink accepts a rendered message for asynchronous delivery. Dispatch
// returns once the message is durably handed off, not once it is delivered.
type DeliverySink interface {
	Dispatch(ctx context.Context, email models.OutboundEmail) error
}

type transitionMetrics interface {
	ObserveTransition(workflow models.WorkflowKind, toStatus models.Status, outcome string)
	ObserveNotification(workflow models.WorkflowKind, outcome string)
}

// TransitionRequest describes one requested status change.
type TransitionRequest struct {
	EntityID      string
	Workflow      models.WorkflowKind
	NewStatus     models.Status
	Actor         string
	CustomMessage *string
}

// TransitionResult reports a committed transition. NotificationQueued is
// informational only; a false value never signals a failed transition.
type TransitionResult struct {
	EntityID           string                `json:"entity_id"`
	Workflow           models.WorkflowKind   `json:"workflow"`
	OldStatus          models.Status         `json:"old_status"`
	NewStatus          models.Status         `json:"new_status"`
	AuditID            string                `json:"audit_id"`
	NotificationQueued bool                  `json:"notification_queued"`
}

// NotificationDispatcher runs the full transition pipeline: guard
// evaluation, validation, compare-and-set status update, audit append, then
// best-effort notification fan-out. Once the status write commits, nothing
// downstream can undo it.
type NotificationDispatcher struct {
	reservations statusStore
	rentals      statusStore
	audits       auditRecorder
	documents    documentsGuard
	payments     paymentsGuard

	validator *TransitionValidator
	catalog   *TemplateCatalog
	contexts  ContextBuilder
	renderer  *Renderer
	sink      DeliverySink

	adminAddress string
	metrics      transitionMetrics
	logger       *zap.Logger
}

// NewNotificationDispatcher wires the dispatcher. The metrics observer may
// be nil.
func NewNotificationDispatcher(
	reservations statusStore,
	rentals statusStore,
	audits auditRecorder,
	documents documentsGuard,
	payments paymentsGuard,
	catalog *TemplateCatalog,
	contexts ContextBuilder,
	sink DeliverySink,
	adminAddress string,
	metrics transitionMetrics,
	logger *zap.Logger,
) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		reservations: reservations,
		rentals:      rentals,
		audits:       audits,
		documents:    documents,
		payments:     payments,
		validator:    NewTransitionValidator(),
		catalog:      catalog,
		contexts:     contexts,
		renderer:     NewRenderer(),
		sink:         sink,
		adminAddress: adminAddress,
		metrics:      metrics,
		logger:       logger,
	}
}

// Transition validates and applies one status change, then queues the
// notifications for it. Rejections leave the entity untouched; once the
// status write lands, notification problems are logged and absorbed.
func (d *NotificationDispatcher) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	store, err := d.storeFor(req.Workflow)
	if err != nil {
		return nil, err
	}

	current, err := store.GetStatus(ctx, req.EntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %s not found", req.Workflow, req.EntityID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current status")
	}

	guards, err := d.evaluateGuards(ctx, req.Workflow, req.EntityID, current, req.NewStatus)
	if err != nil {
		return nil, err
	}

	if err := d.validator.Validate(req.Workflow, current, req.NewStatus, guards); err != nil {
		d.observeTransition(req.Workflow, req.NewStatus, "rejected")
		return nil, err
	}

	applied, err := store.UpdateStatusIf(ctx, req.EntityID, current, req.NewStatus)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	if !applied {
		d.observeTransition(req.Workflow, req.NewStatus, "conflict")
		return nil, appErrors.Clone(appErrors.ErrConflict, "status changed concurrently, reload and retry")
	}

	audit := &models.StatusAudit{
		EntityID:  req.EntityID,
		Workflow:  req.Workflow,
		OldStatus: current,
		NewStatus: req.NewStatus,
		Actor:     req.Actor,
	}
	if err := d.audits.Create(ctx, audit); err != nil {
		// The transition is already committed; surface the gap but keep it.
		d.logger.Error("failed to record status audit",
			zap.String("workflow", string(req.Workflow)),
			zap.String("entity_id", req.EntityID),
			zap.Error(err))
	}
	d.observeTransition(req.Workflow, req.NewStatus, "accepted")

	result := &TransitionResult{
		EntityID:  req.EntityID,
		Workflow:  req.Workflow,
		OldStatus: current,
		NewStatus: req.NewStatus,
		AuditID:   audit.ID,
	}
	result.NotificationQueued = d.notify(ctx, req, audit)

	d.logger.Info("status transition applied",
		zap.String("workflow", string(req.Workflow)),
		zap.String("entity_id", req.EntityID),
		zap.String("old_status", string(current)),
		zap.String("new_status", string(req.NewStatus)),
		zap.String("actor", req.Actor),
		zap.Bool("notification_queued", result.NotificationQueued))
	return result, nil
}

func (d *NotificationDispatcher) storeFor(workflow models.WorkflowKind) (statusStore, error) {
	switch workflow {
	case models.WorkflowEnrollment:
		return d.reservations, nil
	case models.WorkflowRental:
		return d.rentals, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown workflow %q", workflow))
	}
}

// evaluateGuards resolves only the guards the requested edge actually
// requires, so transitions without guards never touch the document or
// payment tables.
func (d *NotificationDispatcher) evaluateGuards(ctx context.Context, workflow models.WorkflowKind, entityID string, from, to models.Status) (models.GuardSet, error) {
	required := models.RequiredGuards(workflow, from, to)
	if len(required) == 0 {
		return nil, nil
	}
	guards := make(models.GuardSet, len(required))
	for _, name := range required {
		var (
			ok  bool
			err error
		)
		switch name {
		case models.GuardDocumentsValidated:
			ok, err = d.documents.AllRequiredValidated(ctx, workflow, entityID)
		case models.GuardPaymentReceived:
			ok, err = d.payments.Received(ctx, workflow, entityID)
		default:
			ok = false
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to evaluate guard %s", name))
		}
		guards[name] = ok
	}
	return guards, nil
}

// notify renders and queues the student and admin messages for a committed
// transition. Every failure path logs and returns; none of them propagates.
func (d *NotificationDispatcher) notify(ctx context.Context, req TransitionRequest, audit *models.StatusAudit) bool {
	transition, err := d.contexts.Build(ctx, req.EntityID, req.Workflow, req.NewStatus)
	if err != nil {
		d.logNotificationFailure(req, "context", err)
		return false
	}
	if req.CustomMessage != nil {
		transition.Variables[models.CustomMessageVariable] = *req.CustomMessage
	}

	queued := false
	if d.sendTo(ctx, req, audit, models.RoleRecipientStudent, transition.ClientEmail, transition.Variables, true) {
		queued = true
	}
	if d.adminAddress != "" {
		if d.sendTo(ctx, req, audit, models.RoleRecipientAdmin, d.adminAddress, transition.Variables, false) {
			queued = true
		}
	}
	return queued
}

func (d *NotificationDispatcher) sendTo(ctx context.Context, req TransitionRequest, audit *models.StatusAudit, role models.RecipientRole, recipient string, variables models.RenderContext, recordKey bool) bool {
	template, err := d.catalog.Resolve(req.Workflow, req.NewStatus, role)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNoTemplate) {
			d.logger.Debug("no template for transition, skipping notification",
				zap.String("workflow", string(req.Workflow)),
				zap.String("status", string(req.NewStatus)),
				zap.String("role", string(role)))
			d.observeNotification(req.Workflow, "skipped")
		} else {
			d.logNotificationFailure(req, "resolve", err)
		}
		return false
	}

	message, err := d.renderer.Render(template, variables)
	if err != nil {
		d.logNotificationFailure(req, "render", err)
		d.observeNotification(req.Workflow, "failed")
		return false
	}

	email := models.OutboundEmail{
		DedupKey:  fmt.Sprintf("%s:%s:%s:%s", req.Workflow, req.EntityID, req.NewStatus, audit.ID),
		Recipient: recipient,
		Message:   message,
		AuditID:   audit.ID,
	}
	if role != models.RoleRecipientStudent {
		email.DedupKey = fmt.Sprintf("%s:%s", email.DedupKey, role)
	}
	if err := d.sink.Dispatch(ctx, email); err != nil {
		d.logNotificationFailure(req, "dispatch", err)
		d.observeNotification(req.Workflow, "failed")
		return false
	}

	if recordKey && audit.ID != "" {
		if err := d.audits.SetTemplateKey(ctx, audit.ID, template.Key); err != nil {
			d.logger.Warn("failed to record template key on audit",
				zap.String("audit_id", audit.ID),
				zap.Error(err))
		}
	}
	d.observeNotification(req.Workflow, "queued")
	return true
}

func (d *NotificationDispatcher) logNotificationFailure(req TransitionRequest, stage string, err error) {
	d.logger.Error("notification failed, transition kept",
		zap.String("stage", stage),
		zap.String("workflow", string(req.Workflow)),
		zap.String("entity_id", req.EntityID),
		zap.String("new_status", string(req.NewStatus)),
		zap.Error(err))
}

func (d *NotificationDispatcher) observeTransition(workflow models.WorkflowKind, to models.Status, outcome string) {
	if d.metrics != nil {
		d.metrics.ObserveTransition(workflow, to, outcome)
	}
}

func (d *NotificationDispatcher) observeNotification(workflow models.WorkflowKind, outcome string) {
	if d.metrics != nil {
		d.metrics.ObserveNotification(workflow, outcome)
	}
}
