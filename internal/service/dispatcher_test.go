package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

type mockStatusStore struct {
	statuses map[string]models.Status
	conflict bool
	updated  [][3]string
}

func (m *mockStatusStore) GetStatus(ctx context.Context, id string) (models.Status, error) {
	status, ok := m.statuses[id]
	if !ok {
		return "", sql.ErrNoRows
	}
	return status, nil
}

func (m *mockStatusStore) UpdateStatusIf(ctx context.Context, id string, from, to models.Status) (bool, error) {
	if m.conflict {
		return false, nil
	}
	m.statuses[id] = to
	m.updated = append(m.updated, [3]string{id, string(from), string(to)})
	return true, nil
}

type mockAuditRecorder struct {
	audits       []*models.StatusAudit
	templateKeys map[string]string
}

func (m *mockAuditRecorder) Create(ctx context.Context, audit *models.StatusAudit) error {
	if audit.ID == "" {
		audit.ID = "audit-1"
	}
	m.audits = append(m.audits, audit)
	return nil
}

func (m *mockAuditRecorder) SetTemplateKey(ctx context.Context, auditID, templateKey string) error {
	if m.templateKeys == nil {
		m.templateKeys = make(map[string]string)
	}
	m.templateKeys[auditID] = templateKey
	return nil
}

type mockDocumentsGuard struct {
	validated bool
	err       error
}

func (m *mockDocumentsGuard) AllRequiredValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (bool, error) {
	return m.validated, m.err
}

type mockPaymentsGuard struct {
	received bool
}

func (m *mockPaymentsGuard) Received(ctx context.Context, workflow models.WorkflowKind, entityID string) (bool, error) {
	return m.received, nil
}

type mockContextBuilder struct {
	variables models.RenderContext
	err       error
}

func (m *mockContextBuilder) Build(ctx context.Context, entityID string, workflow models.WorkflowKind, status models.Status) (*TransitionContext, error) {
	if m.err != nil {
		return nil, m.err
	}
	variables := make(models.RenderContext, len(m.variables))
	for k, v := range m.variables {
		variables[k] = v
	}
	return &TransitionContext{Variables: variables, ClientEmail: "marie@example.com", ClientName: "Marie Dupont"}, nil
}

type mockSink struct {
	emails []models.OutboundEmail
	err    error
}

func (m *mockSink) Dispatch(ctx context.Context, email models.OutboundEmail) error {
	if m.err != nil {
		return m.err
	}
	m.emails = append(m.emails, email)
	return nil
}

func enrollmentContext() models.RenderContext {
	return models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
		"sessionDate":    "15/09/2026",
		"location":       "Rennes",
		"price":          "1800 EUR",
		"reservationId":  "res-1",
		"entityId":       "res-1",
		"submissionDate": "01/09/2026",
		"statusLabel":    "Under review",
	}
}

type dispatcherFixture struct {
	reservations *mockStatusStore
	rentals      *mockStatusStore
	audits       *mockAuditRecorder
	documents    *mockDocumentsGuard
	payments     *mockPaymentsGuard
	sink         *mockSink
	dispatcher   *NotificationDispatcher
}

func newDispatcherFixture(t *testing.T, builder ContextBuilder) *dispatcherFixture {
	return newDispatcherFixtureWithTemplates(t, builder, SeedTemplates())
}

func newDispatcherFixtureWithTemplates(t *testing.T, builder ContextBuilder, templates []models.EmailTemplate) *dispatcherFixture {
	t.Helper()
	catalog, err := NewTemplateCatalog(templates, zap.NewNop())
	require.NoError(t, err)

	f := &dispatcherFixture{
		reservations: &mockStatusStore{statuses: map[string]models.Status{}},
		rentals:      &mockStatusStore{statuses: map[string]models.Status{}},
		audits:       &mockAuditRecorder{},
		documents:    &mockDocumentsGuard{},
		payments:     &mockPaymentsGuard{},
		sink:         &mockSink{},
	}
	if builder == nil {
		builder = &mockContextBuilder{variables: enrollmentContext()}
	}
	f.dispatcher = NewNotificationDispatcher(
		f.reservations, f.rentals, f.audits, f.documents, f.payments,
		catalog, builder, f.sink, "contact@merelformation.com", nil, zap.NewNop(),
	)
	return f
}

func TestTransitionHappyPath(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusSubmitted

	result, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin@merelformation.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, result.OldStatus)
	assert.Equal(t, models.StatusUnderReview, result.NewStatus)
	assert.True(t, result.NotificationQueued)
	assert.Equal(t, models.StatusUnderReview, f.reservations.statuses["res-1"])

	require.Len(t, f.audits.audits, 1)
	audit := f.audits.audits[0]
	assert.Equal(t, models.StatusSubmitted, audit.OldStatus)
	assert.Equal(t, models.StatusUnderReview, audit.NewStatus)
	assert.Equal(t, "admin@merelformation.com", audit.Actor)
	assert.Equal(t, "enrollment_status_under_review_student", f.audits.templateKeys[audit.ID])

	require.NotEmpty(t, f.sink.emails)
	student := f.sink.emails[0]
	assert.Equal(t, "marie@example.com", student.Recipient)
	assert.Equal(t, "enrollment:res-1:under_review:"+audit.ID, student.DedupKey)
	assert.Contains(t, student.Message.Body, "Marie Dupont")
}

func TestTransitionGuardBlocksWithoutValidatedDocuments(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusAwaitingDocuments
	f.documents.validated = false

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusConfirmed,
		Actor:     "admin",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrGuardNotSatisfied))
	assert.Equal(t, models.StatusAwaitingDocuments, f.reservations.statuses["res-1"])
	assert.Empty(t, f.audits.audits)
	assert.Empty(t, f.sink.emails)
}

func TestTransitionGuardPassesWithValidatedDocuments(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusAwaitingDocuments
	f.documents.validated = true

	result, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusConfirmed,
		Actor:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, result.NewStatus)
}

func TestTransitionTerminalStateRejected(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusCompleted

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusCancelled,
		Actor:     "admin",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTerminalState))
	assert.Empty(t, f.audits.audits)
}

func TestTransitionIllegalEdgeRejected(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.rentals.statuses["rent-1"] = models.StatusSubmitted

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "rent-1",
		Workflow:  models.WorkflowRental,
		NewStatus: models.StatusCompleted,
		Actor:     "admin",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIllegalTransition))
}

func TestTransitionUnknownEntity(t *testing.T) {
	f := newDispatcherFixture(t, nil)

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "nope",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTransitionConcurrentWriterLoses(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusSubmitted
	f.reservations.conflict = true

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, f.audits.audits)
	assert.Empty(t, f.sink.emails)
}

func TestTransitionSurvivesMissingContextVariable(t *testing.T) {
	builder := &mockContextBuilder{variables: models.RenderContext{"studentName": "Marie Dupont"}}
	f := newDispatcherFixture(t, builder)
	f.reservations.statuses["res-1"] = models.StatusSubmitted

	result, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, f.reservations.statuses["res-1"])
	assert.False(t, result.NotificationQueued)
	require.Len(t, f.audits.audits, 1)
	assert.Empty(t, f.sink.emails)
}

func TestTransitionSurvivesContextFailure(t *testing.T) {
	builder := &mockContextBuilder{err: errors.New("boom")}
	f := newDispatcherFixture(t, builder)
	f.reservations.statuses["res-1"] = models.StatusSubmitted

	result, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, result.NewStatus)
	assert.False(t, result.NotificationQueued)
}

func TestTransitionSurvivesSinkFailure(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusSubmitted
	f.sink.err = errors.New("queue full")

	result, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.NoError(t, err)
	assert.False(t, result.NotificationQueued)
	assert.Equal(t, models.StatusUnderReview, f.reservations.statuses["res-1"])
}

func TestTransitionCommitsWithoutAnyTemplate(t *testing.T) {
	f := newDispatcherFixtureWithTemplates(t, nil, nil)
	f.reservations.statuses["res-1"] = models.StatusSubmitted

	result, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, f.reservations.statuses["res-1"])
	assert.False(t, result.NotificationQueued)
	require.Len(t, f.audits.audits, 1)
	assert.Empty(t, f.sink.emails)
	assert.Empty(t, f.audits.templateKeys)
}

func TestTransitionCustomMessageReachesBody(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusSubmitted
	message := "Merci de nous rappeler."

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:      "res-1",
		Workflow:      models.WorkflowEnrollment,
		NewStatus:     models.StatusUnderReview,
		Actor:         "admin",
		CustomMessage: &message,
	})
	require.NoError(t, err)
	require.NotEmpty(t, f.sink.emails)
	assert.Contains(t, f.sink.emails[0].Message.Body, "Merci de nous rappeler.")
}

func TestTransitionAdminNotificationUsesFallback(t *testing.T) {
	f := newDispatcherFixture(t, nil)
	f.reservations.statuses["res-1"] = models.StatusSubmitted

	_, err := f.dispatcher.Transition(context.Background(), TransitionRequest{
		EntityID:  "res-1",
		Workflow:  models.WorkflowEnrollment,
		NewStatus: models.StatusUnderReview,
		Actor:     "admin",
	})
	require.NoError(t, err)
	require.Len(t, f.sink.emails, 2)
	admin := f.sink.emails[1]
	assert.Equal(t, "contact@merelformation.com", admin.Recipient)
	assert.NotEqual(t, f.sink.emails[0].DedupKey, admin.DedupKey)
}
