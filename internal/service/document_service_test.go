package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

type mockDocumentRepo struct {
	documents map[string]models.Document
	pending   int
	reviewed  []string
}

func (m *mockDocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	if d, ok := m.documents[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	var list []models.Document
	for _, d := range m.documents {
		if filter.EntityID != "" && d.EntityID != filter.EntityID {
			continue
		}
		list = append(list, d)
	}
	return list, nil
}

func (m *mockDocumentRepo) UpdateReview(ctx context.Context, id string, state models.DocumentState, reviewer string, reason *string, reviewedAt time.Time) error {
	d := m.documents[id]
	d.State = state
	d.ValidatedBy = &reviewer
	d.ValidatedAt = &reviewedAt
	d.RejectionReason = reason
	m.documents[id] = d
	m.reviewed = append(m.reviewed, id)
	return nil
}

func (m *mockDocumentRepo) CountRequiredNotValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (int, error) {
	return m.pending, nil
}

func pendingDocument(id string) models.Document {
	return models.Document{
		ID:       id,
		EntityID: "res-1",
		Workflow: models.WorkflowEnrollment,
		Type:     "identity_card",
		FileName: "cni.pdf",
		Required: true,
		State:    models.DocumentPending,
	}
}

func TestDocumentValidate(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{"d1": pendingDocument("d1")}}
	svc := NewDocumentService(repo, validator.New(), zap.NewNop())

	document, err := svc.Validate(context.Background(), "d1", "admin@merelformation.com")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentValidated, document.State)
	require.NotNil(t, document.ValidatedBy)
	assert.Equal(t, "admin@merelformation.com", *document.ValidatedBy)
	assert.Contains(t, repo.reviewed, "d1")
}

func TestDocumentRejectRequiresReason(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{"d1": pendingDocument("d1")}}
	svc := NewDocumentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Reject(context.Background(), "d1", "admin", RejectDocumentRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.reviewed)
}

func TestDocumentRejectRejectsBlankReason(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{"d1": pendingDocument("d1")}}
	svc := NewDocumentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Reject(context.Background(), "d1", "admin", RejectDocumentRequest{Reason: "   "})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.reviewed)
}

func TestDocumentReject(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{"d1": pendingDocument("d1")}}
	svc := NewDocumentService(repo, validator.New(), zap.NewNop())

	document, err := svc.Reject(context.Background(), "d1", "admin", RejectDocumentRequest{Reason: "illisible"})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentRejected, document.State)
	require.NotNil(t, document.RejectionReason)
	assert.Equal(t, "illisible", *document.RejectionReason)
}

func TestDocumentReviewIsFinal(t *testing.T) {
	validated := pendingDocument("d1")
	validated.State = models.DocumentValidated
	repo := &mockDocumentRepo{documents: map[string]models.Document{"d1": validated}}
	svc := NewDocumentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Validate(context.Background(), "d1", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDocumentFinalized))

	_, err = svc.Reject(context.Background(), "d1", "admin", RejectDocumentRequest{Reason: "doublon"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDocumentFinalized))
}

func TestDocumentNotFound(t *testing.T) {
	svc := NewDocumentService(&mockDocumentRepo{}, validator.New(), zap.NewNop())
	_, err := svc.Validate(context.Background(), "missing", "admin")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAllRequiredValidated(t *testing.T) {
	repo := &mockDocumentRepo{pending: 2}
	svc := NewDocumentService(repo, validator.New(), zap.NewNop())

	ok, err := svc.AllRequiredValidated(context.Background(), models.WorkflowEnrollment, "res-1")
	require.NoError(t, err)
	assert.False(t, ok)

	repo.pending = 0
	ok, err = svc.AllRequiredValidated(context.Background(), models.WorkflowEnrollment, "res-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
