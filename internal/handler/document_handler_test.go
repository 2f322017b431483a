package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	"github.com/ouerghi-selim/merelformation-api/internal/service"
)

type mockDocumentRepo struct {
	documents map[string]models.Document
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
	return nil
}

func (m *mockDocumentRepo) CountRequiredNotValidated(ctx context.Context, workflow models.WorkflowKind, entityID string) (int, error) {
	return 0, nil
}

func newDocumentHandler(repo *mockDocumentRepo) *DocumentHandler {
	return NewDocumentHandler(service.NewDocumentService(repo, validator.New(), nil))
}

func TestDocumentHandlerValidate(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{
		"d1": {ID: "d1", EntityID: "res-1", Workflow: models.WorkflowEnrollment, Type: "identity_card", FileName: "cni.pdf", Required: true, State: models.DocumentPending},
	}}
	handler := newDocumentHandler(repo)

	c, w := newReservationTestContext(t, http.MethodPut, "/admin/documents/d1/validate", nil)
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	handler.Validate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DocumentValidated, repo.documents["d1"].State)
	require.NotNil(t, repo.documents["d1"].ValidatedBy)
	assert.Equal(t, "admin@merelformation.com", *repo.documents["d1"].ValidatedBy)
}

func TestDocumentHandlerRejectMissingReason(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{
		"d1": {ID: "d1", EntityID: "res-1", Workflow: models.WorkflowEnrollment, State: models.DocumentPending},
	}}
	handler := newDocumentHandler(repo)

	c, w := newReservationTestContext(t, http.MethodPut, "/admin/documents/d1/reject", []byte(`{}`))
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	handler.Reject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.DocumentPending, repo.documents["d1"].State)
}

func TestDocumentHandlerReject(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]models.Document{
		"d1": {ID: "d1", EntityID: "res-1", Workflow: models.WorkflowEnrollment, State: models.DocumentPending},
	}}
	handler := newDocumentHandler(repo)

	c, w := newReservationTestContext(t, http.MethodPut, "/admin/documents/d1/reject", []byte(`{"reason":"document illisible"}`))
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	handler.Reject(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DocumentRejected, repo.documents["d1"].State)
	require.NotNil(t, repo.documents["d1"].RejectionReason)
	assert.Equal(t, "document illisible", *repo.documents["d1"].RejectionReason)
}

func TestDocumentHandlerValidateNotFound(t *testing.T) {
	handler := newDocumentHandler(&mockDocumentRepo{})

	c, w := newReservationTestContext(t, http.MethodPut, "/admin/documents/missing/validate", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Validate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
