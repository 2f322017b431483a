package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

func TestCatalogRejectsDuplicateKeys(t *testing.T) {
	templates := []models.EmailTemplate{
		{Key: "a", Name: "first"},
		{Key: "a", Name: "second"},
	}
	_, err := NewTemplateCatalog(templates, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCatalogRejectsEmptyKey(t *testing.T) {
	_, err := NewTemplateCatalog([]models.EmailTemplate{{Name: "nameless"}}, zap.NewNop())
	require.Error(t, err)
}

func TestResolveExactKey(t *testing.T) {
	catalog, err := NewTemplateCatalog(SeedTemplates(), zap.NewNop())
	require.NoError(t, err)

	template, err := catalog.Resolve(models.WorkflowEnrollment, models.StatusUnderReview, models.RoleRecipientStudent)
	require.NoError(t, err)
	assert.Equal(t, "enrollment_status_under_review_student", template.Key)
}

func TestResolveFallsBackToGenericTemplate(t *testing.T) {
	templates := []models.EmailTemplate{
		{Key: models.FallbackTemplateKey(models.RoleRecipientStudent), Role: models.RoleRecipientStudent, Subject: "s", Body: "b"},
	}
	catalog, err := NewTemplateCatalog(templates, zap.NewNop())
	require.NoError(t, err)

	template, err := catalog.Resolve(models.WorkflowEnrollment, models.StatusSuspended, models.RoleRecipientStudent)
	require.NoError(t, err)
	assert.Equal(t, "status_changed_student", template.Key)
}

func TestResolveNoTemplate(t *testing.T) {
	catalog, err := NewTemplateCatalog(nil, zap.NewNop())
	require.NoError(t, err)

	_, err = catalog.Resolve(models.WorkflowRental, models.StatusConfirmed, models.RoleRecipientStudent)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoTemplate))
}

func TestSeedCoversEveryEnrollmentStudentStatus(t *testing.T) {
	catalog, err := NewTemplateCatalog(SeedTemplates(), zap.NewNop())
	require.NoError(t, err)

	for _, status := range models.StatusesFor(models.WorkflowEnrollment) {
		key := models.TemplateKey(models.WorkflowEnrollment, status, models.RoleRecipientStudent)
		_, ok := catalog.Get(key)
		assert.True(t, ok, "missing seed template %s", key)
	}
}

func TestSeedCoversEveryRentalStudentStatus(t *testing.T) {
	catalog, err := NewTemplateCatalog(SeedTemplates(), zap.NewNop())
	require.NoError(t, err)

	for _, status := range models.StatusesFor(models.WorkflowRental) {
		key := models.TemplateKey(models.WorkflowRental, status, models.RoleRecipientStudent)
		_, ok := catalog.Get(key)
		assert.True(t, ok, "missing seed template %s", key)
	}
}
