package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

func TestValidateAcceptsLegalTransition(t *testing.T) {
	v := NewTransitionValidator()
	err := v.Validate(models.WorkflowEnrollment, models.StatusSubmitted, models.StatusUnderReview, nil)
	assert.NoError(t, err)
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	v := NewTransitionValidator()

	err := v.Validate(models.WorkflowEnrollment, "bogus", models.StatusUnderReview, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownStatus))

	err = v.Validate(models.WorkflowEnrollment, models.StatusSubmitted, "bogus", nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownStatus))

	// awaiting_funding exists for enrollments but not for rentals.
	err = v.Validate(models.WorkflowRental, models.StatusAwaitingFunding, models.StatusConfirmed, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownStatus))
}

func TestValidateRejectsTerminalState(t *testing.T) {
	v := NewTransitionValidator()
	for _, terminal := range []models.Status{models.StatusCompleted, models.StatusFailed, models.StatusCancelled, models.StatusRefunded} {
		err := v.Validate(models.WorkflowEnrollment, terminal, models.StatusSubmitted, nil)
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrTerminalState), "expected terminal verdict for %s", terminal)
	}
}

func TestValidateRejectsIllegalTransition(t *testing.T) {
	v := NewTransitionValidator()
	err := v.Validate(models.WorkflowEnrollment, models.StatusSubmitted, models.StatusCompleted, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIllegalTransition))
}

func TestValidateGuardVerdicts(t *testing.T) {
	v := NewTransitionValidator()

	err := v.Validate(models.WorkflowEnrollment, models.StatusAwaitingDocuments, models.StatusConfirmed, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrGuardNotSatisfied))
	assert.Contains(t, err.Error(), "documentsValidated")

	err = v.Validate(models.WorkflowEnrollment, models.StatusAwaitingDocuments, models.StatusConfirmed,
		models.GuardSet{models.GuardDocumentsValidated: false})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrGuardNotSatisfied))

	err = v.Validate(models.WorkflowEnrollment, models.StatusAwaitingDocuments, models.StatusConfirmed,
		models.GuardSet{models.GuardDocumentsValidated: true})
	assert.NoError(t, err)
}

func TestValidateUnknownStatusBeatsTerminal(t *testing.T) {
	v := NewTransitionValidator()
	err := v.Validate(models.WorkflowEnrollment, models.StatusCompleted, "bogus", nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownStatus))
}

func TestValidateIsDeterministic(t *testing.T) {
	v := NewTransitionValidator()
	for i := 0; i < 3; i++ {
		err := v.Validate(models.WorkflowRental, models.StatusPaymentPending, models.StatusConfirmed,
			models.GuardSet{models.GuardPaymentReceived: true})
		assert.NoError(t, err)
	}
}
