package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogsAreClosed(t *testing.T) {
	for _, workflow := range []WorkflowKind{WorkflowEnrollment, WorkflowRental} {
		for _, status := range StatusesFor(workflow) {
			successors, ok := LegalSuccessors(workflow, status)
			require.True(t, ok, "status %s missing from %s catalog", status, workflow)
			for _, next := range successors {
				assert.True(t, KnownStatus(workflow, next),
					"%s catalog: successor %s of %s is not in the catalog", workflow, next, status)
				assert.NotEqual(t, status, next,
					"%s catalog: %s lists itself as a successor", workflow, status)
			}
		}
	}
}

func TestTerminalStatusesHaveNoSuccessors(t *testing.T) {
	terminals := []Status{StatusCompleted, StatusCancelled, StatusRefunded}
	for _, workflow := range []WorkflowKind{WorkflowEnrollment, WorkflowRental} {
		for _, status := range terminals {
			if !KnownStatus(workflow, status) {
				continue
			}
			assert.True(t, IsTerminal(workflow, status), "%s should be terminal in %s", status, workflow)
			successors, _ := LegalSuccessors(workflow, status)
			assert.Empty(t, successors)
		}
	}
	assert.True(t, IsTerminal(WorkflowEnrollment, StatusFailed))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(WorkflowEnrollment, StatusSubmitted, StatusUnderReview))
	assert.True(t, CanTransition(WorkflowEnrollment, StatusAwaitingDocuments, StatusConfirmed))
	assert.False(t, CanTransition(WorkflowEnrollment, StatusSubmitted, StatusCompleted))
	assert.False(t, CanTransition(WorkflowEnrollment, StatusCompleted, StatusSubmitted))
	assert.False(t, CanTransition(WorkflowEnrollment, "bogus", StatusSubmitted))
}

func TestRentalCatalogSkipsFundingPhase(t *testing.T) {
	assert.False(t, KnownStatus(WorkflowRental, StatusAwaitingFunding))
	assert.False(t, KnownStatus(WorkflowRental, StatusFundingApproved))
	assert.False(t, KnownStatus(WorkflowRental, StatusAwaitingPrerequisites))
	assert.True(t, KnownStatus(WorkflowRental, StatusAwaitingPayment))
}

func TestRequiredGuardsOnGatedEdges(t *testing.T) {
	guards := RequiredGuards(WorkflowEnrollment, StatusAwaitingDocuments, StatusConfirmed)
	require.Len(t, guards, 1)
	assert.Equal(t, GuardDocumentsValidated, guards[0])

	guards = RequiredGuards(WorkflowRental, StatusPaymentPending, StatusConfirmed)
	require.Len(t, guards, 1)
	assert.Equal(t, GuardPaymentReceived, guards[0])

	assert.Empty(t, RequiredGuards(WorkflowEnrollment, StatusSubmitted, StatusUnderReview))
}

func TestGuardedEdgesAreLegal(t *testing.T) {
	for edge, guards := range requiredGuards {
		assert.NotEmpty(t, guards)
		assert.True(t, CanTransition(edge.workflow, edge.from, edge.to),
			"guarded edge %s: %s -> %s is not in the catalog", edge.workflow, edge.from, edge.to)
	}
}

func TestDescribeStatuses(t *testing.T) {
	infos := DescribeStatuses(WorkflowEnrollment)
	require.Len(t, infos, len(StatusesFor(WorkflowEnrollment)))
	assert.Equal(t, StatusSubmitted, infos[0].Value)
	for _, info := range infos {
		assert.NotEmpty(t, info.Label)
		assert.Equal(t, len(info.AllowedTransitions) == 0, info.Terminal)
	}
}

func TestParseWorkflowKind(t *testing.T) {
	workflow, ok := ParseWorkflowKind("enrollment")
	require.True(t, ok)
	assert.Equal(t, WorkflowEnrollment, workflow)

	_, ok = ParseWorkflowKind("reservation")
	assert.False(t, ok)
}

func TestTemplateKeys(t *testing.T) {
	assert.Equal(t, "enrollment_status_under_review_student",
		TemplateKey(WorkflowEnrollment, StatusUnderReview, RoleRecipientStudent))
	assert.Equal(t, "rental_status_confirmed_admin",
		TemplateKey(WorkflowRental, StatusConfirmed, RoleRecipientAdmin))
	assert.Equal(t, "status_changed_student", FallbackTemplateKey(RoleRecipientStudent))
}
