package service

import (
	"fmt"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

// WorkflowService answers discovery questions about the status catalogs
// without touching storage.
type WorkflowService struct{}

// NewWorkflowService constructs WorkflowService.
func NewWorkflowService() *WorkflowService {
	return &WorkflowService{}
}

// Statuses returns the full status catalog of a workflow in lifecycle order.
func (s *WorkflowService) Statuses(rawWorkflow string) ([]models.StatusInfo, error) {
	workflow, ok := models.ParseWorkflowKind(rawWorkflow)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown workflow %q", rawWorkflow))
	}
	return models.DescribeStatuses(workflow), nil
}

// TransitionsFrom returns the statuses reachable from the given status,
// with the guards each edge requires.
func (s *WorkflowService) TransitionsFrom(rawWorkflow string, from models.Status) ([]models.TransitionOption, error) {
	workflow, ok := models.ParseWorkflowKind(rawWorkflow)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown workflow %q", rawWorkflow))
	}
	successors, ok := models.LegalSuccessors(workflow, from)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnknownStatus, fmt.Sprintf("status %q is not part of the %s workflow", from, workflow))
	}
	options := make([]models.TransitionOption, 0, len(successors))
	for _, to := range successors {
		options = append(options, models.TransitionOption{
			To:     to,
			Label:  to.Label(),
			Guards: models.RequiredGuards(workflow, from, to),
		})
	}
	return options, nil
}
