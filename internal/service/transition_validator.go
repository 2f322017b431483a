package service

import (
	"fmt"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

// TransitionValidator decides whether a requested status change is legal.
// It is pure: no side effects, same inputs always produce the same verdict.
type TransitionValidator struct{}

// NewTransitionValidator constructs a validator.
func NewTransitionValidator() *TransitionValidator {
	return &TransitionValidator{}
}

// Validate checks the requested transition against the workflow catalog and
// the guard requirements. A nil return means the transition is accepted.
// Checks run in order: unknown status, terminal state, catalog legality,
// guards; the first failure wins.
func (v *TransitionValidator) Validate(workflow models.WorkflowKind, current, requested models.Status, guards models.GuardSet) error {
	if !models.KnownStatus(workflow, current) {
		return appErrors.Clone(appErrors.ErrUnknownStatus, fmt.Sprintf("unknown status %q for workflow %s", current, workflow))
	}
	if !models.KnownStatus(workflow, requested) {
		return appErrors.Clone(appErrors.ErrUnknownStatus, fmt.Sprintf("unknown status %q for workflow %s", requested, workflow))
	}
	if models.IsTerminal(workflow, current) {
		return appErrors.Clone(appErrors.ErrTerminalState, fmt.Sprintf("status %s is terminal, no transitions allowed", current))
	}
	if !models.CanTransition(workflow, current, requested) {
		return appErrors.Clone(appErrors.ErrIllegalTransition, fmt.Sprintf("transition from %s to %s not allowed", current, requested))
	}
	for _, guard := range models.RequiredGuards(workflow, current, requested) {
		if !guards.Satisfied(guard) {
			return appErrors.Clone(appErrors.ErrGuardNotSatisfied, fmt.Sprintf("required guard %s not satisfied", guard))
		}
	}
	return nil
}
