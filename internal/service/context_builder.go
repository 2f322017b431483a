package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

// dateLayout is the display format used in outgoing emails.
const dateLayout = "02/01/2006"

type reservationDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.SessionReservationDetail, error)
}

type rentalDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.VehicleRentalDetail, error)
}

// TransitionContext bundles the render variables with the addresses the
// dispatcher sends to.
type TransitionContext struct {
	Variables    models.RenderContext
	ClientEmail  string
	ClientName   string
}

// ContextBuilder assembles the flat variable map for one transition. It is
// the only part of the notification pipeline that touches the entity graph.
type ContextBuilder interface {
	Build(ctx context.Context, entityID string, workflow models.WorkflowKind, status models.Status) (*TransitionContext, error)
}

// EntityContextBuilder builds render contexts from the reservation and
// rental tables.
type EntityContextBuilder struct {
	reservations reservationDetailReader
	rentals      rentalDetailReader
}

// NewEntityContextBuilder constructs the default context builder.
func NewEntityContextBuilder(reservations reservationDetailReader, rentals rentalDetailReader) *EntityContextBuilder {
	return &EntityContextBuilder{reservations: reservations, rentals: rentals}
}

// Build gathers every variable the seeded templates can reference for the
// workflow. Values are plain display strings; dates and amounts are
// formatted here so rendering stays deterministic.
func (b *EntityContextBuilder) Build(ctx context.Context, entityID string, workflow models.WorkflowKind, status models.Status) (*TransitionContext, error) {
	switch workflow {
	case models.WorkflowEnrollment:
		return b.buildEnrollment(ctx, entityID, status)
	case models.WorkflowRental:
		return b.buildRental(ctx, entityID, status)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown workflow %q", workflow))
	}
}

func (b *EntityContextBuilder) buildEnrollment(ctx context.Context, entityID string, status models.Status) (*TransitionContext, error) {
	detail, err := b.reservations.FindDetailByID(ctx, entityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	name := fmt.Sprintf("%s %s", detail.ClientFirstName, detail.ClientLastName)
	variables := models.RenderContext{
		"studentName":    name,
		"formationTitle": detail.FormationTitle,
		"sessionDate":    detail.SessionStartDate.Format(dateLayout),
		"location":       detail.SessionLocation,
		"price":          detail.SessionPrice,
		"reservationId":  detail.ID,
		"entityId":       detail.ID,
		"submissionDate": detail.SubmittedAt.Format(dateLayout),
		"statusLabel":    status.Label(),
	}
	return &TransitionContext{Variables: variables, ClientEmail: detail.ClientEmail, ClientName: name}, nil
}

func (b *EntityContextBuilder) buildRental(ctx context.Context, entityID string, status models.Status) (*TransitionContext, error) {
	detail, err := b.rentals.FindDetailByID(ctx, entityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rental not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rental")
	}
	name := fmt.Sprintf("%s %s", detail.ClientFirstName, detail.ClientLastName)
	variables := models.RenderContext{
		"studentName":    name,
		"vehicleModel":   detail.VehicleModel,
		"vehiclePlate":   detail.VehiclePlate,
		"examCenter":     detail.ExamCenter,
		"pickupLocation": detail.PickupPlace,
		"rentalDates":    fmt.Sprintf("%s - %s", detail.StartDate.Format(dateLayout), detail.EndDate.Format(dateLayout)),
		"returnDate":     detail.EndDate.Format(dateLayout),
		"totalPrice":     detail.TotalPrice,
		"rentalId":       detail.ID,
		"entityId":       detail.ID,
		"submissionDate": detail.SubmittedAt.Format(dateLayout),
		"statusLabel":    status.Label(),
	}
	return &TransitionContext{Variables: variables, ClientEmail: detail.ClientEmail, ClientName: name}, nil
}
