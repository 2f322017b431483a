package models

// Status identifies a step of the reservation lifecycle. Values are closed:
// a status is only valid for a workflow when the workflow's catalog lists it.
type Status string

// Reservation lifecycle statuses, grouped by phase.
const (
	// Initial request.
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"

	// Administrative checks.
	StatusAwaitingDocuments     Status = "awaiting_documents"
	StatusDocumentsPending      Status = "documents_pending"
	StatusDocumentsRejected     Status = "documents_rejected"
	StatusAwaitingPrerequisites Status = "awaiting_prerequisites"

	// Financial validation.
	StatusAwaitingFunding Status = "awaiting_funding"
	StatusFundingApproved Status = "funding_approved"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaymentPending  Status = "payment_pending"

	// Confirmation.
	StatusConfirmed     Status = "confirmed"
	StatusAwaitingStart Status = "awaiting_start"

	// In progress.
	StatusInProgress       Status = "in_progress"
	StatusAttendanceIssues Status = "attendance_issues"
	StatusSuspended        Status = "suspended"

	// Closure. Terminal: no transition leaves these.
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// WorkflowKind selects which status catalog applies to an entity. It is
// fixed at creation time and never changes for the entity's lifetime.
type WorkflowKind string

const (
	WorkflowEnrollment WorkflowKind = "enrollment"
	WorkflowRental     WorkflowKind = "rental"
)

// enrollmentSuccessors is the transition catalog for training-session
// enrollments. Terminal statuses map to an empty set.
var enrollmentSuccessors = map[Status][]Status{
	StatusSubmitted:             {StatusUnderReview, StatusCancelled},
	StatusUnderReview:           {StatusAwaitingDocuments, StatusAwaitingFunding, StatusConfirmed, StatusCancelled},
	StatusAwaitingDocuments:     {StatusDocumentsPending, StatusConfirmed, StatusCancelled},
	StatusDocumentsPending:      {StatusDocumentsRejected, StatusAwaitingFunding, StatusConfirmed},
	StatusDocumentsRejected:     {StatusAwaitingDocuments, StatusCancelled},
	StatusAwaitingPrerequisites: {StatusConfirmed, StatusCancelled},
	StatusAwaitingFunding:       {StatusFundingApproved, StatusAwaitingPayment, StatusCancelled},
	StatusFundingApproved:       {StatusConfirmed, StatusAwaitingStart},
	StatusAwaitingPayment:       {StatusPaymentPending, StatusCancelled},
	StatusPaymentPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:             {StatusAwaitingStart, StatusCancelled},
	StatusAwaitingStart:         {StatusInProgress, StatusCancelled},
	StatusInProgress:            {StatusAttendanceIssues, StatusSuspended, StatusCompleted, StatusFailed},
	StatusAttendanceIssues:      {StatusInProgress, StatusSuspended, StatusFailed},
	StatusSuspended:             {StatusInProgress, StatusCancelled},
	StatusCompleted:             {},
	StatusFailed:                {},
	StatusCancelled:             {},
	StatusRefunded:              {},
}

// rentalSuccessors is the transition catalog for vehicle rentals. Rentals
// skip the prerequisite and funding phases entirely.
var rentalSuccessors = map[Status][]Status{
	StatusSubmitted:         {StatusUnderReview, StatusCancelled},
	StatusUnderReview:       {StatusAwaitingDocuments, StatusAwaitingPayment, StatusConfirmed, StatusCancelled},
	StatusAwaitingDocuments: {StatusDocumentsPending, StatusConfirmed, StatusCancelled},
	StatusDocumentsPending:  {StatusDocumentsRejected, StatusAwaitingPayment, StatusConfirmed},
	StatusDocumentsRejected: {StatusAwaitingDocuments, StatusCancelled},
	StatusAwaitingPayment:   {StatusPaymentPending, StatusCancelled},
	StatusPaymentPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:         {StatusInProgress, StatusCancelled},
	StatusInProgress:        {StatusCompleted, StatusCancelled},
	StatusCompleted:         {},
	StatusCancelled:         {},
	StatusRefunded:          {},
}

func catalogFor(workflow WorkflowKind) map[Status][]Status {
	switch workflow {
	case WorkflowEnrollment:
		return enrollmentSuccessors
	case WorkflowRental:
		return rentalSuccessors
	default:
		return nil
	}
}

// KnownStatus reports whether status belongs to the workflow's catalog.
func KnownStatus(workflow WorkflowKind, status Status) bool {
	catalog := catalogFor(workflow)
	_, ok := catalog[status]
	return ok
}

// LegalSuccessors returns the statuses reachable from status within the
// workflow. The returned slice must not be mutated. ok is false when the
// status is unknown for the workflow.
func LegalSuccessors(workflow WorkflowKind, status Status) ([]Status, bool) {
	catalog := catalogFor(workflow)
	successors, ok := catalog[status]
	if !ok {
		return nil, false
	}
	return successors, true
}

// IsTerminal reports whether status closes the workflow permanently.
func IsTerminal(workflow WorkflowKind, status Status) bool {
	successors, ok := LegalSuccessors(workflow, status)
	return ok && len(successors) == 0
}

// CanTransition reports whether requested is a legal successor of current.
func CanTransition(workflow WorkflowKind, current, requested Status) bool {
	successors, ok := LegalSuccessors(workflow, current)
	if !ok {
		return false
	}
	for _, s := range successors {
		if s == requested {
			return true
		}
	}
	return false
}

// StatusesFor returns every status of the workflow's catalog in lifecycle
// order, for discovery endpoints.
func StatusesFor(workflow WorkflowKind) []Status {
	ordered := []Status{
		StatusSubmitted, StatusUnderReview,
		StatusAwaitingDocuments, StatusDocumentsPending, StatusDocumentsRejected, StatusAwaitingPrerequisites,
		StatusAwaitingFunding, StatusFundingApproved, StatusAwaitingPayment, StatusPaymentPending,
		StatusConfirmed, StatusAwaitingStart,
		StatusInProgress, StatusAttendanceIssues, StatusSuspended,
		StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded,
	}
	catalog := catalogFor(workflow)
	result := make([]Status, 0, len(catalog))
	for _, s := range ordered {
		if _, ok := catalog[s]; ok {
			result = append(result, s)
		}
	}
	return result
}

// ParseWorkflowKind validates a raw workflow string.
func ParseWorkflowKind(raw string) (WorkflowKind, bool) {
	switch WorkflowKind(raw) {
	case WorkflowEnrollment, WorkflowRental:
		return WorkflowKind(raw), true
	default:
		return "", false
	}
}

var statusLabels = map[Status]string{
	StatusSubmitted:             "Request submitted",
	StatusUnderReview:           "Under review",
	StatusAwaitingDocuments:     "Awaiting documents",
	StatusDocumentsPending:      "Documents under validation",
	StatusDocumentsRejected:     "Documents rejected",
	StatusAwaitingPrerequisites: "Awaiting prerequisites",
	StatusAwaitingFunding:       "Awaiting funding",
	StatusFundingApproved:       "Funding approved",
	StatusAwaitingPayment:       "Awaiting payment",
	StatusPaymentPending:        "Payment in progress",
	StatusConfirmed:             "Confirmed",
	StatusAwaitingStart:         "Awaiting start",
	StatusInProgress:            "In progress",
	StatusAttendanceIssues:      "Attendance issues",
	StatusSuspended:             "Suspended",
	StatusCompleted:             "Completed",
	StatusFailed:                "Failed",
	StatusCancelled:             "Cancelled",
	StatusRefunded:              "Refunded",
}

// Label returns the human-readable label for the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var statusPhases = map[Status]string{
	StatusSubmitted:             "Initial request",
	StatusUnderReview:           "Initial request",
	StatusAwaitingDocuments:     "Administrative checks",
	StatusDocumentsPending:      "Administrative checks",
	StatusDocumentsRejected:     "Administrative checks",
	StatusAwaitingPrerequisites: "Administrative checks",
	StatusAwaitingFunding:       "Financial validation",
	StatusFundingApproved:       "Financial validation",
	StatusAwaitingPayment:       "Financial validation",
	StatusPaymentPending:        "Financial validation",
	StatusConfirmed:             "Confirmation",
	StatusAwaitingStart:         "Confirmation",
	StatusInProgress:            "Training in progress",
	StatusAttendanceIssues:      "Training in progress",
	StatusSuspended:             "Training in progress",
	StatusCompleted:             "Closure",
	StatusFailed:                "Closure",
	StatusCancelled:             "Closure",
	StatusRefunded:              "Closure",
}

// Phase returns the lifecycle phase grouping for the status.
func (s Status) Phase() string {
	return statusPhases[s]
}

// Color returns the badge color hint used by the admin UI.
func (s Status) Color() string {
	switch s {
	case StatusSubmitted, StatusUnderReview:
		return "blue"
	case StatusAwaitingDocuments, StatusDocumentsPending, StatusAwaitingPrerequisites:
		return "orange"
	case StatusAwaitingFunding, StatusFundingApproved, StatusAwaitingPayment, StatusPaymentPending:
		return "yellow"
	case StatusConfirmed, StatusAwaitingStart, StatusCompleted:
		return "green"
	case StatusInProgress:
		return "indigo"
	case StatusDocumentsRejected, StatusAttendanceIssues, StatusSuspended, StatusFailed, StatusCancelled:
		return "red"
	default:
		return "gray"
	}
}

// StatusInfo describes a status for discovery endpoints.
type StatusInfo struct {
	Value              Status   `json:"value"`
	Label              string   `json:"label"`
	Phase              string   `json:"phase"`
	Color              string   `json:"color"`
	Terminal           bool     `json:"terminal"`
	AllowedTransitions []Status `json:"allowed_transitions"`
}

// DescribeStatuses returns discovery metadata for every status of a workflow.
func DescribeStatuses(workflow WorkflowKind) []StatusInfo {
	statuses := StatusesFor(workflow)
	infos := make([]StatusInfo, 0, len(statuses))
	for _, s := range statuses {
		successors, _ := LegalSuccessors(workflow, s)
		infos = append(infos, StatusInfo{
			Value:              s,
			Label:              s.Label(),
			Phase:              s.Phase(),
			Color:              s.Color(),
			Terminal:           len(successors) == 0,
			AllowedTransitions: successors,
		})
	}
	return infos
}
