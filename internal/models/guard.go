package models

// GuardName identifies a boolean precondition a transition may require
// beyond catalog legality.
type GuardName string

const (
	GuardDocumentsValidated GuardName = "documentsValidated"
	GuardPaymentReceived    GuardName = "paymentReceived"
)

// GuardSet holds the guard values the caller evaluated for one transition.
// A guard missing from the set counts as unsatisfied.
type GuardSet map[GuardName]bool

// Satisfied reports whether the named guard is present and true.
func (g GuardSet) Satisfied(name GuardName) bool {
	return g[name]
}

type guardEdge struct {
	workflow WorkflowKind
	from     Status
	to       Status
}

// requiredGuards maps gated transitions to the guards they demand. Entering
// confirmed from any document phase requires validated documents; from
// payment_pending it requires a received payment.
var requiredGuards = map[guardEdge][]GuardName{
	{WorkflowEnrollment, StatusAwaitingDocuments, StatusConfirmed}:      {GuardDocumentsValidated},
	{WorkflowEnrollment, StatusDocumentsPending, StatusConfirmed}:       {GuardDocumentsValidated},
	{WorkflowEnrollment, StatusDocumentsPending, StatusAwaitingFunding}: {GuardDocumentsValidated},
	{WorkflowEnrollment, StatusPaymentPending, StatusConfirmed}:         {GuardPaymentReceived},

	{WorkflowRental, StatusAwaitingDocuments, StatusConfirmed}:      {GuardDocumentsValidated},
	{WorkflowRental, StatusDocumentsPending, StatusConfirmed}:       {GuardDocumentsValidated},
	{WorkflowRental, StatusDocumentsPending, StatusAwaitingPayment}: {GuardDocumentsValidated},
	{WorkflowRental, StatusPaymentPending, StatusConfirmed}:         {GuardPaymentReceived},
}

// RequiredGuards returns the guards a transition must satisfy, in a stable
// order. Most transitions require none.
func RequiredGuards(workflow WorkflowKind, from, to Status) []GuardName {
	return requiredGuards[guardEdge{workflow, from, to}]
}

// TransitionOption describes one reachable target status for discovery
// endpoints, including the guards the edge demands.
type TransitionOption struct {
	To     Status      `json:"to"`
	Label  string      `json:"label"`
	Guards []GuardName `json:"guards,omitempty"`
}
