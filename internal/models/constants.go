package models

// Job status values.
const (
	JobStatusOpen       = "open"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Application status values.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

// Payment status values.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Proficiency levels for user skills.
const (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
	ProficiencyExpert       = "expert"
)

// Location kinds, most general first.
const (
	LocationKindCountry      = "country"
	LocationKindState        = "state"
	LocationKindCity         = "city"
	LocationKindDistrict     = "district"
	LocationKindNeighborhood = "neighborhood"
)

// Notification event types appended by the workflow services.
const (
	EventJobApplication       = "job_application"
	EventApplicationAccepted  = "application_accepted"
	EventApplicationRejected  = "application_rejected"
	EventApplicationWithdrawn = "application_withdrawn"
	EventJobCancelled         = "job_cancelled"
	EventJobCompleted         = "job_completed"
	EventPaymentReceived      = "payment_received"
	EventPaymentSent          = "payment_sent"
	EventPaymentFailed        = "payment_failed"
	EventReviewReceived       = "review_received"
	EventReviewResponse       = "review_response"
)

// ValidJobStatuses lists every valid job status.
var ValidJobStatuses = map[string]struct{}{
	JobStatusOpen:       {},
	JobStatusInProgress: {},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

// ValidApplicationStatuses lists every valid application status.
var ValidApplicationStatuses = map[string]struct{}{
	ApplicationStatusPending:   {},
	ApplicationStatusAccepted:  {},
	ApplicationStatusRejected:  {},
	ApplicationStatusWithdrawn: {},
}

// ValidPaymentStatuses lists every valid payment status.
var ValidPaymentStatuses = map[string]struct{}{
	PaymentStatusPending:   {},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}

// ValidProficiencies lists every valid proficiency level.
var ValidProficiencies = map[string]struct{}{
	ProficiencyBeginner:     {},
	ProficiencyIntermediate: {},
	ProficiencyAdvanced:     {},
	ProficiencyExpert:       {},
}

// ValidLocationKinds lists every valid location kind.
var ValidLocationKinds = map[string]struct{}{
	LocationKindCountry:      {},
	LocationKindState:        {},
	LocationKindCity:         {},
	LocationKindDistrict:     {},
	LocationKindNeighborhood: {},
}

// ValidPaymentTransitions encodes the only legal payment status moves.
var ValidPaymentTransitions = map[string]map[string]struct{}{
	PaymentStatusPending: {
		PaymentStatusCompleted: {},
		PaymentStatusFailed:    {},
	},
	PaymentStatusCompleted: {
		PaymentStatusRefunded: {},
	},
}

// CanTransitionPayment reports whether a payment may move from one status to another.
func CanTransitionPayment(from, to string) bool {
	next, ok := ValidPaymentTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}
