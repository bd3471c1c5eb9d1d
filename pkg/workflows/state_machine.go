package workflows

// StateMachine enforces status transitions for a domain object.
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewListingStateMachine covers the listing publication lifecycle.
func NewListingStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"DRAFT":     {"PUBLISHED"},
			"PUBLISHED": {"UNDER_OFFER", "ARCHIVED"},
			"UNDER_OFFER": {"SOLD", "PUBLISHED"}, // Offer can fall through
			"SOLD":      {},
			"ARCHIVED":  {"PUBLISHED"},
		},
	}
}

// NewInquiryStateMachine covers the buyer-lead pipeline.
func NewInquiryStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"NEW":             {"CONTACTED", "CLOSED_LOST"},
			"CONTACTED":       {"VISIT_SCHEDULED", "CLOSED_LOST"},
			"VISIT_SCHEDULED": {"NEGOTIATING", "CONTACTED", "CLOSED_LOST"},
			"NEGOTIATING":     {"CLOSED_WON", "CLOSED_LOST"},
			"CLOSED_WON":      {},
			"CLOSED_LOST":     {"CONTACTED"}, // Cold leads can be revived
		},
	}
}

// NewSaleStateMachine covers an installment sale from signing to handover.
func NewSaleStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"ACTIVE":    {"COMPLETED", "DEFAULTED", "CANCELLED"},
			"DEFAULTED": {"ACTIVE", "CANCELLED"},
			"COMPLETED": {},
			"CANCELLED": {},
		},
	}
}

// CanTransition checks if a status transition is allowed.
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status.
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
