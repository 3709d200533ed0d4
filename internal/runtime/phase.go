package runtime

import "github.com/windrose-ai/windrose/pkg/domain"

// DetermineActionPhase decides which Action sub-phase to run next.
// It is a pure function over the message history and the task ledger;
// rules are precedence-ordered and the first match wins.
func DetermineActionPhase(messages []domain.Message, tasks domain.TaskLedger) domain.ActionPhase {
	if len(messages) == 0 {
		return domain.ActionSearch
	}

	if tasks.Contains(domain.TaskBookingCompleted) {
		return domain.ActionComplete
	}

	if DetectConfirmation(messages) && tasks.Contains(domain.TaskSelectionPresented) {
		return domain.ActionBook
	}

	selection := DetectSelection(messages)
	if selection != nil && tasks.Contains(domain.TaskResultsPresented) {
		return domain.ActionConfirm
	}

	if tasks.Contains(domain.TaskSearchInitiated) && !tasks.Contains(domain.TaskResultsPresented) {
		return domain.ActionPresent
	}

	// Results shown, no selection yet: stay put and await the user.
	if tasks.Contains(domain.TaskResultsPresented) && selection == nil {
		return domain.ActionPresent
	}

	return domain.ActionSearch
}
