package domain

// Milestone tags appended to the TaskLedger as a conversation progresses.
const (
	TaskSearchInitiated    = "search_initiated"
	TaskResultsPresented   = "results_presented"
	TaskSelectionPresented = "selection_presented"
	TaskBookingCompleted   = "booking_completed"
	TaskActionCompleted    = "action_completed"
	TaskInfoCompleted      = "info_completed"
)

// TaskLedger is an insertion-ordered, duplicate-free set of milestone tags.
// It only ever grows within a conversation; the single reset point is the
// explicit Completed -> Action ("book another") transition.
type TaskLedger []string

// Contains reports whether the milestone has been reached.
func (l TaskLedger) Contains(task string) bool {
	for _, t := range l {
		if t == task {
			return true
		}
	}
	return false
}

// Append returns the ledger with the task added, preserving insertion order.
// Appending an already-present task is a no-op.
func (l TaskLedger) Append(task string) TaskLedger {
	if l.Contains(task) {
		return l
	}
	return append(l, task)
}

// Merge unions another ledger into this one, keeping first-seen order.
func (l TaskLedger) Merge(other TaskLedger) TaskLedger {
	out := l
	for _, t := range other {
		out = out.Append(t)
	}
	return out
}

// Clone returns an independent copy.
func (l TaskLedger) Clone() TaskLedger {
	if l == nil {
		return nil
	}
	out := make(TaskLedger, len(l))
	copy(out, l)
	return out
}
