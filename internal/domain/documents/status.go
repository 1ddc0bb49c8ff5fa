package documents

// Transitions lists, per status, the statuses it may move to.
type Transitions[S ~string] map[S][]S

// Allows reports whether from → to is listed.
func (t Transitions[S]) Allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Known reports whether s appears in the table as a source status.
func (t Transitions[S]) Known(s S) bool {
	_, ok := t[s]
	return ok
}

// IsTerminal reports whether s is known and has no outgoing transition.
func (t Transitions[S]) IsTerminal(s S) bool {
	next, ok := t[s]
	return ok && len(next) == 0
}
