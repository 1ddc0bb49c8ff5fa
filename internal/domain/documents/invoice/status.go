package invoice

import "renodevis/internal/domain/documents"

// Status is the payment state of an invoice.
type Status string

const (
	StatusPending   Status = "en_attente"
	StatusPaid      Status = "payee"
	StatusCancelled Status = "annulee"
)

var transitions = documents.Transitions[Status]{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return transitions.Known(s)
}

// CanTransitionTo reports whether the invoice may move from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions.Allows(s, next)
}

// IsTerminal reports whether no further status change is possible.
func (s Status) IsTerminal() bool {
	return transitions.IsTerminal(s)
}
