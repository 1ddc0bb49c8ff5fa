package quote

import "renodevis/internal/domain/documents"

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusDraft     Status = "brouillon"
	StatusValidated Status = "valide"
	StatusSent      Status = "envoye"
	StatusAccepted  Status = "accepte"
	StatusRefused   Status = "refuse"
	// StatusInvoiced is only reached by creating an invoice from the quote.
	StatusInvoiced Status = "facture"
)

var transitions = documents.Transitions[Status]{
	StatusDraft:     {StatusValidated, StatusSent, StatusRefused},
	StatusValidated: {StatusDraft, StatusSent, StatusAccepted, StatusRefused},
	StatusSent:      {StatusValidated, StatusAccepted, StatusRefused},
	StatusAccepted:  {StatusSent, StatusRefused, StatusInvoiced},
	StatusRefused:   {StatusDraft},
	StatusInvoiced:  {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return transitions.Known(s)
}

// CanTransitionTo reports whether the quote may move from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions.Allows(s, next)
}

// Editable reports whether lines and client may change in this status.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusValidated
}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusValidated, StatusSent, StatusAccepted, StatusRefused, StatusInvoiced}
}
