package pricing

import (
	"fmt"

	"renodevis/internal/core/types"
)

// Review is the interactive state of an assembled quote before submission.
// Every mutation returns a new Review; the receiver is never modified.
type Review struct {
	Items   []LineItem  `json:"postes"`
	VATRate types.Money `json:"tva_taux"`
}

// NewReview copies items into a fresh review.
func NewReview(items []LineItem, vatRate types.Money) Review {
	return Review{Items: cloneItems(items), VATRate: vatRate}
}

// Adjust returns a review where item i's price is set to p, clamped.
func (r Review) Adjust(i int, p types.Money) (Review, error) {
	if err := r.check(i); err != nil {
		return r, err
	}
	next := NewReview(r.Items, r.VATRate)
	next.Items[i].AdjustPrice(p)
	return next, nil
}

// ToggleOffered returns a review where item i's offered flag is flipped.
func (r Review) ToggleOffered(i int) (Review, error) {
	if err := r.check(i); err != nil {
		return r, err
	}
	next := NewReview(r.Items, r.VATRate)
	next.Items[i].ToggleOffered()
	return next, nil
}

// Totals computes the totals of the current state.
func (r Review) Totals() Totals {
	return ComputeTotals(r.Items, r.VATRate)
}

func (r Review) check(i int) error {
	if i < 0 || i >= len(r.Items) {
		return fmt.Errorf("line %d out of range [0,%d)", i, len(r.Items))
	}
	return nil
}
