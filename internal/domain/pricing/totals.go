package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"renodevis/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// Totals is the HT / TVA / TTC triple of a quote.
type Totals struct {
	HT  types.Money `json:"total_ht"`
	TVA types.Money `json:"total_tva"`
	TTC types.Money `json:"total_ttc"`
}

// ComputeTotals sums the items. Unit prices are VAT-inclusive: the sum of
// non-offered sub-totals is the TTC total and HT is derived from it.
func ComputeTotals(items []LineItem, vatRate types.Money) Totals {
	ttc := types.Zero()
	for _, it := range items {
		ttc = ttc.Add(it.Contribution())
	}
	return totalsFromTTC(ttc, vatRate)
}

func totalsFromTTC(ttc, vatRate types.Money) Totals {
	ht := ttc.Div(one.Add(vatRate.Div(hundred)))
	return Totals{HT: ht, TVA: ttc.Sub(ht), TTC: ttc}
}

// Rounded rounds HT and TTC to cents and derives TVA from them, so the
// printed amounts always add up.
func (t Totals) Rounded() Totals {
	ht := types.RoundMoney(t.HT)
	ttc := types.RoundMoney(t.TTC)
	return Totals{HT: ht, TVA: ttc.Sub(ht), TTC: ttc}
}

// ValidateVATRate accepts rates in [0, 100].
func ValidateVATRate(rate types.Money) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("vat rate %s out of range", rate)
	}
	return nil
}
