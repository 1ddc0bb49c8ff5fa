package catalog

import (
	"encoding/json"
	"strings"
)

// UnitKind is the closed set of billing behaviours an extra can have.
type UnitKind int

const (
	UnitUnknown UnitKind = iota
	UnitLinearMeter
	UnitArea
	UnitPerAppliance
	UnitFlat
)

func (k UnitKind) String() string {
	switch k {
	case UnitLinearMeter:
		return "linear_meter"
	case UnitArea:
		return "area"
	case UnitPerAppliance:
		return "per_appliance"
	case UnitFlat:
		return "flat"
	}
	return "unknown"
}

// BillingUnit pairs the resolved kind with the label shown on quotes.
type BillingUnit struct {
	Kind  UnitKind
	Label string
}

var flatUnits = map[string]struct{}{
	"prestation": {},
	"pose":       {},
	"unité":      {},
	"pièce":      {},
	"point":      {},
	"forfait":    {},
}

// ParseBillingUnit resolves a unit label once, at catalog ingestion.
func ParseBillingUnit(raw string) BillingUnit {
	label := strings.TrimSpace(raw)
	token := strings.ToLower(label)

	kind := UnitUnknown
	switch {
	case strings.Contains(token, "linéaire"):
		kind = UnitLinearMeter
	case token == "m²":
		kind = UnitArea
	case token == "appareil":
		kind = UnitPerAppliance
	default:
		if _, ok := flatUnits[token]; ok {
			kind = UnitFlat
		}
	}
	return BillingUnit{Kind: kind, Label: label}
}

func (u BillingUnit) String() string { return u.Label }

// MarshalJSON writes the label only; the kind is derived again on decode.
func (u BillingUnit) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Label)
}

// UnmarshalJSON accepts the label string.
func (u *BillingUnit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*u = ParseBillingUnit(s)
	return nil
}

// MarshalText and UnmarshalText let yaml and msgpack treat the unit as text.
func (u BillingUnit) MarshalText() ([]byte, error) {
	return []byte(u.Label), nil
}

func (u *BillingUnit) UnmarshalText(text []byte) error {
	*u = ParseBillingUnit(string(text))
	return nil
}
