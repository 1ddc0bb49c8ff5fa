package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillingUnit(t *testing.T) {
	tests := []struct {
		raw  string
		want UnitKind
	}{
		{"m linéaire", UnitLinearMeter},
		{"mètre linéaire", UnitLinearMeter},
		{"m²", UnitArea},
		{" M² ", UnitArea},
		{"appareil", UnitPerAppliance},
		{"prestation", UnitFlat},
		{"pose", UnitFlat},
		{"unité", UnitFlat},
		{"pièce", UnitFlat},
		{"point", UnitFlat},
		{"forfait", UnitFlat},
		{"€/h", UnitUnknown},
		{"", UnitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u := ParseBillingUnit(tt.raw)
			assert.Equal(t, tt.want, u.Kind)
		})
	}
}

func TestBillingUnit_JSONKeepsLabel(t *testing.T) {
	data, err := json.Marshal(ParseBillingUnit("m linéaire"))
	require.NoError(t, err)
	assert.JSONEq(t, `"m linéaire"`, string(data))

	var u BillingUnit
	require.NoError(t, json.Unmarshal([]byte(`"appareil"`), &u))
	assert.Equal(t, UnitPerAppliance, u.Kind)
	assert.Equal(t, "appareil", u.Label)
}
