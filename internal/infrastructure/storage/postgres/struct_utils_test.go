package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"renodevis/internal/core/entity"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
)

type sampleDoc struct {
	entity.Document
	client.Info `json:"client"`

	Status string      `db:"statut"`
	Rate   types.Money `db:"tva_taux"`

	documents.Amounts

	Lines    []documents.Line `db:"-"`
	internal string
}

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[*sampleDoc]()

	for _, want := range []string{
		"id", "version", "created_at", "updated_at", "created_by", "updated_by",
		"number", "date", "owner_id", "notes",
		"client_nom", "client_telephone",
		"statut", "tva_taux",
		"total_ht", "total_tva", "total_ttc",
	} {
		assert.Contains(t, cols, want)
	}
	assert.NotContains(t, cols, "-")
	assert.Equal(t, "id", cols[0], "declaration order")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	doc := &sampleDoc{
		Document: entity.NewDocument("u1"),
		Info:     client.Info{Nom: "Dupont"},
		Status:   "brouillon",
		Amounts:  documents.Amounts{TotalTTC: types.MustMoney("12.5")},
		internal: "x",
	}
	doc.Date = now

	m := StructToMap(doc)
	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "u1", m["owner_id"])
	assert.Equal(t, now, m["date"])
	assert.Equal(t, "Dupont", m["client_nom"])
	assert.Equal(t, "brouillon", m["statut"])
	assert.True(t, m["total_ttc"].(types.Money).Equal(types.MustMoney("12.5")))
	assert.NotContains(t, m, "internal")

	assert.Nil(t, StructToMap((*sampleDoc)(nil)))
	assert.Nil(t, StructToMap(42))
}

func TestPick(t *testing.T) {
	data := map[string]any{"id": 1, "statut": "x", "version": 2, "extra": true}

	got := Pick(data, []string{"id", "statut", "version", "missing"}, "version")
	assert.Equal(t, map[string]any{"id": 1, "statut": "x"}, got)
}
