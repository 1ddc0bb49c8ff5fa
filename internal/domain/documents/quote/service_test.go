package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renodevis/internal/core/apperror"
	"renodevis/internal/core/id"
	"renodevis/internal/core/numerator"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/audit"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/pricing"
)

type env struct {
	svc   *Service
	repo  *memRepo
	num   *numerator.MockGenerator
	tx    *inlineTx
	audit *auditLog
}

func newEnv() env {
	e := env{repo: newMemRepo(), num: &numerator.MockGenerator{}, tx: &inlineTx{}, audit: &auditLog{}}
	e.svc = NewService(e.repo, e.num, e.tx, e.audit, DefaultConfig())
	e.svc.now = func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC) }
	return e
}

func money(s string) types.Money { return types.MustMoney(s) }

func sampleLine(qty, lo, hi string) documents.Line {
	return documents.Line{
		Category:      catalog.CategoryPaint,
		ReferenceID:   id.New(),
		ReferenceName: "Peinture mur",
		Quantity:      money(qty),
		Unit:          "m²",
		PriceMin:      money(lo),
		PriceMax:      money(hi),
	}
}

func (e env) create(t *testing.T, ctx context.Context) *Quote {
	t.Helper()
	q, err := e.svc.New(ctx, client.Info{Nom: "Dupont", Telephone: "06 12 34 56 78"})
	require.NoError(t, err)
	q.Lines = []documents.Line{sampleLine("10", "20", "30")}
	require.NoError(t, e.svc.Create(ctx, q))
	return q
}

func TestCreate(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")

	q := e.create(t, ctx)

	assert.Equal(t, "DEV-2026-00001", q.Number)
	assert.Equal(t, "u1", q.OwnerID)
	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, "+33612345678", q.Telephone)
	assert.Equal(t, time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC), q.ValidUntil)
	assert.Equal(t, "250.00", q.TotalTTC.StringFixed(2))
	assert.Equal(t, "208.33", q.TotalHT.StringFixed(2))
	assert.Equal(t, "41.67", q.TotalTVA.StringFixed(2))
	assert.Equal(t, "u1", q.CreatedBy)

	lines, _ := e.repo.GetLines(ctx, q.ID)
	require.Len(t, lines, 1)
	assert.Equal(t, q.ID, lines[0].DocumentID)
	assert.Equal(t, []audit.Action{audit.ActionCreate}, e.audit.actions())

	second := e.create(t, ctx)
	assert.Equal(t, "DEV-2026-00002", second.Number)
}

func TestCreate_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		ctx   context.Context
		mut   func(q *Quote)
		check func(error) bool
	}{
		{"no user", context.Background(), func(*Quote) {}, func(err error) bool { return apperror.IsCode(err, apperror.CodeUnauthorized) }},
		{"no client", asUser("u1"), func(q *Quote) { q.Nom = " " }, apperror.IsValidation},
		{"no lines", asUser("u1"), func(q *Quote) { q.Lines = nil }, apperror.IsValidation},
		{"bad vat", asUser("u1"), func(q *Quote) { q.VATRate = money("120") }, apperror.IsValidation},
		{"vat of minus 100", asUser("u1"), func(q *Quote) { q.VATRate = money("-100") }, apperror.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			numbered := false
			e.num.GetNextNumberFunc = func(context.Context, numerator.Config, *numerator.Options, time.Time) (string, error) {
				numbered = true
				return "DEV-X", nil
			}

			q := New("u1", client.Info{Nom: "Dupont"}, money("20"), 30)
			q.Lines = []documents.Line{sampleLine("1", "1", "2")}
			tt.mut(q)

			err := e.svc.Create(tt.ctx, q)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.False(t, numbered, "no number consumed")
			assert.Zero(t, e.tx.runs)
		})
	}
}

func TestCreate_NumberingFailure(t *testing.T) {
	e := newEnv()
	e.num.GetNextNumberFunc = func(context.Context, numerator.Config, *numerator.Options, time.Time) (string, error) {
		return "", errors.New("sequence locked")
	}
	q, err := e.svc.New(asUser("u1"), client.Info{Nom: "Dupont"})
	require.NoError(t, err)
	q.Lines = []documents.Line{sampleLine("1", "1", "2")}

	err = e.svc.Create(asUser("u1"), q)
	assert.ErrorContains(t, err, "sequence locked")
	assert.Empty(t, e.repo.quotes)
}

func TestGetByID_ScopedToOwner(t *testing.T) {
	e := newEnv()
	q := e.create(t, asUser("u1"))

	got, err := e.svc.GetByID(asUser("u1"), q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)

	_, err = e.svc.GetByID(asUser("u2"), q.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.svc.GetByID(asUser("u1"), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)

	edit, err := e.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	edit.Nom = "Durand"
	out := money("99")
	l := sampleLine("4", "10", "20")
	l.PriceAdjusted = &out
	edit.Lines = []documents.Line{l}
	edit.Status = StatusAccepted
	edit.Number = "HACK"

	require.NoError(t, e.svc.Update(ctx, edit))
	assert.Equal(t, "Durand", edit.Nom)
	assert.Equal(t, q.Number, edit.Number, "number kept")
	assert.Equal(t, StatusDraft, edit.Status, "status kept")
	assert.Equal(t, 2, edit.Version)
	assert.Equal(t, "60.00", edit.TotalTTC.StringFixed(2), "out of range price reset to midpoint")

	lines, _ := e.repo.GetLines(ctx, q.ID)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].PriceAdjusted.Equal(money("15")))

	stale := *edit
	stale.Version = 1
	err = e.svc.Update(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestUpdate_InvalidVATRate(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)

	edit, err := e.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	edit.VATRate = money("-100")

	assert.NotPanics(t, func() { err = e.svc.Update(ctx, edit) })
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	stored, err := e.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, stored.VATRate.Equal(money("20")))
}

func TestLifecycleHooks_Defaults(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")

	q := &Quote{Info: client.Info{Nom: "  Dupont  ", Telephone: "06 12 34 56 78"}, VATRate: money("20")}
	q.Lines = []documents.Line{sampleLine("1", "10", "20")}
	require.NoError(t, e.svc.Create(ctx, q))

	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC), q.Date)
	assert.Equal(t, time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC), q.ValidUntil)
	assert.Equal(t, "Dupont", q.Nom)
	assert.Equal(t, "+33612345678", q.Telephone)

	edit, err := e.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	edit.Telephone = "06 11 22 33 44"
	require.NoError(t, e.svc.Update(ctx, edit))
	assert.Equal(t, "+33611223344", edit.Telephone)
}

func TestUpdate_LockedStatuses(t *testing.T) {
	for _, st := range []Status{StatusSent, StatusAccepted, StatusRefused} {
		t.Run(string(st), func(t *testing.T) {
			e := newEnv()
			ctx := asUser("u1")
			q := e.create(t, ctx)
			stored := e.repo.quotes[q.ID]
			stored.Status = st
			e.repo.quotes[q.ID] = stored

			edit, err := e.svc.GetByID(ctx, q.ID)
			require.NoError(t, err)
			err = e.svc.Update(ctx, edit)
			assert.True(t, apperror.IsCode(err, apperror.CodeDocumentLocked), "got %v", err)
		})
	}
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusValidated, true},
		{StatusDraft, StatusSent, true},
		{StatusDraft, StatusAccepted, false},
		{StatusValidated, StatusAccepted, true},
		{StatusSent, StatusAccepted, true},
		{StatusSent, StatusDraft, false},
		{StatusRefused, StatusDraft, true},
		{StatusAccepted, StatusDraft, false},
		{StatusInvoiced, StatusDraft, false},
		{StatusDraft, StatusInvoiced, false},
		{StatusSent, StatusSent, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			e := newEnv()
			ctx := asUser("u1")
			q := e.create(t, ctx)
			stored := e.repo.quotes[q.ID]
			stored.Status = tt.from
			e.repo.quotes[q.ID] = stored

			got, err := e.svc.SetStatus(ctx, q.ID, tt.to)
			if !tt.ok {
				assert.Error(t, err)
				assert.Equal(t, tt.from, e.repo.quotes[q.ID].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, tt.to, e.repo.quotes[q.ID].Status)
		})
	}
}

func TestSetStatus_Unknown(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)

	_, err := e.svc.SetStatus(ctx, q.ID, "archive")
	assert.True(t, apperror.IsValidation(err))

	_, err = e.svc.SetStatus(asUser("u2"), q.ID, StatusValidated)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMarkInvoiced(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)

	_, err := e.svc.MarkInvoiced(ctx, q.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))

	_, err = e.svc.SetStatus(ctx, q.ID, StatusSent)
	require.NoError(t, err)
	_, err = e.svc.SetStatus(ctx, q.ID, StatusAccepted)
	require.NoError(t, err)

	got, err := e.svc.MarkInvoiced(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInvoiced, got.Status)
	assert.Len(t, got.Lines, 1)

	_, err = e.svc.MarkInvoiced(ctx, q.ID)
	assert.Error(t, err, "a quote is invoiced once")
}

func TestDelete(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)

	err := e.svc.Delete(asUser("u2"), q.ID)
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, e.svc.Delete(ctx, q.ID))
	_, err = e.svc.GetByID(ctx, q.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, []audit.Action{audit.ActionCreate, audit.ActionDelete}, e.audit.actions())

	err = e.svc.Delete(ctx, q.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_InvoicedIsKept(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)
	stored := e.repo.quotes[q.ID]
	stored.Status = StatusInvoiced
	e.repo.quotes[q.ID] = stored

	err := e.svc.Delete(ctx, q.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeDocumentLocked))
	assert.Contains(t, e.repo.quotes, q.ID)
}

func TestList(t *testing.T) {
	e := newEnv()
	a := e.create(t, asUser("u1"))
	e.create(t, asUser("u1"))
	e.create(t, asUser("u2"))
	_, err := e.svc.SetStatus(asUser("u1"), a.ID, StatusSent)
	require.NoError(t, err)

	all, err := e.svc.List(asUser("u1"), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 50, all.Limit)

	sent := StatusSent
	some, err := e.svc.List(asUser("u1"), ListFilter{Status: &sent})
	require.NoError(t, err)
	require.Len(t, some.Items, 1)
	assert.Equal(t, a.ID, some.Items[0].ID)

	bad := Status("nope")
	_, err = e.svc.List(asUser("u1"), ListFilter{Status: &bad})
	assert.True(t, apperror.IsValidation(err))
}

func TestHistory(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)
	_, err := e.svc.SetStatus(ctx, q.ID, StatusValidated)
	require.NoError(t, err)

	records, err := e.svc.History(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, audit.ActionStatus, records[1].Action)

	_, err = e.svc.History(asUser("u2"), q.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestHooks(t *testing.T) {
	e := newEnv()
	e.svc.Hooks().OnBeforeCreate(func(_ context.Context, q *Quote) error {
		if q.Nom == "Interdit" {
			return apperror.NewValidation("client bloqué")
		}
		return nil
	})

	q, err := e.svc.New(asUser("u1"), client.Info{Nom: "Interdit"})
	require.NoError(t, err)
	q.Lines = []documents.Line{sampleLine("1", "1", "2")}
	assert.True(t, apperror.IsValidation(e.svc.Create(asUser("u1"), q)))
}

func draftFixture(t *testing.T) (*catalog.Snapshot, catalog.Kitchen) {
	t.Helper()
	k := catalog.Kitchen{ID: id.New(), Name: "Équipée", Cost: catalog.NewPriceRange(500, 700), Labor: catalog.NewPriceRange(300, 400)}
	snap, err := catalog.NewSnapshot([]catalog.Entry{k}, catalog.DefaultServiceRates())
	require.NoError(t, err)
	return snap, k
}

func TestCreateFromDraft(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	snap, k := draftFixture(t)

	b := pricing.NewQuoteDraftBuilder().Client(client.Info{Nom: "Martin"}).Notes("RDC")
	b.Kitchen().Type(k.ID).Length("5")

	q, err := e.svc.CreateFromDraft(ctx, b.Build(), snap)
	require.NoError(t, err)
	assert.Equal(t, "950.00", q.TotalTTC.StringFixed(2))
	assert.Equal(t, "RDC", q.Notes)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, 1, q.Lines[0].LineNo)

	edit := pricing.FromDraft(b.Build()).Editing(q.ID).ValidityDays(10)
	edit.Kitchen().Length("10")
	edited, err := e.svc.CreateFromDraft(ctx, edit.Build(), snap)
	require.NoError(t, err)
	assert.Equal(t, q.ID, edited.ID)
	assert.Equal(t, q.Number, edited.Number)
	assert.Equal(t, "1900.00", edited.TotalTTC.StringFixed(2))
	assert.Len(t, e.repo.quotes, 1)
}

func TestCreateFromDraft_AssemblyErrors(t *testing.T) {
	e := newEnv()
	snap, _ := draftFixture(t)

	b := pricing.NewQuoteDraftBuilder().Client(client.Info{Nom: "Martin"})
	b.Kitchen().Length("5")

	_, err := e.svc.CreateFromDraft(asUser("u1"), b.Build(), snap)
	require.Error(t, err)
	assert.Equal(t, []string{"Cuisine: Veuillez remplir le type et la longueur"}, apperror.Messages(err))
	assert.Empty(t, e.repo.quotes)
}

func TestReleaseInvoiced(t *testing.T) {
	e := newEnv()
	ctx := asUser("u1")
	q := e.create(t, ctx)

	require.NoError(t, e.svc.ReleaseInvoiced(ctx, q.ID), "no-op unless invoiced")
	assert.Equal(t, StatusDraft, e.repo.quotes[q.ID].Status)

	stored := e.repo.quotes[q.ID]
	stored.Status = StatusInvoiced
	e.repo.quotes[q.ID] = stored

	require.NoError(t, e.svc.ReleaseInvoiced(ctx, q.ID))
	assert.Equal(t, StatusAccepted, e.repo.quotes[q.ID].Status)
}
