package v1

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain"
	"renodevis/internal/domain/audit"
	"renodevis/internal/domain/auth"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/documents/invoice"
	"renodevis/internal/domain/documents/quote"
	"renodevis/internal/domain/pricing"
	"renodevis/internal/infrastructure/storage/postgres"
)

const testToken = "token-user-1"

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != testToken {
		return nil, errors.New("invalid token")
	}
	return &appctx.UserContext{UserID: "user-1", Email: "artisan@example.fr"}, nil
}

type fakeAuth struct{}

func (fakeAuth) Register(_ context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
	if req.Email == "taken@example.fr" {
		return nil, apperror.NewConflict("Un utilisateur avec cet email existe déjà")
	}
	u := auth.NewUser(req.Email, "hash", req.Nom, time.Now())
	return &auth.TokenResponse{
		AccessToken: testToken,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        u,
	}, nil
}

func (fakeAuth) Login(_ context.Context, creds auth.Credentials) (*auth.TokenResponse, error) {
	if creds.Password != "secret1" {
		return nil, apperror.NewUnauthorized("Email ou mot de passe incorrect")
	}
	u := auth.NewUser(creds.Email, "hash", "", time.Now())
	return &auth.TokenResponse{AccessToken: testToken, TokenType: "Bearer", User: u}, nil
}

func (fakeAuth) Me(ctx context.Context) (*auth.User, error) {
	u := appctx.GetUser(ctx)
	if u == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return auth.NewUser(u.Email, "hash", "Artisan", time.Now()), nil
}

// memQuotes mimics quote.Service over a map.
type memQuotes struct {
	mu      sync.Mutex
	quotes  map[id.ID]*quote.Quote
	seq     int
	creates int
}

func newMemQuotes() *memQuotes {
	return &memQuotes{quotes: make(map[id.ID]*quote.Quote)}
}

func cloneQuote(q *quote.Quote) *quote.Quote {
	c := *q
	c.Lines = append([]documents.Line(nil), q.Lines...)
	return &c
}

func (s *memQuotes) New(ctx context.Context, c client.Info) (*quote.Quote, error) {
	return quote.New(appctx.GetUserID(ctx), c, pricing.DefaultVATRate, quote.DefaultValidityDays), nil
}

func (s *memQuotes) Create(ctx context.Context, q *quote.Quote) error {
	q.Recalculate()
	if err := q.Validate(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.creates++
	q.Number = fmt.Sprintf("DEV-%d-%05d", q.Date.Year(), s.seq)
	s.quotes[q.ID] = cloneQuote(q)
	return nil
}

func (s *memQuotes) GetByID(_ context.Context, quoteID id.ID) (*quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[quoteID]
	if !ok {
		return nil, apperror.NewNotFound("quote", quoteID)
	}
	return cloneQuote(q), nil
}

func (s *memQuotes) Update(ctx context.Context, q *quote.Quote) error {
	current, err := s.GetByID(ctx, q.ID)
	if err != nil {
		return err
	}
	if q.Version != 0 && q.Version != current.Version {
		return apperror.NewConcurrentModification("quote", q.ID)
	}
	if err := current.CanModify(); err != nil {
		return err
	}
	q.Recalculate()
	if err := q.Validate(ctx); err != nil {
		return err
	}
	q.Touch()
	s.mu.Lock()
	s.quotes[q.ID] = cloneQuote(q)
	s.mu.Unlock()
	return nil
}

func (s *memQuotes) SetStatus(ctx context.Context, quoteID id.ID, next quote.Status) (*quote.Quote, error) {
	q, err := s.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransitionTo(next) {
		return nil, apperror.NewInvalidTransition("quote", string(q.Status), string(next))
	}
	q.Status = next
	s.mu.Lock()
	s.quotes[q.ID] = cloneQuote(q)
	s.mu.Unlock()
	return q, nil
}

func (s *memQuotes) Delete(ctx context.Context, quoteID id.ID) error {
	if _, err := s.GetByID(ctx, quoteID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.quotes, quoteID)
	s.mu.Unlock()
	return nil
}

func (s *memQuotes) History(ctx context.Context, quoteID id.ID) ([]audit.Record, error) {
	if _, err := s.GetByID(ctx, quoteID); err != nil {
		return nil, err
	}
	return []audit.Record{{ID: id.New(), EntityType: audit.EntityQuote, EntityID: quoteID, Action: audit.ActionCreate}}, nil
}

func (s *memQuotes) List(_ context.Context, f quote.ListFilter) (domain.ListResult[*quote.Quote], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Normalize()
	var items []*quote.Quote
	for _, q := range s.quotes {
		if f.Status != nil && q.Status != *f.Status {
			continue
		}
		items = append(items, cloneQuote(q))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
	return domain.ListResult[*quote.Quote]{Items: items, TotalCount: int64(len(items)), Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *memQuotes) CreateFromDraft(ctx context.Context, draft pricing.QuoteDraft, snap *catalog.Snapshot) (*quote.Quote, error) {
	items, err := pricing.Assemble(draft, snap)
	if err != nil {
		return nil, err
	}
	q, _ := s.New(ctx, draft.Client)
	q.VATRate = draft.VATRate
	q.Lines = documents.LinesFromItems(items)
	if err := s.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// memInvoices issues invoices from memQuotes.
type memInvoices struct {
	mu       sync.Mutex
	quotes   *memQuotes
	invoices map[id.ID]*invoice.Invoice
}

func newMemInvoices(quotes *memQuotes) *memInvoices {
	return &memInvoices{quotes: quotes, invoices: make(map[id.ID]*invoice.Invoice)}
}

func (s *memInvoices) CreateFromQuote(ctx context.Context, quoteID id.ID) (*invoice.Invoice, error) {
	q, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q.Status != quote.StatusAccepted {
		return nil, apperror.NewBusinessRule(apperror.CodeInvalidTransition, "Seul un devis accepté peut être facturé")
	}
	if _, err := s.quotes.SetStatus(ctx, quoteID, quote.StatusInvoiced); err != nil {
		return nil, err
	}
	inv := invoice.FromQuote(q)
	inv.Number = fmt.Sprintf("FAC-%d-00001", inv.Date.Year())
	s.mu.Lock()
	s.invoices[inv.ID] = inv
	s.mu.Unlock()
	return inv, nil
}

func (s *memInvoices) GetByID(_ context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID)
	}
	c := *inv
	return &c, nil
}

func (s *memInvoices) SetStatus(ctx context.Context, invoiceID id.ID, next invoice.Status) (*invoice.Invoice, error) {
	inv, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(next) {
		return nil, apperror.NewInvalidTransition("invoice", string(inv.Status), string(next))
	}
	inv.Status = next
	if next == invoice.StatusPaid {
		now := time.Now().UTC()
		inv.PaidAt = &now
	}
	s.mu.Lock()
	s.invoices[inv.ID] = inv
	s.mu.Unlock()
	return inv, nil
}

func (s *memInvoices) Delete(ctx context.Context, invoiceID id.ID) error {
	inv, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := inv.CanDelete(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.invoices, invoiceID)
	s.mu.Unlock()
	return nil
}

func (s *memInvoices) History(ctx context.Context, invoiceID id.ID) ([]audit.Record, error) {
	if _, err := s.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *memInvoices) List(_ context.Context, f invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Normalize()
	var items []*invoice.Invoice
	for _, inv := range s.invoices {
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		if f.QuoteID != nil && inv.QuoteID != *f.QuoteID {
			continue
		}
		items = append(items, inv)
	}
	return domain.ListResult[*invoice.Invoice]{Items: items, TotalCount: int64(len(items)), Limit: f.Limit, Offset: f.Offset}, nil
}

// memIdempotency keeps completed responses in memory.
type memIdempotency struct {
	mu   sync.Mutex
	done map[string]postgres.IdempotencyReplay
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{done: make(map[string]postgres.IdempotencyReplay)}
}

func (s *memIdempotency) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.done[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *memIdempotency) CompleteKey(_ context.Context, key string, resp postgres.IdempotencyReplay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done[key] = resp
	return nil
}

func (s *memIdempotency) FailKey(ctx context.Context, key string, resp postgres.IdempotencyReplay) error {
	return s.CompleteKey(ctx, key, resp)
}

func (s *memIdempotency) ReleaseKey(context.Context, string) error { return nil }

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

// testCatalog returns a small snapshot: one kitchen, two paints (one not
// selectable) and one extra per category.
func testCatalog() (*catalog.Snapshot, catalog.Kitchen) {
	kitchen := catalog.Kitchen{
		ID:    id.New(),
		Name:  "Équipée",
		Cost:  catalog.NewPriceRange(500, 700),
		Labor: catalog.NewPriceRange(300, 400),
	}
	entries := []catalog.Entry{
		kitchen,
		catalog.Paint{ID: id.New(), Name: "Peinture mur", Kind: catalog.PaintKindSupport, Surface: catalog.SurfaceWall, Price: catalog.NewPriceRange(20, 30), Unit: "m²"},
		catalog.Paint{ID: id.New(), Name: "Sous-couche", Kind: "preparation", Price: catalog.NewPriceRange(5, 8), Unit: "m²"},
		catalog.Extra{ID: id.New(), Category: catalog.CategoryKitchen, Name: "Dépose ancienne cuisine", Cost: catalog.NewPriceRange(200, 500), Unit: catalog.ParseBillingUnit("prestation")},
		catalog.Extra{ID: id.New(), Category: catalog.CategoryFlooring, Name: "Ragréage", Cost: catalog.NewPriceRange(15, 25), Unit: catalog.ParseBillingUnit("m²")},
	}
	snap, err := catalog.NewSnapshot(entries, catalog.DefaultServiceRates())
	if err != nil {
		panic(err)
	}
	return snap, kitchen
}

func money(s string) types.Money { return types.MustMoney(s) }
