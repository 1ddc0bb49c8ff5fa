package quote

import (
	"context"
	"sort"
	"sync"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
	"renodevis/internal/domain"
	"renodevis/internal/domain/audit"
	"renodevis/internal/domain/documents"
)

type memRepo struct {
	mu     sync.Mutex
	quotes map[id.ID]Quote
	lines  map[id.ID][]documents.Line
}

func newMemRepo() *memRepo {
	return &memRepo{
		quotes: make(map[id.ID]Quote),
		lines:  make(map[id.ID][]documents.Line),
	}
}

func (r *memRepo) Create(_ context.Context, q *Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *q
	c.Lines = nil
	r.quotes[q.ID] = c
	return nil
}

func (r *memRepo) GetByID(_ context.Context, quoteID id.ID) (*Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, apperror.NewNotFound("quote", quoteID)
	}
	return &q, nil
}

func (r *memRepo) GetByNumber(_ context.Context, number string) (*Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.Number == number {
			return &q, nil
		}
	}
	return nil, apperror.NewNotFound("quote", number)
}

func (r *memRepo) Update(_ context.Context, q *Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.quotes[q.ID]
	if !ok {
		return apperror.NewNotFound("quote", q.ID)
	}
	if stored.Version != q.Version-1 {
		return apperror.NewConcurrentModification("quote", q.ID)
	}
	c := *q
	c.Lines = nil
	r.quotes[q.ID] = c
	return nil
}

func (r *memRepo) Delete(_ context.Context, quoteID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quotes, quoteID)
	delete(r.lines, quoteID)
	return nil
}

func (r *memRepo) GetLines(_ context.Context, quoteID id.ID) ([]documents.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]documents.Line(nil), r.lines[quoteID]...), nil
}

func (r *memRepo) SaveLines(_ context.Context, quoteID id.ID, lines []documents.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[quoteID] = append([]documents.Line(nil), lines...)
	return nil
}

func (r *memRepo) List(_ context.Context, f ListFilter) (domain.ListResult[*Quote], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Quote
	for _, q := range r.quotes {
		if q.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != nil && q.Status != *f.Status {
			continue
		}
		q := q
		items = append(items, &q)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
	return domain.ListResult[*Quote]{Items: items, TotalCount: int64(len(items)), Limit: f.Limit}, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, quoteID id.ID) (*Quote, error) {
	return r.GetByID(ctx, quoteID)
}

type inlineTx struct{ runs int }

func (t *inlineTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.runs++
	return fn(ctx)
}

type auditLog struct {
	records []audit.Record
}

func (a *auditLog) Log(_ context.Context, entityType string, entityID id.ID, action audit.Action, _ any) error {
	a.records = append(a.records, audit.Record{ID: id.New(), EntityType: entityType, EntityID: entityID, Action: action})
	return nil
}

func (a *auditLog) History(_ context.Context, entityType string, entityID id.ID) ([]audit.Record, error) {
	var out []audit.Record
	for _, r := range a.records {
		if r.EntityType == entityType && r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (a *auditLog) actions() []audit.Action {
	out := make([]audit.Action, len(a.records))
	for i, r := range a.records {
		out[i] = r.Action
	}
	return out
}

func asUser(userID string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID})
}
