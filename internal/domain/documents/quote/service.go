package quote

import (
	"context"
	"fmt"
	"time"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/entity"
	"renodevis/internal/core/id"
	"renodevis/internal/core/numerator"
	"renodevis/internal/core/tx"
	"renodevis/internal/domain"
	"renodevis/internal/domain/audit"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/client"
	"renodevis/internal/domain/documents"
	"renodevis/internal/domain/pricing"
	"renodevis/pkg/logger"
)

// Service provides business operations for quotes. Every operation is
// scoped to the user carried by the context.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
	hooks     *domain.HookRegistry[*Quote]
	cfg       Config
	now       func() time.Time
}

// NewService creates a new quote service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
	recorder audit.Recorder,
	cfg Config,
) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = DefaultValidityDays
	}
	s := &Service{
		repo:      repo,
		numerator: numerator,
		txManager: txManager,
		audit:     recorder,
		hooks:     domain.NewHookRegistry[*Quote](),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.hooks.OnBeforeCreate(s.applyDefaults)
	s.hooks.OnBeforeCreate(normalizeClient)
	s.hooks.OnBeforeUpdate(normalizeClient)
	return s
}

// applyDefaults fills the date, validity and status of a new quote.
func (s *Service) applyDefaults(_ context.Context, q *Quote) error {
	if q.Date.IsZero() {
		q.Date = s.now()
	}
	if q.ValidUntil.IsZero() {
		q.ValidUntil = q.Date.AddDate(0, 0, s.cfg.ValidityDays)
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	return nil
}

func normalizeClient(_ context.Context, q *Quote) error {
	q.Info = q.Info.Normalized()
	return nil
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Quote] {
	return s.hooks
}

func currentUser(ctx context.Context) (string, error) {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return "", apperror.NewUnauthorized("authentication required")
	}
	return userID, nil
}

// owned hides other accounts' quotes behind a not-found error.
func owned(q *Quote, userID string, quoteID id.ID) (*Quote, error) {
	if !q.OwnedBy(userID) {
		return nil, apperror.NewNotFound("quote", quoteID)
	}
	return q, nil
}

// New returns an unsaved draft quote for the context user with the
// configured defaults.
func (s *Service) New(ctx context.Context, c client.Info) (*Quote, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	q := New(userID, c, s.cfg.VATRate, s.cfg.ValidityDays)
	q.Date = s.now()
	q.ValidUntil = q.Date.AddDate(0, 0, s.cfg.ValidityDays)
	return q, nil
}

// Create numbers and stores a new quote. Lines are recalculated first; the
// stored totals never come from the caller.
func (s *Service) Create(ctx context.Context, q *Quote) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if id.IsNil(q.ID) {
		q.BaseDocument = entity.NewBaseDocument()
	}
	q.OwnerID = userID
	audit.EnrichCreatedBy(ctx, q)

	if err := s.hooks.Run(ctx, domain.BeforeCreate, q); err != nil {
		return err
	}
	if err := documents.ValidateVATRate(q.VATRate); err != nil {
		return err
	}

	q.Recalculate()
	if err := q.Validate(ctx); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if q.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx,
				numerator.DefaultConfig(numerator.PrefixQuote),
				&numerator.Options{Strategy: NumeratorStrategy},
				q.Date)
			if err != nil {
				return fmt.Errorf("generate number: %w", err)
			}
			q.Number = number
		}

		if err := s.repo.Create(ctx, q); err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		if err := s.repo.SaveLines(ctx, q.ID, q.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Log(ctx, audit.EntityQuote, q.ID, audit.ActionCreate, q)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, q); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "quote created",
		"id", q.ID,
		"number", q.Number,
		"total_ttc", q.TotalTTC)

	return nil
}

// GetByID retrieves a quote with its lines.
func (s *Service) GetByID(ctx context.Context, quoteID id.ID) (*Quote, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	var q *Quote
	err = tx.ReadOnly(ctx, s.txManager, func(ctx context.Context) error {
		found, err := s.repo.GetByID(ctx, quoteID)
		if err != nil {
			return err
		}
		if _, err := owned(found, userID, quoteID); err != nil {
			return err
		}
		if found.Lines, err = s.repo.GetLines(ctx, quoteID); err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		q = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// lockOwned loads and locks a quote of the context user. Must run inside a
// transaction.
func (s *Service) lockOwned(ctx context.Context, quoteID id.ID) (*Quote, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	q, err := s.repo.GetForUpdate(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return owned(q, userID, quoteID)
}

// Update replaces the content of an editable quote: client, VAT rate,
// validity, notes and lines. Number, status and owner are kept. A non-zero
// q.Version must match the stored version.
func (s *Service) Update(ctx context.Context, q *Quote) error {
	if err := s.hooks.Run(ctx, domain.BeforeUpdate, q); err != nil {
		return err
	}

	var saved *Quote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, q.ID)
		if err != nil {
			return err
		}
		if q.Version != 0 && q.Version != current.Version {
			return apperror.NewConcurrentModification("quote", q.ID)
		}
		if err := current.CanModify(); err != nil {
			return err
		}

		if err := documents.ValidateVATRate(q.VATRate); err != nil {
			return err
		}
		current.Info = q.Info
		current.VATRate = q.VATRate
		current.Notes = q.Notes
		if !q.ValidUntil.IsZero() {
			current.ValidUntil = q.ValidUntil
		}
		current.SetLines(q.Lines)
		if err := current.Validate(ctx); err != nil {
			return err
		}

		current.Touch()
		audit.EnrichUpdatedBy(ctx, current)
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update quote: %w", err)
		}
		if err := s.repo.SaveLines(ctx, current.ID, current.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		saved = current
		return s.audit.Log(ctx, audit.EntityQuote, current.ID, audit.ActionUpdate, current)
	})
	if err != nil {
		return err
	}

	*q = *saved
	if err := s.hooks.Run(ctx, domain.AfterUpdate, q); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}
	return nil
}

// SetStatus moves a quote along its lifecycle. The invoiced status is
// reserved to invoice creation.
func (s *Service) SetStatus(ctx context.Context, quoteID id.ID, next Status) (*Quote, error) {
	if !next.IsValid() {
		return nil, apperror.NewValidation("statut inconnu").WithDetail("statut", next)
	}
	if next == StatusInvoiced {
		return nil, apperror.NewBusinessRule(apperror.CodeInvalidTransition,
			"Un devis ne passe au statut facturé qu'à la création de sa facture")
	}
	return s.transition(ctx, quoteID, next)
}

// MarkInvoiced moves an accepted quote to the invoiced status and returns
// it with its lines. It joins the caller's transaction.
func (s *Service) MarkInvoiced(ctx context.Context, quoteID id.ID) (*Quote, error) {
	var q *Quote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, quoteID)
		if err != nil {
			return err
		}
		if current.Status != StatusAccepted {
			return apperror.NewBusinessRule(apperror.CodeInvalidTransition,
				"Seul un devis accepté peut être facturé").
				WithDetail("statut", current.Status)
		}
		if q, err = s.applyStatus(ctx, current, StatusInvoiced); err != nil {
			return err
		}
		lines, err := s.repo.GetLines(ctx, quoteID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		q.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ReleaseInvoiced moves an invoiced quote back to accepted once its invoice
// is deleted, so it can be invoiced again. It joins the caller's transaction.
func (s *Service) ReleaseInvoiced(ctx context.Context, quoteID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.lockOwned(ctx, quoteID)
		if err != nil {
			return err
		}
		if q.Status != StatusInvoiced {
			return nil
		}
		q.Status = StatusAccepted
		q.Touch()
		audit.EnrichUpdatedBy(ctx, q)
		if err := s.repo.Update(ctx, q); err != nil {
			return fmt.Errorf("update quote status: %w", err)
		}
		return s.audit.Log(ctx, audit.EntityQuote, q.ID, audit.ActionStatus, map[string]any{
			"numero": q.Number,
			"statut": q.Status,
		})
	})
}

func (s *Service) transition(ctx context.Context, quoteID id.ID, next Status) (*Quote, error) {
	var q *Quote
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, quoteID)
		if err != nil {
			return err
		}
		q, err = s.applyStatus(ctx, current, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quote status changed",
		"id", q.ID,
		"number", q.Number,
		"status", q.Status)
	return q, nil
}

func (s *Service) applyStatus(ctx context.Context, q *Quote, next Status) (*Quote, error) {
	if q.Status == next {
		return q, nil
	}
	if !q.Status.CanTransitionTo(next) {
		return nil, apperror.NewInvalidTransition("quote", string(q.Status), string(next))
	}
	q.Status = next
	q.Touch()
	audit.EnrichUpdatedBy(ctx, q)
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update quote status: %w", err)
	}
	if err := s.audit.Log(ctx, audit.EntityQuote, q.ID, audit.ActionStatus, map[string]any{
		"numero": q.Number,
		"statut": q.Status,
	}); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a quote. Invoiced quotes are kept for the invoice trail.
func (s *Service) Delete(ctx context.Context, quoteID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.lockOwned(ctx, quoteID)
		if err != nil {
			return err
		}
		if q.Status == StatusInvoiced {
			return apperror.NewDocumentLocked("quote", string(q.Status)).
				WithDetail("quote_id", quoteID.String())
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, q); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, quoteID); err != nil {
			return fmt.Errorf("delete quote: %w", err)
		}
		return s.audit.Log(ctx, audit.EntityQuote, quoteID, audit.ActionDelete, map[string]any{"numero": q.Number})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "quote deleted", "id", quoteID)
	return nil
}

// List retrieves the context user's quotes, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return domain.ListResult[*Quote]{}, err
	}
	filter.OwnerID = userID
	filter.Normalize()
	if filter.Status != nil && !filter.Status.IsValid() {
		return domain.ListResult[*Quote]{}, apperror.NewValidation("statut inconnu").
			WithDetail("statut", *filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// History returns the audit trail of a quote.
func (s *Service) History(ctx context.Context, quoteID id.ID) ([]audit.Record, error) {
	if _, err := s.GetByID(ctx, quoteID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, audit.EntityQuote, quoteID)
}

// CreateFromDraft assembles draft against snap and stores the result. When
// the draft edits an existing quote, that quote's content is replaced
// instead.
func (s *Service) CreateFromDraft(ctx context.Context, draft pricing.QuoteDraft, snap *catalog.Snapshot) (*Quote, error) {
	items, err := pricing.Assemble(draft, snap)
	if err != nil {
		return nil, err
	}

	if err := pricing.ValidateVATRate(draft.VATRate); err != nil {
		return nil, apperror.NewValidation("Taux de TVA invalide").
			WithDetail("field", "tva_taux").
			WithCause(err)
	}
	lines := documents.LinesFromItems(items)

	if draft.IsEditing() {
		q, err := s.GetByID(ctx, *draft.EditingQuoteID)
		if err != nil {
			return nil, err
		}
		q.Info = draft.Client
		q.VATRate = draft.VATRate
		q.Notes = draft.Notes
		q.Lines = lines
		if err := s.Update(ctx, q); err != nil {
			return nil, err
		}
		return q, nil
	}

	q, err := s.New(ctx, draft.Client)
	if err != nil {
		return nil, err
	}
	q.VATRate = draft.VATRate
	q.Notes = draft.Notes
	if draft.ValidityDays > 0 {
		q.ValidUntil = q.Date.AddDate(0, 0, draft.ValidityDays)
	}
	q.Lines = lines
	if err := s.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}
