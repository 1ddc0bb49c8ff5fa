package invoice

import (
	"context"
	"fmt"
	"time"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
	"renodevis/internal/core/numerator"
	"renodevis/internal/core/tx"
	"renodevis/internal/domain"
	"renodevis/internal/domain/audit"
	"renodevis/internal/domain/documents/quote"
	"renodevis/pkg/logger"
)

// Quotes is the part of the quote service invoices depend on. Both calls
// join the caller's transaction.
type Quotes interface {
	MarkInvoiced(ctx context.Context, quoteID id.ID) (*quote.Quote, error)
	ReleaseInvoiced(ctx context.Context, quoteID id.ID) error
}

// Service provides business operations for invoices, scoped to the user
// carried by the context.
type Service struct {
	repo      Repository
	quotes    Quotes
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
	hooks     *domain.HookRegistry[*Invoice]
	now       func() time.Time
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	quotes Quotes,
	numerator numerator.Generator,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		quotes:    quotes,
		numerator: numerator,
		txManager: txManager,
		audit:     recorder,
		hooks:     domain.NewHookRegistry[*Invoice](),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

func currentUser(ctx context.Context) (string, error) {
	userID := appctx.GetUserID(ctx)
	if userID == "" {
		return "", apperror.NewUnauthorized("authentication required")
	}
	return userID, nil
}

// CreateFromQuote issues the invoice of an accepted quote. The quote moves
// to the invoiced status in the same transaction.
func (s *Service) CreateFromQuote(ctx context.Context, quoteID id.ID) (*Invoice, error) {
	if _, err := currentUser(ctx); err != nil {
		return nil, err
	}

	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByQuote(ctx, quoteID)
		switch {
		case err == nil && existing.Status != StatusCancelled:
			return apperror.NewConflict("Ce devis a déjà été facturé").
				WithDetail("facture", existing.Number)
		case err != nil && !apperror.IsNotFound(err):
			return fmt.Errorf("find invoice of quote: %w", err)
		}

		q, err := s.quotes.MarkInvoiced(ctx, quoteID)
		if err != nil {
			return err
		}

		inv = FromQuote(q)
		inv.Date = s.now()
		audit.EnrichCreatedBy(ctx, inv)
		if err := s.hooks.Run(ctx, domain.BeforeCreate, inv); err != nil {
			return err
		}
		if err := inv.Validate(ctx); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig(numerator.PrefixInvoice),
			&numerator.Options{Strategy: NumeratorStrategy},
			inv.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		inv.Number = number

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return s.audit.Log(ctx, audit.EntityInvoice, inv.ID, audit.ActionCreate, inv)
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, inv); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "invoice created",
		"id", inv.ID,
		"number", inv.Number,
		"quote", inv.QuoteNumber,
		"total_ttc", inv.TotalTTC)

	return inv, nil
}

// GetByID retrieves an invoice with its lines.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	var inv *Invoice
	err = tx.ReadOnly(ctx, s.txManager, func(ctx context.Context) error {
		found, err := s.repo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !found.OwnedBy(userID) {
			return apperror.NewNotFound("invoice", invoiceID)
		}
		if found.Lines, err = s.repo.GetLines(ctx, invoiceID); err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		inv = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) lockOwned(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.GetForUpdate(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.OwnedBy(userID) {
		return nil, apperror.NewNotFound("invoice", invoiceID)
	}
	return inv, nil
}

// SetStatus records a payment or a cancellation. Paying stamps PaidAt.
func (s *Service) SetStatus(ctx context.Context, invoiceID id.ID, next Status) (*Invoice, error) {
	if !next.IsValid() {
		return nil, apperror.NewValidation("statut inconnu").WithDetail("statut", next)
	}

	var inv *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lockOwned(ctx, invoiceID)
		if err != nil {
			return err
		}
		if current.Status == next {
			inv = current
			return nil
		}
		if !current.Status.CanTransitionTo(next) {
			return apperror.NewInvalidTransition("invoice", string(current.Status), string(next))
		}

		current.Status = next
		if next == StatusPaid {
			paid := s.now()
			current.PaidAt = &paid
		}
		current.Touch()
		audit.EnrichUpdatedBy(ctx, current)
		if err := s.repo.Update(ctx, current); err != nil {
			return fmt.Errorf("update invoice status: %w", err)
		}
		if next == StatusCancelled {
			if err := s.quotes.ReleaseInvoiced(ctx, current.QuoteID); err != nil && !apperror.IsNotFound(err) {
				return fmt.Errorf("release quote: %w", err)
			}
		}
		inv = current
		return s.audit.Log(ctx, audit.EntityInvoice, current.ID, audit.ActionStatus, map[string]any{
			"numero": current.Number,
			"statut": current.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice status changed",
		"id", inv.ID,
		"number", inv.Number,
		"status", inv.Status)
	return inv, nil
}

// Delete removes a pending or cancelled invoice and returns its quote to
// the accepted status.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.lockOwned(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanDelete(); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, inv); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, invoiceID); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		// A cancelled invoice already released its quote, which may have
		// been invoiced again since.
		if inv.Status != StatusCancelled {
			if err := s.quotes.ReleaseInvoiced(ctx, inv.QuoteID); err != nil && !apperror.IsNotFound(err) {
				return fmt.Errorf("release quote: %w", err)
			}
		}
		return s.audit.Log(ctx, audit.EntityInvoice, invoiceID, audit.ActionDelete, map[string]any{"numero": inv.Number})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice deleted", "id", invoiceID)
	return nil
}

// List retrieves the context user's invoices, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return domain.ListResult[*Invoice]{}, err
	}
	filter.OwnerID = userID
	filter.Normalize()
	if filter.Status != nil && !filter.Status.IsValid() {
		return domain.ListResult[*Invoice]{}, apperror.NewValidation("statut inconnu").
			WithDetail("statut", *filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// History returns the audit trail of an invoice.
func (s *Service) History(ctx context.Context, invoiceID id.ID) ([]audit.Record, error) {
	if _, err := s.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, audit.EntityInvoice, invoiceID)
}
