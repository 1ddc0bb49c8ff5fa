package pricing

import (
	"renodevis/internal/core/apperror"
	"renodevis/internal/domain/catalog"
)

const (
	msgNoCategory = "Veuillez sélectionner au moins une catégorie"
	msgNoItems    = "Veuillez remplir au moins un poste de travaux"
	msgIncomplete = "Le devis est incomplet"
)

// Assemble prices every selected category and enabled service of draft
// against snap and returns the ordered line items.
//
// Errors are collected across categories: the returned *apperror.AppError
// lists every message under details["errors"], and no items are returned
// unless the whole draft priced cleanly.
func Assemble(draft QuoteDraft, snap *catalog.Snapshot) ([]LineItem, error) {
	if err := draft.Client.Validate(); err != nil {
		return nil, err
	}
	if len(draft.SelectedCategories()) == 0 && !draft.Services.any() {
		return nil, apperror.NewValidation(msgNoCategory)
	}
	if snap == nil {
		return nil, apperror.NewInternal(nil).WithDetail("reason", "catalog not loaded")
	}

	var results []priced
	if draft.Kitchen != nil {
		results = append(results, priceKitchen(draft.Kitchen, snap))
	}
	if draft.Partition != nil {
		results = append(results, pricePartition(draft.Partition, snap))
	}
	if draft.Paint != nil {
		results = append(results, pricePaint(draft.Paint, snap))
	}
	if draft.Flooring != nil {
		results = append(results, priceFlooring(draft.Flooring, snap))
	}
	results = append(results, priceServices(draft.Services, snap.Services)...)

	var (
		items []LineItem
		errs  []string
	)
	for _, r := range results {
		if r.err != "" {
			errs = append(errs, r.err)
			continue
		}
		items = append(items, r.items...)
	}

	if len(errs) > 0 {
		return nil, apperror.NewValidationList(msgIncomplete, errs)
	}
	if len(items) == 0 {
		return nil, apperror.NewValidation(msgNoItems)
	}
	return items, nil
}

// AssembleReview assembles draft and wraps the items in a Review at the
// draft's VAT rate.
func AssembleReview(draft QuoteDraft, snap *catalog.Snapshot) (Review, error) {
	items, err := Assemble(draft, snap)
	if err != nil {
		return Review{}, err
	}
	if err := ValidateVATRate(draft.VATRate); err != nil {
		return Review{}, apperror.NewValidation("Taux de TVA invalide").WithCause(err)
	}
	return NewReview(items, draft.VATRate), nil
}
