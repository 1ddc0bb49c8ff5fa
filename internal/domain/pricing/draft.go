package pricing

import (
	"renodevis/internal/core/id"
	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/domain/client"
)

// DefaultVATRate applies when a draft does not set one.
var DefaultVATRate = types.MustMoney("20")

// ExtraPick is a chosen extra and whether it is offered.
type ExtraPick struct {
	ID      id.ID `json:"id"`
	Offered bool  `json:"offert,omitempty"`
}

// KitchenSelection is the kitchen part of a draft.
type KitchenSelection struct {
	TypeID        id.ID             `json:"type"`
	Length        Input             `json:"quantite"`
	SupplyInstall bool              `json:"pose_et_fourniture"`
	Appliances    Input             `json:"nb_appareils,omitempty"`
	Offered       bool              `json:"offert,omitempty"`
	Extras        []ExtraPick       `json:"extras,omitempty"`
	Worktop       *WorktopSelection `json:"plan_travail,omitempty"`
}

// WorktopSelection is a worktop attached to a kitchen.
type WorktopSelection struct {
	TypeID        id.ID `json:"type"`
	Quantity      Input `json:"quantite"`
	SupplyInstall bool  `json:"pose_et_fourniture"`
	Offered       bool  `json:"offert,omitempty"`
}

// OptionPick is a partition supplement with an optional area override.
type OptionPick struct {
	ID      id.ID `json:"id"`
	Area    Input `json:"superficie,omitempty"`
	Offered bool  `json:"offert,omitempty"`
}

// PartitionSelection is the partition wall part of a draft.
type PartitionSelection struct {
	TypeID        id.ID        `json:"type"`
	Area          Input        `json:"quantite"`
	SupplyInstall bool         `json:"pose_et_fourniture"`
	Offered       bool         `json:"offert,omitempty"`
	Options       []OptionPick `json:"options,omitempty"`
	Extras        []ExtraPick  `json:"extras,omitempty"`
}

// SurfacePick is one paint surface: a paint type and an area.
type SurfacePick struct {
	TypeID  id.ID `json:"type"`
	Area    Input `json:"quantite"`
	Offered bool  `json:"offert,omitempty"`
}

func (s *SurfacePick) filled() bool {
	return s != nil && !id.IsNil(s.TypeID) && s.Area.Quantity().IsPositive()
}

// PaintSelection is the paint part of a draft. Wall and ceiling are
// independent.
type PaintSelection struct {
	Wall    *SurfacePick `json:"mur,omitempty"`
	Ceiling *SurfacePick `json:"plafond,omitempty"`
	Extras  []ExtraPick  `json:"extras,omitempty"`
}

// FlooringSelection is the flooring part of a draft.
type FlooringSelection struct {
	TypeID        id.ID       `json:"type"`
	Area          Input       `json:"quantite"`
	SupplyInstall bool        `json:"pose_et_fourniture"`
	MethodID      id.ID       `json:"type_pose"`
	Offered       bool        `json:"offert,omitempty"`
	Extras        []ExtraPick `json:"extras,omitempty"`
}

// DistanceService is a per-kilometer service (delivery).
type DistanceService struct {
	Km        Input `json:"km"`
	RatePerKm Input `json:"tarif_km,omitempty"`
	CustomFee Input `json:"montant_personnalise,omitempty"`
	Offered   bool  `json:"offert,omitempty"`
}

// TravelService is a per-kilometer service billed per trip.
type TravelService struct {
	DistanceService
	Trips Input `json:"nb_trajets,omitempty"`
}

// DisposalService is waste removal billed per cubic meter.
type DisposalService struct {
	Kind      catalog.WasteKind `json:"type"`
	Volume    Input             `json:"volume_m3"`
	RatePerM3 Input             `json:"tarif_m3,omitempty"`
	CustomFee Input             `json:"montant_personnalise,omitempty"`
	Offered   bool              `json:"offert,omitempty"`
}

// ServiceSelections lists the enabled services; nil means disabled.
type ServiceSelections struct {
	Delivery *DistanceService `json:"livraison,omitempty"`
	Travel   *TravelService   `json:"deplacement,omitempty"`
	Disposal *DisposalService `json:"debarras,omitempty"`
}

func (s ServiceSelections) any() bool {
	return s.Delivery != nil || s.Travel != nil || s.Disposal != nil
}

// QuoteDraft is everything the user entered for one quote. A nil category
// selection means the category is not selected.
type QuoteDraft struct {
	Client         client.Info         `json:"client"`
	VATRate        types.Money         `json:"tva_taux"`
	ValidityDays   int                 `json:"validite_jours,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	EditingQuoteID *id.ID              `json:"editing_devis_id,omitempty"`
	Kitchen        *KitchenSelection   `json:"cuisine,omitempty"`
	Partition      *PartitionSelection `json:"cloison,omitempty"`
	Paint          *PaintSelection     `json:"peinture,omitempty"`
	Flooring       *FlooringSelection  `json:"parquet,omitempty"`
	Services       ServiceSelections   `json:"services"`
}

// SelectedCategories lists the selected work categories in assembly order.
func (d QuoteDraft) SelectedCategories() []catalog.Category {
	var out []catalog.Category
	if d.Kitchen != nil {
		out = append(out, catalog.CategoryKitchen)
	}
	if d.Partition != nil {
		out = append(out, catalog.CategoryPartition)
	}
	if d.Paint != nil {
		out = append(out, catalog.CategoryPaint)
	}
	if d.Flooring != nil {
		out = append(out, catalog.CategoryFlooring)
	}
	return out
}

// IsEditing reports whether the draft updates an existing quote.
func (d QuoteDraft) IsEditing() bool {
	return d.EditingQuoteID != nil && !id.IsNil(*d.EditingQuoteID)
}

// Clone returns a deep copy.
func (d QuoteDraft) Clone() QuoteDraft {
	out := d
	if d.EditingQuoteID != nil {
		v := *d.EditingQuoteID
		out.EditingQuoteID = &v
	}
	if d.Kitchen != nil {
		k := *d.Kitchen
		k.Extras = append([]ExtraPick(nil), d.Kitchen.Extras...)
		if d.Kitchen.Worktop != nil {
			w := *d.Kitchen.Worktop
			k.Worktop = &w
		}
		out.Kitchen = &k
	}
	if d.Partition != nil {
		p := *d.Partition
		p.Options = append([]OptionPick(nil), d.Partition.Options...)
		p.Extras = append([]ExtraPick(nil), d.Partition.Extras...)
		out.Partition = &p
	}
	if d.Paint != nil {
		p := *d.Paint
		if d.Paint.Wall != nil {
			w := *d.Paint.Wall
			p.Wall = &w
		}
		if d.Paint.Ceiling != nil {
			c := *d.Paint.Ceiling
			p.Ceiling = &c
		}
		p.Extras = append([]ExtraPick(nil), d.Paint.Extras...)
		out.Paint = &p
	}
	if d.Flooring != nil {
		f := *d.Flooring
		f.Extras = append([]ExtraPick(nil), d.Flooring.Extras...)
		out.Flooring = &f
	}
	if d.Services.Delivery != nil {
		s := *d.Services.Delivery
		out.Services.Delivery = &s
	}
	if d.Services.Travel != nil {
		s := *d.Services.Travel
		out.Services.Travel = &s
	}
	if d.Services.Disposal != nil {
		s := *d.Services.Disposal
		out.Services.Disposal = &s
	}
	return out
}

// QuoteDraftBuilder assembles a QuoteDraft step by step, one sub-builder per
// category. Build returns an independent copy, so a builder can keep being
// edited after a draft was taken from it.
type QuoteDraftBuilder struct {
	draft QuoteDraft
}

// NewQuoteDraftBuilder starts an empty draft with the default VAT rate.
func NewQuoteDraftBuilder() *QuoteDraftBuilder {
	return &QuoteDraftBuilder{draft: QuoteDraft{VATRate: DefaultVATRate}}
}

// FromDraft starts a builder from an existing draft.
func FromDraft(d QuoteDraft) *QuoteDraftBuilder {
	return &QuoteDraftBuilder{draft: d.Clone()}
}

func (b *QuoteDraftBuilder) Client(c client.Info) *QuoteDraftBuilder {
	b.draft.Client = c
	return b
}

func (b *QuoteDraftBuilder) VATRate(rate types.Money) *QuoteDraftBuilder {
	b.draft.VATRate = rate
	return b
}

func (b *QuoteDraftBuilder) Notes(notes string) *QuoteDraftBuilder {
	b.draft.Notes = notes
	return b
}

func (b *QuoteDraftBuilder) ValidityDays(days int) *QuoteDraftBuilder {
	b.draft.ValidityDays = days
	return b
}

// Editing marks the draft as an update of quote quoteID.
func (b *QuoteDraftBuilder) Editing(quoteID id.ID) *QuoteDraftBuilder {
	b.draft.EditingQuoteID = &quoteID
	return b
}

// Deselect removes a category and everything entered for it.
func (b *QuoteDraftBuilder) Deselect(c catalog.Category) *QuoteDraftBuilder {
	switch c {
	case catalog.CategoryKitchen:
		b.draft.Kitchen = nil
	case catalog.CategoryPartition:
		b.draft.Partition = nil
	case catalog.CategoryPaint:
		b.draft.Paint = nil
	case catalog.CategoryFlooring:
		b.draft.Flooring = nil
	case catalog.CategoryServices:
		b.draft.Services = ServiceSelections{}
	}
	return b
}

// Build returns the draft.
func (b *QuoteDraftBuilder) Build() QuoteDraft {
	return b.draft.Clone()
}

// Kitchen selects the kitchen category and returns its sub-builder.
func (b *QuoteDraftBuilder) Kitchen() *KitchenBuilder {
	if b.draft.Kitchen == nil {
		b.draft.Kitchen = &KitchenSelection{SupplyInstall: true}
	}
	return &KitchenBuilder{sel: b.draft.Kitchen}
}

// Partition selects the partition category and returns its sub-builder.
func (b *QuoteDraftBuilder) Partition() *PartitionBuilder {
	if b.draft.Partition == nil {
		b.draft.Partition = &PartitionSelection{SupplyInstall: true}
	}
	return &PartitionBuilder{sel: b.draft.Partition}
}

// Paint selects the paint category and returns its sub-builder.
func (b *QuoteDraftBuilder) Paint() *PaintBuilder {
	if b.draft.Paint == nil {
		b.draft.Paint = &PaintSelection{}
	}
	return &PaintBuilder{sel: b.draft.Paint}
}

// Flooring selects the flooring category and returns its sub-builder.
func (b *QuoteDraftBuilder) Flooring() *FlooringBuilder {
	if b.draft.Flooring == nil {
		b.draft.Flooring = &FlooringSelection{SupplyInstall: true}
	}
	return &FlooringBuilder{sel: b.draft.Flooring}
}

// Services returns the services sub-builder.
func (b *QuoteDraftBuilder) Services() *ServicesBuilder {
	return &ServicesBuilder{sel: &b.draft.Services}
}

// KitchenBuilder edits the kitchen selection.
type KitchenBuilder struct{ sel *KitchenSelection }

func (k *KitchenBuilder) Type(v id.ID) *KitchenBuilder      { k.sel.TypeID = v; return k }
func (k *KitchenBuilder) Length(raw string) *KitchenBuilder { k.sel.Length = Input(raw); return k }
func (k *KitchenBuilder) SupplyInstall(on bool) *KitchenBuilder {
	k.sel.SupplyInstall = on
	return k
}
func (k *KitchenBuilder) Appliances(raw string) *KitchenBuilder {
	k.sel.Appliances = Input(raw)
	return k
}
func (k *KitchenBuilder) Offered(on bool) *KitchenBuilder { k.sel.Offered = on; return k }
func (k *KitchenBuilder) Extra(v id.ID, offered bool) *KitchenBuilder {
	k.sel.Extras = append(k.sel.Extras, ExtraPick{ID: v, Offered: offered})
	return k
}

// Worktop attaches a worktop; it replaces any previous one.
func (k *KitchenBuilder) Worktop(v id.ID, quantity string, supplyInstall, offered bool) *KitchenBuilder {
	k.sel.Worktop = &WorktopSelection{TypeID: v, Quantity: Input(quantity), SupplyInstall: supplyInstall, Offered: offered}
	return k
}

// PartitionBuilder edits the partition selection.
type PartitionBuilder struct{ sel *PartitionSelection }

func (p *PartitionBuilder) Type(v id.ID) *PartitionBuilder    { p.sel.TypeID = v; return p }
func (p *PartitionBuilder) Area(raw string) *PartitionBuilder { p.sel.Area = Input(raw); return p }
func (p *PartitionBuilder) Offered(on bool) *PartitionBuilder { p.sel.Offered = on; return p }
func (p *PartitionBuilder) SupplyInstall(on bool) *PartitionBuilder {
	p.sel.SupplyInstall = on
	return p
}

// Option adds a supplement; area may be empty to use the partition area.
func (p *PartitionBuilder) Option(v id.ID, area string, offered bool) *PartitionBuilder {
	p.sel.Options = append(p.sel.Options, OptionPick{ID: v, Area: Input(area), Offered: offered})
	return p
}

func (p *PartitionBuilder) Extra(v id.ID, offered bool) *PartitionBuilder {
	p.sel.Extras = append(p.sel.Extras, ExtraPick{ID: v, Offered: offered})
	return p
}

// PaintBuilder edits the paint selection.
type PaintBuilder struct{ sel *PaintSelection }

func (p *PaintBuilder) Wall(v id.ID, area string) *PaintBuilder {
	p.sel.Wall = &SurfacePick{TypeID: v, Area: Input(area)}
	return p
}

func (p *PaintBuilder) Ceiling(v id.ID, area string) *PaintBuilder {
	p.sel.Ceiling = &SurfacePick{TypeID: v, Area: Input(area)}
	return p
}

func (p *PaintBuilder) Extra(v id.ID, offered bool) *PaintBuilder {
	p.sel.Extras = append(p.sel.Extras, ExtraPick{ID: v, Offered: offered})
	return p
}

// FlooringBuilder edits the flooring selection.
type FlooringBuilder struct{ sel *FlooringSelection }

func (f *FlooringBuilder) Type(v id.ID) *FlooringBuilder    { f.sel.TypeID = v; return f }
func (f *FlooringBuilder) Area(raw string) *FlooringBuilder { f.sel.Area = Input(raw); return f }
func (f *FlooringBuilder) Method(v id.ID) *FlooringBuilder  { f.sel.MethodID = v; return f }
func (f *FlooringBuilder) Offered(on bool) *FlooringBuilder { f.sel.Offered = on; return f }
func (f *FlooringBuilder) SupplyInstall(on bool) *FlooringBuilder {
	f.sel.SupplyInstall = on
	return f
}
func (f *FlooringBuilder) Extra(v id.ID, offered bool) *FlooringBuilder {
	f.sel.Extras = append(f.sel.Extras, ExtraPick{ID: v, Offered: offered})
	return f
}

// ServicesBuilder enables and configures services.
type ServicesBuilder struct{ sel *ServiceSelections }

func (s *ServicesBuilder) Delivery(km string) *DistanceService {
	s.sel.Delivery = &DistanceService{Km: Input(km)}
	return s.sel.Delivery
}

func (s *ServicesBuilder) Travel(km, trips string) *TravelService {
	s.sel.Travel = &TravelService{DistanceService: DistanceService{Km: Input(km)}, Trips: Input(trips)}
	return s.sel.Travel
}

func (s *ServicesBuilder) Disposal(kind catalog.WasteKind, volume string) *DisposalService {
	s.sel.Disposal = &DisposalService{Kind: kind, Volume: Input(volume)}
	return s.sel.Disposal
}
