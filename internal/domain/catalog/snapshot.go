package catalog

import (
	"context"
	"fmt"

	"renodevis/internal/core/id"
)

// Provider loads the full catalog. A session loads it once, up front.
type Provider interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is a validated, indexed, read-only view of every catalog entry.
type Snapshot struct {
	Kitchens         []Kitchen
	Worktops         []Worktop
	Partitions       []Partition
	PartitionOptions []PartitionOption
	Paints           []Paint
	Floorings        []Flooring
	FlooringMethods  []FlooringMethod
	Extras           []Extra
	Services         ServiceRates

	byID map[id.ID]Entry
}

// NewSnapshot validates the entries and indexes them by id.
// Entries keep the order they are given in.
func NewSnapshot(entries []Entry, rates ServiceRates) (*Snapshot, error) {
	s := &Snapshot{
		Services: rates,
		byID:     make(map[id.ID]Entry, len(entries)),
	}
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("service rates: %w", err)
	}

	for _, e := range entries {
		if err := ValidateEntry(e); err != nil {
			return nil, fmt.Errorf("catalog entry: %w", err)
		}
		if _, dup := s.byID[e.EntryID()]; dup {
			return nil, fmt.Errorf("catalog entry %s: duplicate id", e.EntryID())
		}
		s.byID[e.EntryID()] = e

		switch v := e.(type) {
		case Kitchen:
			s.Kitchens = append(s.Kitchens, v)
		case Worktop:
			s.Worktops = append(s.Worktops, v)
		case Partition:
			s.Partitions = append(s.Partitions, v)
		case PartitionOption:
			s.PartitionOptions = append(s.PartitionOptions, v)
		case Paint:
			s.Paints = append(s.Paints, v)
		case Flooring:
			s.Floorings = append(s.Floorings, v)
		case FlooringMethod:
			s.FlooringMethods = append(s.FlooringMethods, v)
		case Extra:
			s.Extras = append(s.Extras, v)
		}
	}
	return s, nil
}

// Entries returns every entry grouped by variant, in a stable order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.byID))
	for _, e := range s.Kitchens {
		out = append(out, e)
	}
	for _, e := range s.Worktops {
		out = append(out, e)
	}
	for _, e := range s.Partitions {
		out = append(out, e)
	}
	for _, e := range s.PartitionOptions {
		out = append(out, e)
	}
	for _, e := range s.Paints {
		out = append(out, e)
	}
	for _, e := range s.Floorings {
		out = append(out, e)
	}
	for _, e := range s.FlooringMethods {
		out = append(out, e)
	}
	for _, e := range s.Extras {
		out = append(out, e)
	}
	return out
}

// Len is the number of entries.
func (s *Snapshot) Len() int { return len(s.byID) }

// Entry returns any entry by id.
func (s *Snapshot) Entry(entryID id.ID) (Entry, bool) {
	e, ok := s.byID[entryID]
	return e, ok
}

func lookup[T Entry](s *Snapshot, entryID id.ID) (T, bool) {
	var zero T
	e, ok := s.byID[entryID]
	if !ok {
		return zero, false
	}
	v, ok := e.(T)
	return v, ok
}

func (s *Snapshot) Kitchen(v id.ID) (Kitchen, bool)     { return lookup[Kitchen](s, v) }
func (s *Snapshot) Worktop(v id.ID) (Worktop, bool)     { return lookup[Worktop](s, v) }
func (s *Snapshot) Partition(v id.ID) (Partition, bool) { return lookup[Partition](s, v) }
func (s *Snapshot) Paint(v id.ID) (Paint, bool)         { return lookup[Paint](s, v) }
func (s *Snapshot) Flooring(v id.ID) (Flooring, bool)   { return lookup[Flooring](s, v) }
func (s *Snapshot) Extra(v id.ID) (Extra, bool)         { return lookup[Extra](s, v) }

func (s *Snapshot) PartitionOption(v id.ID) (PartitionOption, bool) {
	return lookup[PartitionOption](s, v)
}

func (s *Snapshot) FlooringMethod(v id.ID) (FlooringMethod, bool) {
	return lookup[FlooringMethod](s, v)
}

// ExtrasFor lists the extras attached to category, or all extras when
// category is empty.
func (s *Snapshot) ExtrasFor(category Category) []Extra {
	if category == "" {
		return s.Extras
	}
	var out []Extra
	for _, x := range s.Extras {
		if x.Category == category {
			out = append(out, x)
		}
	}
	return out
}

// SupportPaints lists the paint entries offered for selection.
func (s *Snapshot) SupportPaints() []Paint {
	var out []Paint
	for _, p := range s.Paints {
		if p.Kind == PaintKindSupport {
			out = append(out, p)
		}
	}
	return out
}

// StaticProvider serves a fixed snapshot.
type StaticProvider struct {
	Snapshot *Snapshot
}

// Load implements Provider.
func (p StaticProvider) Load(context.Context) (*Snapshot, error) {
	if p.Snapshot == nil {
		return nil, fmt.Errorf("static catalog provider: no snapshot")
	}
	return p.Snapshot, nil
}
