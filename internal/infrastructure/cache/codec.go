package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"renodevis/internal/core/id"
	"renodevis/internal/domain/catalog"
)

// payloadVersion is bumped whenever snapshotPayload changes shape. Entries
// written with another version are treated as a miss.
const payloadVersion = 1

type snapshotPayload struct {
	Version          int                       `msgpack:"v"`
	Kitchens         []catalog.Kitchen         `msgpack:"kitchens"`
	Worktops         []catalog.Worktop         `msgpack:"worktops"`
	Partitions       []catalog.Partition       `msgpack:"partitions"`
	PartitionOptions []catalog.PartitionOption `msgpack:"partition_options"`
	Paints           []catalog.Paint           `msgpack:"paints"`
	Floorings        []catalog.Flooring        `msgpack:"floorings"`
	FlooringMethods  []catalog.FlooringMethod  `msgpack:"flooring_methods"`
	Extras           []extraPayload            `msgpack:"extras"`
	Services         catalog.ServiceRates      `msgpack:"services"`
}

// extraPayload keeps the billing unit as its raw label; the kind is resolved
// again on decode.
type extraPayload struct {
	ID          id.ID              `msgpack:"id"`
	Category    catalog.Category   `msgpack:"categorie"`
	Name        string             `msgpack:"nom"`
	Description string             `msgpack:"description"`
	Cost        catalog.PriceRange `msgpack:"cout"`
	Unit        string             `msgpack:"unite"`
}

func encodeSnapshot(s *catalog.Snapshot) ([]byte, error) {
	p := snapshotPayload{
		Version:          payloadVersion,
		Kitchens:         s.Kitchens,
		Worktops:         s.Worktops,
		Partitions:       s.Partitions,
		PartitionOptions: s.PartitionOptions,
		Paints:           s.Paints,
		Floorings:        s.Floorings,
		FlooringMethods:  s.FlooringMethods,
		Services:         s.Services,
	}
	for _, x := range s.Extras {
		p.Extras = append(p.Extras, extraPayload{
			ID:          x.ID,
			Category:    x.Category,
			Name:        x.Name,
			Description: x.Description,
			Cost:        x.Cost,
			Unit:        x.Unit.Label,
		})
	}
	return msgpack.Marshal(&p)
}

func decodeSnapshot(data []byte) (*catalog.Snapshot, error) {
	var p snapshotPayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	if p.Version != payloadVersion {
		return nil, fmt.Errorf("catalog snapshot version %d, want %d", p.Version, payloadVersion)
	}

	var entries []catalog.Entry
	for _, e := range p.Kitchens {
		entries = append(entries, e)
	}
	for _, e := range p.Worktops {
		entries = append(entries, e)
	}
	for _, e := range p.Partitions {
		entries = append(entries, e)
	}
	for _, e := range p.PartitionOptions {
		entries = append(entries, e)
	}
	for _, e := range p.Paints {
		entries = append(entries, e)
	}
	for _, e := range p.Floorings {
		entries = append(entries, e)
	}
	for _, e := range p.FlooringMethods {
		entries = append(entries, e)
	}
	for _, x := range p.Extras {
		entries = append(entries, catalog.Extra{
			ID:          x.ID,
			Category:    x.Category,
			Name:        x.Name,
			Description: x.Description,
			Cost:        x.Cost,
			Unit:        catalog.ParseBillingUnit(x.Unit),
		})
	}
	return catalog.NewSnapshot(entries, p.Services)
}
