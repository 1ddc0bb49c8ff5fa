// Package catalog_repo stores the reference price catalog in PostgreSQL.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"golang.org/x/sync/errgroup"

	"renodevis/internal/domain/catalog"
	"renodevis/internal/infrastructure/storage/postgres"
	"renodevis/pkg/logger"
)

var entryTables = []string{
	TableKitchens,
	TableWorktops,
	TablePartitions,
	TablePartitionOptions,
	TablePaints,
	TableFloorings,
	TableFlooringMethods,
	TableExtras,
}

// Repo loads and replaces the whole catalog. It implements catalog.Provider.
type Repo struct {
	txm      *postgres.TxManager
	inserter *postgres.BatchInserter
}

// NewRepo creates a new catalog repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:      txm,
		inserter: postgres.NewBatchInserter(txm),
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func selectAll[R any](ctx context.Context, q postgres.Querier, table string) ([]R, error) {
	sql, args, err := builder().
		Select(postgres.ExtractDBColumns[R]()...).
		From(table).
		OrderBy("position", "nom").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []R
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	return rows, nil
}

func loadEntries[R entryRow](ctx context.Context, q postgres.Querier, table string) ([]catalog.Entry, error) {
	rows, err := selectAll[R](ctx, q, table)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Entry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out, nil
}

// Load reads every catalog table concurrently and builds a snapshot.
// It must not run inside a transaction: each table is read on its own
// pooled connection.
func (r *Repo) Load(ctx context.Context) (*catalog.Snapshot, error) {
	if r.txm.GetTx(ctx) != nil {
		return nil, fmt.Errorf("catalog load cannot share a transaction")
	}
	q := r.txm.GetQuerier(ctx)

	loaders := map[string]func(context.Context) ([]catalog.Entry, error){
		TableKitchens: func(ctx context.Context) ([]catalog.Entry, error) {
			return loadEntries[kitchenRow](ctx, q, TableKitchens)
		},
		TableWorktops: func(ctx context.Context) ([]catalog.Entry, error) {
			return loadEntries[worktopRow](ctx, q, TableWorktops)
		},
		TablePartitions: func(ctx context.Context) ([]catalog.Entry, error) {
			return loadEntries[partitionRow](ctx, q, TablePartitions)
		},
		TablePartitionOptions: func(ctx context.Context) ([]catalog.Entry, error) {
			return loadEntries[partitionOptionRow](ctx, q, TablePartitionOptions)
		},
		TablePaints: func(ctx context.Context) ([]catalog.Entry, error) { return loadEntries[paintRow](ctx, q, TablePaints) },
		TableFloorings: func(ctx context.Context) ([]catalog.Entry, error) {
			return loadEntries[flooringRow](ctx, q, TableFloorings)
		},
		TableFlooringMethods: func(ctx context.Context) ([]catalog.Entry, error) {
			return loadEntries[flooringMethodRow](ctx, q, TableFlooringMethods)
		},
		TableExtras: func(ctx context.Context) ([]catalog.Entry, error) { return loadEntries[extraRow](ctx, q, TableExtras) },
	}

	results := make([][]catalog.Entry, len(entryTables))
	var rateRows []serviceRateRow

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range entryTables {
		load := loaders[table]
		g.Go(func() error {
			entries, err := load(gctx)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	g.Go(func() error {
		var err error
		rateRows, err = selectServiceRates(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []catalog.Entry
	for _, part := range results {
		entries = append(entries, part...)
	}

	snap, err := catalog.NewSnapshot(entries, serviceRatesOf(rateRows))
	if err != nil {
		return nil, fmt.Errorf("build catalog snapshot: %w", err)
	}
	logger.Info(ctx, "catalog loaded", "entries", snap.Len())
	return snap, nil
}

func selectServiceRates(ctx context.Context, q postgres.Querier) ([]serviceRateRow, error) {
	sql, args, err := builder().
		Select(postgres.ExtractDBColumns[serviceRateRow]()...).
		From(TableServiceRates).
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []serviceRateRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load %s: %w", TableServiceRates, err)
	}
	return rows, nil
}

// tableRows groups the rows of snap per table, columns first.
type tableRows struct {
	columns []string
	values  [][]any
}

func rowsOf(snap *catalog.Snapshot) map[string]*tableRows {
	out := make(map[string]*tableRows)
	add := func(table string, row any) {
		tr, ok := out[table]
		if !ok {
			tr = &tableRows{columns: postgres.ColumnsOf(row)}
			out[table] = tr
		}
		data := postgres.StructToMap(row)
		values := make([]any, len(tr.columns))
		for i, col := range tr.columns {
			values[i] = data[col]
		}
		tr.values = append(tr.values, values)
	}

	positions := make(map[string]int)
	for _, e := range snap.Entries() {
		table, _ := rowOf(e, 0)
		positions[table]++
		_, row := rowOf(e, positions[table])
		add(table, row)
	}
	for _, row := range serviceRateRows(snap.Services) {
		add(TableServiceRates, row)
	}
	return out
}

// ChangedChannel is the NOTIFY channel signalled after Replace commits.
const ChangedChannel = "catalog_changed"

// Replace swaps the whole stored catalog for snap in one transaction.
func (r *Repo) Replace(ctx context.Context, snap *catalog.Snapshot) error {
	grouped := rowsOf(snap)

	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var wipe []postgres.BatchQuery
		for _, table := range append([]string{TableServiceRates}, entryTables...) {
			wipe = append(wipe, postgres.BatchQuery{SQL: "DELETE FROM " + table})
		}
		if err := r.inserter.ExecuteBatch(ctx, wipe); err != nil {
			return err
		}

		for table, tr := range grouped {
			n, err := r.inserter.CopyFromSlice(ctx, table, tr.columns, tr.values)
			if err != nil {
				return err
			}
			logger.Debug(ctx, "catalog table loaded", "table", table, "rows", n)
		}

		// Delivered on commit; listening caches drop their snapshot.
		return r.inserter.ExecuteBatch(ctx, []postgres.BatchQuery{
			{SQL: "SELECT pg_notify($1, '')", Args: []any{ChangedChannel}},
		})
	})
}

var _ catalog.Provider = (*Repo)(nil)
