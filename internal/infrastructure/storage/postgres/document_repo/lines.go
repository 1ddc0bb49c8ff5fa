package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"renodevis/internal/core/id"
	"renodevis/internal/domain/documents"
	"renodevis/internal/infrastructure/storage/postgres"
)

var lineColumns = postgres.ExtractDBColumns[documents.Line]()

// lineStore reads and writes the line table of one document kind.
type lineStore struct {
	txm   *postgres.TxManager
	table string
}

func (s lineStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetLines returns the lines of a document ordered by line number.
func (s lineStore) GetLines(ctx context.Context, docID id.ID) ([]documents.Line, error) {
	sql, args, err := s.builder().
		Select(lineColumns...).
		From(s.table).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []documents.Line
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines from %s: %w", s.table, err)
	}
	return lines, nil
}

// SaveLines replaces every line of a document.
func (s lineStore) SaveLines(ctx context.Context, docID id.ID, lines []documents.Line) error {
	querier := s.txm.GetQuerier(ctx)

	delSQL, delArgs, err := s.builder().
		Delete(s.table).
		Where(squirrel.Eq{"document_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete lines from %s: %w", s.table, err)
	}

	if len(lines) == 0 {
		return nil
	}

	sql, args, err := s.insertQuery(docID, lines)
	if err != nil {
		return err
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines into %s: %w", s.table, err)
	}
	return nil
}

func (s lineStore) insertQuery(docID id.ID, lines []documents.Line) (string, []any, error) {
	q := s.builder().Insert(s.table).Columns(lineColumns...)
	for i := range lines {
		line := lines[i]
		line.DocumentID = docID
		data := postgres.StructToMap(line)

		values := make([]any, len(lineColumns))
		for j, col := range lineColumns {
			values[j] = data[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return sql, args, nil
}
