// Package postgres implements the store interfaces against PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/query"
	"github.com/trekora/trek-api/internal/store"
)

// psql builds queries with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// applyFilter renders the translated filter conditions onto a builder.
// Field names are resolved through the store's column allow-list;
// unknown fields are a validation error, never raw SQL.
func applyFilter(b sq.SelectBuilder, conds []query.Condition, cols map[string]string) (sq.SelectBuilder, error) {
	for _, c := range conds {
		col, ok := cols[c.Field]
		if !ok {
			return b, domain.NewValidationError(c.Field, "is not a filterable field", domain.ErrValidation)
		}
		b = b.Where(sq.Expr(fmt.Sprintf("%s %s ?", col, c.Op), c.Value))
	}
	return b, nil
}

// applySort renders the requested sort order, falling back to the
// store's default ordering when the request does not specify one.
func applySort(b sq.SelectBuilder, sorts []query.SortField, cols map[string]string, defaultOrder string) (sq.SelectBuilder, error) {
	if len(sorts) == 0 {
		return b.OrderBy(defaultOrder), nil
	}
	for _, s := range sorts {
		col, ok := cols[s.Field]
		if !ok {
			return b, domain.NewValidationError(s.Field, "is not a sortable field", domain.ErrValidation)
		}
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		b = b.OrderBy(col + dir)
	}
	return b, nil
}

// applyPagination renders LIMIT/OFFSET from the translated options.
func applyPagination(b sq.SelectBuilder, opts *query.Options) sq.SelectBuilder {
	return b.Limit(uint64(opts.Limit)).Offset(uint64(opts.Offset()))
}

// countMatching runs a COUNT(*) over the same base predicate so
// listings can report totals and reject out-of-range pages.
func countMatching(ctx context.Context, db store.DBTX, table string, base sq.Sqlizer, conds []query.Condition, cols map[string]string) (int, error) {
	b := psql.Select("COUNT(*)").From(table).Where(base)

	b, err := applyFilter(b, conds, cols)
	if err != nil {
		return 0, err
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

// checkPage enforces the page-does-not-exist rule: any page past the
// first whose offset starts at or beyond the matching total fails.
func checkPage(opts *query.Options, total int) error {
	if opts.Page > 1 && opts.Offset() >= total {
		return store.ErrPageNotFound
	}
	return nil
}

// isPgError reports whether err is a PostgreSQL error with the given code.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	return isPgError(err, pgerrcode.UniqueViolation)
}

// isForeignKeyViolation reports whether err is a foreign-key violation.
func isForeignKeyViolation(err error) bool {
	return isPgError(err, pgerrcode.ForeignKeyViolation)
}
