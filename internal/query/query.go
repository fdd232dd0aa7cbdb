// Package query translates HTTP query strings into a structured,
// store-agnostic query description: filter conditions, sort order,
// field projection and pagination. Execution is the caller's
// responsibility; the postgres layer renders the result with its own
// builder against a per-collection column allow-list.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/trekora/trek-api/internal/domain"
)

// Op is a filter comparison operator.
type Op string

// Supported comparison operators. Everything that is not an embedded
// suffix translates to equality.
const (
	OpEq  Op = "="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// DefaultLimit is the page size applied when the request does not
// specify one.
const DefaultLimit = 100

// Condition is a single filter predicate. Value is typed: numeric
// strings become float64 and booleans become bool so comparisons
// against numeric and boolean columns are well-typed.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// SortField is one element of the requested sort order.
type SortField struct {
	Field string
	Desc  bool
}

// Options is the translated form of a request query string.
type Options struct {
	Filter []Condition
	Sort   []SortField
	Fields []string
	Page   int
	Limit  int
}

// Offset returns the number of records to skip for the requested page.
func (o *Options) Offset() int {
	return (o.Page - 1) * o.Limit
}

// reserved keys never reach the filter stage.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var suffixOps = map[string]Op{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// Parse translates raw query parameters into Options. The input is
// never mutated. Returns a validation error for malformed page or
// limit values; unknown filter fields are left for the store to
// reject against its column allow-list.
func Parse(values url.Values) (*Options, error) {
	opts := &Options{
		Page:  1,
		Limit: DefaultLimit,
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, domain.NewValidationError("page", "must be a positive integer", domain.ErrValidation)
		}
		opts.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		opts.Limit = limit
	}

	if raw := values.Get("sort"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			field = strings.TrimSpace(field)
			if field == "" || field == "-" {
				continue
			}
			sf := SortField{Field: field}
			if strings.HasPrefix(field, "-") {
				sf.Field = field[1:]
				sf.Desc = true
			}
			opts.Sort = append(opts.Sort, sf)
		}
	}

	if raw := values.Get("fields"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			if field = strings.TrimSpace(field); field != "" {
				opts.Fields = append(opts.Fields, field)
			}
		}
	}

	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		field, op, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		// Single-value semantics: repeated parameters collapse to the
		// first value, which also neutralizes parameter pollution.
		opts.Filter = append(opts.Filter, Condition{
			Field: field,
			Op:    op,
			Value: typedValue(vals[0]),
		})
	}

	return opts, nil
}

// splitKey separates an optional bracketed operator suffix from the
// field name: "price[gte]" yields ("price", OpGte).
func splitKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", domain.NewValidationError(key, "is not a valid filter parameter", domain.ErrValidation)
	}
	suffix := key[open+1 : len(key)-1]
	op, ok := suffixOps[suffix]
	if !ok {
		return "", "", domain.NewValidationError(key, fmt.Sprintf("has unsupported operator %q", suffix), domain.ErrValidation)
	}
	return key[:open], op, nil
}

// typedValue converts a raw parameter into the most specific Go type
// so the database compares numbers and booleans natively.
func typedValue(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
