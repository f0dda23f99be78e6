// Package filters turns raw request parameters into a bounded, paginated,
// field-limited query description that a repository can render.
package filters

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxOffset    = math.MaxInt32
)

// ErrInvalidValue is wrapped by every error caused by a known field receiving a bad value.
var ErrInvalidValue = errors.New("invalid filter value")

// Reserved parameters never become field filters.
var reserved = map[string]struct{}{
	"sort":   {},
	"fields": {},
	"q":      {},
	"page":   {},
	"limit":  {},
}

// Operator is a comparison applied by a Condition.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

var filterKey = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.]*)(?:\[([a-z]+)\])?$`)

// Condition is one parsed field filter. Values hold parsed Go values
// (string, float64, int64, time.Time or uuid.UUID).
type Condition struct {
	Field  string
	Column string
	Kind   Kind
	Op     Operator
	Values []any
}

// SortField is one ORDER BY term.
type SortField struct {
	Field  string
	Column string
	Desc   bool
}

// Query is the result of running the filter pipeline.
type Query struct {
	Conditions []Condition
	Sort       []SortField
	Fields     []string // projected API fields; always contains "id"; nil means the schema default
	Search     string   // phrase for full-text search; empty means none
	Page       int
	Limit      int
}

// Offset is the number of records skipped before the current page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// APIFilters applies the filter pipeline to a parameter set.
type APIFilters struct {
	params url.Values
	schema Schema
	query  Query
	errs   []error
}

// New starts a pipeline over params. Stages are applied by calling
// Filter, Sort, LimitFields, SearchByQuery and Pagination.
// Stages that are never called leave their defaults in place.
func New(params url.Values, schema Schema) *APIFilters {
	return &APIFilters{
		params: params,
		schema: schema,
		query: Query{
			Sort:  withTiebreak(schema.defaultSort, schema.tiebreak),
			Page:  DefaultPage,
			Limit: DefaultLimit,
		},
	}
}

// Filter turns every non-reserved parameter naming a known field into a Condition.
// Unknown fields and operators are dropped.
func (f *APIFilters) Filter() *APIFilters {
	keys := make([]string, 0, len(f.params))
	for k := range f.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := reserved[key]; ok {
			continue
		}
		m := filterKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		field, ok := f.schema.Lookup(m[1])
		if !ok || field.Column == "" {
			continue
		}
		op := OpEq
		if m[2] != "" {
			op = Operator(m[2])
			switch op {
			case OpGt, OpGte, OpLt, OpLte, OpIn:
			default:
				continue
			}
		}

		raw := f.params[key]
		if op == OpIn || (op == OpEq && field.Kind == KindStringArray) {
			raw = splitList(raw)
		}
		if len(raw) == 0 {
			continue
		}
		if op == OpEq && len(raw) > 1 && field.Kind != KindStringArray {
			op = OpIn
		}
		if field.Kind == KindStringArray && op != OpEq && op != OpIn {
			f.errs = append(f.errs, fmt.Errorf("%w: operator %s is not supported on %s", ErrInvalidValue, op, field.Name))
			continue
		}
		if op != OpEq && op != OpIn {
			raw = raw[:1]
		}

		values := make([]any, 0, len(raw))
		for _, r := range raw {
			v, err := parseValue(field.Kind, r)
			if err != nil {
				f.errs = append(f.errs, fmt.Errorf("%w: %s=%q is not a valid %s", ErrInvalidValue, key, r, field.Kind))
				values = nil
				break
			}
			values = append(values, v)
		}
		if values == nil {
			continue
		}

		f.query.Conditions = append(f.query.Conditions, Condition{
			Field:  field.Name,
			Column: field.Column,
			Kind:   field.Kind,
			Op:     op,
			Values: values,
		})
	}
	return f
}

// Sort reads sort=a,-b. Unknown or unsortable names are dropped; when none
// remain the schema default applies.
func (f *APIFilters) Sort() *APIFilters {
	raw := f.params.Get("sort")
	if raw == "" {
		return f
	}
	var terms []SortField
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		field, ok := f.schema.Lookup(name)
		if !ok || !field.Sortable || field.Column == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		terms = append(terms, SortField{Field: name, Column: field.Column, Desc: desc})
	}
	if len(terms) == 0 {
		return f
	}
	f.query.Sort = withTiebreak(terms, f.schema.tiebreak)
	return f
}

// LimitFields reads fields=a,b. The id field is always projected.
// If no listed name is selectable the schema default applies.
func (f *APIFilters) LimitFields() *APIFilters {
	raw := f.params.Get("fields")
	if raw == "" {
		return f
	}
	fields := []string{"id"}
	seen := map[string]struct{}{"id": {}}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		field, ok := f.schema.Lookup(name)
		if !ok || len(field.Selects) == 0 {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		fields = append(fields, name)
	}
	if len(fields) == 1 {
		return f
	}
	f.query.Fields = fields
	return f
}

// SearchByQuery reads q. Dashes separate words.
func (f *APIFilters) SearchByQuery() *APIFilters {
	q := strings.ReplaceAll(f.params.Get("q"), "-", " ")
	q = strings.ReplaceAll(q, `"`, " ")
	f.query.Search = strings.Join(strings.Fields(q), " ")
	return f
}

// Pagination reads page and limit. Non-numeric or non-positive values fall
// back to the defaults; limit is capped at MaxLimit and page so that the
// offset never exceeds MaxOffset.
func (f *APIFilters) Pagination() *APIFilters {
	f.query.Page = positiveOr(f.params.Get("page"), DefaultPage)
	f.query.Limit = positiveOr(f.params.Get("limit"), DefaultLimit)
	if f.query.Limit > MaxLimit {
		f.query.Limit = MaxLimit
	}
	// Pages past MaxOffset are empty anyway; clamping keeps Offset from overflowing.
	if maxPage := MaxOffset/f.query.Limit + 1; f.query.Page > maxPage {
		f.query.Page = maxPage
	}
	return f
}

// Query returns the built query, or every value error found by Filter joined.
func (f *APIFilters) Query() (Query, error) {
	if len(f.errs) > 0 {
		return Query{}, errors.Join(f.errs...)
	}
	return f.query, nil
}

// Apply runs the full pipeline in its fixed order.
func Apply(params url.Values, schema Schema) (Query, error) {
	return New(params, schema).
		Filter().
		Sort().
		LimitFields().
		SearchByQuery().
		Pagination().
		Query()
}

func withTiebreak(terms []SortField, tiebreak string) []SortField {
	out := append([]SortField(nil), terms...)
	if tiebreak == "" {
		return out
	}
	for _, t := range out {
		if t.Column == tiebreak {
			return out
		}
	}
	return append(out, SortField{Field: tiebreak, Column: tiebreak})
}

func splitList(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseValue(kind Kind, raw string) (any, error) {
	switch kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, errors.New("not a finite number")
		}
		return n, nil
	case KindInteger:
		return strconv.ParseInt(raw, 10, 64)
	case KindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, raw)
	case KindUUID:
		return uuid.Parse(raw)
	default:
		return raw, nil
	}
}
