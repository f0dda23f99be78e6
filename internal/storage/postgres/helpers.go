package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobboard-api/internal/filters"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// placeholder appends v to args and returns its $n reference.
func placeholder(args *[]any, v any) string {
	*args = append(*args, v)
	return fmt.Sprintf("$%d", len(*args))
}

// phraseQuery wraps text in quotes so websearch_to_tsquery matches it as a phrase.
func phraseQuery(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, " ") + `"`
}

// buildJobListQuery renders a filters.Query against the jobs table.
func buildJobListQuery(q filters.Query, args *[]any) string {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(strings.Join(filters.JobSchema.Columns(q.Fields), ", "))
	queryBuilder.WriteString(" FROM jobs")

	conditions := renderConditions(q.Conditions, args)
	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf("search_vector @@ websearch_to_tsquery('english', %s)", placeholder(args, phraseQuery(q.Search))))
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	if len(q.Sort) > 0 {
		terms := make([]string, 0, len(q.Sort))
		for _, s := range q.Sort {
			if s.Desc {
				terms = append(terms, s.Column+" DESC")
			} else {
				terms = append(terms, s.Column+" ASC")
			}
		}
		queryBuilder.WriteString(" ORDER BY ")
		queryBuilder.WriteString(strings.Join(terms, ", "))
	}

	queryBuilder.WriteString(" LIMIT " + placeholder(args, q.Limit))
	queryBuilder.WriteString(" OFFSET " + placeholder(args, q.Offset()))

	return queryBuilder.String()
}

func renderConditions(conds []filters.Condition, args *[]any) []string {
	out := make([]string, 0, len(conds))
	for _, c := range conds {
		if c.Kind == filters.KindStringArray {
			op := "@>"
			if c.Op == filters.OpIn {
				op = "&&"
			}
			out = append(out, fmt.Sprintf("%s %s %s::text[]", c.Column, op, placeholder(args, stringValues(c.Values))))
			continue
		}

		cast := ""
		if c.Kind == filters.KindUUID {
			cast = "::uuid"
		}
		switch c.Op {
		case filters.OpIn:
			arrayCast := ""
			if cast != "" {
				arrayCast = cast + "[]"
			}
			out = append(out, fmt.Sprintf("%s = ANY(%s%s)", c.Column, placeholder(args, typedValues(c.Kind, c.Values)), arrayCast))
		case filters.OpGt:
			out = append(out, fmt.Sprintf("%s > %s%s", c.Column, placeholder(args, scalar(c.Values[0])), cast))
		case filters.OpGte:
			out = append(out, fmt.Sprintf("%s >= %s%s", c.Column, placeholder(args, scalar(c.Values[0])), cast))
		case filters.OpLt:
			out = append(out, fmt.Sprintf("%s < %s%s", c.Column, placeholder(args, scalar(c.Values[0])), cast))
		case filters.OpLte:
			out = append(out, fmt.Sprintf("%s <= %s%s", c.Column, placeholder(args, scalar(c.Values[0])), cast))
		default:
			out = append(out, fmt.Sprintf("%s = %s%s", c.Column, placeholder(args, scalar(c.Values[0])), cast))
		}
	}
	return out
}

func scalar(v any) any {
	if id, ok := v.(uuid.UUID); ok {
		return id.String()
	}
	return v
}

func stringValues(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(scalar(v)))
	}
	return out
}

// typedValues converts parsed filter values into a slice pgx can encode as an array.
func typedValues(kind filters.Kind, values []any) any {
	switch kind {
	case filters.KindNumber:
		return collect[float64](values)
	case filters.KindInteger:
		return collect[int64](values)
	case filters.KindTime:
		return collect[time.Time](values)
	default:
		return stringValues(values)
	}
}

func collect[T any](values []any) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
