package postgres

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-api/internal/filters"
)

func TestBuildJobListQuery_Defaults(t *testing.T) {
	q, err := filters.Apply(url.Values{}, filters.JobSchema)
	require.NoError(t, err)

	var args []any
	sql := buildJobListQuery(q, &args)

	assert.Contains(t, sql, "SELECT id, title, slug,")
	assert.Contains(t, sql, "location_lon, location_lat")
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY posting_date DESC, id ASC LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{10, 0}, args)
}

func TestBuildJobListQuery_FiltersSortProjectionSearch(t *testing.T) {
	params, err := url.ParseQuery("salary[gte]=50000&jobType[in]=Permanent,Temporary&industry=Banking&sort=-salary&fields=title,salary&q=node-developer&page=3&limit=5")
	require.NoError(t, err)
	q, err := filters.Apply(params, filters.JobSchema)
	require.NoError(t, err)

	var args []any
	sql := buildJobListQuery(q, &args)

	assert.Equal(t,
		"SELECT id, title, salary FROM jobs"+
			" WHERE industry @> $1::text[] AND job_type = ANY($2) AND salary >= $3"+
			" AND search_vector @@ websearch_to_tsquery('english', $4)"+
			" ORDER BY salary DESC, id ASC LIMIT $5 OFFSET $6",
		sql)
	assert.Equal(t, []any{
		[]string{"Banking"},
		[]string{"Permanent", "Temporary"},
		50000.0,
		`"node developer"`,
		5,
		10,
	}, args)
}

func TestRenderConditions_Kinds(t *testing.T) {
	owner := uuid.New()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	conds := []filters.Condition{
		{Column: "user_id", Kind: filters.KindUUID, Op: filters.OpEq, Values: []any{owner}},
		{Column: "user_id", Kind: filters.KindUUID, Op: filters.OpIn, Values: []any{owner}},
		{Column: "industry", Kind: filters.KindStringArray, Op: filters.OpIn, Values: []any{"Banking", "Others"}},
		{Column: "positions", Kind: filters.KindInteger, Op: filters.OpIn, Values: []any{int64(1), int64(2)}},
		{Column: "last_date", Kind: filters.KindTime, Op: filters.OpLt, Values: []any{day}},
	}

	var args []any
	got := renderConditions(conds, &args)

	assert.Equal(t, []string{
		"user_id = $1::uuid",
		"user_id = ANY($2::uuid[])",
		"industry && $3::text[]",
		"positions = ANY($4)",
		"last_date < $5",
	}, got)
	assert.Equal(t, []any{
		owner.String(),
		[]string{owner.String()},
		[]string{"Banking", "Others"},
		[]int64{1, 2},
		day,
	}, args)
}

func TestPhraseQuery(t *testing.T) {
	assert.Equal(t, `"node developer"`, phraseQuery("node developer"))
	assert.Equal(t, `"a b"`, phraseQuery(`a"b`))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "j.id, j.title", prefixed("j", "id,\n\ttitle"))
}
