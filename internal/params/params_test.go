package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

func intPtr(n int) *int              { return &n }
func timePtr(t time.Time) *time.Time { return &t }

// roundTrip encodes and decodes once, requiring both directions to succeed.
func roundTrip(t *testing.T, q *query.ItemQuery) *query.ItemQuery {
	t.Helper()
	p, err := QueryToParams(q)
	require.NoError(t, err)
	decoded, err := ParamsToQuery(p)
	require.NoError(t, err)
	return decoded
}

func deepQuery() *query.ItemQuery {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	author, _ := model.NewCompositeKey("user", "u1", model.Location{Type: "org", ID: "o1"})

	return &query.ItemQuery{
		Condition: query.NewAnd(
			query.NewCondition("status", model.String("active"), query.OpEqual),
			query.NewOr(
				query.NewCondition("score", model.Number(4.5), query.OpGreaterOrEqual),
				query.NewAnd(
					query.NewCondition("tags", model.Array{model.String("a"), model.String("b")}, query.OpArrayContainsAny),
					query.NewCondition("archived", model.Null{}, query.OpEqual),
					query.NewCondition("seen", model.Time(at), query.OpLess),
				),
			),
		),
		Refs: map[string]model.Key{
			"author": author,
			"blog":   model.NewKey("blog", "b1"),
		},
		Events: map[string]query.EventRange{
			"created": {Start: timePtr(at), End: timePtr(at.Add(time.Hour))},
			"updated": {End: timePtr(at)},
			"deleted": {},
		},
		Aggs: map[string]*query.ItemQuery{
			"comments": {
				Condition: query.NewCondition("spam", model.Bool(false), query.OpEqual),
				Aggs: map[string]*query.ItemQuery{
					"reactions": {
						Condition: query.NewCondition("kind", model.Array{model.String("like")}, query.OpIn),
						Limit:     intPtr(3),
					},
				},
				OrderBy: []query.OrderBy{{Field: "score", Direction: query.Desc}},
			},
			"likes": {},
		},
		OrderBy: []query.OrderBy{
			{Field: "created", Direction: query.Asc},
			{Field: "score", Direction: query.Desc},
		},
		Limit:  intPtr(25),
		Offset: intPtr(50),
	}
}

func TestRoundTrip_EmptyQuery(t *testing.T) {
	p, err := QueryToParams(&query.ItemQuery{})
	require.NoError(t, err)
	assert.Empty(t, p, "no clauses means no parameters")

	decoded, err := ParamsToQuery(p)
	require.NoError(t, err)
	assert.Equal(t, &query.ItemQuery{}, decoded, "absent members stay absent, never defaulted")
}

func TestRoundTrip_DeepQuery(t *testing.T) {
	q := deepQuery()
	assert.Equal(t, q, roundTrip(t, q))
}

func TestRoundTrip_EmptyOrderBySurvives(t *testing.T) {
	q := &query.ItemQuery{OrderBy: []query.OrderBy{}}
	decoded := roundTrip(t, q)

	require.NotNil(t, decoded.OrderBy, "explicit empty orderBy must survive as present")
	assert.Len(t, decoded.OrderBy, 0)
	assert.Equal(t, q, decoded)
}

func TestRoundTrip_IdempotentUnderIteration(t *testing.T) {
	q := deepQuery()

	first, err := QueryToParams(q)
	require.NoError(t, err)

	current := q
	for i := 0; i < 5; i++ {
		p, err := QueryToParams(current)
		require.NoError(t, err)
		assert.Equal(t, first, p, "iteration %d must produce identical params", i+1)

		current, err = ParamsToQuery(p)
		require.NoError(t, err)
	}
	assert.Equal(t, q, current)
}

func TestQueryToParams_Deterministic(t *testing.T) {
	q := deepQuery()

	first, err := QueryToParams(q)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		p, err := QueryToParams(q)
		require.NoError(t, err)
		assert.Equal(t, first, p, "identical input must produce byte-identical output")
	}
}

func TestQueryToParams_ScalarsPassThrough(t *testing.T) {
	q := &query.ItemQuery{Limit: intPtr(10), Offset: intPtr(20)}
	p, err := QueryToParams(q)
	require.NoError(t, err)
	assert.Equal(t, Params{KeyLimit: "10", KeyOffset: "20"}, p)
}

func TestQueryToParams_OneKeyPerMember(t *testing.T) {
	q := deepQuery()
	p, err := QueryToParams(q)
	require.NoError(t, err)

	assert.Len(t, p, 7)
	for _, key := range []string{KeyCondition, KeyRefs, KeyEvents, KeyAggs, KeyOrderBy, KeyLimit, KeyOffset} {
		assert.Contains(t, p, key)
	}
}

func TestParamsToQuery_IgnoresUnknownKeys(t *testing.T) {
	decoded, err := ParamsToQuery(Params{"operation": "list", "tenant": "t1"})
	require.NoError(t, err)
	assert.Equal(t, &query.ItemQuery{}, decoded)
}

func TestParamsToQuery_DecodeFailures(t *testing.T) {
	testCases := []struct {
		name  string
		p     Params
		param string
	}{
		{"condition not json", Params{KeyCondition: "{"}, KeyCondition},
		{"condition unknown node type", Params{KeyCondition: `{"type":"mystery"}`}, KeyCondition},
		{"condition unknown operator", Params{KeyCondition: `{"column":"c","operator":"~","type":"condition","value":1}`}, KeyCondition},
		{"refs not object", Params{KeyRefs: `[1]`}, KeyRefs},
		{"ref missing type", Params{KeyRefs: `{"author":{"id":"u1"}}`}, KeyRefs},
		{"ref chain too deep", Params{KeyRefs: `{"a":{"id":"x","locations":[{"id":"1","type":"t"},{"id":"2","type":"t"},{"id":"3","type":"t"},{"id":"4","type":"t"},{"id":"5","type":"t"},{"id":"6","type":"t"}],"type":"k"}}`}, KeyRefs},
		{"events bad instant", Params{KeyEvents: `{"created":{"start":"yesterday"}}`}, KeyEvents},
		{"aggs not object", Params{KeyAggs: `3`}, KeyAggs},
		{"orderBy bad direction", Params{KeyOrderBy: `[{"direction":"sideways","field":"x"}]`}, KeyOrderBy},
		{"limit not a number", Params{KeyLimit: "ten"}, KeyLimit},
		{"offset not a number", Params{KeyOffset: "5.5"}, KeyOffset},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParamsToQuery(tc.p)
			require.Error(t, err)
			assert.True(t, IsDecodeError(err))

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.param, de.Param)
			assert.Error(t, de.Unwrap(), "the underlying cause must be propagated")
		})
	}
}

func TestEncodedConditionShape(t *testing.T) {
	q := &query.ItemQuery{
		Condition: query.NewAnd(
			query.NewCondition("name", model.String("x"), query.OpEqual),
		),
	}
	p, err := QueryToParams(q)
	require.NoError(t, err)

	assert.Equal(t,
		`{"compound":"and","conditions":[{"column":"name","operator":"==","type":"condition","value":"x"}],"type":"compound"}`,
		p[KeyCondition])
}

func TestEncodedKeyOmitsEmptyLocations(t *testing.T) {
	q := &query.ItemQuery{Refs: map[string]model.Key{"author": model.NewKey("user", "u1")}}
	p, err := QueryToParams(q)
	require.NoError(t, err)
	assert.Equal(t, `{"author":{"id":"u1","type":"user"}}`, p[KeyRefs])

	// A primary key with a non-nil empty chain encodes identically.
	q.Refs["author"] = model.Key{Type: "user", ID: "u1", Locations: []model.Location{}}
	p2, err := QueryToParams(q)
	require.NoError(t, err)
	assert.Equal(t, p[KeyRefs], p2[KeyRefs])
}

func TestRoundTrip_PresentEmptyContainers(t *testing.T) {
	q := &query.ItemQuery{
		Refs:   map[string]model.Key{},
		Events: map[string]query.EventRange{},
		Aggs:   map[string]*query.ItemQuery{},
	}
	decoded := roundTrip(t, q)

	require.NotNil(t, decoded.Refs)
	require.NotNil(t, decoded.Events)
	require.NotNil(t, decoded.Aggs)
	assert.Equal(t, q, decoded)
}
