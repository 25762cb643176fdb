package doc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

func TestToKey(t *testing.T) {
	k, err := KeyDoc{Type: "post", ID: "p1"}.ToKey()
	require.NoError(t, err)
	assert.Equal(t, model.NewKey("post", "p1"), k)
	assert.False(t, k.IsComposite())

	k, err = KeyDoc{Type: "comment", ID: "c1", Locations: []LocationDoc{
		{Type: "post", ID: "p1"},
		{Type: "user", ID: "u1"},
	}}.ToKey()
	require.NoError(t, err)
	assert.True(t, k.IsComposite())
	assert.Equal(t, "comment/c1@post/p1,user/u1", k.String())
}

func TestToKey_Invalid(t *testing.T) {
	_, err := KeyDoc{ID: "p1"}.ToKey()
	assert.Error(t, err)

	_, err = KeyDoc{Type: "post"}.ToKey()
	assert.Error(t, err)

	_, err = KeyDoc{Type: "comment", ID: "c1", Locations: []LocationDoc{{Type: "post"}}}.ToKey()
	assert.Error(t, err)

	deep := make([]LocationDoc, model.MaxLocations+1)
	for i := range deep {
		deep[i] = LocationDoc{Type: "t", ID: "x"}
	}
	_, err = KeyDoc{Type: "comment", ID: "c1", Locations: deep}.ToKey()
	assert.Error(t, err)
}

func TestToItem_FromYAML(t *testing.T) {
	src := `
key: {type: comment, id: c1, locations: [{type: post, id: p1}]}
events:
  created: {at: "2024-05-01T10:00:00Z", by: {type: user, id: u1}}
  deleted: {at: null}
refs:
  author: {type: user, id: u1}
aggs:
  reactions:
    - key: {type: reaction, id: r1}
      item:
        key: {type: reaction, id: r1}
        fields: {kind: like}
fields:
  score: 4.5
  spam: false
  tags: [a, 1]
`
	var d ItemDoc
	require.NoError(t, yaml.Unmarshal([]byte(src), &d))

	it, err := d.ToItem()
	require.NoError(t, err)

	assert.Equal(t, "comment/c1@post/p1", it.Key.String())

	created := it.Events["created"]
	require.NotNil(t, created.At)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), created.At.UTC())
	require.NotNil(t, created.By)
	assert.Equal(t, model.NewKey("user", "u1"), *created.By)

	assert.Nil(t, it.Events["deleted"].At)
	assert.False(t, it.Deleted())

	assert.Equal(t, model.NewKey("user", "u1"), it.Refs["author"])

	require.Len(t, it.Aggs["reactions"], 1)
	assert.Equal(t, model.String("like"), it.Aggs["reactions"][0].Item.Fields["kind"])

	assert.Equal(t, model.Number(4.5), it.Fields["score"])
	assert.Equal(t, model.Bool(false), it.Fields["spam"])
	assert.Equal(t, model.Array{model.String("a"), model.Number(1)}, it.Fields["tags"])
}

func TestToItem_BadInstant(t *testing.T) {
	d := ItemDoc{
		Key:    KeyDoc{Type: "post", ID: "p1"},
		Events: map[string]EventDoc{"created": {At: strPtr("yesterday")}},
	}
	_, err := d.ToItem()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `event "created"`)
}

func TestToQuery_FromYAML(t *testing.T) {
	src := `
condition:
  all:
    - {column: spam, op: "==", value: false}
    - any:
        - {column: score, op: ">", value: 3}
        - {column: pinned, op: "==", value: true}
refs:
  author: {type: user, id: u1}
events:
  created: {start: "2024-05-01T10:00:00Z"}
aggs:
  comments:
    condition: {column: spam, op: "==", value: false}
    limit: 3
orderBy:
  - {field: score, direction: desc}
limit: 10
offset: 5
`
	var d QueryDoc
	require.NoError(t, yaml.Unmarshal([]byte(src), &d))

	q, err := d.ToQuery()
	require.NoError(t, err)

	root, ok := q.Condition.(*query.Compound)
	require.True(t, ok)
	assert.Equal(t, query.And, root.Op)
	require.Len(t, root.Conditions, 2)

	nested, ok := root.Conditions[1].(*query.Compound)
	require.True(t, ok)
	assert.Equal(t, query.Or, nested.Op)

	assert.Equal(t, model.NewKey("user", "u1"), q.Refs["author"])
	require.NotNil(t, q.Events["created"].Start)
	assert.Nil(t, q.Events["created"].End)

	require.Contains(t, q.Aggs, "comments")
	require.NotNil(t, q.Aggs["comments"].Limit)
	assert.Equal(t, 3, *q.Aggs["comments"].Limit)

	require.Len(t, q.OrderBy, 1)
	assert.Equal(t, query.OrderBy{Field: "score", Direction: query.Desc}, q.OrderBy[0])
	assert.Equal(t, 10, *q.Limit)
	assert.Equal(t, 5, *q.Offset)
}

func TestToQuery_AbsentVersusEmptyOrderBy(t *testing.T) {
	q, err := (&QueryDoc{}).ToQuery()
	require.NoError(t, err)
	assert.Nil(t, q.OrderBy)
	assert.True(t, q.IsEmpty())

	var src = "orderBy: []\n"
	var d QueryDoc
	require.NoError(t, yaml.Unmarshal([]byte(src), &d))
	q, err = d.ToQuery()
	require.NoError(t, err)
	require.NotNil(t, q.OrderBy)
	assert.Len(t, q.OrderBy, 0)
	assert.False(t, q.IsEmpty())
}

func TestToQuery_NodeShapeErrors(t *testing.T) {
	testCases := []struct {
		name string
		node NodeDoc
	}{
		{"mixed leaf and compound", NodeDoc{Column: "c", Op: "==", All: []*NodeDoc{}}},
		{"both all and any", NodeDoc{All: []*NodeDoc{}, Any: []*NodeDoc{}}},
		{"neither form", NodeDoc{}},
		{"unknown operator", NodeDoc{Column: "c", Op: "~", Value: 1}},
		{"leaf without column", NodeDoc{Op: "=="}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node := tc.node
			_, err := (&QueryDoc{Condition: &node}).ToQuery()
			assert.Error(t, err)
		})
	}
}

func TestToQuery_BadDirection(t *testing.T) {
	order := []OrderByDoc{{Field: "score", Direction: "sideways"}}
	_, err := (&QueryDoc{OrderBy: &order}).ToQuery()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func strPtr(s string) *string { return &s }
