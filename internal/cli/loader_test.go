package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQueryDoc_YAML(t *testing.T) {
	path := writeFile(t, "query.yaml", `
condition: {column: status, op: "==", value: active}
limit: 10
`)
	qd, err := LoadQueryDoc(path)
	require.NoError(t, err)
	require.NotNil(t, qd.Condition)
	assert.Equal(t, "status", qd.Condition.Column)
	require.NotNil(t, qd.Limit)
	assert.Equal(t, 10, *qd.Limit)
}

func TestLoadQueryDoc_CUE(t *testing.T) {
	path := writeFile(t, "query.cue", `
condition: {
	column: "status"
	op:     "=="
	value:  "active"
}
offset: 5
`)
	qd, err := LoadQueryDoc(path)
	require.NoError(t, err)
	require.NotNil(t, qd.Condition)
	assert.Equal(t, "==", qd.Condition.Op)
	require.NotNil(t, qd.Offset)
	assert.Equal(t, 5, *qd.Offset)
}

func TestLoadQueryDoc_JSON(t *testing.T) {
	path := writeFile(t, "query.json", `{"condition":{"column":"status","op":"==","value":"active"}}`)
	qd, err := LoadQueryDoc(path)
	require.NoError(t, err)
	require.NotNil(t, qd.Condition)
	assert.Equal(t, "active", qd.Condition.Value)
}

func TestLoadQueryDoc_StrictYAML(t *testing.T) {
	path := writeFile(t, "query.yaml", "conditions: {column: a, op: \"==\", value: 1}\n")
	_, err := LoadQueryDoc(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)
}

func TestLoadQueryDoc_NotFound(t *testing.T) {
	_, err := LoadQueryDoc("does-not-exist.yaml")
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadQueryDoc_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "query.toml", "limit = 10\n")
	_, err := LoadQueryDoc(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)
}

func TestLoadItemDocs(t *testing.T) {
	path := writeFile(t, "items.yaml", `
items:
  - key: {type: post, id: p1}
    fields: {status: active}
  - key: {type: post, id: p2}
`)
	items, err := LoadItemDocs(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "post", items[0].Key.Type)
}

func TestLoadItemDocs_EmptyRejected(t *testing.T) {
	path := writeFile(t, "items.json", `{"items":[]}`)
	_, err := LoadItemDocs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no items")
}
