package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const encodeQueryYAML = `
condition: {column: status, op: "==", value: active}
refs:
  author: {type: user, id: u1}
limit: 10
`

func TestEncodeCommand_Text(t *testing.T) {
	query := writeFile(t, "query.yaml", encodeQueryYAML)

	stdout, _, err := execute(t, "encode", query)
	require.NoError(t, err)

	assert.Contains(t, stdout, `condition={"column":"status","operator":"==","type":"condition","value":"active"}`)
	assert.Contains(t, stdout, `refs={"author":{"id":"u1","type":"user"}}`)
	assert.Contains(t, stdout, "limit=10\n")
}

func TestEncodeCommand_JSON(t *testing.T) {
	query := writeFile(t, "query.yaml", encodeQueryYAML)

	stdout, _, err := execute(t, "--format", "json", "encode", query)
	require.NoError(t, err)

	var response struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Len(t, response.Data, 3)
	assert.Equal(t, "10", response.Data["limit"])
}

func TestDecodeCommand_RoundTripsEncodeOutput(t *testing.T) {
	query := writeFile(t, "query.yaml", encodeQueryYAML)

	stdout, _, err := execute(t, "--format", "json", "encode", query)
	require.NoError(t, err)

	var encoded struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &encoded))

	data, err := json.Marshal(encoded.Data)
	require.NoError(t, err)
	paramsPath := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(paramsPath, data, 0o644))

	stdout, _, err = execute(t, "--format", "json", "decode", paramsPath)
	require.NoError(t, err)

	var decoded struct {
		Status string       `json:"status"`
		Data   DecodeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "ok", decoded.Status)
	assert.Equal(t, "R(author,user,u1) (status,active,==) L10", decoded.Data.Abbrev)
	assert.Equal(t, encoded.Data, decoded.Data.Params)
}

func TestDecodeCommand_BadParamExitsOne(t *testing.T) {
	paramsPath := writeFile(t, "params.json", `{"limit":"ten"}`)

	_, _, err := execute(t, "decode", paramsPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "limit")
}

func TestDecodeCommand_UnreadableFileExitsTwo(t *testing.T) {
	_, _, err := execute(t, "decode", "no-such-params.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAbbrevCommand(t *testing.T) {
	query := writeFile(t, "query.yaml", encodeQueryYAML)

	stdout, _, err := execute(t, "abbrev", query)
	require.NoError(t, err)
	assert.Equal(t, "R(author,user,u1) (status,active,==) L10\n", stdout)
}

func TestAbbrevCommand_EmptyQuery(t *testing.T) {
	query := writeFile(t, "query.yaml", "{}\n")

	stdout, _, err := execute(t, "abbrev", query)
	require.NoError(t, err)
	assert.Equal(t, "EMPTY_QUERY\n", stdout)
}
