package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/status-filter.yaml")
	require.NoError(t, err)

	assert.Equal(t, "status-filter", scenario.Name)
	assert.Len(t, scenario.Items, 3)
	require.NotNil(t, scenario.Expect)
	assert.Equal(t, []string{"post/p1", "post/p3"}, scenario.Expect.Matched)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenarioFile(t, `
name: typo
description: a typoed field must be rejected, not silently dropped
items:
  - key: {type: post, id: p1}
expects:
  matched: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func TestLoadScenario_RequiredFields(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"missing name", "description: d\nitems:\n  - key: {type: post, id: p1}\n"},
		{"missing description", "name: n\nitems:\n  - key: {type: post, id: p1}\n"},
		{"missing items", "name: n\ndescription: d\n"},
		{"item without key type", "name: n\ndescription: d\nitems:\n  - key: {id: p1}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenarioFile(t, tc.content))
			assert.Error(t, err)
		})
	}
}
