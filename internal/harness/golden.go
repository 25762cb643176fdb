package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// snapshot converts a result to deterministic JSON for golden comparison.
// json.Marshal sorts map keys, and HTML escaping is disabled so operator
// strings like "<" survive verbatim.
func snapshot(scenarioName string, result *Result) ([]byte, error) {
	report := map[string]any{
		"scenario_name": scenarioName,
		"matched":       result.Matched,
		"query": map[string]any{
			"abbrev": result.Abbrev,
			"params": map[string]string(result.Params),
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline, keep it out of the snapshot.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RunWithGolden executes a scenario and compares the evaluation report
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected matcher behavior;
// inline expect clauses are a secondary, human-readable check.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	data, err := snapshot(scenario.Name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
