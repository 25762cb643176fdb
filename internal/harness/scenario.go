package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/strata/internal/doc"
)

// Scenario defines a conformance test scenario: a set of items, a query,
// and the keys the query is expected to match.
//
// Scenarios are the table stakes of matcher conformance: each one is a
// self-contained YAML document that can be read without knowing Go, and
// its outcome is pinned by a golden snapshot of the evaluation report.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Items is the candidate set, evaluated in listed order.
	Items []doc.ItemDoc `yaml:"items"`

	// Query is the query under test.
	Query doc.QueryDoc `yaml:"query"`

	// Expect optionally pins the outcome inline, in addition to the
	// golden snapshot. Useful while authoring a scenario.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause pins the expected evaluation outcome.
type ExpectClause struct {
	// Matched lists the expected matching keys in evaluation order,
	// rendered as "type/id" or "type/id@loctype/locid,...".
	Matched []string `yaml:"matched"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expect:" vs "expects:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Items) == 0 {
		return fmt.Errorf("items list is required and must be non-empty")
	}

	for i, it := range s.Items {
		if it.Key.Type == "" || it.Key.ID == "" {
			return fmt.Errorf("items[%d]: key type and id are required", i)
		}
	}

	if s.Expect != nil && s.Expect.Matched == nil {
		return fmt.Errorf("expect: matched is required (use an empty list for no matches)")
	}

	return nil
}
