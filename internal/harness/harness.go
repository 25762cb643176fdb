// Package harness executes YAML conformance scenarios against the
// matcher and pins their outcomes with golden snapshots.
package harness

import (
	"fmt"

	"github.com/roach88/strata/internal/match"
	"github.com/roach88/strata/internal/params"
	"github.com/roach88/strata/internal/query"
)

// Result captures one scenario evaluation.
type Result struct {
	// Matched lists the matching keys in evaluation order.
	Matched []string

	// Abbrev is the compact rendering of the scenario's query.
	Abbrev string

	// Params is the flattened wire form of the scenario's query.
	Params params.Params
}

// Run evaluates the scenario's query against its items in listed order.
//
// When the scenario carries an inline expectation, a mismatch is an
// error; the golden snapshot remains the primary oracle either way.
func Run(scenario *Scenario) (*Result, error) {
	q, err := scenario.Query.ToQuery()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: query: %w", scenario.Name, err)
	}

	matched := []string{}
	for i, itemDoc := range scenario.Items {
		it, err := itemDoc.ToItem()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: items[%d]: %w", scenario.Name, i, err)
		}
		ok, err := match.Match(it, q)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: items[%d] (%s): %w", scenario.Name, i, it.Key, err)
		}
		if ok {
			matched = append(matched, it.Key.String())
		}
	}

	p, err := params.QueryToParams(q)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: encode query: %w", scenario.Name, err)
	}

	result := &Result{
		Matched: matched,
		Abbrev:  query.Abbrev(q),
		Params:  p,
	}

	if scenario.Expect != nil {
		if err := checkExpectation(scenario.Expect, result); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	return result, nil
}

func checkExpectation(expect *ExpectClause, result *Result) error {
	if len(expect.Matched) != len(result.Matched) {
		return fmt.Errorf("expected %d matches, got %d (%v)",
			len(expect.Matched), len(result.Matched), result.Matched)
	}
	for i, want := range expect.Matched {
		if result.Matched[i] != want {
			return fmt.Errorf("matched[%d]: expected %s, got %s", i, want, result.Matched[i])
		}
	}
	return nil
}
