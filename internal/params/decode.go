package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

// ParamsToQuery rebuilds a query from a parameter map. Exact inverse of
// QueryToParams: members whose key is absent stay absent on the result.
// Unknown keys are ignored. Any parameter that fails to decode aborts
// with a DecodeError carrying the underlying cause.
func ParamsToQuery(p Params) (*query.ItemQuery, error) {
	q := &query.ItemQuery{}

	if raw, ok := p[KeyCondition]; ok {
		node, err := decodeNodeJSON(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyCondition, Err: err}
		}
		q.Condition = node
	}

	if raw, ok := p[KeyRefs]; ok {
		refs, err := decodeRefsJSON(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyRefs, Err: err}
		}
		q.Refs = refs
	}

	if raw, ok := p[KeyEvents]; ok {
		events, err := decodeEventsJSON(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyEvents, Err: err}
		}
		q.Events = events
	}

	if raw, ok := p[KeyAggs]; ok {
		aggs, err := decodeAggsJSON(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyAggs, Err: err}
		}
		q.Aggs = aggs
	}

	if raw, ok := p[KeyOrderBy]; ok {
		order, err := decodeOrderByJSON(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyOrderBy, Err: err}
		}
		q.OrderBy = order
	}

	if raw, ok := p[KeyLimit]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyLimit, Err: err}
		}
		q.Limit = &n
	}

	if raw, ok := p[KeyOffset]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &DecodeError{Param: KeyOffset, Err: err}
		}
		q.Offset = &n
	}

	return q, nil
}

// decodeJSON parses one encoded parameter into a generic value, keeping
// numbers as json.Number.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeNodeJSON(raw string) (query.Node, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return decodeNode(v)
}

func decodeNode(raw any) (query.Node, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("condition node must be an object, got %T", raw)
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "condition":
		column, ok := m["column"].(string)
		if !ok {
			return nil, fmt.Errorf("condition missing column")
		}
		opStr, ok := m["operator"].(string)
		if !ok {
			return nil, fmt.Errorf("condition %q missing operator", column)
		}
		op := query.Operator(opStr)
		if !query.ValidOperators[op] {
			return nil, fmt.Errorf("condition %q: unknown operator %q", column, opStr)
		}
		value, err := model.DecodeValue(m["value"])
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", column, err)
		}
		return &query.Condition{Column: column, Value: value, Operator: op}, nil

	case "compound":
		opStr, ok := m["compound"].(string)
		if !ok {
			return nil, fmt.Errorf("compound missing op")
		}
		op := query.CompoundOp(opStr)
		if op != query.And && op != query.Or {
			return nil, fmt.Errorf("unknown compound op %q", opStr)
		}
		rawChildren, ok := m["conditions"].([]any)
		if !ok {
			return nil, fmt.Errorf("compound missing conditions array")
		}
		children := make([]query.Node, len(rawChildren))
		for i, rawChild := range rawChildren {
			child, err := decodeNode(rawChild)
			if err != nil {
				return nil, fmt.Errorf("conditions[%d]: %w", i, err)
			}
			children[i] = child
		}
		return &query.Compound{Op: op, Conditions: children}, nil

	default:
		return nil, fmt.Errorf("unknown condition node type %q", typ)
	}
}

func decodeRefsJSON(raw string) (map[string]model.Key, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return decodeRefs(v)
}

func decodeRefs(raw any) (map[string]model.Key, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("refs must be an object, got %T", raw)
	}
	refs := make(map[string]model.Key, len(m))
	for name, rawKey := range m {
		k, err := decodeKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("ref %q: %w", name, err)
		}
		refs[name] = k
	}
	return refs, nil
}

func decodeKey(raw any) (model.Key, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return model.Key{}, fmt.Errorf("key must be an object, got %T", raw)
	}
	id, ok := m["id"].(string)
	if !ok {
		return model.Key{}, fmt.Errorf("key missing id")
	}
	typ, ok := m["type"].(string)
	if !ok {
		return model.Key{}, fmt.Errorf("key missing type")
	}

	k := model.Key{Type: typ, ID: id}
	if rawLocs, present := m["locations"]; present {
		locs, ok := rawLocs.([]any)
		if !ok {
			return model.Key{}, fmt.Errorf("key locations must be an array, got %T", rawLocs)
		}
		if len(locs) > model.MaxLocations {
			return model.Key{}, fmt.Errorf("location chain too deep: %d > %d", len(locs), model.MaxLocations)
		}
		k.Locations = make([]model.Location, len(locs))
		for i, rawLoc := range locs {
			lm, ok := rawLoc.(map[string]any)
			if !ok {
				return model.Key{}, fmt.Errorf("locations[%d] must be an object", i)
			}
			locID, ok := lm["id"].(string)
			if !ok {
				return model.Key{}, fmt.Errorf("locations[%d] missing id", i)
			}
			locType, ok := lm["type"].(string)
			if !ok {
				return model.Key{}, fmt.Errorf("locations[%d] missing type", i)
			}
			k.Locations[i] = model.Location{Type: locType, ID: locID}
		}
	}
	return k, nil
}

func decodeEventsJSON(raw string) (map[string]query.EventRange, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return decodeEvents(v)
}

func decodeEvents(raw any) (map[string]query.EventRange, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("events must be an object, got %T", raw)
	}
	events := make(map[string]query.EventRange, len(m))
	for name, rawRange := range m {
		rm, ok := rawRange.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("event %q must be an object", name)
		}
		var r query.EventRange
		if rawStart, present := rm["start"]; present {
			t, err := parseInstant(rawStart)
			if err != nil {
				return nil, fmt.Errorf("event %q start: %w", name, err)
			}
			r.Start = &t
		}
		if rawEnd, present := rm["end"]; present {
			t, err := parseInstant(rawEnd)
			if err != nil {
				return nil, fmt.Errorf("event %q end: %w", name, err)
			}
			r.End = &t
		}
		events[name] = r
	}
	return events, nil
}

func decodeAggsJSON(raw string) (map[string]*query.ItemQuery, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return decodeAggs(v)
}

func decodeAggs(raw any) (map[string]*query.ItemQuery, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("aggs must be an object, got %T", raw)
	}
	aggs := make(map[string]*query.ItemQuery, len(m))
	for name, rawSub := range m {
		sub, err := decodeQueryObject(rawSub)
		if err != nil {
			return nil, fmt.Errorf("agg %q: %w", name, err)
		}
		aggs[name] = sub
	}
	return aggs, nil
}

// decodeQueryObject rebuilds a nested query from its object form, the
// inverse of appendQuery.
func decodeQueryObject(raw any) (*query.ItemQuery, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sub-query must be an object, got %T", raw)
	}

	q := &query.ItemQuery{}

	if rawNode, present := m["condition"]; present {
		node, err := decodeNode(rawNode)
		if err != nil {
			return nil, err
		}
		q.Condition = node
	}
	if rawRefs, present := m["refs"]; present {
		refs, err := decodeRefs(rawRefs)
		if err != nil {
			return nil, err
		}
		q.Refs = refs
	}
	if rawEvents, present := m["events"]; present {
		events, err := decodeEvents(rawEvents)
		if err != nil {
			return nil, err
		}
		q.Events = events
	}
	if rawAggs, present := m["aggs"]; present {
		aggs, err := decodeAggs(rawAggs)
		if err != nil {
			return nil, err
		}
		q.Aggs = aggs
	}
	if rawOrder, present := m["orderBy"]; present {
		order, err := decodeOrderBy(rawOrder)
		if err != nil {
			return nil, err
		}
		q.OrderBy = order
	}
	if rawLimit, present := m["limit"]; present {
		n, err := parseIntMember("limit", rawLimit)
		if err != nil {
			return nil, err
		}
		q.Limit = &n
	}
	if rawOffset, present := m["offset"]; present {
		n, err := parseIntMember("offset", rawOffset)
		if err != nil {
			return nil, err
		}
		q.Offset = &n
	}

	return q, nil
}

func decodeOrderByJSON(raw string) ([]query.OrderBy, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return decodeOrderBy(v)
}

func decodeOrderBy(raw any) ([]query.OrderBy, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("orderBy must be an array, got %T", raw)
	}
	// The explicitly-empty ordering decodes to an empty non-nil slice.
	order := make([]query.OrderBy, len(arr))
	for i, rawEntry := range arr {
		m, ok := rawEntry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("orderBy[%d] must be an object", i)
		}
		field, ok := m["field"].(string)
		if !ok {
			return nil, fmt.Errorf("orderBy[%d] missing field", i)
		}
		dirStr, ok := m["direction"].(string)
		if !ok {
			return nil, fmt.Errorf("orderBy[%d] missing direction", i)
		}
		dir := query.Direction(dirStr)
		if dir != query.Asc && dir != query.Desc {
			return nil, fmt.Errorf("orderBy[%d]: unknown direction %q", i, dirStr)
		}
		order[i] = query.OrderBy{Field: field, Direction: dir}
	}
	return order, nil
}

func parseInstant(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("instant must be a string, got %T", raw)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func parseIntMember(name string, raw any) (int, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%s must be a number, got %T", name, raw)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return int(n), nil
}
