package params

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

// QueryToParams flattens a query into a parameter map. Absent members
// produce no key at all; present-but-empty members (a non-nil empty refs
// map, an explicitly-empty orderBy) encode as empty JSON containers so
// the distinction survives the boundary.
func QueryToParams(q *query.ItemQuery) (Params, error) {
	p := Params{}
	if q == nil {
		return p, nil
	}

	if q.Condition != nil {
		data, err := encodeNode(q.Condition)
		if err != nil {
			return nil, fmt.Errorf("encode condition: %w", err)
		}
		p[KeyCondition] = string(data)
	}

	if q.Refs != nil {
		data, err := encodeRefs(q.Refs)
		if err != nil {
			return nil, fmt.Errorf("encode refs: %w", err)
		}
		p[KeyRefs] = string(data)
	}

	if q.Events != nil {
		data, err := encodeEvents(q.Events)
		if err != nil {
			return nil, fmt.Errorf("encode events: %w", err)
		}
		p[KeyEvents] = string(data)
	}

	if q.Aggs != nil {
		data, err := encodeAggs(q.Aggs)
		if err != nil {
			return nil, fmt.Errorf("encode aggs: %w", err)
		}
		p[KeyAggs] = string(data)
	}

	if q.OrderBy != nil {
		data, err := encodeOrderBy(q.OrderBy)
		if err != nil {
			return nil, fmt.Errorf("encode orderBy: %w", err)
		}
		p[KeyOrderBy] = string(data)
	}

	if q.Limit != nil {
		p[KeyLimit] = strconv.Itoa(*q.Limit)
	}
	if q.Offset != nil {
		p[KeyOffset] = strconv.Itoa(*q.Offset)
	}

	return p, nil
}

// encodeNode writes a condition-tree node as canonical JSON. Object keys
// are emitted in sorted order by construction.
func encodeNode(n query.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendNode(buf *bytes.Buffer, n query.Node) error {
	switch node := n.(type) {
	case *query.Condition:
		// Sorted keys: column, operator, type, value.
		buf.WriteString(`{"column":`)
		if err := appendString(buf, node.Column); err != nil {
			return err
		}
		buf.WriteString(`,"operator":`)
		if err := appendString(buf, string(node.Operator)); err != nil {
			return err
		}
		buf.WriteString(`,"type":"condition","value":`)
		if err := model.AppendValue(buf, node.Value); err != nil {
			return fmt.Errorf("column %q: %w", node.Column, err)
		}
		buf.WriteByte('}')
		return nil

	case *query.Compound:
		// Sorted keys: compound, conditions, type.
		buf.WriteString(`{"compound":`)
		if err := appendString(buf, string(node.Op)); err != nil {
			return err
		}
		buf.WriteString(`,"conditions":[`)
		for i, child := range node.Conditions {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendNode(buf, child); err != nil {
				return fmt.Errorf("conditions[%d]: %w", i, err)
			}
		}
		buf.WriteString(`],"type":"compound"}`)
		return nil

	default:
		return fmt.Errorf("unknown condition node type: %T", n)
	}
}

func encodeRefs(refs map[string]model.Key) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range sortedKeys(refs) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendString(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := appendKey(&buf, refs[name]); err != nil {
			return nil, fmt.Errorf("ref %q: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// appendKey writes a key as canonical JSON. Sorted keys: id, locations,
// type; the locations member is omitted for primary keys so structurally
// equal keys encode identically.
func appendKey(buf *bytes.Buffer, k model.Key) error {
	buf.WriteString(`{"id":`)
	if err := appendString(buf, k.ID); err != nil {
		return err
	}
	if len(k.Locations) > 0 {
		buf.WriteString(`,"locations":[`)
		for i, loc := range k.Locations {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"id":`)
			if err := appendString(buf, loc.ID); err != nil {
				return err
			}
			buf.WriteString(`,"type":`)
			if err := appendString(buf, loc.Type); err != nil {
				return err
			}
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`,"type":`)
	if err := appendString(buf, k.Type); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func encodeEvents(events map[string]query.EventRange) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range sortedKeys(events) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendString(&buf, name); err != nil {
			return nil, err
		}
		r := events[name]
		// Sorted keys: end, start; absent bounds are omitted.
		buf.WriteString(`:{`)
		wrote := false
		if r.End != nil {
			buf.WriteString(`"end":`)
			if err := appendString(&buf, formatInstant(*r.End)); err != nil {
				return nil, err
			}
			wrote = true
		}
		if r.Start != nil {
			if wrote {
				buf.WriteByte(',')
			}
			buf.WriteString(`"start":`)
			if err := appendString(&buf, formatInstant(*r.Start)); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeAggs(aggs map[string]*query.ItemQuery) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range sortedKeys(aggs) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendString(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := appendQuery(&buf, aggs[name]); err != nil {
			return nil, fmt.Errorf("agg %q: %w", name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// appendQuery writes a nested query object for aggregation sub-queries.
// Sorted member keys: aggs, condition, events, limit, offset, orderBy,
// refs; absent members are omitted, exactly as at the top level.
func appendQuery(buf *bytes.Buffer, q *query.ItemQuery) error {
	buf.WriteByte('{')
	if q == nil {
		buf.WriteByte('}')
		return nil
	}

	wrote := false
	member := func() {
		if wrote {
			buf.WriteByte(',')
		}
		wrote = true
	}

	if q.Aggs != nil {
		member()
		buf.WriteString(`"aggs":`)
		data, err := encodeAggs(q.Aggs)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	if q.Condition != nil {
		member()
		buf.WriteString(`"condition":`)
		if err := appendNode(buf, q.Condition); err != nil {
			return err
		}
	}
	if q.Events != nil {
		member()
		buf.WriteString(`"events":`)
		data, err := encodeEvents(q.Events)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	if q.Limit != nil {
		member()
		buf.WriteString(`"limit":`)
		buf.WriteString(strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		member()
		buf.WriteString(`"offset":`)
		buf.WriteString(strconv.Itoa(*q.Offset))
	}
	if q.OrderBy != nil {
		member()
		buf.WriteString(`"orderBy":`)
		data, err := encodeOrderBy(q.OrderBy)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	if q.Refs != nil {
		member()
		buf.WriteString(`"refs":`)
		data, err := encodeRefs(q.Refs)
		if err != nil {
			return err
		}
		buf.Write(data)
	}

	buf.WriteByte('}')
	return nil
}

func encodeOrderBy(order []query.OrderBy) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, ob := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		// Sorted keys: direction, field.
		buf.WriteString(`{"direction":`)
		if err := appendString(&buf, string(ob.Direction)); err != nil {
			return nil, err
		}
		buf.WriteString(`,"field":`)
		if err := appendString(&buf, ob.Field); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func appendString(buf *bytes.Buffer, s string) error {
	data, err := model.CanonicalString(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// formatInstant renders an event bound. Instants normalize to UTC so
// equal instants encode identically.
func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
