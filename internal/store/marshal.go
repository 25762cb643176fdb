package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/roach88/strata/internal/model"
)

// MarshalItem converts an item body to canonical JSON TEXT for storage.
// Object keys are emitted in sorted order by construction, so re-encoding
// an unchanged item yields byte-identical TEXT.
func MarshalItem(it *model.Item) (string, error) {
	var buf bytes.Buffer
	if err := appendItem(&buf, it); err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}
	return buf.String(), nil
}

// appendItem writes an item object. Sorted member keys: aggs, events,
// fields, key, refs; empty members other than key are omitted.
func appendItem(buf *bytes.Buffer, it *model.Item) error {
	buf.WriteByte('{')

	if len(it.Aggs) > 0 {
		buf.WriteString(`"aggs":{`)
		for i, name := range sortedNames(it.Aggs) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendString(buf, name); err != nil {
				return err
			}
			buf.WriteString(`:[`)
			for j, entry := range it.Aggs[name] {
				if j > 0 {
					buf.WriteByte(',')
				}
				// Sorted keys: item, key.
				buf.WriteString(`{"item":`)
				if err := appendItem(buf, entry.Item); err != nil {
					return fmt.Errorf("agg %q[%d]: %w", name, j, err)
				}
				buf.WriteString(`,"key":`)
				if err := appendKey(buf, entry.Key); err != nil {
					return err
				}
				buf.WriteByte('}')
			}
			buf.WriteString(`]`)
		}
		buf.WriteString(`},`)
	}

	if len(it.Events) > 0 {
		buf.WriteString(`"events":{`)
		for i, name := range sortedNames(it.Events) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendString(buf, name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendEvent(buf, it.Events[name]); err != nil {
				return fmt.Errorf("event %q: %w", name, err)
			}
		}
		buf.WriteString(`},`)
	}

	if len(it.Fields) > 0 {
		buf.WriteString(`"fields":{`)
		for i, name := range sortedNames(it.Fields) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendString(buf, name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := model.AppendValue(buf, it.Fields[name]); err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
		}
		buf.WriteString(`},`)
	}

	buf.WriteString(`"key":`)
	if err := appendKey(buf, it.Key); err != nil {
		return err
	}

	if len(it.Refs) > 0 {
		buf.WriteString(`,"refs":{`)
		for i, name := range sortedNames(it.Refs) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendString(buf, name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendKey(buf, it.Refs[name]); err != nil {
				return fmt.Errorf("ref %q: %w", name, err)
			}
		}
		buf.WriteByte('}')
	}

	buf.WriteByte('}')
	return nil
}

// appendEvent writes an event object. Sorted keys: agg, at, by; at is
// always present (null while the event has not happened), agg and by are
// omitted when absent.
func appendEvent(buf *bytes.Buffer, ev model.Event) error {
	buf.WriteByte('{')
	if ev.Agg != nil {
		buf.WriteString(`"agg":`)
		if err := appendItem(buf, ev.Agg); err != nil {
			return err
		}
		buf.WriteByte(',')
	}
	buf.WriteString(`"at":`)
	if ev.At == nil {
		buf.WriteString("null")
	} else {
		if err := appendString(buf, ev.At.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}
	if ev.By != nil {
		buf.WriteString(`,"by":`)
		if err := appendKey(buf, *ev.By); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// appendKey writes a key object. Sorted keys: id, locations, type; the
// locations member is omitted for primary keys so structurally equal
// keys encode identically.
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

func appendString(buf *bytes.Buffer, s string) error {
	data, err := model.CanonicalString(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// UnmarshalItem parses canonical JSON TEXT back into an item. Numbers
// decode via json.Number to avoid float64 precision loss on the way in.
func UnmarshalItem(data string) (*model.Item, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	it, err := itemFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return it, nil
}

func itemFromRaw(raw map[string]any) (*model.Item, error) {
	it := &model.Item{}

	key, err := keyFromRaw(raw["key"])
	if err != nil {
		return nil, err
	}
	it.Key = key

	if rawEvents, ok := raw["events"]; ok {
		m, ok := rawEvents.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("events is not an object")
		}
		it.Events = make(map[string]model.Event, len(m))
		for name, rawEv := range m {
			ev, err := eventFromRaw(rawEv)
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", name, err)
			}
			it.Events[name] = ev
		}
	}

	if rawRefs, ok := raw["refs"]; ok {
		m, ok := rawRefs.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("refs is not an object")
		}
		it.Refs = make(map[string]model.Key, len(m))
		for name, rawKey := range m {
			k, err := keyFromRaw(rawKey)
			if err != nil {
				return nil, fmt.Errorf("ref %q: %w", name, err)
			}
			it.Refs[name] = k
		}
	}

	if rawAggs, ok := raw["aggs"]; ok {
		m, ok := rawAggs.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("aggs is not an object")
		}
		it.Aggs = make(map[string][]model.AggEntry, len(m))
		for name, rawEntries := range m {
			list, ok := rawEntries.([]any)
			if !ok {
				return nil, fmt.Errorf("agg %q is not an array", name)
			}
			entries := make([]model.AggEntry, len(list))
			for i, rawEntry := range list {
				obj, ok := rawEntry.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("agg %q[%d] is not an object", name, i)
				}
				k, err := keyFromRaw(obj["key"])
				if err != nil {
					return nil, fmt.Errorf("agg %q[%d]: %w", name, i, err)
				}
				nestedRaw, ok := obj["item"].(map[string]any)
				if !ok {
					return nil, fmt.Errorf("agg %q[%d]: item is not an object", name, i)
				}
				nested, err := itemFromRaw(nestedRaw)
				if err != nil {
					return nil, fmt.Errorf("agg %q[%d]: %w", name, i, err)
				}
				entries[i] = model.AggEntry{Key: k, Item: nested}
			}
			it.Aggs[name] = entries
		}
	}

	if rawFields, ok := raw["fields"]; ok {
		m, ok := rawFields.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("fields is not an object")
		}
		it.Fields = make(map[string]model.Value, len(m))
		for name, rawVal := range m {
			v, err := model.DecodeValue(rawVal)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			it.Fields[name] = v
		}
	}

	return it, nil
}

func eventFromRaw(raw any) (model.Event, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Event{}, fmt.Errorf("event is not an object")
	}

	var ev model.Event
	if rawAt, ok := obj["at"]; ok && rawAt != nil {
		s, ok := rawAt.(string)
		if !ok {
			return model.Event{}, fmt.Errorf("at is not a string")
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return model.Event{}, fmt.Errorf("at: %w", err)
		}
		ev.At = &t
	}
	if rawBy, ok := obj["by"]; ok && rawBy != nil {
		k, err := keyFromRaw(rawBy)
		if err != nil {
			return model.Event{}, fmt.Errorf("by: %w", err)
		}
		ev.By = &k
	}
	if rawAgg, ok := obj["agg"]; ok && rawAgg != nil {
		nested, ok := rawAgg.(map[string]any)
		if !ok {
			return model.Event{}, fmt.Errorf("agg is not an object")
		}
		it, err := itemFromRaw(nested)
		if err != nil {
			return model.Event{}, fmt.Errorf("agg: %w", err)
		}
		ev.Agg = it
	}
	return ev, nil
}

func keyFromRaw(raw any) (model.Key, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Key{}, fmt.Errorf("key is not an object")
	}
	typ, ok := obj["type"].(string)
	if !ok || typ == "" {
		return model.Key{}, fmt.Errorf("key missing type")
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return model.Key{}, fmt.Errorf("key missing id")
	}

	rawLocs, ok := obj["locations"]
	if !ok {
		return model.NewKey(typ, id), nil
	}
	list, ok := rawLocs.([]any)
	if !ok {
		return model.Key{}, fmt.Errorf("key locations is not an array")
	}
	locs := make([]model.Location, len(list))
	for i, rawLoc := range list {
		locObj, ok := rawLoc.(map[string]any)
		if !ok {
			return model.Key{}, fmt.Errorf("locations[%d] is not an object", i)
		}
		locType, ok := locObj["type"].(string)
		if !ok || locType == "" {
			return model.Key{}, fmt.Errorf("locations[%d] missing type", i)
		}
		locID, ok := locObj["id"].(string)
		if !ok || locID == "" {
			return model.Key{}, fmt.Errorf("locations[%d] missing id", i)
		}
		locs[i] = model.Location{Type: locType, ID: locID}
	}
	return model.NewCompositeKey(typ, id, locs...)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
