// Package doc defines the external document schema for items and queries
// and its conversion into the core model.
//
// Documents arrive as decoded YAML or CUE (the CLI loader and the test
// harness share this package); conversion validates shape and reports
// precise per-field errors instead of letting a malformed document decay
// into a zero-valued query.
package doc

import (
	"fmt"
	"time"

	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
)

// KeyDoc is the document form of a key.
type KeyDoc struct {
	Type      string        `yaml:"type" json:"type"`
	ID        string        `yaml:"id" json:"id"`
	Locations []LocationDoc `yaml:"locations,omitempty" json:"locations,omitempty"`
}

// LocationDoc is one ancestor link.
type LocationDoc struct {
	Type string `yaml:"type" json:"type"`
	ID   string `yaml:"id" json:"id"`
}

// EventDoc is the document form of an item event. At is RFC 3339 or
// absent/null for a not-yet-happened event.
type EventDoc struct {
	At *string `yaml:"at" json:"at"`
	By *KeyDoc `yaml:"by,omitempty" json:"by,omitempty"`
}

// AggEntryDoc is one member of an aggregation collection.
type AggEntryDoc struct {
	Key  KeyDoc   `yaml:"key" json:"key"`
	Item *ItemDoc `yaml:"item" json:"item"`
}

// ItemDoc is the document form of an item.
type ItemDoc struct {
	Key    KeyDoc                   `yaml:"key" json:"key"`
	Events map[string]EventDoc      `yaml:"events,omitempty" json:"events,omitempty"`
	Refs   map[string]KeyDoc        `yaml:"refs,omitempty" json:"refs,omitempty"`
	Aggs   map[string][]AggEntryDoc `yaml:"aggs,omitempty" json:"aggs,omitempty"`
	Fields map[string]any           `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// NodeDoc is the document form of a condition-tree node. Exactly one of
// the leaf form (column/op) or a compound form (all/any) must be used.
type NodeDoc struct {
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	Op     string `yaml:"op,omitempty" json:"op,omitempty"`
	Value  any    `yaml:"value,omitempty" json:"value,omitempty"`

	All []*NodeDoc `yaml:"all,omitempty" json:"all,omitempty"`
	Any []*NodeDoc `yaml:"any,omitempty" json:"any,omitempty"`
}

// EventRangeDoc bounds a named event, RFC 3339 instants.
type EventRangeDoc struct {
	Start *string `yaml:"start,omitempty" json:"start,omitempty"`
	End   *string `yaml:"end,omitempty" json:"end,omitempty"`
}

// OrderByDoc is one ordering hint.
type OrderByDoc struct {
	Field     string `yaml:"field" json:"field"`
	Direction string `yaml:"direction" json:"direction"`
}

// QueryDoc is the document form of an ItemQuery. OrderBy is a pointer so
// the explicitly-empty list stays distinct from an absent one.
type QueryDoc struct {
	Condition *NodeDoc                 `yaml:"condition,omitempty" json:"condition,omitempty"`
	Refs      map[string]KeyDoc        `yaml:"refs,omitempty" json:"refs,omitempty"`
	Events    map[string]EventRangeDoc `yaml:"events,omitempty" json:"events,omitempty"`
	Aggs      map[string]*QueryDoc     `yaml:"aggs,omitempty" json:"aggs,omitempty"`
	OrderBy   *[]OrderByDoc            `yaml:"orderBy,omitempty" json:"orderBy,omitempty"`
	Limit     *int                     `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset    *int                     `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// ToKey converts a key document.
func (d KeyDoc) ToKey() (model.Key, error) {
	if d.Type == "" {
		return model.Key{}, fmt.Errorf("key missing type")
	}
	if d.ID == "" {
		return model.Key{}, fmt.Errorf("key %q missing id", d.Type)
	}
	locs := make([]model.Location, len(d.Locations))
	for i, loc := range d.Locations {
		if loc.Type == "" || loc.ID == "" {
			return model.Key{}, fmt.Errorf("key %s/%s: locations[%d] missing type or id", d.Type, d.ID, i)
		}
		locs[i] = model.Location{Type: loc.Type, ID: loc.ID}
	}
	if len(locs) == 0 {
		return model.NewKey(d.Type, d.ID), nil
	}
	return model.NewCompositeKey(d.Type, d.ID, locs...)
}

// ToItem converts an item document.
func (d *ItemDoc) ToItem() (*model.Item, error) {
	if d == nil {
		return nil, fmt.Errorf("item document is required")
	}
	key, err := d.Key.ToKey()
	if err != nil {
		return nil, err
	}

	it := &model.Item{Key: key}

	if len(d.Events) > 0 {
		it.Events = make(map[string]model.Event, len(d.Events))
		for name, ev := range d.Events {
			converted, err := ev.toEvent()
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", name, err)
			}
			it.Events[name] = converted
		}
	}

	if len(d.Refs) > 0 {
		it.Refs = make(map[string]model.Key, len(d.Refs))
		for name, kd := range d.Refs {
			k, err := kd.ToKey()
			if err != nil {
				return nil, fmt.Errorf("ref %q: %w", name, err)
			}
			it.Refs[name] = k
		}
	}

	if len(d.Aggs) > 0 {
		it.Aggs = make(map[string][]model.AggEntry, len(d.Aggs))
		for name, entries := range d.Aggs {
			converted := make([]model.AggEntry, len(entries))
			for i, entry := range entries {
				k, err := entry.Key.ToKey()
				if err != nil {
					return nil, fmt.Errorf("agg %q[%d]: %w", name, i, err)
				}
				nested, err := entry.Item.ToItem()
				if err != nil {
					return nil, fmt.Errorf("agg %q[%d]: %w", name, i, err)
				}
				converted[i] = model.AggEntry{Key: k, Item: nested}
			}
			it.Aggs[name] = converted
		}
	}

	if len(d.Fields) > 0 {
		it.Fields = make(map[string]model.Value, len(d.Fields))
		for name, raw := range d.Fields {
			v, err := model.DecodeValue(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			it.Fields[name] = v
		}
	}

	return it, nil
}

func (d EventDoc) toEvent() (model.Event, error) {
	var ev model.Event
	if d.At != nil {
		t, err := time.Parse(time.RFC3339Nano, *d.At)
		if err != nil {
			return model.Event{}, fmt.Errorf("at: %w", err)
		}
		ev.At = &t
	}
	if d.By != nil {
		k, err := d.By.ToKey()
		if err != nil {
			return model.Event{}, fmt.Errorf("by: %w", err)
		}
		ev.By = &k
	}
	return ev, nil
}

// ToQuery converts a query document.
func (d *QueryDoc) ToQuery() (*query.ItemQuery, error) {
	if d == nil {
		return &query.ItemQuery{}, nil
	}

	q := &query.ItemQuery{}

	if d.Condition != nil {
		node, err := d.Condition.toNode()
		if err != nil {
			return nil, fmt.Errorf("condition: %w", err)
		}
		q.Condition = node
	}

	if len(d.Refs) > 0 {
		q.Refs = make(map[string]model.Key, len(d.Refs))
		for name, kd := range d.Refs {
			k, err := kd.ToKey()
			if err != nil {
				return nil, fmt.Errorf("ref %q: %w", name, err)
			}
			q.Refs[name] = k
		}
	}

	if len(d.Events) > 0 {
		q.Events = make(map[string]query.EventRange, len(d.Events))
		for name, rd := range d.Events {
			r, err := rd.toRange()
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", name, err)
			}
			q.Events[name] = r
		}
	}

	if len(d.Aggs) > 0 {
		q.Aggs = make(map[string]*query.ItemQuery, len(d.Aggs))
		for name, sub := range d.Aggs {
			converted, err := sub.ToQuery()
			if err != nil {
				return nil, fmt.Errorf("agg %q: %w", name, err)
			}
			q.Aggs[name] = converted
		}
	}

	if d.OrderBy != nil {
		order := make([]query.OrderBy, len(*d.OrderBy))
		for i, ob := range *d.OrderBy {
			dir := query.Direction(ob.Direction)
			if dir != query.Asc && dir != query.Desc {
				return nil, fmt.Errorf("orderBy[%d]: unknown direction %q", i, ob.Direction)
			}
			order[i] = query.OrderBy{Field: ob.Field, Direction: dir}
		}
		q.OrderBy = order
	}

	q.Limit = d.Limit
	q.Offset = d.Offset

	return q, nil
}

func (d *NodeDoc) toNode() (query.Node, error) {
	isLeaf := d.Column != "" || d.Op != ""
	isCompound := d.All != nil || d.Any != nil

	switch {
	case isLeaf && isCompound:
		return nil, fmt.Errorf("node mixes leaf (column/op) and compound (all/any) forms")
	case isCompound:
		if d.All != nil && d.Any != nil {
			return nil, fmt.Errorf("node sets both all and any")
		}
		op := query.And
		children := d.All
		if d.Any != nil {
			op = query.Or
			children = d.Any
		}
		nodes := make([]query.Node, len(children))
		for i, child := range children {
			node, err := child.toNode()
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			nodes[i] = node
		}
		return &query.Compound{Op: op, Conditions: nodes}, nil
	case isLeaf:
		if d.Column == "" {
			return nil, fmt.Errorf("leaf node missing column")
		}
		op := query.Operator(d.Op)
		if !query.ValidOperators[op] {
			return nil, fmt.Errorf("column %q: unknown operator %q", d.Column, d.Op)
		}
		v, err := model.DecodeValue(d.Value)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", d.Column, err)
		}
		return &query.Condition{Column: d.Column, Value: v, Operator: op}, nil
	default:
		return nil, fmt.Errorf("node is neither leaf (column/op) nor compound (all/any)")
	}
}

func (d EventRangeDoc) toRange() (query.EventRange, error) {
	var r query.EventRange
	if d.Start != nil {
		t, err := time.Parse(time.RFC3339Nano, *d.Start)
		if err != nil {
			return query.EventRange{}, fmt.Errorf("start: %w", err)
		}
		r.Start = &t
	}
	if d.End != nil {
		t, err := time.Parse(time.RFC3339Nano, *d.End)
		if err != nil {
			return query.EventRange{}, fmt.Errorf("end: %w", err)
		}
		r.End = &t
	}
	return r, nil
}
