package query

import "github.com/roach88/strata/internal/model"

// Operator identifies a leaf comparison.
type Operator string

const (
	OpEqual            Operator = "=="
	OpNotEqual         Operator = "!="
	OpGreater          Operator = ">"
	OpGreaterOrEqual   Operator = ">="
	OpLess             Operator = "<"
	OpLessOrEqual      Operator = "<="
	OpIn               Operator = "in"
	OpNotIn            Operator = "not-in"
	OpArrayContains    Operator = "array-contains"
	OpArrayContainsAny Operator = "array-contains-any"
)

// ValidOperators enumerates every legal operator.
var ValidOperators = map[Operator]bool{
	OpEqual:            true,
	OpNotEqual:         true,
	OpGreater:          true,
	OpGreaterOrEqual:   true,
	OpLess:             true,
	OpLessOrEqual:      true,
	OpIn:               true,
	OpNotIn:            true,
	OpArrayContains:    true,
	OpArrayContainsAny: true,
}

// CompoundOp is the boolean composition mode of a Compound node.
type CompoundOp string

const (
	And CompoundOp = "and"
	Or  CompoundOp = "or"
)

// Node represents one node of the condition tree.
//
// This is a sealed interface - only Condition and Compound implement it.
// The marker method prevents external implementations and enables
// exhaustive type switches in the matcher and serializer.
type Node interface {
	conditionNode() // Marker method - seals interface to this package
}

// Condition is a leaf comparison of an open item field against a value.
//
// A null value is legal only with OpEqual / OpNotEqual; every other
// operator against a null value is a malformed predicate and fails the
// evaluation call rather than returning false.
type Condition struct {
	// Column names the open item field to compare.
	Column string

	// Value is the comparison operand. For OpIn, OpNotIn, and
	// OpArrayContainsAny this must be a model.Array; the contract is
	// enforced at evaluation time, not construction time.
	Value model.Value

	// Operator selects the comparison.
	Operator Operator
}

func (*Condition) conditionNode() {}

// Compound composes child nodes with AND or OR. Nesting is unbounded.
// Child order is preserved; evaluation short-circuits in order.
type Compound struct {
	Op         CompoundOp
	Conditions []Node
}

func (*Compound) conditionNode() {}

// NewCondition creates a leaf condition.
func NewCondition(column string, value model.Value, op Operator) *Condition {
	return &Condition{Column: column, Value: value, Operator: op}
}

// NewAnd composes nodes conjunctively.
func NewAnd(nodes ...Node) *Compound {
	return &Compound{Op: And, Conditions: nodes}
}

// NewOr composes nodes disjunctively.
func NewOr(nodes ...Node) *Compound {
	return &Compound{Op: Or, Conditions: nodes}
}
