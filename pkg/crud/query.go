package crud

import (
	"fmt"
	"sort"
	"strings"
)

// Op is a comparison operator usable in a Condition.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Condition restricts a query to rows where Column Op Value holds.
// The zero Condition is ignored.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

func (c Condition) sql() string {
	return c.Column + " " + string(c.Op) + " ?"
}

func cond[T any](column string, op Op, v *T) Condition {
	if v == nil {
		return Condition{}
	}
	return Condition{Column: column, Op: op, Value: *v}
}

// Eq matches column = *v, or nothing when v is nil.
func Eq[T any](column string, v *T) Condition { return cond(column, OpEq, v) }

// Gte matches column >= *v, or nothing when v is nil.
func Gte[T any](column string, v *T) Condition { return cond(column, OpGte, v) }

// Lte matches column <= *v, or nothing when v is nil.
func Lte[T any](column string, v *T) Condition { return cond(column, OpLte, v) }

// Equal matches column = v unconditionally.
func Equal(column string, v any) Condition {
	return Condition{Column: column, Op: OpEq, Value: v}
}

// Where drops the zero conditions produced by nil filter fields.
// The remaining conditions are AND-combined.
func Where(conds ...Condition) []Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.Column != "" {
			out = append(out, c)
		}
	}
	return out
}

// Order sorts by Column, descending when Desc is set.
type Order struct {
	Column string
	Desc   bool
}

func (o Order) sql() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

// Query is a fully resolved find-many request: filter, sort, then page.
type Query struct {
	Where []Condition
	Order []Order
	Skip  *int
	Take  *int
}

// And returns a copy of q further restricted by conds.
func (q Query) And(conds ...Condition) Query {
	where := make([]Condition, 0, len(q.Where)+len(conds))
	where = append(where, q.Where...)
	q.Where = append(where, Where(conds...)...)
	return q
}

// Schema describes an entity for the generic repository: its name and the
// wire field names that may be used for sorting, mapped to their columns.
type Schema struct {
	Name    string
	Columns map[string]string
}

// Query validates paging and sortBy against the schema and builds a Query.
// sortBy maps wire field names to "asc" or "desc". Keys are applied in
// lexical order and the primary key is appended as a tie-breaker so that
// paging is stable.
func (s Schema) Query(where []Condition, skip, take *int, sortBy map[string]string) (Query, error) {
	if skip != nil && *skip < 0 {
		return Query{}, fmt.Errorf("%w: skip must not be negative", ErrInvalidQuery)
	}
	if take != nil && *take < 0 {
		return Query{}, fmt.Errorf("%w: take must not be negative", ErrInvalidQuery)
	}
	fields := make([]string, 0, len(sortBy))
	for f := range sortBy {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	order := make([]Order, 0, len(fields)+1)
	byID := false
	for _, f := range fields {
		col, ok := s.Columns[f]
		if !ok {
			return Query{}, fmt.Errorf("%w: %s cannot be sorted by %q", ErrInvalidQuery, s.Name, f)
		}
		var desc bool
		switch strings.ToLower(strings.TrimSpace(sortBy[f])) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return Query{}, fmt.Errorf("%w: sort direction %q for %q", ErrInvalidQuery, sortBy[f], f)
		}
		if col == "id" {
			byID = true
		}
		order = append(order, Order{Column: col, Desc: desc})
	}
	if !byID {
		order = append(order, Order{Column: "id"})
	}
	return Query{Where: Where(where...), Order: order, Skip: skip, Take: take}, nil
}
