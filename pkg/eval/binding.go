// Package eval implements the expression evaluator: SQL three-valued
// logic, comparison/coercion, LIKE/BETWEEN/IN, column resolution across
// single or joined relations, aggregate lookup, and datetime builtins.
// Grounded on the teacher's pkg/schema/type_checker.go (a visitor-style
// switch over parser.Statement/parser.Expression concrete types
// dispatching into per-node-type checks), generalized from a type-checker
// that reports ValidationErrors into an evaluator that produces
// value.Values, per spec §4.3.
package eval

import (
	"strings"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/value"
)

// Binding is the name→Value map exposed to the evaluator for one logical
// row, possibly a joined pair. Both a bare "col" key and a qualified
// "table.col" key are kept; a bare name shared by more than one relation
// is flagged ambiguous rather than resolved arbitrarily.
type Binding struct {
	values    map[string]value.Value
	ambiguous map[string]bool
}

// NewBinding creates an empty Binding.
func NewBinding() *Binding {
	return &Binding{values: make(map[string]value.Value), ambiguous: make(map[string]bool)}
}

// AddRow merges one relation's row into the binding under its table/alias
// name, populating both qualified and (when unambiguous) bare keys.
func (b *Binding) AddRow(relation string, row catalog.Row, columns []string) {
	rel := strings.ToLower(relation)
	for _, col := range columns {
		key := strings.ToLower(col)
		v := row[key]
		b.values[rel+"."+key] = v
		if _, exists := b.values[key]; exists {
			b.ambiguous[key] = true
		}
		b.values[key] = v
	}
}

// Resolve looks up a (possibly qualified) column reference per spec
// §4.3's column-resolution rule: bare names require the relation to be
// unambiguous; a qualified lookup that misses falls back to the bare
// name, so a qualified name still resolves against a single-relation row
// keyed only by bare column names.
func (b *Binding) Resolve(table, column string) (value.Value, error) {
	col := strings.ToLower(column)

	if table != "" {
		key := strings.ToLower(table) + "." + col
		if v, ok := b.values[key]; ok {
			return v, nil
		}
		if b.ambiguous[col] {
			return value.Value{}, dberr.Semantic("ambiguous column reference %q", column)
		}
		if v, ok := b.values[col]; ok {
			return v, nil
		}
		return value.Value{}, dberr.NotFound("column %q not found on relation %q", column, table)
	}

	if b.ambiguous[col] {
		return value.Value{}, dberr.Semantic("ambiguous column reference %q", column)
	}
	if v, ok := b.values[col]; ok {
		return v, nil
	}
	return value.Value{}, dberr.NotFound("column %q not found", column)
}
