package catalog

import "github.com/minisql/minisql/pkg/value"

// Row is an ordered mapping column_name → Value; keys are lower-cased to
// match Table's case-insensitive column lookups. Column order for display
// purposes comes from the owning Table's Columns slice, not from Row
// itself.
type Row map[string]value.Value

// Clone returns a shallow copy — Value is itself an immutable scalar, so a
// shallow map copy is a full deep copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
