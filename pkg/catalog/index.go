package catalog

import "github.com/minisql/minisql/pkg/value"

// Index is a hash map from a column's values to the row positions that
// carry that value, per spec's Index invariant: unique when backing a
// PK/UNIQUE column, otherwise a plain equality lookup used by referential
// actions to find child rows fast.
type Index struct {
	Unique  bool
	entries map[string][]int
}

func newIndex(unique bool) *Index {
	return &Index{Unique: unique, entries: make(map[string][]int)}
}

// indexKey canonicalizes a Value into a string hash key. Null values are
// never indexed (ok is false) — PK/UNIQUE never store Null, and FK lookups
// never need to find rows by Null.
func indexKey(v value.Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	return string(v.Kind.String()[0]) + ":" + v.String(), true
}

// Lookup returns the row positions currently mapped to v.
func (idx *Index) Lookup(v value.Value) []int {
	key, ok := indexKey(v)
	if !ok {
		return nil
	}
	return idx.entries[key]
}

// Has reports whether v is already present — used for PK/UNIQUE duplicate
// checks.
func (idx *Index) Has(v value.Value) bool {
	return len(idx.Lookup(v)) > 0
}

func (idx *Index) insert(v value.Value, pos int) {
	key, ok := indexKey(v)
	if !ok {
		return
	}
	idx.entries[key] = append(idx.entries[key], pos)
}

// rebuild clears and repopulates the index from the given column values in
// row-position order — used after deletes renumber the dense row vector.
func (idx *Index) rebuild(values []value.Value) {
	idx.entries = make(map[string][]int, len(values))
	for pos, v := range values {
		idx.insert(v, pos)
	}
}
