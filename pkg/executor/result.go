// Package executor drives one parsed Statement to completion against a
// catalog.Catalog, implementing spec.md §4.4 (storage engine operations)
// and §4.5 (the executor pipeline), holding the catalog's statement lock
// for the whole call and persisting any dirty database before returning.
package executor

import "github.com/minisql/minisql/pkg/value"

// Row is one output row, keyed by the result's declared column names.
type Row map[string]value.Value

// Kind tags which arm of Result is populated.
type Kind int

const (
	KindRows Kind = iota
	KindAffected
	KindMessage
)

// Result is the host-visible outcome of one execute() call, per spec §4.5:
// `{Rows(column_names, row_seq), Affected(n), Message(text)}`.
type Result struct {
	Kind     Kind
	Columns  []string
	Rows     []Row
	Affected int
	Message  string
}

func rowsResult(columns []string, rows []Row) *Result {
	return &Result{Kind: KindRows, Columns: columns, Rows: rows}
}

func affectedResult(n int) *Result {
	return &Result{Kind: KindAffected, Affected: n}
}

func messageResult(msg string) *Result {
	return &Result{Kind: KindMessage, Message: msg}
}
