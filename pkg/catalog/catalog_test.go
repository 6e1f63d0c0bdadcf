package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minisql/minisql/pkg/value"
)

func mustTable(name string, pk bool, cols ...*Column) *Table {
	all := cols
	if pk {
		all = append([]*Column{{Name: "id", Type: value.TypeInt, IsPrimaryKey: true}}, cols...)
	}
	return NewTable(name, all)
}

func TestCheckCreateTable_RejectsDuplicateColumn(t *testing.T) {
	db := NewDatabase("d")
	err := db.CheckCreateTable("t", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "id", Type: value.TypeString},
	})
	require.Error(t, err)
}

func TestCheckCreateTable_RequiresExactlyOnePK(t *testing.T) {
	db := NewDatabase("d")
	err := db.CheckCreateTable("t", []*Column{
		{Name: "a", Type: value.TypeInt},
		{Name: "b", Type: value.TypeInt},
	})
	require.Error(t, err, "zero PK columns must be rejected")

	err = db.CheckCreateTable("t", []*Column{
		{Name: "a", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "b", Type: value.TypeInt, IsPrimaryKey: true},
	})
	require.Error(t, err, "two PK columns must be rejected")
}

func TestCheckCreateTable_FKTargetMustBePKOrUnique(t *testing.T) {
	db := NewDatabase("d")
	parent := mustTable("parent", true, &Column{Name: "name", Type: value.TypeString})
	db.AddTable(parent)

	err := db.CheckCreateTable("child", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "parent_name", Type: value.TypeString, ForeignKey: &ForeignKey{Table: "parent", Column: "name"}},
	})
	require.Error(t, err, "FK referencing a non-PK/UNIQUE column must be rejected")
}

func TestCheckCreateTable_FKTargetTableMustExist(t *testing.T) {
	db := NewDatabase("d")
	err := db.CheckCreateTable("child", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "parent_id", Type: value.TypeInt, ForeignKey: &ForeignKey{Table: "ghost", Column: "id"}},
	})
	require.Error(t, err)
}

func TestCheckAcyclic_DetectsCycleAmongExistingTables(t *testing.T) {
	// Build two tables whose FK columns mutually reference each other,
	// bypassing CheckCreateTable (the grammar can never construct this
	// through CREATE TABLE alone, since a FK target must already exist —
	// this simulates a catalog loaded from a hand-edited file).
	db := NewDatabase("d")
	a := NewTable("a", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "b_id", Type: value.TypeInt, ForeignKey: &ForeignKey{Table: "b", Column: "id"}},
	})
	b := NewTable("b", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "a_id", Type: value.TypeInt, ForeignKey: &ForeignKey{Table: "a", Column: "id"}},
	})
	db.AddTable(a)
	db.AddTable(b)

	err := db.CheckCreateTable("c", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
	})
	require.Error(t, err, "a pre-existing a<->b FK cycle must surface on the next CREATE TABLE's DFS")
}

func TestIndexInvariant_PKCardinalityMatchesRowCount(t *testing.T) {
	tbl := NewTable("t", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
	})
	row1, err := tbl.CoerceValues(nil, []value.Value{value.Integer(1)})
	require.NoError(t, err)
	tbl.CommitInsert(row1)
	row2, err := tbl.CoerceValues(nil, []value.Value{value.Integer(2)})
	require.NoError(t, err)
	tbl.CommitInsert(row2)

	idx, ok := tbl.Index("id")
	require.True(t, ok)
	assert.True(t, idx.Has(value.Integer(1)))
	assert.True(t, idx.Has(value.Integer(2)))
	assert.Equal(t, 2, len(tbl.Rows))
}

func TestDeleteMany_RebuildsIndexesAfterRenumbering(t *testing.T) {
	tbl := NewTable("t", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
	})
	for i := int64(1); i <= 3; i++ {
		row, err := tbl.CoerceValues(nil, []value.Value{value.Integer(i)})
		require.NoError(t, err)
		tbl.CommitInsert(row)
	}

	tbl.DeleteMany(map[int]bool{1: true}) // remove id=2 (position 1)

	require.Len(t, tbl.Rows, 2)
	idx, _ := tbl.Index("id")
	assert.True(t, idx.Has(value.Integer(1)))
	assert.False(t, idx.Has(value.Integer(2)))
	assert.True(t, idx.Has(value.Integer(3)))
	// The row with id=3 (formerly position 2) must have been renumbered
	// down to index 1 after delete.
	assert.Equal(t, []int{1}, idx.Lookup(value.Integer(3)))
}

func TestCoerceValues_RejectsArityMismatch(t *testing.T) {
	tbl := NewTable("t", []*Column{
		{Name: "id", Type: value.TypeInt, IsPrimaryKey: true},
		{Name: "n", Type: value.TypeString},
	})
	_, err := tbl.CoerceValues(nil, []value.Value{value.Integer(1)})
	require.Error(t, err)
}

func TestCatalog_DefaultDatabaseCannotBeDropped(t *testing.T) {
	cat := New(t.TempDir())
	err := cat.DropDatabase(DefaultDatabaseName)
	require.Error(t, err)
}

func TestCatalog_CreateDatabaseRejectsDuplicate(t *testing.T) {
	cat := New(t.TempDir())
	_, err := cat.CreateDatabase("shop")
	require.NoError(t, err)
	_, err = cat.CreateDatabase("shop")
	require.Error(t, err)
}
