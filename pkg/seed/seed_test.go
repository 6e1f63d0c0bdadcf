package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/executor"
)

func TestApply_CreatesDatabasesAndTables(t *testing.T) {
	spec := &Spec{
		Databases: []DatabaseSpec{
			{
				Name: "shop",
				Tables: []TableSpec{
					{
						Name: "users",
						Columns: []ColumnSpec{
							{Name: "id", Type: "int", PrimaryKey: true},
							{Name: "email", Type: "string", Unique: true},
						},
					},
					{
						Name: "orders",
						Columns: []ColumnSpec{
							{Name: "id", Type: "int", PrimaryKey: true},
							{Name: "user_id", Type: "int", ForeignKey: &ForeignKeySpec{
								Table: "users", Column: "id", OnDelete: "cascade",
							}},
						},
					},
				},
			},
		},
	}

	cat := catalog.New(t.TempDir())
	exec := executor.New(cat)

	require.NoError(t, Apply(spec, exec))

	db, ok := cat.Database("shop")
	require.True(t, ok)
	users, ok := db.Table("users")
	require.True(t, ok)
	require.Len(t, users.Columns, 2)
	orders, ok := db.Table("orders")
	require.True(t, ok)
	require.Len(t, orders.Columns, 2)
}

func TestApply_IdempotentReplay(t *testing.T) {
	spec := &Spec{
		Databases: []DatabaseSpec{
			{
				Name: "shop",
				Tables: []TableSpec{
					{Name: "users", Columns: []ColumnSpec{
						{Name: "id", Type: "int", PrimaryKey: true},
					}},
				},
			},
		},
	}

	cat := catalog.New(t.TempDir())
	exec := executor.New(cat)

	require.NoError(t, Apply(spec, exec))
	require.NoError(t, Apply(spec, exec), "replaying the same seed must not fail on already-existing objects")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `
databases:
  - name: shop
    tables:
      - name: users
        columns:
          - name: id
            type: int
            primary_key: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	spec, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, spec.Databases, 1)
	require.Equal(t, "shop", spec.Databases[0].Name)
	require.Equal(t, "users", spec.Databases[0].Tables[0].Name)
}
