package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
)

func TestShowDatabases_ListsDefaultAndCreated(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE DATABASE shop")

	res := run(t, e, "SHOW DATABASES")
	names := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		names[i] = r["name"].S
	}
	assert.Contains(t, names, catalog.DefaultDatabaseName)
	assert.Contains(t, names, "shop")
}

func TestShowTables_ListsTablesInCurrentDatabase(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE a (id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE b (id INT PRIMARY KEY)")

	res := run(t, e, "SHOW TABLES")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "a", res.Rows[0]["name"].S)
	assert.Equal(t, "b", res.Rows[1]["name"].S)
}

func TestDescribe_ReportsConstraints(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE p (id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE c (id INT PRIMARY KEY, p_id INT REFERENCES p(id) ON DELETE CASCADE)")

	res := run(t, e, "DESCRIBE c")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "PRIMARY KEY", res.Rows[0]["constraints"].S)
	assert.Contains(t, res.Rows[1]["constraints"].S, "REFERENCES p(id)")
	assert.Contains(t, res.Rows[1]["constraints"].S, "ON DELETE CASCADE")
}

func TestDescribe_UnknownTableIsNotFound(t *testing.T) {
	e := newExecutor(t)
	err := runErr(t, e, "DESCRIBE ghost")
	require.True(t, dberr.Is(err, dberr.KindNotFound), "expected NotFoundError, got %v", err)
}

func TestCreateDatabase_RejectsDuplicate(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE DATABASE shop")
	err := runErr(t, e, "CREATE DATABASE shop")
	require.Error(t, err)
}

func TestUseDatabase_UnknownNameFails(t *testing.T) {
	e := newExecutor(t)
	err := runErr(t, e, "USE ghost")
	require.True(t, dberr.Is(err, dberr.KindNotFound), "expected NotFoundError, got %v", err)
}

func TestUseDatabase_SwitchesScopeForSubsequentStatements(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE DATABASE shop")
	run(t, e, "USE shop")
	run(t, e, "CREATE TABLE t (id INT PRIMARY KEY)")

	run(t, e, "USE "+catalog.DefaultDatabaseName)
	err := runErr(t, e, "DESCRIBE t")
	require.Error(t, err, "table created in shop must not be visible after switching back to default")
}

func TestDropDatabase_DefaultCannotBeDropped(t *testing.T) {
	e := newExecutor(t)
	err := runErr(t, e, "DROP DATABASE "+catalog.DefaultDatabaseName)
	require.Error(t, err)
}
