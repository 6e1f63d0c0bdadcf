package executor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minisql/minisql/pkg/catalog"
	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/executor"
	"github.com/minisql/minisql/pkg/parser"
)

// newExecutor returns an Executor over a fresh in-memory catalog rooted at
// a scratch directory, for tests that don't care about persistence.
func newExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	return executor.New(catalog.New(t.TempDir()))
}

// run parses and executes sql, failing the test on any error.
func run(t *testing.T, e *executor.Executor, sql string) *executor.Result {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err, "parsing %q", sql)
	res, err := e.Execute(stmt)
	require.NoError(t, err, "executing %q", sql)
	return res
}

// runErr parses and executes sql, returning the execution error (parse
// errors still fail the test outright).
func runErr(t *testing.T, e *executor.Executor, sql string) error {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err, "parsing %q", sql)
	_, err = e.Execute(stmt)
	return err
}

func TestScenario_PKAndUniqueEnforcement(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE users (id INT PRIMARY KEY, email STRING UNIQUE, name STRING)")
	run(t, e, "INSERT INTO users VALUES (1, 'a@x', 'A')")

	err := runErr(t, e, "INSERT INTO users VALUES (1, 'b@x', 'B')")
	require.True(t, dberr.Is(err, dberr.KindConstraint), "expected ConstraintError for PK dup, got %v", err)

	err = runErr(t, e, "INSERT INTO users VALUES (2, 'a@x', 'B')")
	require.True(t, dberr.Is(err, dberr.KindConstraint), "expected ConstraintError for UNIQUE dup, got %v", err)

	res := run(t, e, "SELECT COUNT(*) FROM users")
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0]["COUNT(*)"].I)
}

func TestScenario_OnDeleteCascadeChain(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE u (id INT PRIMARY KEY, n STRING)")
	run(t, e, "CREATE TABLE o (id INT PRIMARY KEY, u_id INT REFERENCES u(id) ON DELETE CASCADE)")
	run(t, e, "INSERT INTO u VALUES (1, 'A')")
	run(t, e, "INSERT INTO o VALUES (10, 1)")
	run(t, e, "INSERT INTO o VALUES (11, 1)")

	res := run(t, e, "DELETE FROM u WHERE id = 1")
	require.Equal(t, 1, res.Affected)

	res = run(t, e, "SELECT COUNT(*) FROM o")
	require.Equal(t, int64(0), res.Rows[0]["COUNT(*)"].I)
}

func TestScenario_RestrictBlocksDelete(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE p (id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE c (id INT PRIMARY KEY, p_id INT REFERENCES p(id))")
	run(t, e, "INSERT INTO p VALUES (1)")
	run(t, e, "INSERT INTO c VALUES (1, 1)")

	err := runErr(t, e, "DELETE FROM p WHERE id = 1")
	require.True(t, dberr.Is(err, dberr.KindConstraint), "expected RestrictViolation, got %v", err)

	res := run(t, e, "SELECT COUNT(*) FROM p")
	require.Equal(t, int64(1), res.Rows[0]["COUNT(*)"].I)
}

func TestScenario_AggregationWithHaving(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE ord (id INT PRIMARY KEY, uid INT, amt INT)")
	run(t, e, "INSERT INTO ord VALUES (1,1,10)")
	run(t, e, "INSERT INTO ord VALUES (2,1,20)")
	run(t, e, "INSERT INTO ord VALUES (3,2,5)")

	res := run(t, e, "SELECT uid, SUM(amt) AS s FROM ord GROUP BY uid HAVING SUM(amt) > 10 ORDER BY s DESC")
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0]["uid"].I)
	require.Equal(t, int64(30), res.Rows[0]["s"].I)
}

func TestScenario_LeftOuterJoinNullFill(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE u (id INT PRIMARY KEY, n STRING)")
	run(t, e, "CREATE TABLE o (id INT PRIMARY KEY, u_id INT REFERENCES u(id))")
	run(t, e, "INSERT INTO u VALUES (1,'A')")
	run(t, e, "INSERT INTO u VALUES (2,'B')")
	run(t, e, "INSERT INTO o VALUES (10, 1)")

	res := run(t, e, "SELECT u.n, o.id FROM u LEFT JOIN o ON u.id = o.u_id ORDER BY u.n")
	require.Len(t, res.Rows, 2)
	require.Equal(t, "A", res.Rows[0]["n"].S)
	require.Equal(t, int64(10), res.Rows[0]["id"].I)
	require.Equal(t, "B", res.Rows[1]["n"].S)
	require.True(t, res.Rows[1]["id"].IsNull())
}

func TestScenario_DatetimePredicateAndArithmetic(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE e (id INT PRIMARY KEY, d DATE)")
	run(t, e, "INSERT INTO e VALUES (1, '2025-01-14')")
	run(t, e, "INSERT INTO e VALUES (2, '2024-07-01')")

	res := run(t, e, "SELECT id FROM e WHERE YEAR(d) = 2025")
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0]["id"].I)

	res = run(t, e, "SELECT id FROM e WHERE d >= DATE_SUB('2025-01-20', 10)")
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0]["id"].I)
}

func TestAtomicity_FailedInsertLeavesRowCountUnchanged(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE t (id INT PRIMARY KEY)")
	run(t, e, "INSERT INTO t VALUES (1)")

	err := runErr(t, e, "INSERT INTO t VALUES (1)")
	require.Error(t, err)

	res := run(t, e, "SELECT COUNT(*) FROM t")
	require.Equal(t, int64(1), res.Rows[0]["COUNT(*)"].I)
}

func TestDropTableDoesNotCascadeFKValidation(t *testing.T) {
	// DROP TABLE has no ALTER-TABLE-style cascade in this dialect: a
	// table still referenced by another table's FK can be dropped; the
	// dangling reference is only re-validated lazily by later statements
	// (see catalog.Database.DropTable).
	e := newExecutor(t)
	run(t, e, "CREATE TABLE a (id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE b (id INT PRIMARY KEY, a_id INT REFERENCES a(id))")

	res := run(t, e, "DROP TABLE a")
	require.Contains(t, res.Message, "dropped")
}

func TestSetNullOnDeleteRejectsPKColumn(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE p (id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE c (p_id INT PRIMARY KEY REFERENCES p(id) ON DELETE SET NULL)")
	run(t, e, "INSERT INTO p VALUES (1)")
	run(t, e, "INSERT INTO c VALUES (1)")

	err := runErr(t, e, "DELETE FROM p WHERE id = 1")
	require.True(t, dberr.Is(err, dberr.KindConstraint), "SET NULL onto a PK column must fail, got %v", err)
}

func TestInnerJoinExcludesUnmatchedRows(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE u (id INT PRIMARY KEY, n STRING)")
	run(t, e, "CREATE TABLE o (id INT PRIMARY KEY, u_id INT REFERENCES u(id))")
	run(t, e, "INSERT INTO u VALUES (1,'A')")
	run(t, e, "INSERT INTO u VALUES (2,'B')")
	run(t, e, "INSERT INTO o VALUES (10, 1)")

	res := run(t, e, "SELECT u.n FROM u INNER JOIN o ON u.id = o.u_id")
	require.Len(t, res.Rows, 1)
	require.Equal(t, "A", res.Rows[0]["n"].S)
}

func TestDistinctTreatsNullAsEqual(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE t (id INT PRIMARY KEY, g STRING)")
	run(t, e, "INSERT INTO t VALUES (1, NULL)")
	run(t, e, "INSERT INTO t VALUES (2, NULL)")
	run(t, e, "INSERT INTO t VALUES (3, 'x')")

	res := run(t, e, "SELECT DISTINCT g FROM t")
	require.Len(t, res.Rows, 2)
}

func TestOrderByNullCollation(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE t (id INT PRIMARY KEY, g INT)")
	run(t, e, "INSERT INTO t VALUES (1, NULL)")
	run(t, e, "INSERT INTO t VALUES (2, 5)")
	run(t, e, "INSERT INTO t VALUES (3, 1)")

	res := run(t, e, "SELECT id FROM t ORDER BY g ASC")
	require.Equal(t, []int64{3, 2, 1}, []int64{res.Rows[0]["id"].I, res.Rows[1]["id"].I, res.Rows[2]["id"].I})
}

func TestLimitOffset(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE t (id INT PRIMARY KEY)")
	for i := 1; i <= 5; i++ {
		run(t, e, "INSERT INTO t VALUES ("+itoa(i)+")")
	}
	res := run(t, e, "SELECT id FROM t ORDER BY id LIMIT 2 OFFSET 1")
	require.Len(t, res.Rows, 2)
	require.Equal(t, int64(2), res.Rows[0]["id"].I)
	require.Equal(t, int64(3), res.Rows[1]["id"].I)
}

func TestSelectStarExpandsDeclaredColumns(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE users (id INT PRIMARY KEY, name STRING, email STRING)")
	run(t, e, "INSERT INTO users VALUES (1, 'A', 'a@x')")

	res := run(t, e, "SELECT * FROM users")
	require.Equal(t, []string{"id", "name", "email"}, res.Columns)
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0]["id"].I)
	require.Equal(t, "A", res.Rows[0]["name"].S)
	require.Equal(t, "a@x", res.Rows[0]["email"].S)
}

func TestSelectQualifiedStarInJoin(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE u (id INT PRIMARY KEY, n STRING)")
	run(t, e, "CREATE TABLE o (id INT PRIMARY KEY, u_id INT REFERENCES u(id))")
	run(t, e, "INSERT INTO u VALUES (1, 'A')")
	run(t, e, "INSERT INTO o VALUES (10, 1)")

	res := run(t, e, "SELECT u.* FROM u INNER JOIN o ON u.id = o.u_id")
	require.Equal(t, []string{"id", "n"}, res.Columns)
	require.Len(t, res.Rows, 1)
	require.Equal(t, int64(1), res.Rows[0]["id"].I)
	require.Equal(t, "A", res.Rows[0]["n"].S)
}

func TestAggregateWithJoinIsUnsupportedFeature(t *testing.T) {
	e := newExecutor(t)
	run(t, e, "CREATE TABLE u (id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE o (id INT PRIMARY KEY, u_id INT REFERENCES u(id))")

	err := runErr(t, e, "SELECT COUNT(*) FROM u INNER JOIN o ON u.id = o.u_id")
	require.True(t, dberr.Is(err, dberr.KindFeature), "expected FeatureError, got %v", err)
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var out []byte
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}
