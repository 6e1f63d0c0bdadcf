package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minisql/minisql/pkg/dberr"
)

func TestParse_CreateTable_FullColumnClauses(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE orders (
		id INT PRIMARY KEY,
		sku STRING UNIQUE,
		user_id INT REFERENCES users(id) ON DELETE CASCADE ON UPDATE RESTRICT
	)`)
	require.NoError(t, err)
	ct, ok := stmt.(*CreateTableStatement)
	require.True(t, ok)
	assert.Equal(t, "orders", ct.Name)
	require.Len(t, ct.Columns, 3)

	assert.True(t, ct.Columns[0].IsPrimaryKey)
	assert.True(t, ct.Columns[1].IsUnique)

	fk := ct.Columns[2].ForeignKey
	require.NotNil(t, fk)
	assert.Equal(t, "users", fk.TargetTable)
	assert.Equal(t, "id", fk.TargetColumn)
	assert.Equal(t, ActionCascade, fk.OnDelete)
	assert.Equal(t, ActionRestrict, fk.OnUpdate)
}

func TestParse_CreateTable_ForeignKeyDefaultsToRestrict(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE o (id INT PRIMARY KEY, u_id INT REFERENCES u(id))`)
	require.NoError(t, err)
	ct := stmt.(*CreateTableStatement)
	fk := ct.Columns[1].ForeignKey
	require.NotNil(t, fk)
	assert.Equal(t, ActionRestrict, fk.OnDelete)
	assert.Equal(t, ActionRestrict, fk.OnUpdate)
}

func TestParse_CreateTable_RejectsMissingColumnType(t *testing.T) {
	_, err := Parse(`CREATE TABLE t (id)`)
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParse_CreateDatabaseAndUse(t *testing.T) {
	stmt, err := Parse(`CREATE DATABASE shop`)
	require.NoError(t, err)
	assert.Equal(t, "shop", stmt.(*CreateDatabaseStatement).Name)

	stmt, err = Parse(`USE shop`)
	require.NoError(t, err)
	assert.Equal(t, "shop", stmt.(*UseStatement).Name)
}

func TestParse_ShowAndDescribe(t *testing.T) {
	_, err := Parse(`SHOW DATABASES`)
	require.NoError(t, err)
	_, err = Parse(`SHOW TABLES`)
	require.NoError(t, err)

	stmt, err := Parse(`DESCRIBE orders`)
	require.NoError(t, err)
	assert.Equal(t, "orders", stmt.(*DescribeStatement).Table)
}

func TestParse_Insert_ExplicitColumnsAndArityMismatchIsCallerChecked(t *testing.T) {
	stmt, err := Parse(`INSERT INTO t (id, name) VALUES (1, 'a')`)
	require.NoError(t, err)
	ins := stmt.(*InsertStatement)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
	require.Len(t, ins.Values, 2)
}

func TestParse_Insert_WithoutColumnList(t *testing.T) {
	stmt, err := Parse(`INSERT INTO t VALUES (1, 'a', NULL)`)
	require.NoError(t, err)
	ins := stmt.(*InsertStatement)
	assert.Nil(t, ins.Columns)
	require.Len(t, ins.Values, 3)
}

func TestParse_Update_MultiColumnSetWithWhere(t *testing.T) {
	stmt, err := Parse(`UPDATE t SET a = 1, b = 'x' WHERE id = 1`)
	require.NoError(t, err)
	upd := stmt.(*UpdateStatement)
	require.Len(t, upd.Set, 2)
	assert.Equal(t, "a", upd.Set[0].Column)
	assert.Equal(t, "b", upd.Set[1].Column)
	assert.NotNil(t, upd.Where)
}

func TestParse_Delete_WithAndWithoutWhere(t *testing.T) {
	stmt, err := Parse(`DELETE FROM t WHERE id = 1`)
	require.NoError(t, err)
	assert.NotNil(t, stmt.(*DeleteStatement).Where)

	stmt, err = Parse(`DELETE FROM t`)
	require.NoError(t, err)
	assert.Nil(t, stmt.(*DeleteStatement).Where)
}

func TestParse_Select_DistinctStarAndAlias(t *testing.T) {
	stmt, err := Parse(`SELECT DISTINCT id, name AS n FROM t`)
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	assert.True(t, sel.Distinct)
	require.Len(t, sel.Columns, 2)
	aliased, ok := sel.Columns[1].(*AliasedExpression)
	require.True(t, ok)
	assert.Equal(t, "n", aliased.Alias)
}

func TestParse_Select_BareAliasWithoutAS(t *testing.T) {
	stmt, err := Parse(`SELECT name n FROM t`)
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	aliased, ok := sel.Columns[0].(*AliasedExpression)
	require.True(t, ok)
	assert.Equal(t, "n", aliased.Alias)
}

func TestParse_Select_JoinWhereGroupByHavingOrderByLimit(t *testing.T) {
	stmt, err := Parse(`SELECT u.id, COUNT(*) AS c FROM u LEFT JOIN o ON u.id = o.uid
		WHERE u.active = TRUE
		GROUP BY u.id
		HAVING COUNT(*) > 1
		ORDER BY c DESC
		LIMIT 10 OFFSET 5`)
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)

	require.NotNil(t, sel.Join)
	assert.Equal(t, "LEFT", sel.Join.JoinType)
	assert.Equal(t, "u", sel.Join.LeftTable)
	assert.Equal(t, "id", sel.Join.LeftCol)
	assert.Equal(t, "o", sel.Join.RightTable)
	assert.Equal(t, "uid", sel.Join.RightCol)

	require.NotNil(t, sel.Where)
	require.Len(t, sel.GroupBy, 1)
	require.NotNil(t, sel.Having)
	require.Len(t, sel.OrderBy, 1)
	assert.True(t, sel.OrderBy[0].Descending)
	require.NotNil(t, sel.Limit)
	assert.Equal(t, 10, sel.Limit.Count)
	assert.Equal(t, 5, sel.Limit.Offset)
}

func TestParse_Select_TableAliasImplicitAndExplicit(t *testing.T) {
	stmt, err := Parse(`SELECT id FROM users AS u`)
	require.NoError(t, err)
	assert.Equal(t, "u", stmt.(*SelectStatement).From.Alias)

	stmt, err = Parse(`SELECT id FROM users u`)
	require.NoError(t, err)
	assert.Equal(t, "u", stmt.(*SelectStatement).From.Alias)
}

func TestParse_ExpressionPrecedence_OrAndNot(t *testing.T) {
	// NOT binds tighter than AND, which binds tighter than OR:
	// a OR (b AND (NOT c))
	stmt, err := Parse(`SELECT id FROM t WHERE a = 1 OR b = 2 AND NOT c = 3`)
	require.NoError(t, err)
	where := stmt.(*SelectStatement).Where
	or, ok := where.(*BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "OR", or.Operator)

	and, ok := or.Right.(*BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "AND", and.Operator)

	not, ok := and.Right.(*UnaryExpression)
	require.True(t, ok)
	assert.Equal(t, "NOT", not.Operator)
}

func TestParse_Between_In_Like_IsNull(t *testing.T) {
	stmt, err := Parse(`SELECT id FROM t WHERE a BETWEEN 1 AND 10`)
	require.NoError(t, err)
	between, ok := stmt.(*SelectStatement).Where.(*BetweenExpression)
	require.True(t, ok)
	assert.False(t, between.Not)

	stmt, err = Parse(`SELECT id FROM t WHERE a NOT IN (1, 2, 3)`)
	require.NoError(t, err)
	in, ok := stmt.(*SelectStatement).Where.(*InExpression)
	require.True(t, ok)
	assert.True(t, in.Not)
	require.Len(t, in.Values, 3)

	stmt, err = Parse(`SELECT id FROM t WHERE name LIKE 'a%'`)
	require.NoError(t, err)
	like, ok := stmt.(*SelectStatement).Where.(*LikeExpression)
	require.True(t, ok)
	assert.False(t, like.Not)

	stmt, err = Parse(`SELECT id FROM t WHERE name IS NOT NULL`)
	require.NoError(t, err)
	isNull, ok := stmt.(*SelectStatement).Where.(*IsNullExpression)
	require.True(t, ok)
	assert.True(t, isNull.Not)
}

func TestParse_NegativeNumberLiteral(t *testing.T) {
	stmt, err := Parse(`SELECT id FROM t WHERE a = -5`)
	require.NoError(t, err)
	be := stmt.(*SelectStatement).Where.(*BinaryExpression)
	lit := be.Right.(*Literal)
	assert.Equal(t, int64(-5), lit.Value.I)
}

func TestParse_AggregateFunctionCallWithAlias(t *testing.T) {
	stmt, err := Parse(`SELECT SUM(amt) AS total FROM t`)
	require.NoError(t, err)
	sel := stmt.(*SelectStatement)
	aliased := sel.Columns[0].(*AliasedExpression)
	fc := aliased.Expression.(*FunctionCall)
	assert.Equal(t, "SUM", fc.Name)
	assert.False(t, fc.Star)
}

func TestParse_SyntaxErrorReportsPosition(t *testing.T) {
	_, err := Parse(`SELECT FROM t`)
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Line)
}

func TestParse_TrailingSemicolonOptional(t *testing.T) {
	_, err := Parse(`SELECT id FROM t;`)
	require.NoError(t, err)
	_, err = Parse(`SELECT id FROM t`)
	require.NoError(t, err)
}

func TestParse_TrailingGarbageRejected(t *testing.T) {
	_, err := Parse(`SELECT id FROM t EXTRA`)
	require.Error(t, err)
}

func TestParse_AggregateDistinctArgumentRejectedAsFeatureError(t *testing.T) {
	_, err := Parse(`SELECT COUNT(DISTINCT id) FROM t`)
	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.KindFeature), "expected FeatureError, got %v", err)
}
