package parser

import (
	"fmt"

	"github.com/minisql/minisql/pkg/value"
)

// Node/Statement/Expression/BaseNode and the core expression/clause node
// shapes below are kept from the teacher's pkg/parser/ast.go (String/Type
// methods, BaseNode embedding, BinaryExpression/FunctionCall/Literal/
// AliasedExpression/OrderByClause/LimitClause/InsertStatement/
// UpdateStatement+Assignment/DeleteStatement/UnaryExpression/InExpression).
// CTE/window-function/set-operation/CASE nodes are dropped (not in spec's
// closed grammar); DDL and BETWEEN/LIKE/IS NULL nodes are added.

type Node interface {
	String() string
	Type() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type BaseNode struct{}

func (bn *BaseNode) String() string { return "" }
func (bn *BaseNode) Type() string   { return "BaseNode" }

// ReferentialAction is the ON DELETE / ON UPDATE policy for a foreign key.
type ReferentialAction string

const (
	ActionCascade  ReferentialAction = "CASCADE"
	ActionSetNull  ReferentialAction = "SET NULL"
	ActionRestrict ReferentialAction = "RESTRICT"
	ActionNoAction ReferentialAction = "NO ACTION"
)

// ---- DDL statements ----

type CreateDatabaseStatement struct {
	BaseNode
	Name string
}

func (s *CreateDatabaseStatement) statementNode() {}
func (s *CreateDatabaseStatement) Type() string   { return "CreateDatabaseStatement" }
func (s *CreateDatabaseStatement) String() string { return fmt.Sprintf("CREATE DATABASE %s", s.Name) }

type DropDatabaseStatement struct {
	BaseNode
	Name string
}

func (s *DropDatabaseStatement) statementNode() {}
func (s *DropDatabaseStatement) Type() string   { return "DropDatabaseStatement" }
func (s *DropDatabaseStatement) String() string { return fmt.Sprintf("DROP DATABASE %s", s.Name) }

type UseStatement struct {
	BaseNode
	Name string
}

func (s *UseStatement) statementNode() {}
func (s *UseStatement) Type() string   { return "UseStatement" }
func (s *UseStatement) String() string { return fmt.Sprintf("USE %s", s.Name) }

type ShowDatabasesStatement struct{ BaseNode }

func (s *ShowDatabasesStatement) statementNode() {}
func (s *ShowDatabasesStatement) Type() string   { return "ShowDatabasesStatement" }
func (s *ShowDatabasesStatement) String() string { return "SHOW DATABASES" }

type ShowTablesStatement struct{ BaseNode }

func (s *ShowTablesStatement) statementNode() {}
func (s *ShowTablesStatement) Type() string   { return "ShowTablesStatement" }
func (s *ShowTablesStatement) String() string { return "SHOW TABLES" }

type DescribeStatement struct {
	BaseNode
	Table string
}

func (s *DescribeStatement) statementNode() {}
func (s *DescribeStatement) Type() string   { return "DescribeStatement" }
func (s *DescribeStatement) String() string { return fmt.Sprintf("DESCRIBE %s", s.Table) }

// ForeignKeyClause is a column-level REFERENCES clause.
type ForeignKeyClause struct {
	TargetTable  string
	TargetColumn string
	OnDelete     ReferentialAction
	OnUpdate     ReferentialAction
}

// ColumnDef is one column in a CREATE TABLE column list.
type ColumnDef struct {
	Name         string
	Type         value.DataType
	IsPrimaryKey bool
	IsUnique     bool
	ForeignKey   *ForeignKeyClause
}

type CreateTableStatement struct {
	BaseNode
	Name    string
	Columns []*ColumnDef
}

func (s *CreateTableStatement) statementNode() {}
func (s *CreateTableStatement) Type() string   { return "CreateTableStatement" }
func (s *CreateTableStatement) String() string {
	return fmt.Sprintf("CREATE TABLE %s (%d columns)", s.Name, len(s.Columns))
}

type DropTableStatement struct {
	BaseNode
	Name string
}

func (s *DropTableStatement) statementNode() {}
func (s *DropTableStatement) Type() string   { return "DropTableStatement" }
func (s *DropTableStatement) String() string { return fmt.Sprintf("DROP TABLE %s", s.Name) }

// ---- Expressions ----

type ColumnReference struct {
	BaseNode
	Table  string
	Column string
}

func (cr *ColumnReference) expressionNode() {}
func (cr *ColumnReference) Type() string    { return "ColumnReference" }
func (cr *ColumnReference) String() string {
	if cr.Table != "" {
		return fmt.Sprintf("%s.%s", cr.Table, cr.Column)
	}
	return cr.Column
}

type Literal struct {
	BaseNode
	Value value.Value
}

func (l *Literal) expressionNode() {}
func (l *Literal) Type() string    { return "Literal" }
func (l *Literal) String() string  { return l.Value.String() }

type StarExpression struct {
	BaseNode
	Table string
}

func (se *StarExpression) expressionNode() {}
func (se *StarExpression) Type() string    { return "StarExpression" }
func (se *StarExpression) String() string {
	if se.Table != "" {
		return fmt.Sprintf("%s.*", se.Table)
	}
	return "*"
}

// BinaryExpression covers AND/OR plus the comparison family (=, !=, <>,
// <, <=, >, >=), matching the teacher's operator-string binary node.
type BinaryExpression struct {
	BaseNode
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode() {}
func (be *BinaryExpression) Type() string    { return "BinaryExpression" }
func (be *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", be.Left.String(), be.Operator, be.Right.String())
}

// UnaryExpression covers NOT.
type UnaryExpression struct {
	BaseNode
	Operator string
	Operand  Expression
}

func (ue *UnaryExpression) expressionNode() {}
func (ue *UnaryExpression) Type() string    { return "UnaryExpression" }
func (ue *UnaryExpression) String() string {
	return fmt.Sprintf("%s %s", ue.Operator, ue.Operand.String())
}

// BetweenExpression is `expr [NOT] BETWEEN low AND high`.
type BetweenExpression struct {
	BaseNode
	Expr Expression
	Low  Expression
	High Expression
	Not  bool
}

func (be *BetweenExpression) expressionNode() {}
func (be *BetweenExpression) Type() string    { return "BetweenExpression" }
func (be *BetweenExpression) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", be.Expr.String(), be.Low.String(), be.High.String())
}

// InExpression is `expr [NOT] IN (v, ...)`.
type InExpression struct {
	BaseNode
	Expr   Expression
	Values []Expression
	Not    bool
}

func (ie *InExpression) expressionNode() {}
func (ie *InExpression) Type() string    { return "InExpression" }
func (ie *InExpression) String() string {
	if ie.Not {
		return fmt.Sprintf("%s NOT IN (...)", ie.Expr.String())
	}
	return fmt.Sprintf("%s IN (...)", ie.Expr.String())
}

// LikeExpression is `expr [NOT] LIKE pattern`.
type LikeExpression struct {
	BaseNode
	Expr    Expression
	Pattern Expression
	Not     bool
}

func (le *LikeExpression) expressionNode() {}
func (le *LikeExpression) Type() string    { return "LikeExpression" }
func (le *LikeExpression) String() string {
	return fmt.Sprintf("%s LIKE %s", le.Expr.String(), le.Pattern.String())
}

// IsNullExpression is `expr IS [NOT] NULL`.
type IsNullExpression struct {
	BaseNode
	Expr Expression
	Not  bool
}

func (in *IsNullExpression) expressionNode() {}
func (in *IsNullExpression) Type() string    { return "IsNullExpression" }
func (in *IsNullExpression) String() string {
	if in.Not {
		return fmt.Sprintf("%s IS NOT NULL", in.Expr.String())
	}
	return fmt.Sprintf("%s IS NULL", in.Expr.String())
}

// FunctionCall covers aggregates (COUNT/SUM/AVG/MIN/MAX) and datetime
// builtins. Star is set for COUNT(*).
type FunctionCall struct {
	BaseNode
	Name      string
	Arguments []Expression
	Star      bool
}

func (fc *FunctionCall) expressionNode() {}
func (fc *FunctionCall) Type() string    { return "FunctionCall" }
func (fc *FunctionCall) String() string {
	if fc.Star {
		return fmt.Sprintf("%s(*)", fc.Name)
	}
	return fmt.Sprintf("%s(...)", fc.Name)
}

// AliasedExpression is `expression AS alias`.
type AliasedExpression struct {
	BaseNode
	Expression Expression
	Alias      string
}

func (ae *AliasedExpression) expressionNode() {}
func (ae *AliasedExpression) Type() string    { return "AliasedExpression" }
func (ae *AliasedExpression) String() string {
	if ae.Alias != "" {
		return fmt.Sprintf("%s AS %s", ae.Expression.String(), ae.Alias)
	}
	return ae.Expression.String()
}

// ---- SELECT and its clauses ----

type TableReference struct {
	BaseNode
	Name  string
	Alias string
}

func (tr *TableReference) expressionNode() {}
func (tr *TableReference) Type() string    { return "TableReference" }
func (tr *TableReference) String() string  { return tr.Name }

// EffectiveName returns the alias if set, else the table name — the
// binding name this relation is known by in row bindings.
func (tr *TableReference) EffectiveName() string {
	if tr.Alias != "" {
		return tr.Alias
	}
	return tr.Name
}

type JoinClause struct {
	BaseNode
	JoinType   string // INNER, LEFT, RIGHT, FULL
	Table      TableReference
	LeftTable  string
	LeftCol    string
	RightTable string
	RightCol   string
}

func (jc *JoinClause) Type() string   { return "JoinClause" }
func (jc *JoinClause) String() string { return fmt.Sprintf("%s JOIN %s", jc.JoinType, jc.Table.Name) }

type OrderByClause struct {
	BaseNode
	Expression Expression
	Descending bool
}

func (obc *OrderByClause) Type() string { return "OrderByClause" }
func (obc *OrderByClause) String() string {
	dir := "ASC"
	if obc.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", obc.Expression.String(), dir)
}

type LimitClause struct {
	BaseNode
	Count  int
	Offset int
}

func (lc *LimitClause) Type() string   { return "LimitClause" }
func (lc *LimitClause) String() string { return fmt.Sprintf("LIMIT %d OFFSET %d", lc.Count, lc.Offset) }

type SelectStatement struct {
	BaseNode
	Distinct bool
	Columns  []Expression // StarExpression | ColumnReference | FunctionCall | AliasedExpression
	From     TableReference
	Join     *JoinClause
	Where    Expression
	GroupBy  []Expression
	Having   Expression
	OrderBy  []*OrderByClause
	Limit    *LimitClause
}

func (ss *SelectStatement) statementNode() {}
func (ss *SelectStatement) Type() string   { return "SelectStatement" }
func (ss *SelectStatement) String() string {
	return fmt.Sprintf("SELECT Statement with %d columns", len(ss.Columns))
}

// ---- INSERT / UPDATE / DELETE ----

type InsertStatement struct {
	BaseNode
	Table   string
	Columns []string
	Values  []Expression
}

func (is *InsertStatement) statementNode() {}
func (is *InsertStatement) Type() string   { return "InsertStatement" }
func (is *InsertStatement) String() string {
	return fmt.Sprintf("INSERT INTO %s (%d values)", is.Table, len(is.Values))
}

type Assignment struct {
	BaseNode
	Column string
	Value  Expression
}

func (a *Assignment) Type() string   { return "Assignment" }
func (a *Assignment) String() string { return fmt.Sprintf("%s = %s", a.Column, a.Value.String()) }

type UpdateStatement struct {
	BaseNode
	Table string
	Set   []*Assignment
	Where Expression
}

func (us *UpdateStatement) statementNode() {}
func (us *UpdateStatement) Type() string   { return "UpdateStatement" }
func (us *UpdateStatement) String() string {
	return fmt.Sprintf("UPDATE %s SET %d columns", us.Table, len(us.Set))
}

type DeleteStatement struct {
	BaseNode
	Table string
	Where Expression
}

func (ds *DeleteStatement) statementNode() {}
func (ds *DeleteStatement) Type() string   { return "DeleteStatement" }
func (ds *DeleteStatement) String() string { return fmt.Sprintf("DELETE FROM %s", ds.Table) }
