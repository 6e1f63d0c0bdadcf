package eval

import (
	"strings"

	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

// Context carries everything Eval needs to resolve one expression:
// the row binding, and — when evaluating a post-GROUP-BY HAVING/ORDER BY
// clause — the precomputed aggregate values for this group, keyed by
// AggregateKey.
type Context struct {
	Binding    *Binding
	Aggregates map[string]value.Value
}

// Eval evaluates expr against ctx, implementing spec §4.3's three-valued
// logic, comparison/coercion rules, and predicate family.
func Eval(expr parser.Expression, ctx *Context) (value.Value, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		return e.Value, nil

	case *parser.ColumnReference:
		return ctx.Binding.Resolve(e.Table, e.Column)

	case *parser.BinaryExpression:
		return evalBinary(e, ctx)

	case *parser.UnaryExpression:
		return evalUnary(e, ctx)

	case *parser.BetweenExpression:
		return evalBetween(e, ctx)

	case *parser.InExpression:
		return evalIn(e, ctx)

	case *parser.LikeExpression:
		return evalLike(e, ctx)

	case *parser.IsNullExpression:
		v, err := Eval(e.Expr, ctx)
		if err != nil {
			return value.Value{}, err
		}
		result := v.IsNull()
		if e.Not {
			result = !result
		}
		return value.Bool(result), nil

	case *parser.FunctionCall:
		return evalFunctionCall(e, ctx)

	case *parser.AliasedExpression:
		return Eval(e.Expression, ctx)
	}

	return value.Value{}, dberr.Semantic("cannot evaluate expression of type %s", expr.Type())
}

func evalBinary(e *parser.BinaryExpression, ctx *Context) (value.Value, error) {
	switch e.Operator {
	case "AND":
		l, err := Eval(e.Left, ctx)
		if err != nil {
			return value.Value{}, err
		}
		r, err := Eval(e.Right, ctx)
		if err != nil {
			return value.Value{}, err
		}
		return threeValuedAnd(l, r), nil
	case "OR":
		l, err := Eval(e.Left, ctx)
		if err != nil {
			return value.Value{}, err
		}
		r, err := Eval(e.Right, ctx)
		if err != nil {
			return value.Value{}, err
		}
		return threeValuedOr(l, r), nil
	default:
		l, err := Eval(e.Left, ctx)
		if err != nil {
			return value.Value{}, err
		}
		r, err := Eval(e.Right, ctx)
		if err != nil {
			return value.Value{}, err
		}
		return compareOp(e.Operator, l, r)
	}
}

func evalUnary(e *parser.UnaryExpression, ctx *Context) (value.Value, error) {
	operand, err := Eval(e.Operand, ctx)
	if err != nil {
		return value.Value{}, err
	}
	if e.Operator == "NOT" {
		return threeValuedNot(operand), nil
	}
	return value.Value{}, dberr.Semantic("unknown unary operator %q", e.Operator)
}

// threeValuedAnd/Or/Not implement spec §4.3's truth tables exactly: Null
// AND False = False; Null AND True = Null; Null OR True = True; Null OR
// False = Null; NOT Null = Null.
func threeValuedAnd(l, r value.Value) value.Value {
	lb, lIsBool := boolOrNull(l)
	rb, rIsBool := boolOrNull(r)
	if lIsBool && !lb {
		return value.Bool(false)
	}
	if rIsBool && !rb {
		return value.Bool(false)
	}
	if !lIsBool || !rIsBool {
		return value.Null()
	}
	return value.Bool(lb && rb)
}

func threeValuedOr(l, r value.Value) value.Value {
	lb, lIsBool := boolOrNull(l)
	rb, rIsBool := boolOrNull(r)
	if lIsBool && lb {
		return value.Bool(true)
	}
	if rIsBool && rb {
		return value.Bool(true)
	}
	if !lIsBool || !rIsBool {
		return value.Null()
	}
	return value.Bool(lb || rb)
}

func threeValuedNot(v value.Value) value.Value {
	b, ok := boolOrNull(v)
	if !ok {
		return value.Null()
	}
	return value.Bool(!b)
}

// boolOrNull reports v's boolean payload and whether v is a (non-Null)
// Bool at all.
func boolOrNull(v value.Value) (bool, bool) {
	if v.Kind != value.KindBool {
		return false, false
	}
	return v.B, true
}

// compareOp evaluates the comparison family per spec §4.3: a Null on
// either side yields Null; otherwise Value.Compare's coercion rules decide ordering,
// and an incomparable non-Null pair is a TypeError.
func compareOp(op string, l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}
	cmp, ok := value.Compare(l, r)
	if !ok {
		return value.Value{}, dberr.TypeErr("cannot compare %s with %s", l.Kind, r.Kind)
	}
	switch op {
	case "=":
		return value.Bool(cmp == 0), nil
	case "!=", "<>":
		return value.Bool(cmp != 0), nil
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case ">=":
		return value.Bool(cmp >= 0), nil
	}
	return value.Value{}, dberr.Semantic("unknown comparison operator %q", op)
}

// eqThreeValued is the three-valued equality used by IN: Null if either
// side is Null, Bool(cmp==0) if comparable, false for an incomparable
// non-Null pair (IN never errors on a merely-incompatible candidate).
func eqThreeValued(l, r value.Value) value.Value {
	if l.IsNull() || r.IsNull() {
		return value.Null()
	}
	cmp, ok := value.Compare(l, r)
	if !ok {
		return value.Bool(false)
	}
	return value.Bool(cmp == 0)
}

// evalBetween implements `x BETWEEN a AND b` as `x >= a AND x <= b`,
// inclusive on both ends, via the same three-valued AND so Null in any
// operand propagates per the OR/AND truth tables rather than a bespoke
// rule.
func evalBetween(e *parser.BetweenExpression, ctx *Context) (value.Value, error) {
	x, err := Eval(e.Expr, ctx)
	if err != nil {
		return value.Value{}, err
	}
	lo, err := Eval(e.Low, ctx)
	if err != nil {
		return value.Value{}, err
	}
	hi, err := Eval(e.High, ctx)
	if err != nil {
		return value.Value{}, err
	}
	geLo, err := compareOp(">=", x, lo)
	if err != nil {
		return value.Value{}, err
	}
	leHi, err := compareOp("<=", x, hi)
	if err != nil {
		return value.Value{}, err
	}
	result := threeValuedAnd(geLo, leHi)
	if e.Not {
		return threeValuedNot(result), nil
	}
	return result, nil
}

// evalIn implements membership as `x IN (...)` ≡ `x=v1 OR x=v2 OR ...`,
// whose three-valued OR automatically gives spec §4.3's IN semantics:
// true if any equal, Null if none true but some Null, false otherwise.
func evalIn(e *parser.InExpression, ctx *Context) (value.Value, error) {
	x, err := Eval(e.Expr, ctx)
	if err != nil {
		return value.Value{}, err
	}
	result := value.Bool(false)
	for _, candidate := range e.Values {
		v, err := Eval(candidate, ctx)
		if err != nil {
			return value.Value{}, err
		}
		result = threeValuedOr(result, eqThreeValued(x, v))
	}
	if e.Not {
		return threeValuedNot(result), nil
	}
	return result, nil
}

func evalLike(e *parser.LikeExpression, ctx *Context) (value.Value, error) {
	x, err := Eval(e.Expr, ctx)
	if err != nil {
		return value.Value{}, err
	}
	pat, err := Eval(e.Pattern, ctx)
	if err != nil {
		return value.Value{}, err
	}
	if x.IsNull() || pat.IsNull() {
		return value.Null(), nil
	}
	if x.Kind != value.KindText || pat.Kind != value.KindText {
		return value.Value{}, dberr.TypeErr("LIKE requires string operands")
	}
	matched := matchLike(x.S, pat.S)
	if e.Not {
		matched = !matched
	}
	return value.Bool(matched), nil
}

// AggregateKey renders a canonical key for an aggregate FunctionCall,
// used both to look up precomputed group aggregates and, per spec §6's
// auto-aliasing rule, as the default result column name ("COUNT(*)",
// "SUM(amount)") for an unaliased aggregate.
func AggregateKey(fc *parser.FunctionCall) string {
	if fc.Star {
		return fc.Name + "(*)"
	}
	args := make([]string, len(fc.Arguments))
	for i, a := range fc.Arguments {
		args[i] = a.String()
	}
	return fc.Name + "(" + strings.Join(args, ", ") + ")"
}

// IsAggregateName reports whether name is one of COUNT/SUM/AVG/MIN/MAX.
func IsAggregateName(name string) bool {
	switch name {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
		return true
	}
	return false
}

func evalFunctionCall(fc *parser.FunctionCall, ctx *Context) (value.Value, error) {
	if IsAggregateName(fc.Name) {
		if ctx.Aggregates == nil {
			return value.Value{}, dberr.Semantic("aggregate %s used outside of a grouped query", AggregateKey(fc))
		}
		v, ok := ctx.Aggregates[AggregateKey(fc)]
		if !ok {
			return value.Value{}, dberr.Semantic("aggregate %s was not computed for this group", AggregateKey(fc))
		}
		return v, nil
	}
	return evalDatetimeFunction(fc, ctx)
}
