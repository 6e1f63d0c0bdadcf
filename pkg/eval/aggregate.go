package eval

import (
	"strings"

	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

// ComputeAggregates evaluates every aggregate FunctionCall in calls over
// one group's member bindings, keyed by AggregateKey, per spec §4.3:
// COUNT(*) counts members; COUNT(expr)/SUM/AVG/MIN/MAX ignore Null
// argument values; SUM/AVG over an empty (all-Null) set yield Null; COUNT
// over an empty set yields 0; MIN/MAX over an empty set yield Null.
// Bindings rather than raw catalog.Rows so a group spanning a join's two
// relations is handled the same way as a single-table group.
func ComputeAggregates(members []*Binding, calls []*parser.FunctionCall) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(calls))
	for _, fc := range calls {
		v, err := computeOne(members, fc)
		if err != nil {
			return nil, err
		}
		out[AggregateKey(fc)] = v
	}
	return out, nil
}

func computeOne(members []*Binding, fc *parser.FunctionCall) (value.Value, error) {
	if fc.Name == "COUNT" && fc.Star {
		return value.Integer(int64(len(members))), nil
	}
	if len(fc.Arguments) != 1 {
		return value.Value{}, dberr.Semantic("%s takes exactly one argument", fc.Name)
	}
	arg := fc.Arguments[0]

	var nonNull []value.Value
	for _, b := range members {
		v, err := Eval(arg, &Context{Binding: b})
		if err != nil {
			return value.Value{}, err
		}
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}

	switch fc.Name {
	case "COUNT":
		return value.Integer(int64(len(nonNull))), nil
	case "SUM":
		if len(nonNull) == 0 {
			return value.Null(), nil
		}
		return sumValues(nonNull)
	case "AVG":
		if len(nonNull) == 0 {
			return value.Null(), nil
		}
		sum, err := sumValues(nonNull)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(asFloat(sum) / float64(len(nonNull))), nil
	case "MIN":
		return extremum(nonNull, -1)
	case "MAX":
		return extremum(nonNull, 1)
	}
	return value.Value{}, dberr.Semantic("unknown aggregate function %q", fc.Name)
}

func sumValues(vals []value.Value) (value.Value, error) {
	var isFloat bool
	var sumF float64
	var sumI int64
	for _, v := range vals {
		switch v.Kind {
		case value.KindInteger:
			sumI += v.I
			sumF += float64(v.I)
		case value.KindFloat:
			isFloat = true
			sumF += v.F
		default:
			return value.Value{}, dberr.TypeErr("SUM/AVG require numeric arguments, got %s", v.Kind)
		}
	}
	if isFloat {
		return value.Float(sumF), nil
	}
	return value.Integer(sumI), nil
}

func asFloat(v value.Value) float64 {
	if v.Kind == value.KindInteger {
		return float64(v.I)
	}
	return v.F
}

// extremum finds the MIN (dir<0) or MAX (dir>0) of vals per value.Compare.
func extremum(vals []value.Value, dir int) (value.Value, error) {
	if len(vals) == 0 {
		return value.Null(), nil
	}
	best := vals[0]
	for _, v := range vals[1:] {
		cmp, ok := value.Compare(v, best)
		if !ok {
			return value.Value{}, dberr.TypeErr("cannot compare %s with %s in MIN/MAX", v.Kind, best.Kind)
		}
		if (dir < 0 && cmp < 0) || (dir > 0 && cmp > 0) {
			best = v
		}
	}
	return best, nil
}

// CollectAggregates walks expr and returns every aggregate FunctionCall
// node it contains (COUNT/SUM/AVG/MIN/MAX), used to find the set A of
// spec §4.3's grouped-SELECT algorithm.
func CollectAggregates(expr parser.Expression) []*parser.FunctionCall {
	var out []*parser.FunctionCall
	var walk func(parser.Expression)
	walk = func(e parser.Expression) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *parser.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *parser.UnaryExpression:
			walk(n.Operand)
		case *parser.BetweenExpression:
			walk(n.Expr)
			walk(n.Low)
			walk(n.High)
		case *parser.InExpression:
			walk(n.Expr)
			for _, v := range n.Values {
				walk(v)
			}
		case *parser.LikeExpression:
			walk(n.Expr)
			walk(n.Pattern)
		case *parser.IsNullExpression:
			walk(n.Expr)
		case *parser.AliasedExpression:
			walk(n.Expression)
		case *parser.FunctionCall:
			if IsAggregateName(n.Name) {
				out = append(out, n)
			}
			for _, a := range n.Arguments {
				walk(a)
			}
		}
	}
	walk(expr)
	return out
}

// ContainsColumnNotIn reports whether expr references any ColumnReference
// whose bare column name is not among allowed — used to enforce spec
// §4.5's "every non-aggregate projection column must appear in GROUP BY"
// rule. Aggregate FunctionCall arguments are not descended into, since
// their own column references are summarized away by the aggregate.
func ContainsColumnNotIn(expr parser.Expression, allowed map[string]bool) bool {
	found := false
	var walk func(parser.Expression)
	walk = func(e parser.Expression) {
		if e == nil || found {
			return
		}
		switch n := e.(type) {
		case *parser.ColumnReference:
			if !allowed[columnKey(n.Table, n.Column)] {
				found = true
			}
		case *parser.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *parser.UnaryExpression:
			walk(n.Operand)
		case *parser.BetweenExpression:
			walk(n.Expr)
			walk(n.Low)
			walk(n.High)
		case *parser.InExpression:
			walk(n.Expr)
			for _, v := range n.Values {
				walk(v)
			}
		case *parser.LikeExpression:
			walk(n.Expr)
			walk(n.Pattern)
		case *parser.IsNullExpression:
			walk(n.Expr)
		case *parser.AliasedExpression:
			walk(n.Expression)
		case *parser.FunctionCall:
			if IsAggregateName(n.Name) {
				return
			}
			for _, a := range n.Arguments {
				walk(a)
			}
		}
	}
	walk(expr)
	return found
}

func columnKey(table, column string) string {
	table = strings.ToLower(table)
	column = strings.ToLower(column)
	if table == "" {
		return column
	}
	return table + "." + column
}
