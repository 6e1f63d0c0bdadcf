package eval

import (
	"time"

	"github.com/minisql/minisql/pkg/dberr"
	"github.com/minisql/minisql/pkg/parser"
	"github.com/minisql/minisql/pkg/value"
)

// Now is overridable in tests; production code always calls time.Now.
var Now = time.Now

// evalDatetimeFunction implements spec §4.3's datetime builtin family.
// Null input propagates to Null output throughout. DATE, TIME and the
// YEAR..SECOND component functions yield Null for an argument of the
// wrong kind; DATE_ADD, DATE_SUB, DATEDIFF, DAYOFWEEK and DAYNAME return a
// TypeError for one, except that DATE_ADD/DATE_SUB parse a Text first
// argument as an ISO date or datetime (Null when it does not parse).
func evalDatetimeFunction(fc *parser.FunctionCall, ctx *Context) (value.Value, error) {
	switch fc.Name {
	case "NOW":
		return value.FromTime(Now()), nil
	case "CURRENT_DATE":
		return value.DateFromTime(Now()), nil
	case "CURRENT_TIME":
		return value.TimeFromTime(Now()), nil
	}

	args, err := evalArgs(fc, ctx)
	if err != nil {
		return value.Value{}, err
	}

	switch fc.Name {
	case "DATE":
		return projectDate(args)
	case "TIME":
		return projectTime(args)
	case "YEAR":
		return dateComponent(args, func(v value.Value) int64 { return int64(v.Year()) })
	case "MONTH":
		return dateComponent(args, func(v value.Value) int64 { return int64(v.Month()) })
	case "DAY":
		return dateComponent(args, func(v value.Value) int64 { return int64(v.Day()) })
	case "HOUR":
		return timeComponent(args, func(v value.Value) int64 { return int64(v.Hour()) })
	case "MINUTE":
		return timeComponent(args, func(v value.Value) int64 { return int64(v.Minute()) })
	case "SECOND":
		return timeComponent(args, func(v value.Value) int64 { return int64(v.Second()) })
	case "DATE_ADD":
		return dateShift(args, 1)
	case "DATE_SUB":
		return dateShift(args, -1)
	case "DATEDIFF":
		return dateDiff(args)
	case "DAYOFWEEK":
		return dayOfWeek(args)
	case "DAYNAME":
		return dayName(args)
	}

	return value.Value{}, dberr.Semantic("unknown function %q", fc.Name)
}

func evalArgs(fc *parser.FunctionCall, ctx *Context) ([]value.Value, error) {
	args := make([]value.Value, len(fc.Arguments))
	for i, a := range fc.Arguments {
		v, err := Eval(a, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func anyNull(args []value.Value) bool {
	for _, a := range args {
		if a.IsNull() {
			return true
		}
	}
	return false
}

func projectDate(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, dberr.Semantic("DATE takes exactly one argument")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	switch args[0].Kind {
	case value.KindDate:
		return args[0], nil
	case value.KindDateTime:
		return args[0].DateOnly(), nil
	default:
		return value.Null(), nil
	}
}

func projectTime(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, dberr.Semantic("TIME takes exactly one argument")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	switch args[0].Kind {
	case value.KindTime:
		return args[0], nil
	case value.KindDateTime:
		return args[0].TimeOnly(), nil
	default:
		return value.Null(), nil
	}
}

func dateComponent(args []value.Value, get func(value.Value) int64) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, dberr.Semantic("expects exactly one argument")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	v := args[0]
	if v.Kind != value.KindDate && v.Kind != value.KindDateTime {
		return value.Null(), nil
	}
	return value.Integer(get(v)), nil
}

func timeComponent(args []value.Value, get func(value.Value) int64) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, dberr.Semantic("expects exactly one argument")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	v := args[0]
	if v.Kind != value.KindTime && v.Kind != value.KindDateTime {
		return value.Null(), nil
	}
	return value.Integer(get(v)), nil
}

// dateShift implements DATE_ADD/DATE_SUB(d, n): n is Integer days, sign
// flips the direction for DATE_SUB, and the result keeps d's temporal
// Kind (Date stays Date, DateTime stays DateTime). A Text d is parsed as
// an ISO DATE, else as an ISO DATETIME; text that parses as neither
// yields Null.
func dateShift(args []value.Value, sign int) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, dberr.Semantic("DATE_ADD/DATE_SUB take exactly two arguments")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	d, n := args[0], args[1]
	if d.Kind == value.KindText {
		parsed, err := value.ParseLiteral(value.TypeDate, d.S)
		if err != nil {
			if parsed, err = value.ParseLiteral(value.TypeDateTime, d.S); err != nil {
				return value.Null(), nil
			}
		}
		d = parsed
	}
	if d.Kind != value.KindDate && d.Kind != value.KindDateTime {
		return value.Value{}, dberr.TypeErr("DATE_ADD/DATE_SUB require a DATE or DATETIME first argument")
	}
	days, ok := asInt(n)
	if !ok {
		return value.Value{}, dberr.TypeErr("DATE_ADD/DATE_SUB require an INTEGER day count")
	}
	shifted := d.AsGoTime().AddDate(0, 0, sign*int(days))
	if d.Kind == value.KindDate {
		return value.DateFromTime(shifted), nil
	}
	return value.FromTime(shifted), nil
}

// dateDiff implements DATEDIFF(a, b): integer calendar-days difference
// between the date components of a and b (a minus b).
func dateDiff(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, dberr.Semantic("DATEDIFF takes exactly two arguments")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	a, b := args[0], args[1]
	if (a.Kind != value.KindDate && a.Kind != value.KindDateTime) ||
		(b.Kind != value.KindDate && b.Kind != value.KindDateTime) {
		return value.Value{}, dberr.TypeErr("DATEDIFF requires DATE or DATETIME arguments")
	}
	ta := a.DateOnly().AsGoTime()
	tb := b.DateOnly().AsGoTime()
	days := int64(ta.Sub(tb).Hours() / 24)
	return value.Integer(days), nil
}

// dayOfWeek returns 1=Sunday..7=Saturday, matching time.Weekday's
// Sunday==0 convention shifted by one.
func dayOfWeek(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, dberr.Semantic("DAYOFWEEK takes exactly one argument")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	d := args[0]
	if d.Kind != value.KindDate && d.Kind != value.KindDateTime {
		return value.Value{}, dberr.TypeErr("DAYOFWEEK requires a DATE or DATETIME argument")
	}
	return value.Integer(int64(d.AsGoTime().Weekday()) + 1), nil
}

func dayName(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, dberr.Semantic("DAYNAME takes exactly one argument")
	}
	if anyNull(args) {
		return value.Null(), nil
	}
	d := args[0]
	if d.Kind != value.KindDate && d.Kind != value.KindDateTime {
		return value.Value{}, dberr.TypeErr("DAYNAME requires a DATE or DATETIME argument")
	}
	return value.Text(d.AsGoTime().Weekday().String()), nil
}

func asInt(v value.Value) (int64, bool) {
	switch v.Kind {
	case value.KindInteger:
		return v.I, true
	case value.KindFloat:
		if v.F == float64(int64(v.F)) {
			return int64(v.F), true
		}
	}
	return 0, false
}
