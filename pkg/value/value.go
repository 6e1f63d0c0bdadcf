// Package value implements the tagged-union Value type shared by the
// catalog, evaluator and executor: Null, Integer, Float, Bool, Text, Date,
// Time and DateTime, plus the declared column DataType they coerce to.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags which arm of the Value union is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindBool
	KindText
	KindDate
	KindTime
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindBool:
		return "BOOL"
	case KindText:
		return "TEXT"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	default:
		return "UNKNOWN"
	}
}

// Value is a tagged union over the SQL scalar domain. Only the field(s)
// matching Kind are meaningful.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	B    bool
	S    string
	D    civilDate
	T    civilTime
}

// civilDate is a timezone-less calendar date.
type civilDate struct {
	Year  int
	Month int
	Day   int
}

// civilTime is a timezone-less wall-clock time with microsecond precision.
type civilTime struct {
	Hour   int
	Minute int
	Second int
	Micros int
}

// Constructors.

func Null() Value                { return Value{Kind: KindNull} }
func Integer(i int64) Value      { return Value{Kind: KindInteger, I: i} }
func Float(f float64) Value      { return Value{Kind: KindFloat, F: f} }
func Bool(b bool) Value          { return Value{Kind: KindBool, B: b} }
func Text(s string) Value        { return Value{Kind: KindText, S: s} }
func Date(y, m, d int) Value     { return Value{Kind: KindDate, D: civilDate{y, m, d}} }
func Time(h, m, s, us int) Value { return Value{Kind: KindTime, T: civilTime{h, m, s, us}} }

func DateTime(y, mo, d, h, mi, s, us int) Value {
	return Value{Kind: KindDateTime, D: civilDate{y, mo, d}, T: civilTime{h, mi, s, us}}
}

func FromTime(t time.Time) Value {
	y, mo, d := t.Date()
	return DateTime(y, int(mo), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1000)
}

func DateFromTime(t time.Time) Value {
	y, mo, d := t.Date()
	return Date(y, int(mo), d)
}

func TimeFromTime(t time.Time) Value {
	return Time(t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1000)
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Year/Month/Day/Hour/Minute/Second expose the civil components for Date,
// Time and DateTime values; callers must check Kind first.
func (v Value) Year() int   { return v.D.Year }
func (v Value) Month() int  { return v.D.Month }
func (v Value) Day() int    { return v.D.Day }
func (v Value) Hour() int   { return v.T.Hour }
func (v Value) Minute() int { return v.T.Minute }
func (v Value) Second() int { return v.T.Second }
func (v Value) Micros() int { return v.T.Micros }

// AsGoTime converts a Date/Time/DateTime Value into a time.Time in UTC
// (Time-only values are anchored to the zero date).
func (v Value) AsGoTime() time.Time {
	switch v.Kind {
	case KindDate:
		return time.Date(v.D.Year, time.Month(v.D.Month), v.D.Day, 0, 0, 0, 0, time.UTC)
	case KindTime:
		return time.Date(0, 1, 1, v.T.Hour, v.T.Minute, v.T.Second, v.T.Micros*1000, time.UTC)
	case KindDateTime:
		return time.Date(v.D.Year, time.Month(v.D.Month), v.D.Day, v.T.Hour, v.T.Minute, v.T.Second, v.T.Micros*1000, time.UTC)
	default:
		return time.Time{}
	}
}

// DateOnly returns a Date Value carrying only this value's calendar date
// (valid for Date and DateTime Kinds).
func (v Value) DateOnly() Value { return Date(v.D.Year, v.D.Month, v.D.Day) }

// TimeOnly returns a Time Value carrying only this value's time-of-day
// (valid for Time and DateTime Kinds).
func (v Value) TimeOnly() Value { return Time(v.T.Hour, v.T.Minute, v.T.Second, v.T.Micros) }

// Truthy implements SQL three-valued truthiness for WHERE/HAVING
// admission: only Bool(true) admits; Null and Bool(false) do not.
func (v Value) Truthy() bool {
	return v.Kind == KindBool && v.B
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindBool:
		if v.B {
			return "TRUE"
		}
		return "FALSE"
	case KindText:
		return v.S
	case KindDate:
		return fmt.Sprintf("%04d-%02d-%02d", v.D.Year, v.D.Month, v.D.Day)
	case KindTime:
		return formatTime(v.T)
	case KindDateTime:
		return fmt.Sprintf("%04d-%02d-%02dT%s", v.D.Year, v.D.Month, v.D.Day, formatTime(v.T))
	default:
		return "?"
	}
}

func formatTime(t civilTime) string {
	if t.Micros != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Micros)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// AsJSON returns the value in a shape ready for encoding/json: numbers,
// bools, strings or nil, with temporal Kinds rendered as ISO-8601 per
// spec's catalog wire format.
func AsJSON(v Value) interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInteger:
		return v.I
	case KindFloat:
		return v.F
	case KindBool:
		return v.B
	case KindText:
		return v.S
	case KindDate, KindTime, KindDateTime:
		return v.String()
	default:
		return nil
	}
}

// numeric reports whether v is numeric (Integer or Float) and its value
// widened to float64.
func numeric(v Value) (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.I), true
	case KindFloat:
		return v.F, true
	case KindBool:
		if v.B {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// TryParseFloat attempts to interpret a Text value as a number, as used by
// string<->number comparison coercion in §4.3.
func TryParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Compare orders two Values per spec §4.3. ok is false when the comparison
// is undefined (e.g. mismatched incomparable kinds); Null is handled by
// the caller (both-Null yields SQL Null, not an ordering).
func Compare(a, b Value) (cmp int, ok bool) {
	if a.IsNull() || b.IsNull() {
		return 0, false
	}

	af, aIsNum := numeric(a)
	bf, bIsNum := numeric(b)
	if aIsNum && bIsNum {
		return compareFloat(af, bf), true
	}

	if a.Kind == KindText && bIsNum {
		if f, isNum := TryParseFloat(a.S); isNum {
			return compareFloat(f, bf), true
		}
		return 0, false
	}
	if aIsNum && b.Kind == KindText {
		if f, isNum := TryParseFloat(b.S); isNum {
			return compareFloat(af, f), true
		}
		return 0, false
	}

	if a.Kind == KindText && b.Kind == KindText {
		return strings.Compare(a.S, b.S), true
	}

	if isTemporal(a.Kind) && isTemporal(b.Kind) && a.Kind == b.Kind {
		ta, tb := a.AsGoTime(), b.AsGoTime()
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

func isTemporal(k Kind) bool { return k == KindDate || k == KindTime || k == KindDateTime }

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports strict SQL equality (Null never equals anything, including
// Null) — used for join-equality per §4.5.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	cmp, ok := Compare(a, b)
	return ok && cmp == 0
}

// GroupEqual implements the DISTINCT/GROUP BY equality predicate, where
// Null groups with Null (distinct from Equal's join semantics, per §9).
func GroupEqual(a, b Value) bool {
	if a.IsNull() && b.IsNull() {
		return true
	}
	if a.IsNull() != b.IsNull() {
		return false
	}
	return Equal(a, b)
}

// IsNaNOrInf reports whether a float arithmetic result is unrepresentable.
func IsNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
