package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType is a declared column type. Grounded on schema.DataType from the
// teacher, narrowed to the fixed set spec's column grammar allows and
// stripped of the teacher's length/precision/scale display-only fields
// (this engine does not model VARCHAR(n) bounds, only the scalar kind).
type DataType int

const (
	TypeInt DataType = iota
	TypeFloat
	TypeString
	TypeBool
	TypeDate
	TypeTime
	TypeDateTime
)

func (dt DataType) String() string {
	switch dt {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOL"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeDateTime:
		return "DATETIME"
	default:
		return "UNKNOWN"
	}
}

// typeAliases maps every spelling spec §3 allows onto its canonical
// DataType, mirroring the teacher's schema.DataType.IsCompatibleWith
// alias groups (numeric/string/date-time families).
var typeAliases = map[string]DataType{
	"INT":      TypeInt,
	"INTEGER":  TypeInt,
	"FLOAT":    TypeFloat,
	"REAL":     TypeFloat,
	"DOUBLE":   TypeFloat,
	"DECIMAL":  TypeFloat,
	"STRING":   TypeString,
	"VARCHAR":  TypeString,
	"TEXT":     TypeString,
	"CHAR":     TypeString,
	"BOOL":     TypeBool,
	"BOOLEAN":  TypeBool,
	"DATE":     TypeDate,
	"TIME":     TypeTime,
	"DATETIME": TypeDateTime,
	"TIMESTAMP": TypeDateTime,
}

// ParseDataType resolves a type keyword (case-insensitive) to its
// DataType, reporting false for an unknown spelling.
func ParseDataType(name string) (DataType, bool) {
	dt, ok := typeAliases[strings.ToUpper(name)]
	return dt, ok
}

// ParseLiteral parses a source literal string into a Value of the given
// declared type, per spec §3: temporal types require ISO-8601 and are
// rejected otherwise; BOOL accepts TRUE/FALSE case-insensitively; INT and
// FLOAT widen into each other on read but the stored Kind follows dt.
func ParseLiteral(dt DataType, lit string) (Value, error) {
	switch dt {
	case TypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(lit), 10, 64)
		if err != nil {
			if f, ferr := strconv.ParseFloat(strings.TrimSpace(lit), 64); ferr == nil && f == float64(int64(f)) {
				return Integer(int64(f)), nil
			}
			return Value{}, fmt.Errorf("%q is not a valid INT", lit)
		}
		return Integer(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(lit), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid FLOAT", lit)
		}
		return Float(f), nil
	case TypeString:
		return Text(lit), nil
	case TypeBool:
		switch strings.ToUpper(strings.TrimSpace(lit)) {
		case "TRUE":
			return Bool(true), nil
		case "FALSE":
			return Bool(false), nil
		default:
			return Value{}, fmt.Errorf("%q is not a valid BOOL", lit)
		}
	case TypeDate:
		t, err := parseISODate(lit)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid DATE: %w", lit, err)
		}
		return DateFromTime(t), nil
	case TypeTime:
		t, err := parseISOTime(lit)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid TIME: %w", lit, err)
		}
		return TimeFromTime(t), nil
	case TypeDateTime:
		t, err := parseISODateTime(lit)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a valid DATETIME: %w", lit, err)
		}
		return FromTime(t), nil
	default:
		return Value{}, fmt.Errorf("unknown data type")
	}
}

// CoerceTo widens/validates a Value against a declared column DataType per
// spec §3's Row invariant: Null is always accepted; INT<->FLOAT widen;
// BOOL accepts TRUE/FALSE text spellings; anything else must already
// match Kind or is rejected.
func CoerceTo(dt DataType, v Value) (Value, error) {
	if v.IsNull() {
		return Null(), nil
	}

	switch dt {
	case TypeInt:
		switch v.Kind {
		case KindInteger:
			return v, nil
		case KindFloat:
			if v.F == float64(int64(v.F)) {
				return Integer(int64(v.F)), nil
			}
			return Value{}, fmt.Errorf("value %v does not fit INT", v)
		case KindText:
			return ParseLiteral(TypeInt, v.S)
		default:
			return Value{}, fmt.Errorf("cannot coerce %s to INT", v.Kind)
		}
	case TypeFloat:
		switch v.Kind {
		case KindFloat:
			return v, nil
		case KindInteger:
			return Float(float64(v.I)), nil
		case KindText:
			return ParseLiteral(TypeFloat, v.S)
		default:
			return Value{}, fmt.Errorf("cannot coerce %s to FLOAT", v.Kind)
		}
	case TypeString:
		if v.Kind != KindText {
			return Value{}, fmt.Errorf("cannot coerce %s to STRING", v.Kind)
		}
		return v, nil
	case TypeBool:
		switch v.Kind {
		case KindBool:
			return v, nil
		case KindText:
			return ParseLiteral(TypeBool, v.S)
		default:
			return Value{}, fmt.Errorf("cannot coerce %s to BOOL", v.Kind)
		}
	case TypeDate:
		switch v.Kind {
		case KindDate:
			return v, nil
		case KindText:
			return ParseLiteral(TypeDate, v.S)
		default:
			return Value{}, fmt.Errorf("cannot coerce %s to DATE", v.Kind)
		}
	case TypeTime:
		switch v.Kind {
		case KindTime:
			return v, nil
		case KindText:
			return ParseLiteral(TypeTime, v.S)
		default:
			return Value{}, fmt.Errorf("cannot coerce %s to TIME", v.Kind)
		}
	case TypeDateTime:
		switch v.Kind {
		case KindDateTime:
			return v, nil
		case KindText:
			return ParseLiteral(TypeDateTime, v.S)
		default:
			return Value{}, fmt.Errorf("cannot coerce %s to DATETIME", v.Kind)
		}
	default:
		return Value{}, fmt.Errorf("unknown data type")
	}
}

// parseISODate/Time/DateTime accept the ISO-8601 shapes spec §9 calls for:
// "YYYY-MM-DD", both 'T' and space as the date/time separator, and reject
// trailing timezone markers (out of scope per spec).
func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "Zz+") || strings.Count(s, "-") > 2 {
		return time.Time{}, fmt.Errorf("timezone-qualified dates are not supported")
	}
	return time.Parse("2006-01-02", s)
}

func parseISOTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "Zz+") {
		return time.Time{}, fmt.Errorf("timezone-qualified times are not supported")
	}
	for _, layout := range []string{"15:04:05.999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized TIME literal")
}

func parseISODateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") || strings.Contains(s, "+") {
		return time.Time{}, fmt.Errorf("timezone-qualified datetimes are not supported")
	}
	normalized := s
	if len(s) > 10 && s[10] == ' ' {
		normalized = s[:10] + "T" + s[11:]
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized DATETIME literal")
}
