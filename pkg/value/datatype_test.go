package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType_AliasesAndCase(t *testing.T) {
	for _, name := range []string{"int", "INTEGER", "real", "DOUBLE", "decimal", "varchar", "boolean", "timestamp"} {
		_, ok := ParseDataType(name)
		assert.True(t, ok, "expected %q to resolve to a known DataType", name)
	}
	_, ok := ParseDataType("not-a-type")
	assert.False(t, ok)
}

func TestParseLiteral_TemporalRejectsNonISO(t *testing.T) {
	_, err := ParseLiteral(TypeDate, "07/01/2024")
	assert.Error(t, err)

	v, err := ParseLiteral(TypeDate, "2024-07-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", v.String())
}

func TestParseLiteral_DateTimeAcceptsSpaceOrTSeparator(t *testing.T) {
	v1, err := ParseLiteral(TypeDateTime, "2025-01-14T13:05:09")
	require.NoError(t, err)
	v2, err := ParseLiteral(TypeDateTime, "2025-01-14 13:05:09")
	require.NoError(t, err)
	assert.Equal(t, v1.String(), v2.String())
}

func TestParseLiteral_RejectsTimezoneMarkers(t *testing.T) {
	_, err := ParseLiteral(TypeDateTime, "2025-01-14T13:05:09Z")
	assert.Error(t, err)
}

func TestParseLiteral_Bool(t *testing.T) {
	v, err := ParseLiteral(TypeBool, "true")
	require.NoError(t, err)
	assert.True(t, v.B)

	_, err = ParseLiteral(TypeBool, "yes")
	assert.Error(t, err)
}

func TestCoerceTo_IntFloatWidening(t *testing.T) {
	v, err := CoerceTo(TypeInt, Float(4.0))
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.I)

	_, err = CoerceTo(TypeInt, Float(4.5))
	assert.Error(t, err, "non-integral float must not coerce to INT")

	v, err = CoerceTo(TypeFloat, Integer(4))
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.F)
}

func TestCoerceTo_NullAlwaysAccepted(t *testing.T) {
	v, err := CoerceTo(TypeInt, Null())
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCoerceTo_TypeMismatchRejected(t *testing.T) {
	_, err := CoerceTo(TypeString, Integer(5))
	assert.Error(t, err)
}
