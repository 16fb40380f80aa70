package pqtype_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbpq/nbpq/pqresult"
	"github.com/nbpq/nbpq/pqtype"
)

// roundTrip exercises spec.md §8 item 6: from_field(to_field(x)) == x for
// each scalar type in the converter layer.
func roundTrip(t *testing.T, v any, decode func(pqresult.FieldView) (any, error)) {
	t.Helper()
	param, err := pqtype.Encode(v)
	require.NoError(t, err)

	fv := pqresult.NewFieldView(param.Buf, param.Format, param.IsNull)
	got, err := decode(fv)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestRoundTripBool(t *testing.T) {
	for _, v := range []bool{true, false} {
		roundTrip(t, v, func(f pqresult.FieldView) (any, error) { return pqtype.DecodeBool(f) })
	}
}

func TestRoundTripInt64(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		roundTrip(t, v, func(f pqresult.FieldView) (any, error) { return pqtype.DecodeInt64(f) })
	}
}

func TestRoundTripFloat64(t *testing.T) {
	for _, v := range []float64{0, 1.5, -2.25, 3.1415926535} {
		roundTrip(t, v, func(f pqresult.FieldView) (any, error) { return pqtype.DecodeFloat64(f) })
	}
}

func TestRoundTripString(t *testing.T) {
	for _, v := range []string{"", "hello", "unicode éè"} {
		roundTrip(t, v, func(f pqresult.FieldView) (any, error) { return pqtype.DecodeString(f) })
	}
}

func TestRoundTripUUID(t *testing.T) {
	v := uuid.Must(uuid.NewV4())
	roundTrip(t, v, func(f pqresult.FieldView) (any, error) { return pqtype.DecodeUUID(f) })
}

func TestRoundTripDecimal(t *testing.T) {
	v := decimal.RequireFromString("123.456")
	roundTrip(t, v, func(f pqresult.FieldView) (any, error) { return pqtype.DecodeDecimal(f) })
}

func TestEncodeNull(t *testing.T) {
	param, err := pqtype.Encode(nil)
	require.NoError(t, err)
	assert.True(t, param.IsNull)
}

func TestDecodeNullReturnsZeroValue(t *testing.T) {
	fv := pqresult.NewFieldView(nil, pqresult.Text, true)

	b, err := pqtype.DecodeBool(fv)
	require.NoError(t, err)
	assert.False(t, b)

	s, err := pqtype.DecodeString(fv)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}
