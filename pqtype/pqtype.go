// Package pqtype is the row/column value-conversion collaborator spec.md §1
// calls out as "a per-type codec that maps a raw byte slice plus a
// text/binary format tag to a native value and back". It is out of the
// core's scope proper, but the core's Connection.Query(sql, args...)
// convenience and the testable round-trip property (spec.md §8 item 6) both
// exercise it directly, so it lives in this repo rather than behind an
// unimplemented interface.
//
// Fixed-width numerics and []byte travel in PostgreSQL's binary format and
// every other scalar in its text format (see Encode), matching the teacher's
// per-type codec files (int4.go, float8.go, bool.go, uuid.go, ...) one-for-one
// in spirit: each Decode function is the inverse of the matching Encode case.
package pqtype

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/apd"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgio"
	"github.com/shopspring/decimal"

	"github.com/nbpq/nbpq/pqquery"
	"github.com/nbpq/nbpq/pqresult"
)

// Encode converts a native Go value into the bound-parameter form the query
// driver sends. Unrecognized types fall back to fmt.Sprintf("%v", ...) in
// text format, matching the teacher's sanitize.go fallback for user-supplied
// args outside the core type set.
//
// Fixed-width numerics (int32, int64, float64) go out in binary format,
// built with pgio's big-endian writers the same way the teacher's per-type
// codec files (int4.go, int8.go, float8.go) build their EncodeBinary output;
// everything else travels as text.
func Encode(v any) (pqquery.Param, error) {
	if v == nil {
		return pqquery.NullParam(), nil
	}

	switch t := v.(type) {
	case bool:
		return textParam(strconv.FormatBool(t)), nil
	case int:
		return encodeInt64(int64(t))
	case int32:
		return encodeInt64(int64(t))
	case int64:
		return encodeInt64(t)
	case float32:
		return encodeFloat64(float64(t))
	case float64:
		return encodeFloat64(t)
	case string:
		return textParam(t), nil
	case []byte:
		return binaryParam(t), nil
	case uuid.UUID:
		return textParam(t.String()), nil
	case decimal.Decimal:
		return textParam(t.String()), nil
	case apd.Decimal:
		return textParam(t.String()), nil
	default:
		return textParam(fmt.Sprintf("%v", t)), nil
	}
}

func encodeInt64(n int64) (pqquery.Param, error) {
	var buf bytes.Buffer
	if _, err := pgio.WriteInt64(&buf, n); err != nil {
		return pqquery.Param{}, err
	}
	return binaryParam(buf.Bytes()), nil
}

func encodeFloat64(f float64) (pqquery.Param, error) {
	var buf bytes.Buffer
	if _, err := pgio.WriteUint64(&buf, math.Float64bits(f)); err != nil {
		return pqquery.Param{}, err
	}
	return binaryParam(buf.Bytes()), nil
}

func textParam(s string) pqquery.Param {
	return pqquery.Param{Buf: []byte(s), Format: pqresult.Text}
}

func binaryParam(b []byte) pqquery.Param {
	return pqquery.Param{Buf: b, Format: pqresult.Binary}
}

// DecodeBool, DecodeInt64, DecodeFloat64, DecodeString, DecodeBytes,
// DecodeUUID, DecodeDecimal, and DecodeNumeric are the FromField half of the
// round trip: each is the exact inverse of the corresponding Encode case
// above for that Go type.

func DecodeBool(f pqresult.FieldView) (bool, error) {
	if f.Null() {
		return false, nil
	}
	return strconv.ParseBool(string(f.Data()))
}

func DecodeInt64(f pqresult.FieldView) (int64, error) {
	if f.Null() {
		return 0, nil
	}
	if f.Format() == pqresult.Binary {
		if len(f.Data()) != 8 {
			return 0, fmt.Errorf("pqtype: binary int64 field has %d bytes, want 8", len(f.Data()))
		}
		_, n := pgio.NextInt64(f.Data())
		return n, nil
	}
	return strconv.ParseInt(string(f.Data()), 10, 64)
}

func DecodeFloat64(f pqresult.FieldView) (float64, error) {
	if f.Null() {
		return 0, nil
	}
	if f.Format() == pqresult.Binary {
		if len(f.Data()) != 8 {
			return 0, fmt.Errorf("pqtype: binary float64 field has %d bytes, want 8", len(f.Data()))
		}
		_, bits := pgio.NextUint64(f.Data())
		return math.Float64frombits(bits), nil
	}
	return strconv.ParseFloat(string(f.Data()), 64)
}

func DecodeString(f pqresult.FieldView) (string, error) {
	if f.Null() {
		return "", nil
	}
	return string(f.Data()), nil
}

func DecodeBytes(f pqresult.FieldView) ([]byte, error) {
	if f.Null() {
		return nil, nil
	}
	out := make([]byte, len(f.Data()))
	copy(out, f.Data())
	return out, nil
}

func DecodeUUID(f pqresult.FieldView) (uuid.UUID, error) {
	if f.Null() {
		return uuid.Nil, nil
	}
	return uuid.FromString(string(f.Data()))
}

func DecodeDecimal(f pqresult.FieldView) (decimal.Decimal, error) {
	if f.Null() {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(string(f.Data()))
}

func DecodeNumeric(f pqresult.FieldView) (*apd.Decimal, error) {
	if f.Null() {
		return apd.New(0, 0), nil
	}
	d, _, err := apd.NewFromString(string(f.Data()))
	return d, err
}
