// Package pqquery implements spec.md §3's Query data model: SQL text plus an
// ordered sequence of bound parameters, immutable once built, resubmittable.
// Grounded on the teacher's extended_query_builder.go (positional parameter
// binding ahead of a parameterized send).
package pqquery

import (
	"github.com/nbpq/nbpq/pqresult"
)

// Param is one bound positional parameter: a byte buffer, a format tag, and
// a null flag. The buffer is not nul-terminated; its length is len(Buf),
// which internal/libpq passes to PQsendQueryParams explicitly.
type Param struct {
	Buf    []byte
	Format pqresult.FormatCode
	IsNull bool
}

// NullParam is the distinguished "is null" parameter: zero buffer, null flag
// set.
func NullParam() Param {
	return Param{IsNull: true}
}

// Query binds a SQL text plus its positional parameters into the form the
// query driver's PQsendQueryParams call accepts. Once built it is immutable
// and may be submitted multiple times.
type Query struct {
	SQL    string
	Params []Param
}

// New builds a Query with no bound parameters.
func New(sql string) Query {
	return Query{SQL: sql}
}

// WithParams returns a copy of q with params appended; Query itself is never
// mutated in place, so the same Query value can be extended into several
// independent variants.
func (q Query) WithParams(params ...Param) Query {
	out := Query{SQL: q.SQL, Params: make([]Param, 0, len(q.Params)+len(params))}
	out.Params = append(out.Params, q.Params...)
	out.Params = append(out.Params, params...)
	return out
}

// Values returns the raw byte buffers and format tags in the shape
// internal/libpq.Connection.SendQueryParams expects: a nil entry in values
// for a null parameter.
func (q Query) Values() (values [][]byte, formats []pqresult.FormatCode) {
	values = make([][]byte, len(q.Params))
	formats = make([]pqresult.FormatCode, len(q.Params))
	for i, p := range q.Params {
		if !p.IsNull {
			values[i] = p.Buf
		}
		formats[i] = p.Format
	}
	return values, formats
}
