// Package pqresult implements spec.md §3's Result/Header/Field/FieldView
// data model: the column-oriented view over one libpq result handle.
// Grounded on the teacher's rows.go (row/field cursor shape) adapted to wrap
// internal/libpq.Result instead of pgx's own wire-decoded row buffer.
package pqresult

import (
	"bytes"

	"github.com/jackc/chunkreader/v2"

	"github.com/nbpq/nbpq/internal/libpq"
	"github.com/nbpq/nbpq/pqerr"
)

// largeFieldThreshold is the Own() size above which the copy goes through
// chunkreader instead of a single append, bounding peak allocation when a
// caller owns many large text/bytea fields out of one Result at once.
const largeFieldThreshold = 64 * 1024

// FormatCode is the text/binary tag libpq attaches to every parameter and
// every result field.
type FormatCode int16

const (
	Text   FormatCode = 0
	Binary FormatCode = 1
)

// Status is the execution status of one Result, collapsing libpq's
// ExecStatusType into the categories spec.md §3 names.
type Status int

const (
	StatusCommandOK Status = iota
	StatusTuplesOK
	StatusError
)

// FieldDesc is one column descriptor: {name, format, type-oid}.
type FieldDesc struct {
	Name   string
	Format FormatCode
	OID    uint32
}

// Header is the vector of column descriptors for a Result, supporting lookup
// by ordinal or by name.
type Header struct {
	fields []FieldDesc
}

func (h *Header) Len() int { return len(h.fields) }

func (h *Header) At(i int) FieldDesc { return h.fields[i] }

// ByName does a linear scan, first match wins, per spec.md §3.
func (h *Header) ByName(name string) (int, error) {
	for i, f := range h.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, pqerr.ErrNotFound
}

// Field is the owning variant of a field value: {data, size, format, null}.
type Field struct {
	Data   []byte
	Format FormatCode
	Null   bool
}

func (f Field) Size() int { return len(f.Data) }

// FieldView is the borrowing variant: it aliases the backing Result's buffer
// instead of copying, matching original_source's data.hpp/row.hpp zero-copy
// borrow on the hot read path.
type FieldView struct {
	data   []byte
	format FormatCode
	null   bool
}

func (v FieldView) Data() []byte       { return v.data }
func (v FieldView) Size() int          { return len(v.data) }
func (v FieldView) Format() FormatCode { return v.format }
func (v FieldView) Null() bool         { return v.null }

// Own copies a FieldView into an owned Field, e.g. to outlive the Result.
// Large values are copied through chunkreader in fixed-size slices rather
// than one bulk append, the same buffering discipline the teacher's wire
// reader uses to pull big row values out of a buffered source.
func (v FieldView) Own() Field {
	if v.data == nil {
		return Field{Format: v.format, Null: v.null}
	}
	if len(v.data) < largeFieldThreshold {
		return Field{Data: append([]byte(nil), v.data...), Format: v.format, Null: v.null}
	}

	cr := chunkreader.New(bytes.NewReader(v.data))
	out := make([]byte, 0, len(v.data))
	const chunk = 32 * 1024
	remaining := len(v.data)
	for remaining > 0 {
		n := chunk
		if n > remaining {
			n = remaining
		}
		b, err := cr.Next(n)
		if err != nil {
			break // bytes.Reader over an in-memory slice never errs short of EOF, which Next(remaining) can't hit
		}
		out = append(out, b...)
		remaining -= n
	}
	return Field{Data: out, Format: v.format, Null: v.null}
}

// Result is the exclusive owner of one libpq result handle.
type Result struct {
	raw     *libpq.Result
	status  Status
	errMsg  string
	pgErr   *pqerr.PgError
	nrows   int
	ncols   int
	header  *Header
}

func newResult(raw *libpq.Result) *Result {
	r := &Result{raw: raw}
	switch raw.Status() {
	case libpq.CommandOK, libpq.EmptyQuery:
		r.status = StatusCommandOK
	case libpq.TuplesOK:
		r.status = StatusTuplesOK
	default:
		r.status = StatusError
		r.errMsg = raw.ErrorMessage()
		r.pgErr = &pqerr.PgError{
			Severity: raw.ErrorField(libpq.DiagSeverity),
			Code:     raw.ErrorField(libpq.DiagSQLState),
			Message:  raw.ErrorField(libpq.DiagMessagePrimary),
			Detail:   raw.ErrorField(libpq.DiagMessageDetail),
			Hint:     raw.ErrorField(libpq.DiagMessageHint),
		}
		if r.pgErr.Message == "" {
			r.pgErr.Message = r.errMsg
		}
	}
	r.nrows = raw.Ntuples()
	r.ncols = raw.Nfields()
	return r
}

// Wrap adapts a raw libpq.Result into a Result. Exported for the query
// driver, which is the only other package that touches internal/libpq
// directly.
func Wrap(raw *libpq.Result) *Result {
	return newResult(raw)
}

func (r *Result) IsSucceed() bool { return r.status != StatusError }

func (r *Result) Status() Status { return r.status }

func (r *Result) ErrorMessage() string { return r.errMsg }

// PgError returns the SQLSTATE-bearing error libpq reported for this Result,
// or nil if the Result did not fail.
func (r *Result) PgError() *pqerr.PgError { return r.pgErr }

func (r *Result) RowCount() int { return r.nrows }

func (r *Result) ColCount() int { return r.ncols }

// Header lazily constructs and caches the column descriptor vector.
func (r *Result) Header() *Header {
	if r.header != nil {
		return r.header
	}
	fields := make([]FieldDesc, r.ncols)
	for i := 0; i < r.ncols; i++ {
		fields[i] = FieldDesc{
			Name:   r.raw.Fname(i),
			Format: FormatCode(r.raw.Fformat(i)),
			OID:    r.raw.Ftype(i),
		}
	}
	r.header = &Header{fields: fields}
	return r.header
}

// Get returns a borrowing FieldView for row, col. The view is valid only
// until Close is called on the Result.
func (r *Result) Get(row, col int) FieldView {
	if r.raw.GetIsNull(row, col) {
		return FieldView{null: true, format: r.Header().At(col).Format}
	}
	return FieldView{
		data:   r.raw.GetValue(row, col),
		format: r.Header().At(col).Format,
	}
}

// ColumnIndex resolves a column name to an ordinal via the Header.
func (r *Result) ColumnIndex(name string) (int, error) {
	return r.Header().ByName(name)
}

// Close releases the underlying PGresult. Safe to call once; the owning
// Connection/query driver guarantees the last holder calls this.
func (r *Result) Close() {
	if r.raw != nil {
		r.raw.Clear()
		r.raw = nil
	}
}
