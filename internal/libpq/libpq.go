// Package libpq wraps the subset of libpq's non-blocking connect/query API
// this driver drives: PQconnectdbParams, PQconnectPoll, PQsendQueryParams,
// PQflush, PQconsumeInput, PQisBusy, PQgetResult, PQfinish, PQsocket,
// PQerrorMessage, PQresultStatus, PQresultErrorMessage, PQresultErrorField,
// PQntuples, PQnfields, PQgetvalue, PQgetlength, PQgetisnull, PQfname,
// PQfformat, PQftype, PQclear.
//
// Nothing above this package touches cgo directly; every other package in
// this module interacts with libpq only through the types declared here.
package libpq

/*
#cgo LDFLAGS: -lpq
#include <stdlib.h>
#include <libpq-fe.h>
*/
import "C"

import (
	"unsafe"
)

// PollingStatus mirrors libpq's PostgresPollingStatusType.
type PollingStatus int

const (
	PollingReading PollingStatus = C.PGRES_POLLING_READING
	PollingWriting PollingStatus = C.PGRES_POLLING_WRITING
	PollingOK      PollingStatus = C.PGRES_POLLING_OK
	PollingFailed  PollingStatus = C.PGRES_POLLING_FAILED
)

// ConnStatus mirrors ConnStatusType's only member this driver inspects.
type ConnStatus int

const (
	ConnectionOK ConnStatus = C.CONNECTION_OK
)

// ExecStatus mirrors ExecStatusType.
type ExecStatus int

const (
	EmptyQuery    ExecStatus = C.PGRES_EMPTY_QUERY
	CommandOK     ExecStatus = C.PGRES_COMMAND_OK
	TuplesOK      ExecStatus = C.PGRES_TUPLES_OK
	CopyOut       ExecStatus = C.PGRES_COPY_OUT
	CopyIn        ExecStatus = C.PGRES_COPY_IN
	BadResponse   ExecStatus = C.PGRES_BAD_RESPONSE
	NonfatalError ExecStatus = C.PGRES_NONFATAL_ERROR
	FatalError    ExecStatus = C.PGRES_FATAL_ERROR
)

// Format mirrors libpq's text/binary result/parameter format tag.
type Format int16

const (
	TextFormat   Format = 0
	BinaryFormat Format = 1
)

// Conn is a thin, non-owning-by-default handle around a *PGconn.
type Conn struct {
	native C.PGconn
}

type cConn = *C.PGconn

// Connection holds the real pointer; Conn above only documents the cgo shape
// for godoc, the actual value travels as cConn to keep call sites terse.
type Connection struct {
	ptr cConn
}

// ConnectdbParams allocates a PGconn non-blocking, passing conn_str as the
// value of the "dbname" keyword -- libpq accepts a full connection string
// there, but only parses it as one when expand_dbname is non-zero. Returns
// nil if libpq could not allocate a PGconn at all.
func ConnectdbParams(connStr string) *Connection {
	ckey := C.CString("dbname")
	defer C.free(unsafe.Pointer(ckey))
	cval := C.CString(connStr)
	defer C.free(unsafe.Pointer(cval))

	keywords := []*C.char{ckey, nil}
	values := []*C.char{cval, nil}

	ptr := C.PQconnectdbParams(
		(**C.char)(unsafe.Pointer(&keywords[0])),
		(**C.char)(unsafe.Pointer(&values[0])),
		1, // expand_dbname: parse conn_str as a full keyword/value string
	)
	if ptr == nil {
		return nil
	}
	return &Connection{ptr: ptr}
}

func (c *Connection) ConnectPoll() PollingStatus {
	return PollingStatus(C.PQconnectPoll(c.ptr))
}

func (c *Connection) Status() ConnStatus {
	return ConnStatus(C.PQstatus(c.ptr))
}

func (c *Connection) Socket() int {
	return int(C.PQsocket(c.ptr))
}

func (c *Connection) ErrorMessage() string {
	return C.GoString(C.PQerrorMessage(c.ptr))
}

// ServerVersion wraps PQserverVersion, valid only once Status() is
// ConnectionOK.
func (c *Connection) ServerVersion() int {
	return int(C.PQserverVersion(c.ptr))
}

func (c *Connection) Finish() {
	if c.ptr != nil {
		C.PQfinish(c.ptr)
		c.ptr = nil
	}
}

// SendQueryParams issues PQsendQueryParams with all-text parameter OIDs
// (oid slice of zero) and per-parameter format tags.
func (c *Connection) SendQueryParams(sql string, params [][]byte, formats []Format) bool {
	csql := C.CString(sql)
	defer C.free(unsafe.Pointer(csql))

	n := len(params)
	if n == 0 {
		ret := C.PQsendQueryParams(c.ptr, csql, 0, nil, nil, nil, nil, 0)
		return ret == 1
	}

	values := make([]*C.char, n)
	lengths := make([]C.int, n)
	cformats := make([]C.int, n)
	frees := make([]unsafe.Pointer, 0, n)
	defer func() {
		for _, p := range frees {
			C.free(p)
		}
	}()

	for i, p := range params {
		if p == nil {
			values[i] = nil
			lengths[i] = 0
		} else {
			buf := C.CBytes(p)
			frees = append(frees, buf)
			values[i] = (*C.char)(buf)
			lengths[i] = C.int(len(p))
		}
		cformats[i] = C.int(formats[i])
	}

	ret := C.PQsendQueryParams(
		c.ptr, csql, C.int(n), nil,
		(**C.char)(unsafe.Pointer(&values[0])),
		(*C.int)(unsafe.Pointer(&lengths[0])),
		(*C.int)(unsafe.Pointer(&cformats[0])),
		0,
	)
	return ret == 1
}

// Flush returns -1 on error, 1 if more data remains buffered, 0 if flushed.
func (c *Connection) Flush() int {
	return int(C.PQflush(c.ptr))
}

// ConsumeInput returns false on I/O error (mirrors PQconsumeInput() == 0).
func (c *Connection) ConsumeInput() bool {
	return C.PQconsumeInput(c.ptr) != 0
}

func (c *Connection) IsBusy() bool {
	return C.PQisBusy(c.ptr) != 0
}

// GetResult returns nil once the result stream for a query is exhausted.
func (c *Connection) GetResult() *Result {
	ptr := C.PQgetResult(c.ptr)
	if ptr == nil {
		return nil
	}
	return &Result{ptr: ptr}
}

// Result owns one PGresult until Clear is called.
type Result struct {
	ptr *C.PGresult
}

func (r *Result) Status() ExecStatus {
	return ExecStatus(C.PQresultStatus(r.ptr))
}

func (r *Result) ErrorMessage() string {
	return C.GoString(C.PQresultErrorMessage(r.ptr))
}

// DiagField mirrors the subset of libpq's PG_DIAG_* codes this driver reads
// out of a failed Result via PQresultErrorField.
type DiagField C.int

const (
	DiagSeverity       DiagField = C.PG_DIAG_SEVERITY
	DiagSQLState       DiagField = C.PG_DIAG_SQLSTATE
	DiagMessagePrimary DiagField = C.PG_DIAG_MESSAGE_PRIMARY
	DiagMessageDetail  DiagField = C.PG_DIAG_MESSAGE_DETAIL
	DiagMessageHint    DiagField = C.PG_DIAG_MESSAGE_HINT
)

// ErrorField wraps PQresultErrorField, returning "" for a field libpq didn't
// set (e.g. Detail/Hint are frequently absent).
func (r *Result) ErrorField(field DiagField) string {
	ptr := C.PQresultErrorField(r.ptr, C.int(field))
	if ptr == nil {
		return ""
	}
	return C.GoString(ptr)
}

func (r *Result) Ntuples() int {
	return int(C.PQntuples(r.ptr))
}

func (r *Result) Nfields() int {
	return int(C.PQnfields(r.ptr))
}

func (r *Result) Fname(col int) string {
	return C.GoString(C.PQfname(r.ptr, C.int(col)))
}

func (r *Result) Fformat(col int) Format {
	return Format(C.PQfformat(r.ptr, C.int(col)))
}

func (r *Result) Ftype(col int) uint32 {
	return uint32(C.PQftype(r.ptr, C.int(col)))
}

func (r *Result) GetIsNull(row, col int) bool {
	return C.PQgetisnull(r.ptr, C.int(row), C.int(col)) != 0
}

func (r *Result) GetLength(row, col int) int {
	return int(C.PQgetlength(r.ptr, C.int(row), C.int(col)))
}

// GetValue returns a slice that aliases libpq's internal buffer for this
// result. It is only valid until Clear is called; callers that must keep the
// bytes beyond the Result's lifetime need to copy.
func (r *Result) GetValue(row, col int) []byte {
	length := r.GetLength(row, col)
	if length == 0 {
		return nil
	}
	ptr := C.PQgetvalue(r.ptr, C.int(row), C.int(col))
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length)
}

func (r *Result) Clear() {
	if r.ptr != nil {
		C.PQclear(r.ptr)
		r.ptr = nil
	}
}
