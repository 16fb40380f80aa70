package pqquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbpq/nbpq/pqquery"
	"github.com/nbpq/nbpq/pqresult"
)

func TestNewHasNoParams(t *testing.T) {
	q := pqquery.New("select 1")
	assert.Equal(t, "select 1", q.SQL)
	assert.Empty(t, q.Params)
}

func TestWithParamsIsImmutable(t *testing.T) {
	base := pqquery.New("select $1")
	withOne := base.WithParams(pqquery.Param{Buf: []byte("a"), Format: pqresult.Text})
	withTwo := withOne.WithParams(pqquery.Param{Buf: []byte("b"), Format: pqresult.Text})

	assert.Empty(t, base.Params)
	assert.Len(t, withOne.Params, 1)
	assert.Len(t, withTwo.Params, 2)
}

func TestValuesMapsNullParamToNilBuffer(t *testing.T) {
	q := pqquery.New("select $1, $2").WithParams(
		pqquery.Param{Buf: []byte("x"), Format: pqresult.Text},
		pqquery.NullParam(),
	)

	values, formats := q.Values()
	assert.Equal(t, [][]byte{[]byte("x"), nil}, values)
	assert.Equal(t, []pqresult.FormatCode{pqresult.Text, pqresult.Text}, formats)
}
