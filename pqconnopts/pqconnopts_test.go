package pqconnopts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbpq/nbpq/pqconnopts"
)

func TestStringRendersKeyValueForm(t *testing.T) {
	opts := pqconnopts.ConnectionOptions{
		Host:     "db.internal",
		Port:     5433,
		Database: "appdb",
		User:     "svc",
		Password: "secret",
	}

	s := opts.String()
	assert.Contains(t, s, "host=db.internal")
	assert.Contains(t, s, "port=5433")
	assert.Contains(t, s, "dbname=appdb")
	assert.Contains(t, s, "user=svc")
	assert.Contains(t, s, "password=secret")
	assert.Contains(t, s, "sslmode=disable")
}

func TestStringQuotesValuesWithSpaces(t *testing.T) {
	opts := pqconnopts.ConnectionOptions{
		Host:     "localhost",
		Password: "has space",
	}

	s := opts.String()
	assert.Contains(t, s, "password='has space'")
}

func TestStringSSLEnable(t *testing.T) {
	opts := pqconnopts.ConnectionOptions{Host: "localhost", SSLEnable: true}
	assert.Contains(t, opts.String(), "sslmode=require")
}

func TestDefault(t *testing.T) {
	d := pqconnopts.Default()
	assert.Equal(t, "localhost", d.Host)
	assert.Equal(t, uint16(5432), d.Port)
	assert.Equal(t, "postgres", d.Database)
}
