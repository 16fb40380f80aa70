// Package pqconfig is the JSON configuration loader collaborator named in
// spec.md §6: a JSON object with keys host, port, db, user, password,
// defaulting missing optional fields to localhost/5432/postgres. Built on
// encoding/json (stdlib) -- justified in DESIGN.md, since nothing in the
// retrieval pack contributes a JSON-specific config library; the pack's only
// config-file library, gopkg.in/yaml.v3 (db-bouncer), is YAML and doesn't
// fit a JSON-keyed file.
package pqconfig

import (
	"encoding/json"
	"os"

	"github.com/nbpq/nbpq/pqconnopts"
)

// File is the on-disk shape: {"host", "port", "db", "user", "password"}.
type File struct {
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	DB       string `json:"db"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// Load reads and parses path, filling in libpq's defaults
// (localhost/5432/postgres) for any field left blank/zero.
func Load(path string) (pqconnopts.ConnectionOptions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return pqconnopts.ConnectionOptions{}, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return pqconnopts.ConnectionOptions{}, err
	}

	opts := pqconnopts.Default()
	if f.Host != "" {
		opts.Host = f.Host
	}
	if f.Port != 0 {
		opts.Port = f.Port
	}
	if f.DB != "" {
		opts.Database = f.DB
	}
	if f.User != "" {
		opts.User = f.User
	}
	opts.Password = f.Password

	return opts, nil
}
