// Package pqmigrate is the migration runner collaborator named in spec.md
// §6: it reads a directory of `<version>-<name>.sql` files and applies new
// ones (version greater than the highest already-recorded version) inside a
// transaction driven through the core, in ascending version order. Grounded
// on the teacher's migrate/migrate.go (directory scan, per-file sequence
// number, transactional apply via the core's own Transaction combinator).
package pqmigrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nbpq/nbpq/conn"
	"github.com/nbpq/nbpq/pqerr"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)-(.+)\.sql$`)

// Migration is one parsed `<version>-<name>.sql` file.
type Migration struct {
	Version int64
	Name    string
	Path    string
	SQL     string
}

// Load scans dir for migration files in ascending version order.
func Load(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pqerr.New(pqerr.InvalidMigrationsDir, err)
	}

	var migrations []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		path := filepath.Join(dir, e.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(m[2], ".sql"),
			Path:    path,
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

const createMetadataTable = `
create table if not exists migrations (
	id serial primary key,
	version int not null,
	timestamp bigint not null default extract(epoch from now()),
	name text not null
);`

// EnsureMetadataTable creates the migrations bookkeeping table on first run.
func EnsureMetadataTable(ctx context.Context, c *conn.Connection) error {
	_, err := c.QuerySQL(ctx, createMetadataTable)
	return err
}

// MaxAppliedVersion returns the highest version recorded in the migrations
// table, or 0 if none have been applied yet.
func MaxAppliedVersion(ctx context.Context, c *conn.Connection) (int64, error) {
	results, err := c.QuerySQL(ctx, "select coalesce(max(version), 0) from migrations")
	if err != nil {
		return 0, err
	}
	if len(results) == 0 || results[0].RowCount() == 0 {
		return 0, nil
	}
	res := results[0]
	defer res.Close()
	field := res.Get(0, 0)
	if field.Null() {
		return 0, nil
	}
	return strconv.ParseInt(string(field.Data()), 10, 64)
}

// Apply runs every migration with Version greater than the highest already
// recorded, in ascending order, inside a single conn.Transaction spanning the
// whole batch: a failure partway through rolls back every migration this
// Apply call applied, not just the one that failed. Running Apply again with
// nothing new is a no-op: no rows are added, no error is returned, per
// spec.md §8 scenario S7.
func Apply(ctx context.Context, c *conn.Connection, migrations []Migration) error {
	if err := EnsureMetadataTable(ctx, c); err != nil {
		return err
	}

	current, err := MaxAppliedVersion(ctx, c)
	if err != nil {
		return err
	}

	_, txErr := c.Transaction(ctx, conn.Serializable, func(ctx context.Context) (any, error) {
		for _, m := range migrations {
			if m.Version <= current {
				continue
			}
			if _, err := c.QuerySQL(ctx, m.SQL); err != nil {
				return nil, fmt.Errorf("migration %d-%s: %w", m.Version, m.Name, err)
			}
			// $1 is cast because pqtype sends an int64 as 8-byte binary.
			if _, err := c.QuerySQL(ctx, "insert into migrations (version, name) values ($1::bigint, $2)", m.Version, m.Name); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return txErr
}
