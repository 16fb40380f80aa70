// Command nbpqctl applies pending migrations from a directory against a
// database, using a single Connection and the migration runner the same way a service
// embedding this module would at startup. Grounded on the teacher's
// examples/todo CLI shape (flag parsing, config-from-file, a single
// database-backed command dispatch).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nbpq/nbpq/conn"
	"github.com/nbpq/nbpq/pqconfig"
	"github.com/nbpq/nbpq/pqlog/zerologadapter"
	"github.com/nbpq/nbpq/pqmigrate"
)

func main() {
	configPath := flag.String("config", "nbpq.json", "path to JSON connection config")
	migrationsDir := flag.String("migrations", "migrations", "directory of <version>-<name>.sql files")
	flag.Parse()

	opts, err := pqconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nbpqctl: loading config: %v\n", err)
		os.Exit(1)
	}

	migrations, err := pqmigrate.Load(*migrationsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nbpqctl: loading migrations: %v\n", err)
		os.Exit(1)
	}

	logger := zerologadapter.NewLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())

	c := conn.New(opts.String(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "nbpqctl: connecting: %v\n", err)
		os.Exit(1)
	}
	defer c.Disconnect()

	if err := pqmigrate.Apply(ctx, c, migrations); err != nil {
		fmt.Fprintf(os.Stderr, "nbpqctl: applying migrations: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("applied %d migration file(s) from %s\n", len(migrations), *migrationsDir)
}
