// Package pqconnopts builds a libpq-compatible connection string from
// structured fields, per spec.md §3 "ConnectionOptions". Grounded on the
// teacher's pgconn.Config / ParseConfig, including its fallback to
// ~/.pgpass and ~/.pg_service.conf for fields left blank.
package pqconnopts

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgpassfile"
	"github.com/jackc/pgservicefile"
)

// ConnectionOptions is spec.md §3's data model: host, port, database, user,
// password, ssl_enable, ca path.
type ConnectionOptions struct {
	Host      string
	Port      uint16
	Database  string
	User      string
	Password  string
	SSLEnable bool
	CAPath    string

	// ServiceName, if set, lets ResolveService fill any of
	// Host/Port/Database/User/Password still blank from that service's entry
	// in ~/.pg_service.conf (or $PGSERVICEFILE); fields already set are kept.
	// This is the service-file fallback of the teacher's pgconn.Config.
	ServiceName string
}

// Default fills in libpq's well-known defaults for a bare ConnectionOptions.
func Default() ConnectionOptions {
	return ConnectionOptions{Host: "localhost", Port: 5432, Database: "postgres"}
}

// ResolvePassword fills Password from ~/.pgpass when it is empty, the same
// fallback pgconn.ParseConfig performs.
func (o *ConnectionOptions) ResolvePassword() {
	if o.Password != "" {
		return
	}
	u, err := user.Current()
	if err != nil {
		return
	}
	pf, err := pgpassfile.ReadPassfile(filepath.Join(u.HomeDir, ".pgpass"))
	if err != nil {
		return
	}
	o.Password = pf.FindPassword(o.Host, strconv.Itoa(int(o.Port)), o.Database, o.User)
}

// ResolveService pre-seeds fields from ~/.pg_service.conf when ServiceName is
// set, matching libpq's service-file lookup.
func (o *ConnectionOptions) ResolveService() error {
	if o.ServiceName == "" {
		return nil
	}
	u, err := user.Current()
	if err != nil {
		return err
	}
	path := os.Getenv("PGSERVICEFILE")
	if path == "" {
		path = filepath.Join(u.HomeDir, ".pg_service.conf")
	}
	sf, err := pgservicefile.ReadServicefile(path)
	if err != nil {
		return err
	}
	svc, err := sf.GetService(o.ServiceName)
	if err != nil {
		return err
	}
	for k, v := range svc.Settings {
		switch k {
		case "host":
			if o.Host == "" {
				o.Host = v
			}
		case "port":
			if o.Port == 0 {
				if p, err := strconv.ParseUint(v, 10, 16); err == nil {
					o.Port = uint16(p)
				}
			}
		case "dbname":
			if o.Database == "" {
				o.Database = v
			}
		case "user":
			if o.User == "" {
				o.User = v
			}
		case "password":
			if o.Password == "" {
				o.Password = v
			}
		}
	}
	return nil
}

// quote escapes a value for libpq's key=value connection string form: any
// value containing whitespace, a quote, or a backslash is wrapped in single
// quotes with backslash-escaping, following libpq's keyword/value grammar.
// The original C++ connection_option.hpp builder does no escaping.
func quote(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, " '\\\t\n") {
		return v
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range v {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// String renders the libpq key=value connection string this ConnectionOptions
// describes.
func (o ConnectionOptions) String() string {
	var parts []string
	add := func(key, val string) {
		if val == "" {
			return
		}
		parts = append(parts, fmt.Sprintf("%s=%s", key, quote(val)))
	}

	add("host", o.Host)
	if o.Port != 0 {
		parts = append(parts, fmt.Sprintf("port=%s", quote(strconv.Itoa(int(o.Port)))))
	}
	add("dbname", o.Database)
	add("user", o.User)
	add("password", o.Password)
	if o.SSLEnable {
		parts = append(parts, "sslmode=require")
	} else {
		parts = append(parts, "sslmode=disable")
	}
	add("sslrootcert", o.CAPath)

	return strings.Join(parts, " ")
}
