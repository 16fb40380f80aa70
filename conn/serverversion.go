package conn

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/nbpq/nbpq/internal/libpq"
)

// minSupportedServerVersion is the oldest server this driver's polling
// algorithm has been exercised against. Connect logs a warning, but does not
// refuse to proceed, below it.
var minSupportedServerVersion = semver.MustParse("9.3.0")

// parseServerVersion decodes PQserverVersion's packed integer form. Servers
// before Postgres 10 pack major/minor/revision as two decimal digits each
// (e.g. 90603 -> 9.6.3); Postgres 10 and later collapse minor into the
// revision slot (e.g. 130005 -> 13.0.5).
func parseServerVersion(n int) (*semver.Version, error) {
	if n <= 0 {
		return nil, fmt.Errorf("conn: invalid server version %d", n)
	}

	major := n / 10000
	rest := n % 10000

	var minor, patch int
	if major >= 10 {
		patch = rest
	} else {
		minor = rest / 100
		patch = rest % 100
	}

	return semver.NewVersion(fmt.Sprintf("%d.%d.%d", major, minor, patch))
}

// serverVersionOf queries the just-connected handle's negotiated server
// version, used only to gate a logged compatibility warning -- no code path
// in this driver branches its polling behavior on the result.
func serverVersionOf(native *libpq.Connection) (*semver.Version, error) {
	return parseServerVersion(native.ServerVersion())
}
