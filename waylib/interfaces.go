package waylib

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/spf13/afero"
)

// Database is a geolocation database for a single address family. It
// maps an IP address to coordinates. Lookup returns an error when no
// record matches the given address.
type Database interface {
	Name() string
	Lookup(ctx context.Context, ip net.IP) (Location, error)
}

// OfflineDatabase is a Database backed by files on a local filesystem
// which have to be downloaded and refreshed from time to time.
type OfflineDatabase interface {
	Database

	Shutdown()
	UpdateEvery() time.Duration
	BaseDirectory() string
	Open(afero.Fs) error
	Download(ctx context.Context, fs afero.Afero) error
}

// Resolver maps a hostname to the set of its addresses, both families.
// An empty result without an error is a legitimate outcome of a failed
// resolution.
type Resolver interface {
	Resolve(ctx context.Context, hostname string) ([]HostAddress, error)
}

type Logger interface {
	LookupError(target string, err error)
	UpdateInfo(name string, msg string)
	UpdateError(name string, err error)
}

// HTTPClient is used by offline databases to download their files.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}
