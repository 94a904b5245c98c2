package providers

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/maxminddb-golang"
	"github.com/spf13/afero"

	"github.com/wayfinder-io/wayfinder/waylib"
)

const maxmindBaseFileName = "database.mmdb"

type maxmindLookupResult struct {
	Location struct {
		Latitude  *float64 `maxminddb:"latitude"`
		Longitude *float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// maxmindBase reads any database in the mmdb format. The whole file is
// loaded into memory on Open so the target directory can be replaced
// underneath at any time.
type maxmindBase struct {
	dbReader     *maxminddb.Reader
	dbReaderLock sync.RWMutex
}

func (m *maxmindBase) Shutdown() {
	m.dbReaderLock.Lock()
	defer m.dbReaderLock.Unlock()

	if m.dbReader != nil {
		m.dbReader.Close()
		m.dbReader = nil
	}
}

func (m *maxmindBase) Open(fs afero.Fs) error {
	contents, err := afero.ReadFile(fs, maxmindBaseFileName)
	if err != nil {
		return fmt.Errorf("cannot read a database file: %w", err)
	}

	reader, err := maxminddb.FromBytes(contents)
	if err != nil {
		return fmt.Errorf("cannot initialize a reader of maxminddb: %w", err)
	}

	m.dbReaderLock.Lock()
	defer m.dbReaderLock.Unlock()

	if m.dbReader != nil {
		m.dbReader.Close()
	}

	m.dbReader = reader

	return nil
}

func (m *maxmindBase) Lookup(ctx context.Context, ip net.IP) (waylib.Location, error) {
	m.dbReaderLock.RLock()
	defer m.dbReaderLock.RUnlock()

	if m.dbReader == nil {
		return waylib.Location{}, ErrDatabaseIsNotReadyYet
	}

	record := maxmindLookupResult{}

	if err := m.dbReader.Lookup(ip, &record); err != nil {
		return waylib.Location{}, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	if record.Location.Latitude == nil || record.Location.Longitude == nil {
		return waylib.Location{}, ErrNoRecord
	}

	return waylib.NewLocation(*record.Location.Latitude, *record.Location.Longitude)
}
