package waylib_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"

	"github.com/wayfinder-io/wayfinder/waylib"
)

var errNoRecord = errors.New("address has no record")

// Reference sites used across the tests. IPv4-only sites use the v4
// database, IPv6-only ones the v6 database, so family preference is
// observable.
var (
	cernLocation = waylib.Location{Latitude: 46.2324, Longitude: 6.0502}
	fnalLocation = waylib.Location{Latitude: 41.7768, Longitude: -88.4604}
	ihepLocation = waylib.Location{Latitude: 39.9289, Longitude: 116.3883}
	ralLocation  = waylib.Location{Latitude: 51.75, Longitude: -1.25}

	cernHostname = "cern.example.org"
	fnalHostname = "fnal.example.org"
	ihepHostname = "ihep.example.org"
	ralHostname  = "ral.example.org"

	cernAddr = "2001:1458::10"
	fnalAddr = "131.225.0.10"
	ihepAddr = "202.122.32.10"
	ralAddr  = "2001:630::10"
)

type DatabaseMock struct {
	mock.Mock
}

func (m *DatabaseMock) Name() string {
	return m.Called().String(0)
}

func (m *DatabaseMock) Lookup(ctx context.Context, ip net.IP) (waylib.Location, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(waylib.Location), args.Error(1)
}

type OfflineDatabaseMock struct {
	DatabaseMock
}

func (m *OfflineDatabaseMock) Shutdown() {
	m.Called()
}

func (m *OfflineDatabaseMock) UpdateEvery() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *OfflineDatabaseMock) BaseDirectory() string {
	return m.Called().String(0)
}

func (m *OfflineDatabaseMock) Open(fs afero.Fs) error {
	return m.Called(fs).Error(0)
}

func (m *OfflineDatabaseMock) Download(ctx context.Context, fs afero.Afero) error {
	return m.Called(ctx, fs).Error(0)
}

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) Resolve(ctx context.Context, hostname string) ([]waylib.HostAddress, error) {
	args := m.Called(ctx, hostname)

	return args.Get(0).([]waylib.HostAddress), args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(target string, err error) {
	m.Called(target, err)
}

func (m *LoggerMock) UpdateInfo(name string, msg string) {
	m.Called(name, msg)
}

func (m *LoggerMock) UpdateError(name string, err error) {
	m.Called(name, err)
}

// staticDatabase maps exact textual addresses to locations.
type staticDatabase map[string]waylib.Location

func (s staticDatabase) Name() string {
	return "static"
}

func (s staticDatabase) Lookup(ctx context.Context, ip net.IP) (waylib.Location, error) {
	location, ok := s[ip.String()]
	if !ok {
		return waylib.Location{}, errNoRecord
	}

	return location, nil
}

// switchableDatabase simulates a database outage.
type switchableDatabase struct {
	staticDatabase

	disabled int32
}

func (s *switchableDatabase) Lookup(ctx context.Context, ip net.IP) (waylib.Location, error) {
	if atomic.LoadInt32(&s.disabled) != 0 {
		return waylib.Location{}, errNoRecord
	}

	return s.staticDatabase.Lookup(ctx, ip)
}

func (s *switchableDatabase) Disable() {
	atomic.StoreInt32(&s.disabled, 1)
}

func newSwitchableDatabase(db staticDatabase) *switchableDatabase {
	return &switchableDatabase{staticDatabase: db}
}

// staticResolver maps hostnames to fixed address sets.
type staticResolver map[string][]waylib.HostAddress

func (s staticResolver) Resolve(ctx context.Context, hostname string) ([]waylib.HostAddress, error) {
	return s[hostname], nil
}

func hostAddresses(addrs ...string) []waylib.HostAddress {
	rv := make([]waylib.HostAddress, 0, len(addrs))

	for _, v := range addrs {
		rv = append(rv, waylib.NewHostAddress(net.ParseIP(v)))
	}

	return rv
}

func testResolver() staticResolver {
	return staticResolver{
		cernHostname: hostAddresses(cernAddr),
		fnalHostname: hostAddresses(fnalAddr),
		ihepHostname: hostAddresses(ihepAddr),
		ralHostname:  hostAddresses(ralAddr),
	}
}

func testV4Database() staticDatabase {
	return staticDatabase{
		fnalAddr: fnalLocation,
		ihepAddr: ihepLocation,
	}
}

func testV6Database() staticDatabase {
	return staticDatabase{
		net.ParseIP(cernAddr).String(): cernLocation,
		net.ParseIP(ralAddr).String():  ralLocation,
	}
}

func newQuietLogger() *LoggerMock {
	logMock := &LoggerMock{}

	logMock.On("LookupError", mock.Anything, mock.Anything).Maybe()
	logMock.On("UpdateInfo", mock.Anything, mock.Anything).Maybe()
	logMock.On("UpdateError", mock.Anything, mock.Anything).Maybe()

	return logMock
}
