package providers

import "errors"

var (
	// ErrDatabaseIsNotReadyYet is returned if you are trying to access
	// an offline database which has not opened its files yet. For
	// example, it can still be downloading them.
	ErrDatabaseIsNotReadyYet = errors.New("database is not initialized yet")

	// ErrLicenseKeyIsRequired is returned if you are trying to
	// initialize a database which requires a license key to download.
	ErrLicenseKeyIsRequired = errors.New("license key is required")

	// ErrNoFile is returned if a database has downloaded an archive but
	// there is no database file inside.
	ErrNoFile = errors.New("cannot find a database file in downloaded archive")

	// ErrNoRecord is returned when a database has no record for the
	// requested address.
	ErrNoRecord = errors.New("address has no record")
)
