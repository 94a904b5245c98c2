package providers

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/wayfinder-io/wayfinder/waylib"
)

var maxmindChecksumRegexp = regexp.MustCompile(`(?i)[a-f0-9]{64}`)

const (
	NameMaxmindLite = "maxmind_lite"

	maxmindLiteArchiveName = "archive.tar.gz"
)

type maxmindLiteDatabase struct {
	maxmindBase

	baseDirectory string
	licenseKey    string
	updateEvery   time.Duration
	httpClient    waylib.HTTPClient
}

func (m *maxmindLiteDatabase) Name() string {
	return NameMaxmindLite
}

func (m *maxmindLiteDatabase) UpdateEvery() time.Duration {
	return m.updateEvery
}

func (m *maxmindLiteDatabase) BaseDirectory() string {
	return m.baseDirectory
}

func (m *maxmindLiteDatabase) Download(ctx context.Context, fs afero.Afero) error {
	expectedChecksum, err := m.downloadChecksum(ctx)
	if err != nil {
		return fmt.Errorf("cannot download a checksum: %w", err)
	}

	actualChecksum, err := m.downloadArchive(ctx, fs)
	if err != nil {
		return fmt.Errorf("cannot download an archive: %w", err)
	}

	if !strings.EqualFold(expectedChecksum, actualChecksum) {
		return fmt.Errorf("checksum mismatch. expected=%s, actual=%s",
			expectedChecksum,
			actualChecksum)
	}

	if err := m.extractArchive(fs); err != nil {
		return fmt.Errorf("cannot extract archive: %w", err)
	}

	return nil
}

func (m *maxmindLiteDatabase) downloadChecksum(ctx context.Context) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, "GET", m.buildURL("tar.gz.sha256"), nil)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot fetch checksum page: %w", err)
	}

	defer flushResponse(resp.Body)

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cannot read body of the response: %w", err)
	}

	pos := bytes.IndexAny(data, " \t")
	if pos == -1 {
		return "", fmt.Errorf("incorrect response format")
	}

	if !maxmindChecksumRegexp.Match(data[:pos]) {
		return "", fmt.Errorf("incorrect checksum format")
	}

	return string(data[:pos]), nil
}

func (m *maxmindLiteDatabase) downloadArchive(ctx context.Context, fs afero.Afero) (string, error) {
	tarFile, err := fs.Create(maxmindLiteArchiveName)
	if err != nil {
		return "", fmt.Errorf("cannot create an archive file: %w", err)
	}

	defer tarFile.Close()

	req, _ := http.NewRequestWithContext(ctx, "GET", m.buildURL("tar.gz"), nil)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot download an archive: %w", err)
	}

	defer flushResponse(resp.Body)

	checksum, err := hashedCopyResponse(sha256.New, tarFile, resp.Body)
	if err != nil {
		return "", fmt.Errorf("cannot copy file into fs: %w", err)
	}

	return checksum, nil
}

func (m *maxmindLiteDatabase) extractArchive(fs afero.Afero) error {
	archiveFile, err := fs.Open(maxmindLiteArchiveName)
	if err != nil {
		return fmt.Errorf("cannot open archive: %w", err)
	}

	defer func() {
		archiveFile.Close()
		fs.Remove(maxmindLiteArchiveName) // nolint: errcheck
	}()

	databaseFile, err := fs.Create(maxmindBaseFileName)
	if err != nil {
		return fmt.Errorf("cannot create a file for a database: %w", err)
	}

	defer databaseFile.Close()

	ungzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("cannot create a gzip reader: %w", err)
	}

	tarReader := tar.NewReader(ungzipReader)

	for {
		header, err := tarReader.Next()

		switch {
		case err == io.EOF:
			return ErrNoFile
		case err != nil:
			return fmt.Errorf("cannot extract a header: %w", err)
		case header.Linkname != "", header.FileInfo().IsDir():
			continue
		case strings.ToUpper(filepath.Ext(header.Name)) == ".MMDB":
			if _, err := io.Copy(databaseFile, tarReader); err != nil {
				return fmt.Errorf("cannot copy into a database file: %w", err)
			}

			return nil
		}
	}
}

func (m *maxmindLiteDatabase) buildURL(suffix string) string {
	queryValues := url.Values{}

	queryValues.Set("edition_id", "GeoLite2-City")
	queryValues.Set("suffix", suffix)
	queryValues.Set("license_key", m.licenseKey)

	urlStruct := url.URL{
		Scheme:   "https",
		Host:     "download.maxmind.com",
		Path:     "/app/geoip_download",
		RawQuery: queryValues.Encode(),
	}

	return urlStruct.String()
}

// NewMaxmindLite builds an offline database on free GeoLite2-City
// datasets of MaxMind: https://dev.maxmind.com/geoip/geoip2/geolite2/
//
// A (free) license key is mandatory to download them.
func NewMaxmindLite(httpClient waylib.HTTPClient,
	updateEvery time.Duration,
	baseDirectory, licenseKey string) (waylib.OfflineDatabase, error) {
	if licenseKey == "" {
		return nil, ErrLicenseKeyIsRequired
	}

	return &maxmindLiteDatabase{
		baseDirectory: baseDirectory,
		licenseKey:    licenseKey,
		updateEvery:   updateEvery,
		httpClient:    httpClient,
	}, nil
}
