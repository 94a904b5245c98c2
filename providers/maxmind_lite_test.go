package providers_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/wayfinder-io/wayfinder/providers"
	"github.com/wayfinder-io/wayfinder/waylib"
)

const (
	maxmindChecksumURL = "https://download.maxmind.com/app/geoip_download?edition_id=GeoLite2-City&license_key=apikey&suffix=tar.gz.sha256"
	maxmindArchiveURL  = "https://download.maxmind.com/app/geoip_download?edition_id=GeoLite2-City&license_key=apikey&suffix=tar.gz"
)

type MaxmindLiteTestSuite struct {
	ProviderTestSuite
	HTTPMockMixin

	ctx  context.Context
	fs   afero.Afero
	prov waylib.OfflineDatabase
}

func (suite *MaxmindLiteTestSuite) SetupTest() {
	suite.ProviderTestSuite.SetupTest()

	prov, err := providers.NewMaxmindLite(suite.http, time.Minute, "/maxmind", "apikey")
	suite.NoError(err)

	suite.ctx = context.Background()
	suite.fs = afero.Afero{Fs: afero.NewMemMapFs()}
	suite.prov = prov
}

// buildArchive packs the given files into a tar.gz and returns it with
// its sha256 hex digest.
func buildArchive(suite *MaxmindLiteTestSuite, files map[string][]byte) ([]byte, string) {
	buf := &bytes.Buffer{}
	gzipWriter := gzip.NewWriter(buf)
	tarWriter := tar.NewWriter(gzipWriter)

	for name, contents := range files {
		err := tarWriter.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0666,
			Size: int64(len(contents)),
		})
		suite.NoError(err)

		_, err = tarWriter.Write(contents)
		suite.NoError(err)
	}

	suite.NoError(tarWriter.Close())
	suite.NoError(gzipWriter.Close())

	checksum := sha256.Sum256(buf.Bytes())

	return buf.Bytes(), hex.EncodeToString(checksum[:])
}

func (suite *MaxmindLiteTestSuite) TestName() {
	suite.Equal(providers.NameMaxmindLite, suite.prov.Name())
}

func (suite *MaxmindLiteTestSuite) TestUpdateEvery() {
	suite.Equal(time.Minute, suite.prov.UpdateEvery())
}

func (suite *MaxmindLiteTestSuite) TestBaseDirectory() {
	suite.Equal("/maxmind", suite.prov.BaseDirectory())
}

func (suite *MaxmindLiteTestSuite) TestLicenseKeyIsRequired() {
	_, err := providers.NewMaxmindLite(suite.http, time.Minute, "/maxmind", "")

	suite.ErrorIs(err, providers.ErrLicenseKeyIsRequired)
}

func (suite *MaxmindLiteTestSuite) TestLookupBeforeOpen() {
	_, err := suite.prov.Lookup(suite.ctx, net.ParseIP("131.225.0.10"))

	suite.ErrorIs(err, providers.ErrDatabaseIsNotReadyYet)
}

func (suite *MaxmindLiteTestSuite) TestOpenGarbage() {
	suite.NoError(suite.fs.WriteFile("database.mmdb", []byte("garbage"), 0666))

	suite.Error(suite.prov.Open(suite.fs.Fs))
}

func (suite *MaxmindLiteTestSuite) TestDownload() {
	archive, checksum := buildArchive(suite, map[string][]byte{
		"GeoLite2-City_20260101/COPYRIGHT.txt":      []byte("copyright"),
		"GeoLite2-City_20260101/GeoLite2-City.mmdb": []byte("mmdb-payload"),
	})

	httpmock.RegisterResponder("GET", maxmindChecksumURL,
		httpmock.NewStringResponder(200, checksum+"  GeoLite2-City.tar.gz"))
	httpmock.RegisterResponder("GET", maxmindArchiveURL,
		httpmock.NewBytesResponder(200, archive))

	suite.NoError(suite.prov.Download(suite.ctx, suite.fs))

	contents, err := suite.fs.ReadFile("database.mmdb")
	suite.NoError(err)
	suite.Equal("mmdb-payload", string(contents))

	exists, err := suite.fs.Exists("archive.tar.gz")
	suite.NoError(err)
	suite.False(exists)
}

func (suite *MaxmindLiteTestSuite) TestDownloadChecksumMismatch() {
	archive, _ := buildArchive(suite, map[string][]byte{
		"GeoLite2-City_20260101/GeoLite2-City.mmdb": []byte("mmdb-payload"),
	})

	httpmock.RegisterResponder("GET", maxmindChecksumURL,
		httpmock.NewStringResponder(200,
			"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824 GeoLite2-City.tar.gz"))
	httpmock.RegisterResponder("GET", maxmindArchiveURL,
		httpmock.NewBytesResponder(200, archive))

	suite.Error(suite.prov.Download(suite.ctx, suite.fs))
}

func (suite *MaxmindLiteTestSuite) TestDownloadChecksumBadFormat() {
	httpmock.RegisterResponder("GET", maxmindChecksumURL,
		httpmock.NewStringResponder(200, "???"))

	suite.Error(suite.prov.Download(suite.ctx, suite.fs))
}

func (suite *MaxmindLiteTestSuite) TestDownloadChecksumBadStatus() {
	httpmock.RegisterResponder("GET", maxmindChecksumURL,
		httpmock.NewStringResponder(500, ""))

	suite.Error(suite.prov.Download(suite.ctx, suite.fs))
}

func (suite *MaxmindLiteTestSuite) TestDownloadArchiveWithoutDatabase() {
	archive, checksum := buildArchive(suite, map[string][]byte{
		"GeoLite2-City_20260101/COPYRIGHT.txt": []byte("copyright"),
	})

	httpmock.RegisterResponder("GET", maxmindChecksumURL,
		httpmock.NewStringResponder(200, checksum+"  GeoLite2-City.tar.gz"))
	httpmock.RegisterResponder("GET", maxmindArchiveURL,
		httpmock.NewBytesResponder(200, archive))

	suite.ErrorIs(suite.prov.Download(suite.ctx, suite.fs), providers.ErrNoFile)
}

func (suite *MaxmindLiteTestSuite) TestDownloadArchiveNotGzip() {
	httpmock.RegisterResponder("GET", maxmindChecksumURL,
		httpmock.NewStringResponder(200,
			"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824 GeoLite2-City.tar.gz"))
	httpmock.RegisterResponder("GET", maxmindArchiveURL,
		httpmock.NewStringResponder(200, "hello"))

	suite.Error(suite.prov.Download(suite.ctx, suite.fs))
}

func (suite *MaxmindLiteTestSuite) TestDownloadCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	suite.Error(suite.prov.Download(ctx, suite.fs))
}

func TestMaxmindLite(t *testing.T) {
	suite.Run(t, &MaxmindLiteTestSuite{})
}
