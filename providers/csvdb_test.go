package providers_test

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wayfinder-io/wayfinder/providers"
	"github.com/wayfinder-io/wayfinder/waylib"
)

const csvFixture = `
# start_ip,finish_ip,latitude,longitude
131.225.0.0,131.225.255.255,41.7768,-88.4604
202.122.32.0,202.122.32.255,39.9289,116.3883
malformed row
192.0.2.0,not-an-ip,1.0,1.0
198.51.100.0,198.51.100.255,95.0,0.0
`

type CSVDatabaseTestSuite struct {
	suite.Suite

	ctx context.Context
	db  waylib.Database
}

func (suite *CSVDatabaseTestSuite) SetupTest() {
	db, err := providers.NewCSVDatabase(strings.NewReader(csvFixture))
	suite.NoError(err)

	suite.ctx = context.Background()
	suite.db = db
}

func (suite *CSVDatabaseTestSuite) TestName() {
	suite.Equal(providers.NameCSV, suite.db.Name())
}

func (suite *CSVDatabaseTestSuite) TestLookupInRange() {
	location, err := suite.db.Lookup(suite.ctx, net.ParseIP("131.225.0.10"))

	suite.NoError(err)
	suite.Equal(waylib.Location{Latitude: 41.7768, Longitude: -88.4604}, location)
}

func (suite *CSVDatabaseTestSuite) TestLookupRangeEdges() {
	for _, v := range []string{"202.122.32.0", "202.122.32.128", "202.122.32.255"} {
		location, err := suite.db.Lookup(suite.ctx, net.ParseIP(v))

		suite.NoError(err)
		suite.Equal(waylib.Location{Latitude: 39.9289, Longitude: 116.3883}, location)
	}
}

func (suite *CSVDatabaseTestSuite) TestLookupOutsideRanges() {
	_, err := suite.db.Lookup(suite.ctx, net.ParseIP("8.8.8.8"))

	suite.ErrorIs(err, providers.ErrNoRecord)
}

func (suite *CSVDatabaseTestSuite) TestMalformedRowsAreSkipped() {
	_, err := suite.db.Lookup(suite.ctx, net.ParseIP("192.0.2.10"))

	suite.ErrorIs(err, providers.ErrNoRecord)
}

func (suite *CSVDatabaseTestSuite) TestOutOfRangeCoordinatesAreSkipped() {
	_, err := suite.db.Lookup(suite.ctx, net.ParseIP("198.51.100.10"))

	suite.ErrorIs(err, providers.ErrNoRecord)
}

func (suite *CSVDatabaseTestSuite) TestIPv6HasNoRecords() {
	_, err := suite.db.Lookup(suite.ctx, net.ParseIP("2001:1458::10"))

	suite.ErrorIs(err, providers.ErrNoRecord)
}

func TestCSVDatabase(t *testing.T) {
	suite.Run(t, &CSVDatabaseTestSuite{})
}
