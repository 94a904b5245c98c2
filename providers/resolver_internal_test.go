package providers

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wayfinder-io/wayfinder/waylib"
)

type NetResolverTestSuite struct {
	suite.Suite

	ctx         context.Context
	lookupCount int
	lookupErr   error
	resolver    *netResolver
}

func (suite *NetResolverTestSuite) SetupTest() {
	resolver, err := NewNetResolver(10)
	suite.NoError(err)

	suite.ctx = context.Background()
	suite.lookupCount = 0
	suite.lookupErr = nil
	suite.resolver = resolver.(*netResolver)
	suite.resolver.lookupIPAddr = func(ctx context.Context, hostname string) ([]net.IPAddr, error) {
		suite.lookupCount++

		if suite.lookupErr != nil {
			return nil, suite.lookupErr
		}

		return []net.IPAddr{
			{IP: net.ParseIP("2001:1458::10")},
			{IP: net.ParseIP("131.225.0.10")},
		}, nil
	}
}

func (suite *NetResolverTestSuite) TestResolveFamilies() {
	addrs, err := suite.resolver.Resolve(suite.ctx, "host.example.org")

	suite.NoError(err)
	suite.Len(addrs, 2)
	suite.Equal(waylib.AddressFamilyV6, addrs[0].Family)
	suite.Equal(waylib.AddressFamilyV4, addrs[1].Family)
}

func (suite *NetResolverTestSuite) TestResolveIsMemoized() {
	for i := 0; i < 5; i++ {
		_, err := suite.resolver.Resolve(suite.ctx, "host.example.org")
		suite.NoError(err)
	}

	suite.Equal(1, suite.lookupCount)
}

func (suite *NetResolverTestSuite) TestErrorsAreNotMemoized() {
	suite.lookupErr = errors.New("nxdomain")

	for i := 0; i < 3; i++ {
		_, err := suite.resolver.Resolve(suite.ctx, "host.example.org")
		suite.Error(err)
	}

	suite.Equal(3, suite.lookupCount)
}

func TestNetResolver(t *testing.T) {
	suite.Run(t, &NetResolverTestSuite{})
}
