package waylib

import (
	"fmt"
	"net"
)

// AddressFamily denotes a protocol family of a resolved address.
type AddressFamily int

const (
	AddressFamilyUnknown AddressFamily = iota
	AddressFamilyV4
	AddressFamilyV6
)

// Location is a point on the Earth surface, in degrees. Latitude is
// within [-90, 90], longitude within [-180, 180].
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewLocation builds a Location, rejecting out-of-range coordinates.
func NewLocation(latitude, longitude float64) (Location, error) {
	if latitude < -90.0 || latitude > 90.0 {
		return Location{}, fmt.Errorf("latitude %f is out of range", latitude)
	}

	if longitude < -180.0 || longitude > 180.0 {
		return Location{}, fmt.Errorf("longitude %f is out of range", longitude)
	}

	return Location{Latitude: latitude, Longitude: longitude}, nil
}

// HostAddress is a single address a hostname has resolved to, together
// with its protocol family.
type HostAddress struct {
	IP     net.IP
	Family AddressFamily
}

// NewHostAddress derives the protocol family from the address itself.
func NewHostAddress(ip net.IP) HostAddress {
	family := AddressFamilyV6
	if ip.To4() != nil {
		family = AddressFamilyV4
	}

	return HostAddress{IP: ip, Family: family}
}
