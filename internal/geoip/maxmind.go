package geoip

import (
	"context"
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
)

// MaxMind looks addresses up in a GeoLite2/GeoIP2 City database.
type MaxMind struct {
	reader *geoip2.Reader
	lang   string
}

// OpenMaxMind opens the database at path.
func OpenMaxMind(path string) (*MaxMind, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MaxMind{reader: r, lang: "en"}, nil
}

func (m *MaxMind) Close() error { return m.reader.Close() }

func (m *MaxMind) Lookup(_ context.Context, addr netip.Addr) (*Location, error) {
	rec, err := m.reader.City(net.IP(addr.AsSlice()))
	if err != nil {
		return nil, err
	}
	if rec.Country.IsoCode == "" && rec.City.GeoNameID == 0 {
		return nil, nil
	}
	return &Location{
		City:        rec.City.Names[m.lang],
		Continent:   rec.Continent.Names[m.lang],
		Coordinates: []float64{rec.Location.Latitude, rec.Location.Longitude},
		Country:     rec.Country.Names[m.lang],
		PostalCode:  rec.Postal.Code,
		TimeZone:    rec.Location.TimeZone,
	}, nil
}
