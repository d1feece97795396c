// Package geoip turns IP addresses into optional location records. Location
// is an enrichment: every failure yields no location rather than an error.
package geoip

import (
	"context"
	"log/slog"
	"net/netip"
)

// Location is the geolocation record exposed to clients.
type Location struct {
	City        string    `yaml:"city"`
	Continent   string    `yaml:"continent"`
	Coordinates []float64 `yaml:"coordinates"`
	Country     string    `yaml:"country"`
	PostalCode  string    `yaml:"postal_code"`
	TimeZone    string    `yaml:"time_zone"`
}

// Lookup is the geolocation data source. It returns (nil, nil) when it has
// no data for addr.
type Lookup interface {
	Lookup(ctx context.Context, addr netip.Addr) (*Location, error)
}

// Locator filters non-public addresses before consulting a Lookup.
type Locator struct {
	lookup Lookup
	logger *slog.Logger
}

type Option func(*Locator)

func WithLogger(l *slog.Logger) Option {
	return func(loc *Locator) {
		if l != nil {
			loc.logger = l
		}
	}
}

// NewLocator wraps lookup. A nil lookup locates nothing. Lookup failures are
// discarded unless a logger is set with WithLogger.
func NewLocator(lookup Lookup, opts ...Option) *Locator {
	l := &Locator{lookup: lookup, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Locate returns the location of ip, or nil when ip is malformed, not a
// public address, or unknown to the lookup.
func (l *Locator) Locate(ctx context.Context, ip string) *Location {
	if l == nil || l.lookup == nil {
		return nil
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil
	}
	addr = addr.Unmap()
	if !IsPublic(addr) {
		return nil
	}
	loc, err := l.lookup.Lookup(ctx, addr)
	if err != nil {
		l.logger.WarnContext(ctx, "geoip lookup failed", "ip", addr.String(), "error", err)
		return nil
	}
	return loc
}

var reserved = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("::/128"),
	netip.MustParsePrefix("64:ff9b:1::/48"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001::/23"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// IsPublic reports whether addr is globally routable.
func IsPublic(addr netip.Addr) bool {
	if !addr.IsValid() ||
		addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return false
	}
	for _, p := range reserved {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// Table is a static Lookup keyed by address string.
type Table map[string]Location

func (t Table) Lookup(_ context.Context, addr netip.Addr) (*Location, error) {
	loc, ok := t[addr.String()]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}
