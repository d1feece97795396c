package geoip

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLookup struct{ calls int }

func (f *failingLookup) Lookup(context.Context, netip.Addr) (*Location, error) {
	f.calls++
	return nil, errors.New("database closed")
}

func TestLocate(t *testing.T) {
	loc := NewLocator(Table{
		"8.8.8.8":              {City: "Mountain View", Country: "United States", Coordinates: []float64{37.386, -122.0838}},
		"2001:4860:4860::8888": {Country: "United States"},
	})
	ctx := context.Background()

	got := loc.Locate(ctx, "8.8.8.8")
	require.NotNil(t, got)
	assert.Equal(t, "Mountain View", got.City)

	require.NotNil(t, loc.Locate(ctx, "::ffff:8.8.8.8"))
	require.NotNil(t, loc.Locate(ctx, "2001:4860:4860::8888"))

	for _, ip := range []string{
		"10.0.0.5",
		"192.168.1.1",
		"172.16.4.4",
		"127.0.0.1",
		"169.254.1.1",
		"0.0.0.0",
		"100.64.0.1",
		"192.0.2.10",
		"224.0.0.1",
		"fd00::1",
		"fe80::1",
		"::1",
		"2001:db8::1",
		"1.1.1.1", // public but unknown
		"not-an-ip",
		"999.1.1.1",
		"",
	} {
		assert.Nil(t, loc.Locate(ctx, ip), ip)
	}
}

func TestLocateFailsOpen(t *testing.T) {
	f := &failingLookup{}
	loc := NewLocator(f)
	assert.Nil(t, loc.Locate(context.Background(), "8.8.8.8"))
	assert.Equal(t, 1, f.calls)

	// private addresses never reach the lookup
	assert.Nil(t, loc.Locate(context.Background(), "10.1.2.3"))
	assert.Equal(t, 1, f.calls)
}

func TestLookupFailureLogging(t *testing.T) {
	var def bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&def, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewLocator(&failingLookup{}).Locate(context.Background(), "8.8.8.8")
	assert.Empty(t, def.String())

	var buf bytes.Buffer
	NewLocator(&failingLookup{}, WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))).
		Locate(context.Background(), "8.8.8.8")
	assert.Contains(t, buf.String(), "geoip lookup failed")
	assert.Contains(t, buf.String(), "database closed")
	assert.Empty(t, def.String())
}

func TestNilLocator(t *testing.T) {
	var loc *Locator
	assert.Nil(t, loc.Locate(context.Background(), "8.8.8.8"))
	assert.Nil(t, NewLocator(nil).Locate(context.Background(), "8.8.8.8"))
}
