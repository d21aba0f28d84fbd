package model

import (
	"encoding/hex"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoPoint_ScanWKT(t *testing.T) {
	var p GeoPoint
	require.NoError(t, p.Scan("POINT(0.12 52.2)"))
	assert.InDelta(t, 0.12, p.Longitude(), 1e-9)
	assert.InDelta(t, 52.2, p.Latitude(), 1e-9)

	require.NoError(t, p.Scan([]byte("SRID=4326;POINT(-0.1276 51.5072)")))
	assert.InDelta(t, -0.1276, p.Longitude(), 1e-9)
	assert.InDelta(t, 51.5072, p.Latitude(), 1e-9)
}

func TestGeoPoint_ScanHexEWKB(t *testing.T) {
	data, err := ewkb.Marshal(orb.Point{0.1218, 52.2053}, SRID)
	require.NoError(t, err)

	var p GeoPoint
	require.NoError(t, p.Scan(hex.EncodeToString(data)))
	assert.InDelta(t, 0.1218, p.Longitude(), 1e-9)
	assert.InDelta(t, 52.2053, p.Latitude(), 1e-9)
}

func TestGeoPoint_ScanRejectsGarbage(t *testing.T) {
	var p GeoPoint
	assert.Error(t, p.Scan(42))
	assert.Error(t, p.Scan("LINESTRING(0 0, 1 1)"))
}

func TestGeoPoint_Value(t *testing.T) {
	v, err := NewGeoPoint(0.12, 52.2).Value()
	require.NoError(t, err)
	assert.Equal(t, "POINT(0.12 52.2)", v)
}
