package model

import (
	"context"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/encoding/wkt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// SRID of every stored point (WGS84).
const SRID = 4326

// GeoPoint is a WGS84 point stored as a PostGIS geography. X is the
// longitude and Y the latitude.
type GeoPoint struct {
	orb.Point
}

func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{Point: orb.Point{longitude, latitude}}
}

func (p GeoPoint) Longitude() float64 { return p.X() }
func (p GeoPoint) Latitude() float64  { return p.Y() }

// GormDBDataType picks the column type per dialect; non-PostGIS databases
// keep the WKT text.
func (GeoPoint) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("geography(Point,%d)", SRID)
	}
	return "text"
}

// GormValue builds the point with ST_MakePoint so the database owns the
// encoding.
func (p GeoPoint) GormValue(_ context.Context, db *gorm.DB) clause.Expr {
	if db.Dialector.Name() == "postgres" {
		return clause.Expr{
			SQL:  fmt.Sprintf("ST_SetSRID(ST_MakePoint(?, ?), %d)::geography", SRID),
			Vars: []interface{}{p.Longitude(), p.Latitude()},
		}
	}
	return clause.Expr{SQL: "ST_MakePoint(?, ?)", Vars: []interface{}{p.Longitude(), p.Latitude()}}
}

// Value implements driver.Valuer for raw statements.
func (p GeoPoint) Value() (driver.Value, error) {
	return wkt.MarshalString(p.Point), nil
}

// Scan accepts WKT text or hex encoded (E)WKB as returned by PostGIS.
func (p *GeoPoint) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		p.Point = orb.Point{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("failed to scan GeoPoint from %T", value)
	}

	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToUpper(raw), "POINT") || strings.HasPrefix(strings.ToUpper(raw), "SRID=") {
		return p.scanWKT(raw)
	}

	data, err := hex.DecodeString(raw)
	if err != nil {
		data = []byte(raw)
	}
	geom, _, err := ewkb.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to decode GeoPoint: %w", err)
	}
	point, ok := geom.(orb.Point)
	if !ok {
		return fmt.Errorf("expected point geometry, got %s", geom.GeoJSONType())
	}
	p.Point = point
	return nil
}

func (p *GeoPoint) scanWKT(raw string) error {
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[i+1:]
	}
	geom, err := wkt.Unmarshal(raw)
	if err != nil {
		return fmt.Errorf("failed to parse GeoPoint: %w", err)
	}
	point, ok := geom.(orb.Point)
	if !ok {
		return fmt.Errorf("expected point geometry, got %s", geom.GeoJSONType())
	}
	p.Point = point
	return nil
}
