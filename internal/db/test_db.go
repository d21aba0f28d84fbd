package db

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteGeoDriver is go-sqlite3 with the PostGIS functions the repositories
// call (ST_MakePoint, ST_X, ST_Y) implemented over WKT text.
const sqliteGeoDriver = "sqlite3_postgis"

var registerGeoDriver sync.Once

func registerSQLiteGeoDriver() {
	registerGeoDriver.Do(func() {
		sql.Register(sqliteGeoDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if err := conn.RegisterFunc("ST_MakePoint", stMakePoint, true); err != nil {
					return err
				}
				if err := conn.RegisterFunc("ST_X", stX, true); err != nil {
					return err
				}
				return conn.RegisterFunc("ST_Y", stY, true)
			},
		})
	})
}

func stMakePoint(x, y float64) string {
	return wkt.MarshalString(orb.Point{x, y})
}

func stX(value string) (float64, error) {
	var p model.GeoPoint
	if err := p.Scan(value); err != nil {
		return 0, err
	}
	return p.X(), nil
}

func stY(value string) (float64, error) {
	var p model.GeoPoint
	if err := p.Scan(value); err != nil {
		return 0, err
	}
	return p.Y(), nil
}

// SetupTestDB creates an isolated in-memory SQLite database with every
// directory table migrated.
func SetupTestDB() (*gorm.DB, error) {
	registerSQLiteGeoDriver()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: sqliteGeoDriver,
		DSN:        dsn,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	// A single connection keeps every query (and every transaction) on the
	// same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// CleanupTestDB closes the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all rows, children first.
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{
		"business_images", "social_links", "feature_proposals", "opening_hours",
		"locations", "businesses", "features", "categories",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
