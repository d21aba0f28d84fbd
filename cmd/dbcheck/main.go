package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/lib/pq"
	"github.com/lokal-app/lokal-backend/config"
	"github.com/lokal-app/lokal-backend/internal/db"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"gorm.io/gorm/schema"
)

// dbcheck prints where the configured database lives and whether it is ready
// for the directory: reachable, PostGIS installed, tables migrated.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	dsn := cfg.Database.DSN()
	fmt.Println("Database connection:")
	fmt.Printf("  DSN: %s\n", maskDSN(dsn))

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Printf("  x failed to open connection: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		fmt.Printf("  x ping failed: %v\n", describePQError(err))
		os.Exit(1)
	}
	fmt.Println("  ok connected")

	var version string
	if err := conn.QueryRowContext(ctx, "SELECT version()").Scan(&version); err == nil {
		fmt.Printf("  server: %s\n", version)
	}

	var postgis sql.NullString
	_ = conn.QueryRowContext(ctx, "SELECT extversion FROM pg_extension WHERE extname = 'postgis'").Scan(&postgis)
	if postgis.Valid {
		fmt.Printf("  ok PostGIS %s\n", postgis.String)
	} else {
		fmt.Println("  x PostGIS extension not installed (run: CREATE EXTENSION postgis)")
	}

	fmt.Println("\nTables:")
	missing := 0
	for _, name := range tableNames() {
		var exists bool
		err := conn.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)",
			name).Scan(&exists)
		if err != nil {
			fmt.Printf("  x %s: %v\n", name, describePQError(err))
			missing++
			continue
		}
		if !exists {
			fmt.Printf("  x %s missing\n", name)
			missing++
			continue
		}

		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(name))
		if err := conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
			fmt.Printf("  ? %s: %v\n", name, describePQError(err))
			continue
		}
		fmt.Printf("  ok %s (%d rows)\n", name, count)
	}

	if missing > 0 || !postgis.Valid {
		os.Exit(1)
	}
}

func tableNames() []string {
	names := make([]string, 0, len(db.Models()))
	for _, m := range db.Models() {
		if t, ok := m.(schema.Tabler); ok {
			names = append(names, t.TableName())
		}
	}
	return names
}

var passwordPattern = regexp.MustCompile(`password=\S+`)

// maskDSN hides the password in URL and key=value DSNs.
func maskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	return passwordPattern.ReplaceAllString(dsn, "password=****")
}

func describePQError(err error) string {
	if pqErr, ok := err.(*pq.Error); ok {
		return fmt.Sprintf("%s (SQLSTATE %s)", pqErr.Message, pqErr.Code)
	}
	return err.Error()
}
