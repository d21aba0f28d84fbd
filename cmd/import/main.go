package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lokal-app/lokal-backend/config"
	"github.com/lokal-app/lokal-backend/internal/app/repository"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	"github.com/lokal-app/lokal-backend/internal/db"
	"github.com/lokal-app/lokal-backend/pkg/logger"
	"github.com/lokal-app/lokal-backend/pkg/util"
)

// importer is satisfied by the in-process service and the API client.
type importer interface {
	Import(ctx context.Context, row service.BulkImportRow) (*service.BulkImportResult, error)
}

type outcome struct {
	name       string
	businessID uint
	err        error
}

func main() {
	useAPI := flag.Bool("api", false, "submit rows to a running server instead of writing to the database")
	apiURL := flag.String("api-url", "", "server base URL (default API_BASE_URL)")
	strict := flag.Bool("strict", false, "reject rows with unparsable hours or unknown features")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: go run ./cmd/import [-api] [-api-url URL] [-strict] <file.csv|file.xlsx>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	fmt.Printf("Reading sheet: %s\n", filePath)
	rows, err := readSheet(filePath)
	if err != nil {
		logger.Fatal("Failed to read sheet", err)
	}
	fmt.Printf("Found %d businesses to import\n", len(rows))
	fmt.Println(strings.Repeat("-", 60))

	var imp importer
	if *useAPI {
		baseURL := *apiURL
		if baseURL == "" {
			baseURL = cfg.Import.APIBaseURL
		}
		fmt.Printf("API endpoint: %s%s\n", strings.TrimRight(baseURL, "/"), bulkImportPath)
		imp = newAPIImporter(baseURL, *strict)
	} else {
		if err := db.Initialize(&cfg.Database); err != nil {
			logger.Fatal("Failed to connect to database", err)
		}
		defer db.Close()

		tm := repository.NewTransactionManager(db.GetDB())
		imp = service.NewBulkImportService(tm, util.NewGeocoder(cfg.Geocoder), cfg.Geocoder.Timeout, nil)
	}

	outcomes := run(context.Background(), imp, rows, *strict)
	if printSummary(outcomes) > 0 {
		os.Exit(1)
	}
}

// run imports rows one at a time. A failed row never stops the rest.
func run(ctx context.Context, imp importer, rows []service.BulkImportRow, strict bool) []outcome {
	outcomes := make([]outcome, 0, len(rows))
	for i, row := range rows {
		fmt.Printf("[%d/%d] Processing: %s\n", i+1, len(rows), row.Name)

		if field := missingField(row); field != "" {
			err := fmt.Errorf("missing %s", field)
			fmt.Printf("  x %v\n\n", err)
			outcomes = append(outcomes, outcome{name: row.Name, err: err})
			continue
		}

		row.Strict = strict
		result, err := imp.Import(ctx, row)
		if err != nil {
			fmt.Printf("  x %v\n\n", err)
			outcomes = append(outcomes, outcome{name: row.Name, err: err})
			continue
		}

		locationName := "?"
		if result.LocationName != nil {
			locationName = *result.LocationName
		}
		fmt.Printf("  ok %s\n", result.Message)
		fmt.Printf("    Business ID: %d, Location: %s\n\n", result.BusinessID, locationName)
		outcomes = append(outcomes, outcome{name: row.Name, businessID: result.BusinessID})
	}
	return outcomes
}

// printSummary prints the totals and returns the number of failures.
func printSummary(outcomes []outcome) int {
	var failed int
	for _, o := range outcomes {
		if o.err != nil {
			failed++
		}
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total businesses: %d\n", len(outcomes))
	fmt.Printf("Successfully imported: %d\n", len(outcomes)-failed)
	fmt.Printf("Failed: %d\n", failed)

	if failed < len(outcomes) {
		fmt.Println("\nImported:")
		for _, o := range outcomes {
			if o.err == nil {
				fmt.Printf("  - %s (ID: %d)\n", o.name, o.businessID)
			}
		}
	}
	if failed > 0 {
		fmt.Println("\nFailed:")
		for _, o := range outcomes {
			if o.err != nil {
				fmt.Printf("  - %s: %v\n", o.name, o.err)
			}
		}
	}
	return failed
}
