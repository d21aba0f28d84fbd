package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/lokal-app/lokal-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

const featureColumnPrefix = "Feature_"

// sheetColumns maps the onboarding sheet headers. Feature_N columns are
// picked up from the unused columns of each record.
type sheetColumns struct {
	Name         string `csv:"business_name"`
	Category     string `csv:"business_category"`
	Address      string `csv:"business_location"`
	LocationName string `csv:"location_name,omitempty"`
	Website      string `csv:"Website,omitempty"`
	X            string `csv:"X,omitempty"`
	Instagram    string `csv:"Instagram,omitempty"`
	Facebook     string `csv:"Facebook,omitempty"`
	TikTok       string `csv:"TikTok,omitempty"`
	Logo         string `csv:"Logo,omitempty"`
	Monday       string `csv:"OH Monday,omitempty"`
	Tuesday      string `csv:"OH Tuesday,omitempty"`
	Wednesday    string `csv:"OH Wednesday,omitempty"`
	Thursday     string `csv:"OH Thursday,omitempty"`
	Friday       string `csv:"OH Friday,omitempty"`
	Saturday     string `csv:"OH Saturday,omitempty"`
	Sunday       string `csv:"OH Sunday,omitempty"`
}

// recordReader is the csvutil.Reader contract shared by the CSV and XLSX
// sources.
type recordReader interface {
	Read() ([]string, error)
}

// xlsxReader feeds the first sheet row by row. Rows are padded to the header
// width since excelize drops trailing empty cells.
type xlsxReader struct {
	rows  *excelize.Rows
	width int
}

func (r *xlsxReader) Read() ([]string, error) {
	if !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, err
	}
	if r.width == 0 {
		r.width = len(cols)
	}
	for len(cols) < r.width {
		cols = append(cols, "")
	}
	return cols[:r.width], nil
}

// readSheet loads every importable row from a .csv or .xlsx file. Rows with
// no business name are skipped.
func readSheet(path string) ([]service.BulkImportRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		return decodeRows(&paddedCSVReader{r: r})
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX file: %w", err)
		}
		defer f.Close()

		sheetName := f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no sheets found in XLSX file")
		}
		rows, err := f.Rows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		defer rows.Close()

		return decodeRows(&xlsxReader{rows: rows})
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(path))
	}
}

// paddedCSVReader tolerates ragged rows, which spreadsheet exports produce.
type paddedCSVReader struct {
	r     *csv.Reader
	width int
}

func (p *paddedCSVReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	if p.width == 0 {
		p.width = len(rec)
	}
	for len(rec) < p.width {
		rec = append(rec, "")
	}
	return rec[:p.width], nil
}

func decodeRows(r recordReader) ([]service.BulkImportRow, error) {
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no data found in sheet")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header := dec.Header()

	var rows []service.BulkImportRow
	for {
		var cols sheetColumns
		if err := dec.Decode(&cols); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode row %d: %w", len(rows)+2, err)
		}
		if strings.TrimSpace(cols.Name) == "" {
			continue
		}

		record := dec.Record()
		var features []string
		for _, i := range dec.Unused() {
			if !strings.HasPrefix(header[i], featureColumnPrefix) {
				continue
			}
			if v := strings.TrimSpace(record[i]); v != "" {
				features = append(features, v)
			}
		}

		rows = append(rows, cols.toImportRow(features))
	}
	return rows, nil
}

func (c sheetColumns) toImportRow(features []string) service.BulkImportRow {
	return service.BulkImportRow{
		Name:         strings.TrimSpace(c.Name),
		Category:     strings.TrimSpace(c.Category),
		Address:      strings.TrimSpace(c.Address),
		LocationName: optional(c.LocationName),
		Website:      optional(c.Website),
		XURL:         optional(c.X),
		InstagramURL: optional(c.Instagram),
		FacebookURL:  optional(c.Facebook),
		TikTokURL:    optional(c.TikTok),
		LogoURL:      optional(c.Logo),
		OHMonday:     optional(c.Monday),
		OHTuesday:    optional(c.Tuesday),
		OHWednesday:  optional(c.Wednesday),
		OHThursday:   optional(c.Thursday),
		OHFriday:     optional(c.Friday),
		OHSaturday:   optional(c.Saturday),
		OHSunday:     optional(c.Sunday),
		Features:     features,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// missingField names the first required column the row lacks.
func missingField(row service.BulkImportRow) string {
	switch {
	case row.Name == "":
		return "business name"
	case row.Category == "":
		return "category"
	case row.Address == "":
		return "address"
	}
	return ""
}
