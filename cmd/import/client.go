package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lokal-app/lokal-backend/internal/app/service"
	apperrors "github.com/lokal-app/lokal-backend/internal/errors"
)

const bulkImportPath = "/businesses/bulk-import"

// apiImporter submits rows to a running server instead of the database.
type apiImporter struct {
	baseURL string
	strict  bool
	client  *http.Client
}

func newAPIImporter(baseURL string, strict bool) *apiImporter {
	return &apiImporter{
		baseURL: strings.TrimRight(baseURL, "/"),
		strict:  strict,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *apiImporter) Import(ctx context.Context, row service.BulkImportRow) (*service.BulkImportResult, error) {
	body, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}

	url := a.baseURL + bulkImportPath
	if a.strict {
		url += "?strict=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp apperrors.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("error %d: %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result service.BulkImportResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
