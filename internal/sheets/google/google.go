// Package google mirrors date buckets into a Google Sheets tab, one row per
// transaction.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gagyebu/internal/core"
	ports "gagyebu/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	mu      sync.Mutex
	sheetID *int64
}

var (
	_ ports.Mirror       = (*Client)(nil)
	_ ports.BucketReader = (*Client)(nil)
)

// New builds a client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = "Ledger"
	}

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets mirror ready", "sheet", name, "component", "sheets")
	return &Client{svc: svc, spreadsheetID: id, sheetName: name}, nil
}

// credentials prefers inline JSON, then the file, then GOOGLE_APPLICATION_CREDENTIALS.
func credentials(cfg Config) ([]byte, error) {
	if j := strings.TrimSpace(cfg.ServiceAccountJSON); j != "" {
		return []byte(j), nil
	}
	path := strings.TrimSpace(cfg.ServiceAccountFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// ReplaceBucket deletes every row for date and appends items in their place.
func (c *Client) ReplaceBucket(ctx context.Context, date core.Date, items []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	if len(resp.Values) == 0 {
		if err := c.appendRows(ctx, [][]any{header}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if stale := matchingRows(resp.Values, date); len(stale) > 0 {
		if err := c.deleteRows(ctx, stale); err != nil {
			return err
		}
	}

	if len(items) > 0 {
		if err := c.appendRows(ctx, encodeRows(date, items)); err != nil {
			return fmt.Errorf("append %s: %w", date, err)
		}
	}

	slog.InfoContext(ctx, "Bucket mirrored to sheet",
		"date", date.String(), "rows", len(items), "component", "sheets")
	return nil
}

// ReadBucket returns the rows currently mirrored for date.
func (c *Client) ReadBucket(ctx context.Context, date core.Date) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return decodeRows(resp.Values, date), nil
}

func (c *Client) appendRows(ctx context.Context, rows [][]any) error {
	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}

// deleteRows removes rows by 0-based index. indices must be descending.
func (c *Client) deleteRows(ctx context.Context, indices []int64) error {
	sheetID, err := c.lookupSheetID(ctx)
	if err != nil {
		return err
	}
	reqs := make([]*gsheet.Request, 0, len(indices))
	for _, i := range indices {
		reqs = append(reqs, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: i,
					EndIndex:   i + 1,
					// Zero is a valid sheet id and row index.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete %d rows: %w", len(indices), err)
	}
	return nil
}

func (c *Client) lookupSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetID != nil {
		return *c.sheetID, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			id := sh.Properties.SheetId
			c.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheetName)
}
