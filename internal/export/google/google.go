package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"compactbudget/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors budget snapshots into one sheet of a Google spreadsheet.
// Each write replaces the whole sheet, so the spreadsheet always shows the
// latest exported state of the month.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.SnapshotWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS (service account JSON).
// Optional: GOOGLE_SHEET_NAME (default "Budget").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Budget"
	}

	credentialsJSON, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}

	return New(ctx, spreadsheetID, sheetName, credentialsJSON)
}

// New creates a Sheets client from explicit settings.
func New(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*Client, error) {
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func credentialsFromEnv() ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON"))
	if inline != "" {
		return []byte(inline), nil
	}

	file := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// WriteSnapshot clears the sheet and writes the snapshot as one block:
// a totals header, the category lines, then the raw ledger.
func (c *Client) WriteSnapshot(ctx context.Context, snap export.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:F", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	values := snapshotRows(snap)
	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: values}

	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Snapshot exported to Google Sheets",
		"month_key", snap.MonthKey,
		"sheet", c.sheetName,
		"rows", len(values))

	return nil
}

func snapshotRows(snap export.Snapshot) [][]any {
	values := [][]any{
		{"Month", snap.MonthKey, "Generated", snap.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Earnings", snap.Totals.Earnings, "Spent", snap.Totals.TotalSpent,
			"Remaining", snap.Totals.Remaining},
		{},
		{"Section", "Category", "Budget", "Spent"},
	}
	for _, row := range snap.Categories {
		values = append(values, []any{string(row.Section), row.Name, row.Budget, row.Spent})
	}

	values = append(values, []any{}, []any{"Date", "Category", "Amount", "Note"})
	for _, e := range snap.Expenses {
		values = append(values, []any{e.Date.Format("2006-01-02"), e.Category, e.Amount, e.Note})
	}
	return values
}
