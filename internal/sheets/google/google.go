package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ sheets.LedgerExporter = (*Client)(nil)

// Options configures the Sheets client. CredentialsJSON wins over
// CredentialsFile.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	TabPrefix       string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	tabPrefix     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	creds, err := readCredentials(opts)
	if err != nil {
		return nil, err
	}
	return newWithOptions(ctx, opts,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func newWithOptions(ctx context.Context, opts Options, clientOpts ...goption.ClientOption) (*Client, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: id, tabPrefix: opts.TabPrefix}, nil
}

func readCredentials(opts Options) ([]byte, error) {
	if j := strings.TrimSpace(opts.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	path := strings.TrimSpace(opts.CredentialsFile)
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

// ExportLedger rewrites the user's tab: it is created when missing, cleared
// and then filled with the header, one row per expense and a total.
func (c *Client) ExportLedger(ctx context.Context, user core.User, expenses []core.Expense) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tab := sheets.TabName(c.tabPrefix, user.ID)
	if err := c.ensureTab(ctx, tab); err != nil {
		return err
	}

	rng := quoteRange(tab, "A:E")
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	vr := &gsheet.ValueRange{Values: toValues(sheets.LedgerRows(expenses))}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteRange(tab, "A1"), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Exported ledger", "sheet_tab", tab, "user_id", user.ID, "rows", len(expenses))
	return nil
}

func (c *Client) ensureTab(ctx context.Context, tab string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", tab, err)
	}
	slog.InfoContext(ctx, "Created ledger tab", "sheet_tab", tab)
	return nil
}

// quoteRange builds an A1 range; tab names with spaces must be quoted.
func quoteRange(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		vals := make([]any, len(r))
		for j, v := range r {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}
