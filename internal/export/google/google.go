package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	ports "feesbook/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base register name without year (e.g. "FeeRegister"); code prefixes year.
	registerBase string
}

// Ensure interface conformance
var _ ports.RegisterAppender = (*Client)(nil)

// New creates a Sheets client for the fee register using service
// account credentials. Exactly one of credentialsFile and
// credentialsJSON must be set.
func New(ctx context.Context, spreadsheetID, registerBase, credentialsFile, credentialsJSON string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	registerBase = strings.TrimSpace(registerBase)
	if registerBase == "" {
		registerBase = "FeeRegister"
	}

	svc, err := newSheetsService(ctx, credentialsFile, credentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		registerBase:  registerBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, credentialsFile, credentialsJSON string) (*gsheet.Service, error) {
	var raw []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		raw = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		var err error
		raw, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(raw),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append writes one register entry to the year's register sheet and
// returns a cell-range reference to the written row.
func (c *Client) Append(ctx context.Context, e ports.RegisterEntry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(e.ReceiptNo) == "" {
		return "", errors.New("register entry missing receipt number")
	}

	sheetName := yearPrefixedName(c.registerBase, e.Year)

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", sheetName, err)
	}

	// Calculate next row (number of existing rows + 1)
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:J%d", sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.ReceiptNo,
		e.PaymentDate,
		e.RollNo,
		e.StudentName,
		e.Class,
		e.Month,
		e.Year,
		e.Amount,
		e.Mode,
		e.Remarks,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update A:J in sheet %s: %w", sheetName, err)
	}

	return dataRange, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
