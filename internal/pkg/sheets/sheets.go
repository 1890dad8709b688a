package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/revitalife/revitalife-shop/internal/pkg/env"
)

// DefaultRange is the tab and columns newsletter signups are appended to.
const DefaultRange = "Revitalife!A:D"

// Appender appends one row to a spreadsheet.
type Appender interface {
	AppendRow(ctx context.Context, row []interface{}) error
}

// Client appends rows to a Google Sheet via a service account.
type Client struct {
	service       *sheetsapi.Service
	spreadsheetID string
	writeRange    string
}

// NewClientFromEnv builds the sheets client from the service account
// credentials in the environment.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	email := env.GetEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", "")
	key := env.GetEnv("GOOGLE_PRIVATE_KEY", "")
	sheetID := env.GetEnv("GOOGLE_SHEET_ID", "")
	if email == "" || key == "" || sheetID == "" {
		return nil, errors.New("google sheets credentials are not configured")
	}

	// Keys arriving through env files carry escaped newlines.
	key = strings.ReplaceAll(key, `\n`, "\n")

	conf := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(key),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	service, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: sheetID,
		writeRange:    env.GetEnv("GOOGLE_SHEET_RANGE", DefaultRange),
	}, nil
}

// AppendRow appends a single row after the last row of the configured
// range.
func (c *Client) AppendRow(ctx context.Context, row []interface{}) error {
	values := &sheetsapi.ValueRange{Values: [][]interface{}{row}}
	_, err := c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, c.writeRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to sheet: %w", err)
	}
	return nil
}
