package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/logger"
)

const (
	valueInputOption = "RAW"
	insertDataOption = "INSERT_ROWS"
)

type client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
}

func NewClient(ctx context.Context, spreadsheetID, sheetRange string, opts ...option.ClientOption) (*client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
	}, nil
}

// Append adds the row after the last one of the sheet. Provider errors are
// logged and reported as false.
func (c *client) Append(ctx context.Context, row domain.LedgerRow) bool {
	cells := row.Cells()
	values := make([]interface{}, 0, len(cells))
	for _, cell := range cells {
		values = append(values, cell)
	}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetRange, &sheetsapi.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		slog.ErrorContext(ctx, "Appending ledger row", "spreadsheetID", c.spreadsheetID, logger.Err(err))
		return false
	}

	var updatedRange string
	if resp.Updates != nil {
		updatedRange = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Ledger row appended", "range", updatedRange)
	return true
}
