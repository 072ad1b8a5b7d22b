package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/pantry/internal/config"
)

// RowStore appends and reads rows of one fixed spreadsheet range.
type RowStore interface {
	AppendRow(ctx context.Context, values []interface{}) error
	ReadRows(ctx context.Context) ([][]interface{}, error)
}

// SheetRowStore implements RowStore using the official Google Sheets API.
type SheetRowStore struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewSheetRowStore builds a RowStore bound to cfg.JournalRange.
func NewSheetRowStore(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*SheetRowStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JournalRange == "" {
		return nil, errors.New("sheet range must not be empty")
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SheetRowStore{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.JournalRange,
		logger:        logger,
	}, nil
}

// AppendRow inserts values as a new row after the last row of the range.
func (s *SheetRowStore) AppendRow(ctx context.Context, values []interface{}) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", s.sheetRange, err)
	}

	s.logger.Debug("journal row appended", zap.String("range", s.sheetRange))
	return nil
}

// ReadRows fetches every row of the range.
func (s *SheetRowStore) ReadRows(ctx context.Context) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.sheetRange, err)
	}
	return resp.Values, nil
}
