package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// Journal records one row per expiry sweep:
// date | scanned | disabled | notified | failed | expiring items.
type Journal struct {
	store  RowStore
	logger *zap.Logger
}

// NewJournal wraps a row store. A nil store yields a disabled journal.
func NewJournal(store RowStore, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{store: store, logger: logger}
}

func (j *Journal) Enabled() bool {
	return j != nil && j.store != nil
}

// AppendSweep writes a sweep report as a new journal row.
func (j *Journal) AppendSweep(ctx context.Context, report models.SweepReport) error {
	if !j.Enabled() {
		return nil
	}

	row := []interface{}{
		report.Date.String(),
		report.Scanned,
		report.Disabled,
		report.Notified,
		report.Failed,
		strings.Join(report.ExpiringItems, ", "),
	}
	if err := j.store.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append sweep %s: %w", report.Date, err)
	}
	return nil
}

// ReadSweeps returns the journal rows dated on or after since, in sheet order.
// Rows that cannot be parsed, such as a header row, are skipped.
func (j *Journal) ReadSweeps(ctx context.Context, since civil.Date) ([]models.SweepReport, error) {
	if !j.Enabled() {
		return nil, nil
	}

	rows, err := j.store.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sweeps: %w", err)
	}

	var reports []models.SweepReport
	for i, row := range rows {
		report, err := parseSweepRow(row)
		if err != nil {
			j.logger.Debug("skipping journal row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		if report.Date.Before(since) {
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func parseSweepRow(row []interface{}) (models.SweepReport, error) {
	var report models.SweepReport
	if len(row) < 5 {
		return report, fmt.Errorf("expected at least 5 cells, got %d", len(row))
	}

	date, err := civil.ParseDate(cell(row, 0))
	if err != nil {
		return report, fmt.Errorf("parse date: %w", err)
	}
	report.Date = date

	counts := []*int{&report.Scanned, &report.Disabled, &report.Notified, &report.Failed}
	for i, dst := range counts {
		n, err := strconv.Atoi(cell(row, i+1))
		if err != nil {
			return report, fmt.Errorf("parse cell %d: %w", i+1, err)
		}
		*dst = n
	}

	if items := cell(row, 5); items != "" {
		for _, item := range strings.Split(items, ",") {
			if item = strings.TrimSpace(item); item != "" {
				report.ExpiringItems = append(report.ExpiringItems, item)
			}
		}
	}
	return report, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}
