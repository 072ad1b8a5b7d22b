package expiry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/reconcile"
)

// ErrNoNotifier is returned when a summary cannot be delivered.
var ErrNoNotifier = errors.New("no notifier configured")

const summaryDays = 7

// WeeklySummary describes the past seven days of sweeps and the current
// stock split by urgency bucket.
func (s *Service) WeeklySummary(ctx context.Context) (string, error) {
	end := s.today()
	start := end.AddDays(-(summaryDays - 1))

	var b strings.Builder
	fmt.Fprintf(&b, "Pantry summary (%s to %s)\n", start, end)

	if s.journal != nil {
		reports, err := s.journal.ReadSweeps(ctx, start)
		if err != nil {
			return "", fmt.Errorf("load sweep journal: %w", err)
		}

		var runs, disabled, notified, failed int
		for _, r := range reports {
			if r.Date.After(end) {
				continue
			}
			runs++
			disabled += r.Disabled
			notified += r.Notified
			failed += r.Failed
		}

		if runs == 0 {
			b.WriteString("Sweeps: no runs recorded.\n")
		} else {
			fmt.Fprintf(&b, "Sweeps: %d runs, %d items disabled, %d warnings", runs, disabled, notified)
			if failed > 0 {
				fmt.Fprintf(&b, ", %d failures", failed)
			}
			b.WriteString(".\n")
		}
	}

	stocks, err := s.api.ListStocks(ctx)
	if err != nil {
		s.logger.Warn("summary without stock snapshot", zap.Error(err))
		b.WriteString("Stock: unavailable.")
		return b.String(), nil
	}

	counts := map[reconcile.Bucket]int{}
	var soon []string
	for _, stock := range stocks {
		if stock.Disable {
			continue
		}
		u := reconcile.Classify(end, stock.ExpirationDate)
		counts[u.Bucket]++
		if u.Bucket == reconcile.BucketExpiringSoon {
			soon = append(soon, stock.Name())
		}
	}

	fmt.Fprintf(&b, "Stock: %d fresh, %d expiring soon, %d expired, %d without date.",
		counts[reconcile.BucketFresh], counts[reconcile.BucketExpiringSoon], counts[reconcile.BucketExpired], counts[reconcile.BucketUnknown])
	if len(soon) > 0 {
		fmt.Fprintf(&b, "\nUse soon: %s", strings.Join(soon, ", "))
	}

	return b.String(), nil
}

// SendWeeklySummary builds the weekly summary and pushes it to the household.
func (s *Service) SendWeeklySummary(ctx context.Context) error {
	if s.notifier == nil {
		return ErrNoNotifier
	}

	summary, err := s.WeeklySummary(ctx)
	if err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, summary); err != nil {
		return fmt.Errorf("send weekly summary: %w", err)
	}
	return nil
}
