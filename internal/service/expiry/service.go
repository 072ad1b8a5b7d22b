package expiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/domain/reconcile"
	"github.com/mamadbah2/pantry/internal/repository/mongodb"
)

// ErrNotFound is returned when a notification does not exist.
var ErrNotFound = errors.New("notification not found")

// StockAPI is the part of the pantry backend the sweep needs.
type StockAPI interface {
	ListStocks(ctx context.Context) ([]models.StockRecord, error)
	UpdateStock(ctx context.Context, stockID int64, req models.StockWriteRequest) (*models.StockRecord, error)
}

// Journal persists sweep reports.
type Journal interface {
	AppendSweep(ctx context.Context, report models.SweepReport) error
	ReadSweeps(ctx context.Context, since civil.Date) ([]models.SweepReport, error)
}

// Notifier pushes a text message to the household.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Service runs the daily expiry sweep and serves the notification inbox.
type Service struct {
	api      StockAPI
	store    mongodb.NotificationRepository
	journal  Journal
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires the expiry service. journal and notifier may be nil.
func NewService(api StockAPI, store mongodb.NotificationRepository, journal Journal, notifier Notifier, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		api:      api,
		store:    store,
		journal:  journal,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Service) today() civil.Date {
	return civil.DateOf(s.now().In(s.loc))
}

// RunSweep classifies every active stock row against today. Expired rows are
// disabled and rows expiring in exactly four days get one notification each.
// Per-row failures are counted and logged; only a failed stock listing aborts.
func (s *Service) RunSweep(ctx context.Context) (*models.SweepReport, error) {
	today := s.today()

	stocks, err := s.api.ListStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stocks for sweep: %w", err)
	}

	report := &models.SweepReport{Date: today, Scanned: len(stocks)}
	disable := true

	for _, stock := range stocks {
		if stock.Disable {
			continue
		}

		urgency := reconcile.Classify(today, stock.ExpirationDate)
		switch {
		case reconcile.ShouldDisable(urgency):
			if _, err := s.api.UpdateStock(ctx, stock.ID, models.StockWriteRequest{Disable: &disable}); err != nil {
				report.Failed++
				s.logger.Error("failed to disable expired stock", zap.Int64("stock_id", stock.ID), zap.Error(err))
				continue
			}
			report.Disabled++

		case reconcile.NotifyDue(urgency):
			created, err := s.store.CreateIfAbsent(ctx, models.Notification{
				StockID:        stock.ID,
				IngredientName: stock.Name(),
				ExpirationDate: stock.ExpirationDate.String(),
			})
			if err != nil {
				report.Failed++
				s.logger.Error("failed to create expiry notification", zap.Int64("stock_id", stock.ID), zap.Error(err))
				continue
			}
			if created {
				report.Notified++
				report.ExpiringItems = append(report.ExpiringItems, stock.Name())
			}
		}
	}

	s.logger.Info("expiry sweep finished",
		zap.String("date", today.String()),
		zap.Int("scanned", report.Scanned),
		zap.Int("disabled", report.Disabled),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed))

	if s.journal != nil {
		if err := s.journal.AppendSweep(ctx, *report); err != nil {
			s.logger.Warn("failed to journal sweep", zap.Error(err))
		}
	}

	if s.notifier != nil && len(report.ExpiringItems) > 0 {
		if err := s.notifier.Notify(ctx, digest(report)); err != nil {
			s.logger.Warn("failed to send expiry digest", zap.Error(err))
		}
	}

	return report, nil
}

func digest(report *models.SweepReport) string {
	return fmt.Sprintf("Expiring on %s (%d days left): %s",
		report.Date.AddDays(reconcile.NotifyLeadDays), reconcile.NotifyLeadDays, strings.Join(report.ExpiringItems, ", "))
}

// Notifications returns the inbox newest first with its unread count.
func (s *Service) Notifications(ctx context.Context) (*models.NotificationList, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.store.UnreadCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	return &models.NotificationList{Notifications: list, UnreadCount: unread}, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.store.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}
