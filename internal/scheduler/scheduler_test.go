package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/expiry"
)

type stubJobs struct {
	sweeps    int
	summaries int
	sweepErr  error
	sumErr    error
}

func (s *stubJobs) RunSweep(context.Context) (*models.SweepReport, error) {
	s.sweeps++
	if s.sweepErr != nil {
		return nil, s.sweepErr
	}
	return &models.SweepReport{}, nil
}

func (s *stubJobs) SendWeeklySummary(context.Context) error {
	s.summaries++
	return s.sumErr
}

var defaultSchedule = config.ScheduleConfig{SweepCron: "1 0 * * *", SummaryCron: "0 20 * * 5", Timezone: "Asia/Bangkok"}

func TestRegisterSchedulesInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	s := NewScheduler(defaultSchedule, loc, &stubJobs{}, nil)
	require.NoError(t, s.Register())

	entries := s.Entries()
	require.Len(t, entries, 2)

	// Thursday 2024-04-04 12:00 in Bangkok.
	from := time.Date(2024, 4, 4, 12, 0, 0, 0, loc)
	assert.WithinDuration(t, time.Date(2024, 4, 5, 0, 1, 0, 0, loc), entries[0].Schedule.Next(from), 0)
	assert.WithinDuration(t, time.Date(2024, 4, 5, 20, 0, 0, 0, loc), entries[1].Schedule.Next(from), 0)
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	cfg := defaultSchedule
	cfg.SweepCron = "every day"
	s := NewScheduler(cfg, nil, &stubJobs{}, nil)
	assert.Error(t, s.Register())

	cfg = defaultSchedule
	cfg.SummaryCron = "61 * * * *"
	s = NewScheduler(cfg, nil, &stubJobs{}, nil)
	assert.Error(t, s.Register())
}

func TestJobsInvokeServices(t *testing.T) {
	jobs := &stubJobs{}
	s := NewScheduler(defaultSchedule, nil, jobs, nil)

	s.runSweep()
	s.sendWeeklySummary()
	assert.Equal(t, 1, jobs.sweeps)
	assert.Equal(t, 1, jobs.summaries)

	jobs.sweepErr = errors.New("upstream down")
	jobs.sumErr = expiry.ErrNoNotifier
	assert.NotPanics(t, s.runSweep)
	assert.NotPanics(t, s.sendWeeklySummary)
	assert.Equal(t, 2, jobs.sweeps)
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(defaultSchedule, nil, &stubJobs{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
