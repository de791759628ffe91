package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
	"github.com/comitanigiacomo/habit-grid/internal/core/services"
)

type HabitRepository interface {
	ListByScope(ctx context.Context, month, year int) ([]*domain.Habit, error)
}

type TrackingRepository interface {
	ListByHabitRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.TrackingRecord, error)
	Upsert(ctx context.Context, record *domain.TrackingRecord) error
}

// FailureSweep marks every past day without a completion as failed. It
// fires at midnight and once at startup, and each run re-walks the whole
// unswept backlog, so a missed tick is caught up on the next one.
type FailureSweep struct {
	habitRepo    HabitRepository
	trackingRepo TrackingRepository
	notifier     services.Notifier
	cron         *cron.Cron
	now          func() time.Time
}

func NewFailureSweep(hRepo HabitRepository, tRepo TrackingRepository, notifier services.Notifier) *FailureSweep {
	if notifier == nil {
		notifier = &services.LogNotifier{}
	}
	return &FailureSweep{
		habitRepo:    hRepo,
		trackingRepo: tRepo,
		notifier:     notifier,
		cron:         cron.New(),
		now:          time.Now,
	}
}

// Start schedules the midnight sweep and fires one immediate catch-up run.
func (w *FailureSweep) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc("0 0 * * *", func() {
		w.runLogged(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	log.Println("Failure sweep scheduled for 00:00 daily")

	go func() {
		w.runLogged(ctx)
		<-ctx.Done()
		w.cron.Stop()
		log.Println("Failure sweep stopped")
	}()

	return nil
}

func (w *FailureSweep) runLogged(ctx context.Context) {
	if err := w.Run(ctx, w.now()); err != nil {
		log.Printf("Failure sweep run aborted: %v (will retry next tick)", err)
	}
}

// Run sweeps every habit whose scope can still hold unswept days, writing
// failed=true for every day strictly before today that has no row or a
// still-pending row. Completed and already-failed rows are never touched,
// which makes the run idempotent. Per-row storage errors are logged and
// skipped so one bad write does not abort the batch.
func (w *FailureSweep) Run(ctx context.Context, now time.Time) error {
	today := domain.Day(now)
	yesterday := today.AddDate(0, 0, -1)

	habits, err := w.scopedHabits(ctx, today)
	if err != nil {
		return err
	}

	var missedYesterday []*domain.Habit

	for _, h := range habits {
		failedDays, err := w.sweepHabit(ctx, h, today)
		if err != nil {
			log.Printf("Sweep: habit %s (%s) skipped: %v", h.ID, h.Name, err)
			continue
		}
		for _, d := range failedDays {
			if d.Equal(yesterday) {
				missedYesterday = append(missedYesterday, h)
				break
			}
		}
	}

	if len(missedYesterday) > 0 {
		if err := w.notifier.NotifyFailures(ctx, yesterday, missedYesterday); err != nil {
			log.Printf("Sweep: notification failed: %v", err)
		}
	}

	log.Printf("Sweep completed for %s: %d habit(s) checked, %d missed yesterday",
		today.Format(domain.DateLayout), len(habits), len(missedYesterday))

	return nil
}

// sweepLookbackMonths bounds how many month scopes the catch-up walks,
// newest first. A year covers any realistic downtime without making the
// midnight run scan the whole habit history forever.
const sweepLookbackMonths = 12

// scopedHabits gathers the habits whose month window can still contain
// unswept days, walking back scope by scope so a restart after a long
// outage still backfills every missed month.
func (w *FailureSweep) scopedHabits(ctx context.Context, today time.Time) ([]*domain.Habit, error) {
	anchor := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	var habits []*domain.Habit
	for back := 0; back < sweepLookbackMonths; back++ {
		scope := anchor.AddDate(0, -back, 0)
		list, err := w.habitRepo.ListByScope(ctx, int(scope.Month()), scope.Year())
		if err != nil {
			return nil, err
		}
		habits = append(habits, list...)
	}
	return habits, nil
}

// sweepHabit walks the habit's scope window up to (and excluding) today
// and returns the dates it newly marked failed.
func (w *FailureSweep) sweepHabit(ctx context.Context, h *domain.Habit, today time.Time) ([]time.Time, error) {
	scopeStart := time.Date(h.Year, time.Month(h.Month), 1, 0, 0, 0, 0, time.UTC)
	scopeEnd := scopeStart.AddDate(0, 1, -1)

	to := today.AddDate(0, 0, -1)
	if scopeEnd.Before(to) {
		to = scopeEnd
	}
	if to.Before(scopeStart) {
		return nil, nil
	}

	rows, err := w.trackingRepo.ListByHabitRange(ctx, h.ID, scopeStart, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*domain.TrackingRecord, len(rows))
	for _, r := range rows {
		byDate[domain.Day(r.Date).Format(domain.DateLayout)] = r
	}

	var marked []time.Time

	for d := scopeStart; !d.After(to); d = d.AddDate(0, 0, 1) {
		rec, exists := byDate[d.Format(domain.DateLayout)]
		if exists && rec.State() != domain.StatePending {
			continue
		}

		failedRec, err := domain.NewTrackingRecord(h.ID, d, false, true, 0)
		if err != nil {
			return nil, err
		}
		if err := w.trackingRepo.Upsert(ctx, failedRec); err != nil {
			if errors.Is(err, context.Canceled) {
				return marked, err
			}
			log.Printf("Sweep: habit %s day %s not written: %v", h.ID, d.Format(domain.DateLayout), err)
			continue
		}
		marked = append(marked, d)
	}

	return marked, nil
}
