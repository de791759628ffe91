package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
)

// streakLookbackDays is how far before the viewed month the service reads
// tracking history so streaks survive month boundaries.
const streakLookbackDays = 90

var ErrInvalidMonth = fmt.Errorf("month out of range: %w", domain.ErrInvalidScope)

type DashboardService struct {
	habitRepo    domain.HabitRepository
	trackingRepo domain.TrackingRepository
	now          func() time.Time
}

func NewDashboardService(habitRepo domain.HabitRepository, trackingRepo domain.TrackingRepository) *DashboardService {
	return &DashboardService{
		habitRepo:    habitRepo,
		trackingRepo: trackingRepo,
		now:          time.Now,
	}
}

// GetDashboard assembles the month view for (year, month). It takes a
// point-in-time read of the habit set and tracking rows, then hands
// everything to the pure aggregation in BuildSnapshot.
func (s *DashboardService) GetDashboard(ctx context.Context, year, month int) (*domain.DashboardSnapshot, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	habits, err := s.habitRepo.ListByScope(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("dashboard: listing habits: %w", err)
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	lookbackStart := monthStart.AddDate(0, 0, -streakLookbackDays)

	rows, err := s.trackingRepo.ListRange(ctx, lookbackStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("dashboard: listing tracking rows: %w", err)
	}

	monthRows := make(map[string][]*domain.TrackingRecord)
	history := make(map[string][]*domain.TrackingRecord)
	for _, r := range rows {
		d := domain.Day(r.Date)
		history[r.HabitID] = append(history[r.HabitID], r)
		if !d.Before(monthStart) && !d.After(monthEnd) {
			monthRows[r.HabitID] = append(monthRows[r.HabitID], r)
		}
	}

	return BuildSnapshot(year, month, habits, monthRows, history, s.now().UTC())
}

// BuildSnapshot is the dashboard aggregator. It is a pure function: same
// inputs, same snapshot, no storage access.
//
// monthRows must only contain rows dated inside the addressed month; rows
// outside it are a caller error. history may span any range and is only
// consulted for streaks.
func BuildSnapshot(year, month int, habits []*domain.Habit, monthRows, history map[string][]*domain.TrackingRecord, today time.Time) (*domain.DashboardSnapshot, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	daysInMonth := monthEnd.Day()
	today = domain.Day(today)

	for habitID, rows := range monthRows {
		for _, r := range rows {
			d := domain.Day(r.Date)
			if d.Before(monthStart) || d.After(monthEnd) {
				return nil, fmt.Errorf("tracking row for habit %s dated %s outside %04d-%02d: %w",
					habitID, d.Format(domain.DateLayout), year, month, domain.ErrInvalidScope)
			}
		}
	}

	overviews := make([]domain.HabitOverview, 0, len(habits))
	totalCompleted := 0

	for _, h := range habits {
		byDay := make(map[int]*domain.TrackingRecord, len(monthRows[h.ID]))
		for _, r := range monthRows[h.ID] {
			byDay[domain.Day(r.Date).Day()] = r
		}

		ov := domain.HabitOverview{
			ID:       h.ID,
			Name:     h.Name,
			Goal:     h.Goal,
			Color:    h.Color,
			Tracking: make([]domain.DayCell, 0, daysInMonth),
		}

		for day := 1; day <= daysInMonth; day++ {
			date := monthStart.AddDate(0, 0, day-1)
			cell := domain.DayCell{
				Date: date.Format(domain.DateLayout),
				Day:  day,
			}
			if r, ok := byDay[day]; ok {
				cell.Completed = r.Completed
				cell.Failed = r.Failed
				cell.StreakCount = r.StreakCount
			}
			if cell.Completed {
				ov.MonthCompleted++
			}
			ov.Tracking = append(ov.Tracking, cell)
		}

		ov.CurrentStreak = domain.ComputeStreak(streakReference(today, monthEnd, history[h.ID]), history[h.ID])

		totalCompleted += ov.MonthCompleted
		overviews = append(overviews, ov)
	}

	weeks := buildWeeks(monthStart, daysInMonth, overviews)

	goal := len(habits) * daysInMonth

	return &domain.DashboardSnapshot{
		Year:        year,
		Month:       month,
		MonthName:   monthStart.Month().String(),
		DaysInMonth: daysInMonth,
		Habits:      overviews,
		Weeks:       weeks,
		Overall: domain.OverallProgress{
			Completed:  totalCompleted,
			Goal:       goal,
			Left:       goal - totalCompleted,
			Percentage: percentage(totalCompleted, goal),
		},
	}, nil
}

// buildWeeks walks days 1..daysInMonth grouping them into chunks that close
// on Saturday or at month-end. Weeks are not padded to calendar alignment,
// so the first chunk may hold anywhere from one to seven days.
func buildWeeks(monthStart time.Time, daysInMonth int, habits []domain.HabitOverview) []domain.Week {
	weeks := []domain.Week{}
	current := domain.Week{WeekNumber: 1}

	for day := 1; day <= daysInMonth; day++ {
		date := monthStart.AddDate(0, 0, day-1)

		dayCompleted := 0
		for _, h := range habits {
			if h.Tracking[day-1].Completed {
				dayCompleted++
			}
		}
		dayTotal := len(habits)

		current.Days = append(current.Days, domain.DaySummary{
			Date:       date.Format(domain.DateLayout),
			Day:        day,
			Weekday:    date.Format("Mon"),
			Completed:  dayCompleted,
			Total:      dayTotal,
			Percentage: percentage(dayCompleted, dayTotal),
		})
		current.Completed += dayCompleted
		current.Total += dayTotal

		if date.Weekday() == time.Saturday || day == daysInMonth {
			current.Percentage = percentage(current.Completed, current.Total)
			weeks = append(weeks, current)
			current = domain.Week{WeekNumber: len(weeks) + 1}
		}
	}

	return weeks
}

// streakReference picks the date the streak is evaluated at: the latest
// tracked date not after today, capped at month-end for months fully in
// the past. With no tracked dates at all it falls back to the cap itself.
func streakReference(today, monthEnd time.Time, rows []*domain.TrackingRecord) time.Time {
	limit := today
	if monthEnd.Before(today) {
		limit = monthEnd
	}

	var latest time.Time
	for _, r := range rows {
		d := domain.Day(r.Date)
		if !d.After(limit) && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return limit
	}
	return latest
}

func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
