package domain

import "time"

// DashboardSnapshot is the full derived month view. It is recomputed from
// habit and tracking state on every request and never persisted.
type DashboardSnapshot struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	MonthName   string          `json:"month_name"`
	DaysInMonth int             `json:"days_in_month"`
	Habits      []HabitOverview `json:"habits"`
	Weeks       []Week          `json:"weeks"`
	Overall     OverallProgress `json:"overall"`
}

// HabitOverview carries one habit plus its dense per-day projection for
// the month (absent rows filled in as pending).
type HabitOverview struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Goal           int       `json:"goal"`
	Color          string    `json:"color"`
	Tracking       []DayCell `json:"tracking"`
	MonthCompleted int       `json:"month_completed"`
	CurrentStreak  int       `json:"current_streak"`
}

type DayCell struct {
	Date        string `json:"date"`
	Day         int    `json:"day"`
	Completed   bool   `json:"completed"`
	Failed      bool   `json:"failed"`
	StreakCount int    `json:"streak_count"`
}

// Week is a chunk of 1-7 consecutive days closing on Saturday or at
// month-end. The first week of a month may be short; there is no padding.
type Week struct {
	WeekNumber int          `json:"week_number"`
	Days       []DaySummary `json:"days"`
	Completed  int          `json:"completed"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
}

type DaySummary struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	Weekday    string `json:"weekday"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type OverallProgress struct {
	Completed  int `json:"completed"`
	Goal       int `json:"goal"`
	Left       int `json:"left"`
	Percentage int `json:"percentage"`
}

type DashboardInput struct {
	Year  int
	Month int
	Today time.Time
}
