// Package timeline computes the geometry of the board's Gantt view. It is a
// pure function of the (already filtered) bet list and today's date: no
// stored state, no side effects.
package timeline

import (
	"time"

	"betboard/internal/domain"
)

// Category is the visual bucket a bar falls into. Overdue bets and Blocked
// bets share the alert category, and overdue takes precedence over the
// status-based category.
type Category string

const (
	CategoryScheduled Category = "scheduled" // Open
	CategoryActive    Category = "active"    // In Progress
	CategoryAlert     Category = "alert"     // Blocked or overdue
	CategoryDone      Category = "done"
)

const (
	// minTotalDays is the smallest axis span, so near-term boards still
	// render a readable month.
	minTotalDays = 30
	// axisPadDays extends the axis past the latest due date.
	axisPadDays = 14

	minBarWidth = 2.0
	maxBarWidth = 95.0

	markerMinPos = 10.0
	markerMaxPos = 95.0
)

// Bar is the renderable segment for one bet. Position is always 0: bars
// represent time remaining from today, not time elapsed since creation.
type Bar struct {
	Bet      domain.Bet
	Position float64
	Width    float64
	Overdue  bool
	Category Category
}

// Marker is a biweekly Monday gridline on the axis.
type Marker struct {
	Date     time.Time
	Position float64
	Label    string
}

// Layout is the computed geometry for one render.
type Layout struct {
	AxisStart time.Time
	AxisEnd   time.Time
	TotalDays int
	Markers   []Marker
	Bars      []Bar
}

// Compute maps bets and "today" to axis, gridlines, and bars. An empty bet
// list yields an empty layout: no axis is drawn.
func Compute(bets []domain.Bet, today time.Time) Layout {
	if len(bets) == 0 {
		return Layout{}
	}
	start := Midnight(today)

	latest := start
	for _, b := range bets {
		due, err := ParseDay(b.When)
		if err != nil {
			continue
		}
		if due.After(latest) {
			latest = due
		}
	}

	totalDays := DaysBetween(start, latest) + axisPadDays
	if totalDays < minTotalDays {
		totalDays = minTotalDays
	}
	end := AddDays(start, totalDays)

	layout := Layout{
		AxisStart: start,
		AxisEnd:   end,
		TotalDays: totalDays,
	}

	// Gridlines start from the Monday of the week after today so they never
	// crowd the "today" marker, and only every second Monday is kept.
	week := WeekCommencing(AddDays(start, 7))
	for count := 0; !week.After(end); count++ {
		pos := float64(DaysBetween(start, week)) / float64(totalDays) * 100
		if pos >= markerMinPos && pos <= markerMaxPos && count%2 == 0 {
			layout.Markers = append(layout.Markers, Marker{
				Date:     week,
				Position: pos,
				Label:    FormatDay(week),
			})
		}
		week = AddDays(week, 7)
	}

	for _, b := range bets {
		days := 0
		overdue := false
		if due, err := ParseDay(b.When); err == nil {
			days = DaysBetween(start, due)
			overdue = due.Before(start) && b.Status != domain.StatusDone
		}
		width := clamp(float64(days)/float64(totalDays)*100, minBarWidth, maxBarWidth)
		layout.Bars = append(layout.Bars, Bar{
			Bet:      b,
			Position: 0,
			Width:    width,
			Overdue:  overdue,
			Category: categorize(b.Status, overdue),
		})
	}
	return layout
}

func categorize(status string, overdue bool) Category {
	if overdue {
		return CategoryAlert
	}
	switch status {
	case domain.StatusDone:
		return CategoryDone
	case domain.StatusInProgress:
		return CategoryActive
	case domain.StatusBlocked:
		return CategoryAlert
	default:
		return CategoryScheduled
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
