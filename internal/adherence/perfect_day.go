package adherence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
)

const (
	// PerfectDayBonusXP is awarded for each day where every dose was taken.
	PerfectDayBonusXP = 50

	// PerfectDayLookbackDays is how many calendar days before today are scanned.
	PerfectDayLookbackDays = 30
)

// lookbackStart is midnight in loc PerfectDayLookbackDays before today, so
// the oldest scanned day is loaded whole.
func lookbackStart(now time.Time, loc *time.Location) time.Time {
	return startOfDay(now, loc).AddDate(0, 0, -PerfectDayLookbackDays)
}

// WindowingMode selects which date decides whether a perfect-day bonus
// also counts toward weekly and monthly XP.
type WindowingMode string

const (
	// WindowByToday compares today's date against the windows, so every
	// bonus in the lookback lands in weekly and monthly XP. This is the
	// behavior clients currently display.
	WindowByToday WindowingMode = "today"

	// WindowByBonusDay compares the perfect day itself against the windows.
	WindowByBonusDay WindowingMode = "bonus_day"
)

// ParseWindowingMode accepts "today" and "bonus_day".
func ParseWindowingMode(s string) (WindowingMode, error) {
	switch WindowingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", WindowByToday:
		return WindowByToday, nil
	case WindowByBonusDay:
		return WindowByBonusDay, nil
	default:
		return "", fmt.Errorf("invalid perfect-day windowing mode: %q", s)
	}
}

// PerfectDays groups doses by the calendar day of due_at in loc and
// returns, in ascending order, the days where every dose was taken.
func PerfectDays(doses []domain.DoseInstance, loc *time.Location) []time.Time {
	type tally struct{ taken, total int }
	byDay := make(map[time.Time]*tally)

	for _, d := range doses {
		day := startOfDay(d.DueAt, loc)
		c, ok := byDay[day]
		if !ok {
			c = &tally{}
			byDay[day] = c
		}
		c.total++
		if d.Status == domain.DoseTaken {
			c.taken++
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day, c := range byDay {
		if c.total > 0 && c.taken == c.total {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return days
}

// ApplyPerfectDayBonus adds PerfectDayBonusXP per perfect day to t.
func ApplyPerfectDayBonus(t Totals, days []time.Time, w Windows, now time.Time, mode WindowingMode) Totals {
	for _, day := range days {
		at := now
		if mode == WindowByBonusDay {
			at = day
		}
		w.add(&t, at, PerfectDayBonusXP)
	}
	return t
}

// CurrentStreak counts consecutive perfect days ending today, or ending
// yesterday when today is not (yet) perfect.
func CurrentStreak(days []time.Time, now time.Time, loc *time.Location) int {
	perfect := make(map[time.Time]bool, len(days))
	for _, d := range days {
		perfect[startOfDay(d, loc)] = true
	}

	cursor := startOfDay(now, loc)
	if !perfect[cursor] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for perfect[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
