package adherence

import (
	"math"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
)

const (
	// BaseDoseXP is awarded for every taken dose.
	BaseDoseXP = 10

	// OnTimeBonusXP is added when the dose was taken at most
	// OnTimeThresholdMinutes after it was due. Early doses qualify.
	OnTimeBonusXP          = 5
	OnTimeThresholdMinutes = 30

	// BaseLevelWidth is the XP width of level 1; each level is LevelGrowth wider.
	BaseLevelWidth = 100.0
	LevelGrowth    = 1.1
)

// Totals are overlapping running sums over the same taken doses.
type Totals struct {
	Total   int
	Weekly  int
	Monthly int
}

// Windows are the start instants of the current calendar week and month.
type Windows struct {
	WeekStart  time.Time
	MonthStart time.Time
}

// NewWindows computes the current week and month boundaries in loc.
func NewWindows(now time.Time, loc *time.Location, weekStart time.Weekday) Windows {
	day := startOfDay(now, loc)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7

	return Windows{
		WeekStart:  day.AddDate(0, 0, -back),
		MonthStart: time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc),
	}
}

func (w Windows) add(t *Totals, at time.Time, xp int) {
	t.Total += xp
	if !at.Before(w.WeekStart) {
		t.Weekly += xp
	}
	if !at.Before(w.MonthStart) {
		t.Monthly += xp
	}
}

// DoseAward returns the XP a single dose instance earns.
func DoseAward(d domain.DoseInstance) int {
	if d.Status != domain.DoseTaken {
		return 0
	}

	xp := BaseDoseXP
	if d.DelayMinutes != nil && *d.DelayMinutes <= OnTimeThresholdMinutes {
		xp += OnTimeBonusXP
	}
	return xp
}

// Accumulate sums dose awards into total, weekly and monthly XP.
func Accumulate(doses []domain.DoseInstance, w Windows) Totals {
	var t Totals
	for _, d := range doses {
		xp := DoseAward(d)
		if xp == 0 {
			continue
		}
		w.add(&t, d.EventTime(), xp)
	}
	return t
}

// LevelWidth returns the XP needed to clear the given level.
func LevelWidth(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(BaseLevelWidth * math.Pow(LevelGrowth, float64(level-1))))
}

// ResolveLevel consumes totalXP against successive level widths.
// It guarantees level >= 1 and 0 <= currentXP < xpToNextLevel.
func ResolveLevel(totalXP int) (level, currentXP, xpToNextLevel int) {
	if totalXP < 0 {
		totalXP = 0
	}

	level = 1
	remaining := totalXP
	for {
		width := LevelWidth(level)
		if remaining < width {
			return level, remaining, width
		}
		remaining -= width
		level++
	}
}

// State maps totals to the XPState exposed to clients.
func State(t Totals) domain.XPState {
	level, current, next := ResolveLevel(t.Total)

	return domain.XPState{
		CurrentXP:     current,
		Level:         level,
		XPToNextLevel: next,
		TotalXP:       t.Total,
		WeeklyXP:      t.Weekly,
		MonthlyXP:     t.Monthly,
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
