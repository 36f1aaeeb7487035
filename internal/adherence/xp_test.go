package adherence

import (
	"testing"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
)

func intp(v int) *int { return &v }

func TestLevelWidths(t *testing.T) {
	want := map[int]int{1: 100, 2: 110, 3: 121, 4: 133, 5: 146}
	for level, w := range want {
		if got := LevelWidth(level); got != w {
			t.Fatalf("LevelWidth(%d)=%d, want %d", level, got, w)
		}
	}
	for level := 2; level < 60; level++ {
		if LevelWidth(level) < LevelWidth(level-1) {
			t.Fatalf("LevelWidth(%d) < LevelWidth(%d)", level, level-1)
		}
	}
}

func TestResolveLevelScenarios(t *testing.T) {
	tests := []struct {
		total, level, current, next int
	}{
		{0, 1, 0, 100},
		{99, 1, 99, 100},
		{100, 2, 0, 110},
		{209, 2, 109, 110},
		{210, 3, 0, 121},
		{250, 3, 40, 121},
	}
	for _, tt := range tests {
		level, current, next := ResolveLevel(tt.total)
		if level != tt.level || current != tt.current || next != tt.next {
			t.Fatalf("ResolveLevel(%d)=(%d,%d,%d), want (%d,%d,%d)",
				tt.total, level, current, next, tt.level, tt.current, tt.next)
		}
	}
}

func TestResolveLevelConsistency(t *testing.T) {
	for total := 0; total <= 20000; total += 37 {
		level, current, next := ResolveLevel(total)
		if level < 1 || current < 0 || current >= next {
			t.Fatalf("ResolveLevel(%d)=(%d,%d,%d) violates bounds", total, level, current, next)
		}
		l2, c2, n2 := ResolveLevel(total)
		if l2 != level || c2 != current || n2 != next {
			t.Fatalf("ResolveLevel(%d) not deterministic", total)
		}
	}
}

func TestOnTimeBonusBoundary(t *testing.T) {
	taken := func(delay *int) domain.DoseInstance {
		return domain.DoseInstance{Status: domain.DoseTaken, DelayMinutes: delay}
	}

	tests := []struct {
		name string
		dose domain.DoseInstance
		want int
	}{
		{"exactly 30 minutes late", taken(intp(30)), 15},
		{"31 minutes late", taken(intp(31)), 10},
		{"very early", taken(intp(-600)), 15},
		{"no delay recorded", taken(nil), 10},
		{"skipped dose", domain.DoseInstance{Status: domain.DoseSkipped, DelayMinutes: intp(0)}, 0},
	}
	for _, tt := range tests {
		if got := DoseAward(tt.dose); got != tt.want {
			t.Fatalf("%s: award=%d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestAccumulateWindows(t *testing.T) {
	// Wednesday; week starts Sunday March 9, month starts March 1.
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	w := NewWindows(now, time.UTC, time.Sunday)

	if want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC); !w.WeekStart.Equal(want) {
		t.Fatalf("week start=%v, want %v", w.WeekStart, want)
	}

	at := func(day int) *time.Time {
		v := time.Date(2025, 3, day, 8, 0, 0, 0, time.UTC)
		return &v
	}
	doses := []domain.DoseInstance{
		// week and month
		{Status: domain.DoseTaken, TakenAt: at(11), DelayMinutes: intp(5)},
		// month only, late
		{Status: domain.DoseTaken, TakenAt: at(3), DelayMinutes: intp(45)},
		// no taken_at, windowed by due_at: neither
		{Status: domain.DoseTaken, DueAt: time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC)},
	}

	got := Accumulate(doses, w)
	want := Totals{Total: 35, Weekly: 15, Monthly: 25}
	if got != want {
		t.Fatalf("Accumulate=%+v, want %+v", got, want)
	}
}

func TestWeekStartMonday(t *testing.T) {
	sunday := time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)
	w := NewWindows(sunday, time.UTC, time.Monday)
	if want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC); !w.WeekStart.Equal(want) {
		t.Fatalf("week start=%v, want %v", w.WeekStart, want)
	}
}
