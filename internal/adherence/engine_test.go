package adherence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
)

type fakeHistory struct {
	doses []domain.DoseInstance
	err   error
	calls int
}

func (f *fakeHistory) ListTakenForUser(ctx context.Context, userID string) ([]domain.DoseInstance, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.DoseInstance
	for _, d := range f.doses {
		if d.Status == domain.DoseTaken {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeHistory) ListDueSince(ctx context.Context, userID string, since time.Time) ([]domain.DoseInstance, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.DoseInstance
	for _, d := range f.doses {
		if !d.DueAt.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func takenDose(due time.Time, delay int) domain.DoseInstance {
	at := due.Add(time.Duration(delay) * time.Minute)
	return domain.DoseInstance{DueAt: due, Status: domain.DoseTaken, TakenAt: &at, DelayMinutes: &delay}
}

func TestComputeProgress(t *testing.T) {
	now := time.Date(2025, 3, 12, 21, 0, 0, 0, time.UTC)
	day := func(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC) }

	hist := &fakeHistory{doses: []domain.DoseInstance{
		takenDose(day(11, 8), 10), // on time
		takenDose(day(11, 20), 5), // on time, day 11 perfect
		takenDose(day(12, 8), 90), // late
		{DueAt: day(12, 20), Status: domain.DoseMissed},
	}}

	eng := NewEngine(hist, WithClock(func() time.Time { return now }))
	snap, err := eng.Compute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// 15 + 15 + 10 from doses, 50 for the perfect day.
	if snap.TotalXP != 90 || snap.WeeklyXP != 90 || snap.MonthlyXP != 90 {
		t.Fatalf("xp=%+v, want 90 in every window", snap.XPState)
	}
	if snap.Level != 1 || snap.CurrentXP != 90 || snap.XPToNextLevel != 100 {
		t.Fatalf("level state=%+v", snap.XPState)
	}
	if snap.PerfectDays != 1 || snap.CurrentStreak != 1 {
		t.Fatalf("perfect=%d streak=%d, want 1 and 1", snap.PerfectDays, snap.CurrentStreak)
	}

	again, err := eng.Compute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Compute again: %v", err)
	}
	if again != snap {
		t.Fatalf("recompute changed result: %+v vs %+v", again, snap)
	}
}

func TestComputeEmptyHistory(t *testing.T) {
	eng := NewEngine(&fakeHistory{})
	snap, err := eng.Compute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if snap.Level != 1 || snap.CurrentXP != 0 || snap.XPToNextLevel != 100 || snap.TotalXP != 0 {
		t.Fatalf("empty history state=%+v", snap.XPState)
	}
}

func TestComputeReadFailure(t *testing.T) {
	eng := NewEngine(&fakeHistory{err: errors.New("network down")})
	if _, err := eng.Compute(context.Background(), "user-1"); !errors.Is(err, domain.ErrReadFailure) {
		t.Fatalf("err=%v, want ErrReadFailure", err)
	}
}

func TestComputeLoadsOldestLookbackDayWhole(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	hist := &fakeHistory{doses: []domain.DoseInstance{
		{DueAt: time.Date(2025, 2, 13, 8, 0, 0, 0, time.UTC), Status: domain.DoseMissed},
		takenDose(time.Date(2025, 2, 13, 20, 0, 0, 0, time.UTC), 0),
	}}
	eng := NewEngine(hist, WithClock(func() time.Time { return now }))

	snap, err := eng.Compute(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if snap.PerfectDays != 0 {
		t.Fatalf("perfect days=%d, want 0: the morning dose of 2025-02-13 was missed", snap.PerfectDays)
	}
	if snap.TotalXP != 15 {
		t.Fatalf("total xp=%d, want 15", snap.TotalXP)
	}
}

func TestLookbackStartIsLocalMidnight(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2025, 3, 15, 1, 30, 0, 0, time.UTC) // 2025-03-14 22:30 local
	got := lookbackStart(now, loc)
	want := time.Date(2025, 2, 12, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("lookbackStart=%v, want %v", got, want)
	}
}
