package adherence

import (
	"context"
	"fmt"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/rs/zerolog"
)

// DoseHistory reads a user's dose instances.
type DoseHistory interface {
	// ListTakenForUser returns every taken dose of the user.
	ListTakenForUser(ctx context.Context, userID string) ([]domain.DoseInstance, error)
	// ListDueSince returns doses of any status due at or after since.
	ListDueSince(ctx context.Context, userID string, since time.Time) ([]domain.DoseInstance, error)
}

// Engine derives XP and level from dose history. Nothing is persisted:
// every call recomputes from scratch, so repeated calls never double count.
type Engine struct {
	doses     DoseHistory
	now       func() time.Time
	loc       *time.Location
	weekStart time.Weekday
	mode      WindowingMode
	log       zerolog.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone used for calendar days, weeks and months.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithWeekStart(d time.Weekday) Option {
	return func(e *Engine) { e.weekStart = d }
}

func WithPerfectDayWindowing(mode WindowingMode) Option {
	return func(e *Engine) { e.mode = mode }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(doses DoseHistory, opts ...Option) *Engine {
	e := &Engine{
		doses:     doses,
		now:       time.Now,
		loc:       time.UTC,
		weekStart: time.Sunday,
		mode:      WindowByToday,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the user's progress as of now.
func (e *Engine) Compute(ctx context.Context, userID string) (domain.ProgressSnapshot, error) {
	now := e.now()
	windows := NewWindows(now, e.loc, e.weekStart)

	taken, err := e.doses.ListTakenForUser(ctx, userID)
	if err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("adherence: read taken doses failed")
		return domain.ProgressSnapshot{}, fmt.Errorf("%w: taken doses for %s: %w", domain.ErrReadFailure, userID, err)
	}

	recent, err := e.doses.ListDueSince(ctx, userID, lookbackStart(now, e.loc))
	if err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("adherence: read recent doses failed")
		return domain.ProgressSnapshot{}, fmt.Errorf("%w: recent doses for %s: %w", domain.ErrReadFailure, userID, err)
	}

	totals := Accumulate(taken, windows)
	perfect := PerfectDays(recent, e.loc)
	totals = ApplyPerfectDayBonus(totals, perfect, windows, now, e.mode)

	snap := domain.ProgressSnapshot{
		UserID:        userID,
		XPState:       State(totals),
		PerfectDays:   len(perfect),
		CurrentStreak: CurrentStreak(perfect, now, e.loc),
	}

	e.log.Debug().
		Str("user_id", userID).
		Int("total_xp", snap.TotalXP).
		Int("level", snap.Level).
		Int("perfect_days", snap.PerfectDays).
		Msg("adherence: progress computed")

	return snap, nil
}
