package domain

import (
	"testing"
	"time"
)

func TestParseDoseStatus(t *testing.T) {
	cases := map[string]DoseStatus{
		"taken":     DoseTaken,
		" Skipped ": DoseSkipped,
		"MISSED":    DoseMissed,
		"scheduled": DoseScheduled,
	}
	for label, want := range cases {
		got, ok := ParseDoseStatus(label)
		if !ok || got != want {
			t.Fatalf("ParseDoseStatus(%q) = %q, %v; want %q", label, got, ok, want)
		}
	}
	if _, ok := ParseDoseStatus("late"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestResolved(t *testing.T) {
	if DoseScheduled.Resolved() {
		t.Fatalf("scheduled doses are not resolved")
	}
	for _, s := range []DoseStatus{DoseTaken, DoseMissed, DoseSkipped} {
		if !s.Resolved() {
			t.Fatalf("%q should be resolved", s)
		}
	}
}

func TestEventTimePrefersTakenAt(t *testing.T) {
	due := time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
	taken := due.Add(40 * time.Minute)

	if got := (DoseInstance{DueAt: due}).EventTime(); !got.Equal(due) {
		t.Fatalf("event time without taken_at = %v, want %v", got, due)
	}
	if got := (DoseInstance{DueAt: due, TakenAt: &taken}).EventTime(); !got.Equal(taken) {
		t.Fatalf("event time = %v, want %v", got, taken)
	}
}
