package domain

import "strings"

// DoseStatus is the outcome state of a dose instance.
type DoseStatus string

const (
	DoseScheduled DoseStatus = "scheduled"
	DoseTaken     DoseStatus = "taken"
	DoseMissed    DoseStatus = "missed"
	DoseSkipped   DoseStatus = "skipped"
)

var doseStatuses = map[string]DoseStatus{
	"scheduled": DoseScheduled,
	"taken":     DoseTaken,
	"missed":    DoseMissed,
	"skipped":   DoseSkipped,
}

// ParseDoseStatus returns the status for a given label (case-insensitive).
func ParseDoseStatus(label string) (DoseStatus, bool) {
	status, ok := doseStatuses[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// Resolved reports whether the user already acted on the dose.
func (s DoseStatus) Resolved() bool {
	return s != DoseScheduled
}
