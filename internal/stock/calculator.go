package stock

import (
	"math"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
)

const (
	// ConsumptionWindow is the trailing window used to derive the empirical rate.
	ConsumptionWindow = 7 * 24 * time.Hour

	// consumptionWindowDays must match ConsumptionWindow.
	consumptionWindowDays = 7.0

	// DefaultDailyRate is used when neither history nor schedules yield a rate.
	DefaultDailyRate = 1.0

	// maxProjectionDays caps projections far beyond any real supply.
	maxProjectionDays = 1_000_000
)

// EstimateDailyConsumption derives doses per day for an item.
// Order: taken doses in the last 7 days / 7, then the summed cardinality of
// active schedules, then DefaultDailyRate. The result is always > 0.
func EstimateDailyConsumption(takenLastWindow int, schedules []domain.ScheduleDefinition) float64 {
	if takenLastWindow > 0 {
		return float64(takenLastWindow) / consumptionWindowDays
	}

	perDay := 0
	for _, s := range schedules {
		if !s.IsActive {
			continue
		}
		perDay += len(s.Times)
	}
	if perDay > 0 {
		return float64(perDay)
	}

	return DefaultDailyRate
}

// DaysRemaining returns how many days the stock lasts at dailyRate (not rounded).
func DaysRemaining(unitsLeft int, dailyRate float64) float64 {
	if unitsLeft <= 0 {
		return 0
	}
	if dailyRate <= 0 {
		dailyRate = DefaultDailyRate
	}
	return float64(unitsLeft) / dailyRate
}

// CalculateProjectedEndAt is a linear depletion model: it assumes future
// consumption stays at dailyRate. Empty stock projects to now.
func CalculateProjectedEndAt(unitsLeft int, dailyRate float64, now time.Time) time.Time {
	days := DaysRemaining(unitsLeft, dailyRate)
	if days == 0 {
		return now
	}

	// Whole days go through AddDate; only the fraction becomes a Duration,
	// which would overflow past ~292 years.
	whole := math.Floor(days)
	if whole >= maxProjectionDays {
		return now.AddDate(0, 0, maxProjectionDays)
	}
	frac := days - whole
	return now.AddDate(0, 0, int(whole)).Add(time.Duration(frac * float64(24*time.Hour)))
}
