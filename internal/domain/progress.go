package domain

// XPState is the gamified adherence signal derived from dose history.
type XPState struct {
	CurrentXP     int `json:"currentXP"`
	Level         int `json:"level"`
	XPToNextLevel int `json:"xpToNextLevel"`
	TotalXP       int `json:"totalXP"`
	WeeklyXP      int `json:"weeklyXP"`
	MonthlyXP     int `json:"monthlyXP"`
}

// ProgressSnapshot is an XPState plus the perfect-day details behind it.
type ProgressSnapshot struct {
	UserID string `json:"userID"`
	XPState
	PerfectDays   int `json:"perfectDays"`
	CurrentStreak int `json:"currentStreak"`
}
