package spacedrep

import "time"

// BaseIntervals defines the expanding review interval ladder in days.
// Stage 0 = first review after graduating from learning.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// GraduationStage is the stage past the end of the ladder. Cards at or
// beyond it are reviewed every GraduatedIntervalDays.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated cards.
const GraduatedIntervalDays = 90

// Config holds the learning steps and lapse handling of the ladder.
type Config struct {
	// LearnSteps are the delays for new cards before they graduate.
	LearnSteps []time.Duration

	// RelearnSteps are the delays for lapsed review cards.
	RelearnSteps []time.Duration

	// LeechThreshold is the lapse count at which a card becomes a leech.
	LeechThreshold int
}

// DefaultConfig returns the standard steps and a leech threshold of 8.
func DefaultConfig() Config {
	return Config{
		LearnSteps:     []time.Duration{time.Minute, 10 * time.Minute},
		RelearnSteps:   []time.Duration{10 * time.Minute},
		LeechThreshold: 8,
	}
}

// intervalForStage returns the review interval for a ladder stage.
func intervalForStage(stage int) time.Duration {
	days := GraduatedIntervalDays
	if stage < 0 {
		stage = 0
	}
	if stage < len(BaseIntervals) {
		days = BaseIntervals[stage]
	}
	return time.Duration(days) * 24 * time.Hour
}
