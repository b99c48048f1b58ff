// Package training holds the module progression, quiz scoring and team reporting rules.
// Everything here works on records that are already loaded into memory.
package training

import (
	"time"

	"pharmtrain_backend/internal/model"
)

// Policy carries the thresholds used by the scoring and reporting rules.
type Policy struct {
	PassPercentage        int
	GapCompletionRate     int
	GapAverageScore       float64
	RecommendationCap     int
	CoachingScoreFloor    int
	TrendWindow           time.Duration
	TrendDelta            float64
	GroupLowScore         int
	GroupLowScoreRatio    float64
	LegacyCompetencyMatch bool
	ExpiringWithin        time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		PassPercentage:     70,
		GapCompletionRate:  60,
		GapAverageScore:    60,
		RecommendationCap:  10,
		CoachingScoreFloor: 50,
		TrendWindow:        7 * 24 * time.Hour,
		TrendDelta:         10,
		GroupLowScore:      60,
		GroupLowScoreRatio: 0.6,
		ExpiringWithin:     30 * 24 * time.Hour,
	}
}

// Session is the per-request view configuration. It is never persisted.
type Session struct {
	UserID          uint
	Role            model.UserRole
	ManagerOverride bool
}

// OverrideActive reports whether module gating is bypassed for this session.
// Only managers may bypass it.
func (s Session) OverrideActive() bool {
	return s.ManagerOverride && s.Role == model.Manager
}
