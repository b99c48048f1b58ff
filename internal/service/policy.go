package service

import (
	"sync"
	"time"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/training"
)

// PolicyFromConfig maps the training section of the config file onto scoring thresholds.
func PolicyFromConfig(cfg config.TrainingConfig) training.Policy {
	p := training.DefaultPolicy()
	if cfg.PassPercentage > 0 {
		p.PassPercentage = cfg.PassPercentage
	}
	if cfg.GapCompletionRate > 0 {
		p.GapCompletionRate = cfg.GapCompletionRate
	}
	if cfg.GapAverageScore > 0 {
		p.GapAverageScore = cfg.GapAverageScore
	}
	if cfg.RecommendationCap > 0 {
		p.RecommendationCap = cfg.RecommendationCap
	}
	if cfg.CoachingScoreFloor > 0 {
		p.CoachingScoreFloor = cfg.CoachingScoreFloor
	}
	if cfg.TrendWindowDays > 0 {
		p.TrendWindow = time.Duration(cfg.TrendWindowDays) * 24 * time.Hour
	}
	if cfg.TrendDelta > 0 {
		p.TrendDelta = cfg.TrendDelta
	}
	if cfg.GroupLowScore > 0 {
		p.GroupLowScore = cfg.GroupLowScore
	}
	if cfg.GroupLowScoreRatio > 0 {
		p.GroupLowScoreRatio = cfg.GroupLowScoreRatio
	}
	if cfg.ExpiringWithinDays > 0 {
		p.ExpiringWithin = time.Duration(cfg.ExpiringWithinDays) * 24 * time.Hour
	}
	p.LegacyCompetencyMatch = cfg.LegacyCompetencyMatch
	return p
}

// PolicyStore is shared by the services so a config reload swaps thresholds everywhere at once.
type PolicyStore struct {
	mu     sync.RWMutex
	policy training.Policy
}

func NewPolicyStore(p training.Policy) *PolicyStore {
	return &PolicyStore{policy: p}
}

func (s *PolicyStore) Get() training.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

func (s *PolicyStore) Set(p training.Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}
