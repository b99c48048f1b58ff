package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/training"
)

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.TrainingConfig{
		PassPercentage:        80,
		TrendWindowDays:       14,
		ExpiringWithinDays:    60,
		LegacyCompetencyMatch: true,
	})
	assert.Equal(t, 80, p.PassPercentage)
	assert.Equal(t, 14*24*time.Hour, p.TrendWindow)
	assert.Equal(t, 60*24*time.Hour, p.ExpiringWithin)
	assert.True(t, p.LegacyCompetencyMatch)

	def := training.DefaultPolicy()
	assert.Equal(t, def.RecommendationCap, p.RecommendationCap)
	assert.Equal(t, def.GroupLowScoreRatio, p.GroupLowScoreRatio)
}

func TestPolicyStoreSwap(t *testing.T) {
	store := NewPolicyStore(training.DefaultPolicy())
	p := store.Get()
	p.PassPercentage = 90
	assert.Equal(t, 70, store.Get().PassPercentage)

	store.Set(p)
	assert.Equal(t, 90, store.Get().PassPercentage)
}
