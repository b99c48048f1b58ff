package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pharmtrain_backend/internal/config"
)

func TestSchedulerSkipsEmptyAndInvalidExpressions(t *testing.T) {
	a := &App{}
	c := a.startScheduler(context.Background(), config.ScheduleConfig{Recommendations: "not a cron"}, &services{})
	defer c.Stop()

	assert.Empty(t, c.Entries())
}

func TestSchedulerRegistersJobs(t *testing.T) {
	a := &App{}
	c := a.startScheduler(context.Background(), config.ScheduleConfig{
		Recommendations: "0 6 * * *",
		Certifications:  "@daily",
	}, &services{})
	defer c.Stop()

	assert.Len(t, c.Entries(), 2)
}
