package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/util"
)

func TestTeamStatsUsesCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tech := f.technician(t, "fay", nil)
	m := f.module(t, "Pharmacy Law", 1)

	stats, err := f.analytics.TeamStats(ctx, nil)
	require.NoError(t, err)
	require.Len(t, stats.Technicians, 1)
	assert.Equal(t, 0, stats.Technicians[0].CompletedModules)

	_, err = f.analytics.TeamStats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)

	_, err = f.learning.UpdateProgress(ctx, techSession(tech), m.ID, 100)
	require.NoError(t, err)

	stats, err = f.analytics.TeamStats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Technicians[0].CompletedModules)
	assert.Equal(t, 100, stats.Technicians[0].CompletionPercentage)
}

func TestTeamStatsFiltersByGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := model.TeamGroup{Name: "Night shift"}
	require.NoError(t, f.groups.Create(&group))
	f.technician(t, "gus", &group.ID)
	f.technician(t, "hal", nil)
	f.module(t, "Pharmacy Law", 1)

	all, err := f.analytics.Overview(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Technicians)

	night, err := f.analytics.Overview(ctx, &group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, night.Technicians)
}

func TestTeamReportsEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.technician(t, "ana", nil)
	ben := f.technician(t, "ben", nil)
	law := f.module(t, "Pharmacy Law", 1)
	f.module(t, "Billing", 2)

	_, err := f.learning.UpdateProgress(ctx, techSession(ana), law.ID, 100)
	require.NoError(t, err)
	require.NoError(t, f.learning.RecordCompetency(ctx, &model.CompetencyRecord{UserID: ana.ID, ModuleID: &law.ID, Score: 90}))
	require.NoError(t, f.learning.RecordCompetency(ctx, &model.CompetencyRecord{UserID: ben.ID, ModuleID: &law.ID, Score: 50}))

	board, err := f.analytics.Leaderboard(ctx, nil)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, ana.ID, board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)

	gaps, err := f.analytics.SkillGaps(ctx, nil)
	require.NoError(t, err)
	titles := make([]string, len(gaps))
	for i, g := range gaps {
		titles[i] = g.Title
	}
	assert.Equal(t, []string{"Pharmacy Law", "Billing"}, titles)

	dist, err := f.analytics.Distribution(ctx, nil)
	require.NoError(t, err)
	total := 0
	for _, b := range dist {
		total += b.Count
	}
	assert.Equal(t, 2, total)

	own, err := f.analytics.TechnicianSummary(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 90.0, own.AvgScore)
	assert.Equal(t, 50, own.CompletionPercentage)

	_, err = f.analytics.TechnicianSummary(ctx, 999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestRecordCompetencyDefaultsNameAndTime(t *testing.T) {
	f := newFixture(t)
	tech := f.technician(t, "ida", nil)
	m := f.module(t, "Inventory", 1)

	rec := &model.CompetencyRecord{UserID: tech.ID, ModuleID: &m.ID, Score: 75}
	require.NoError(t, f.learning.RecordCompetency(context.Background(), rec))
	assert.Equal(t, "Inventory", rec.Competency)
	assert.True(t, rec.AssessedAt.Equal(fixedNow))

	missing := uint(404)
	err := f.learning.RecordCompetency(context.Background(), &model.CompetencyRecord{UserID: tech.ID, ModuleID: &missing, Score: 10, AssessedAt: time.Now()})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestAssignGroupInvalidatesStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := NewTeamService(f.users, f.groups, f.analytics)
	tech := f.technician(t, "jon", nil)

	group, err := team.CreateGroup("  Day shift ")
	require.NoError(t, err)
	assert.Equal(t, "Day shift", group.Name)

	require.NoError(t, team.AssignGroup(ctx, tech.ID, &group.ID))
	assert.Equal(t, 1, f.cache.invalidated)

	roster, err := team.Technicians(ctx, &group.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	missing := uint(404)
	assert.ErrorIs(t, team.AssignGroup(ctx, tech.ID, &missing), util.ErrGroupNotFound)
	assert.ErrorIs(t, team.AssignGroup(ctx, 999, nil), util.ErrUserNotFound)
}
