package training

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
)

func tech(id uint, name string) model.User {
	u := model.User{Name: name, Role: model.Technician}
	u.ID = id
	return u
}

func score(user uint, module *uint, name string, s int, at time.Time) model.CompetencyRecord {
	return model.CompetencyRecord{UserID: user, ModuleID: module, Competency: name, Score: s, AssessedAt: at}
}

func uptr(v uint) *uint { return &v }

func TestTeamScenario(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	modules := []model.TrainingModule{mod(1, 1, "Medication Safety"), mod(2, 2, "Sterile Compounding")}
	roster := []model.User{tech(101, "A"), tech(102, "B"), tech(103, "C")}
	progress := []model.ModuleProgress{
		row(101, 1, true, 100),
		row(101, 2, true, 100),
		row(102, 1, true, 100),
	}
	competencies := []model.CompetencyRecord{
		score(101, uptr(1), "Medication Safety", 90, now),
		score(101, uptr(2), "Sterile Compounding", 85, now),
		score(102, uptr(1), "Medication Safety", 40, now),
	}

	stats := ComputeTeamStats(TeamInput{
		Technicians:  roster,
		Progress:     progress,
		Competencies: competencies,
		Modules:      modules,
	}, DefaultPolicy())

	require.Len(t, stats.Technicians, 3)
	a, b, c := stats.Technicians[0], stats.Technicians[1], stats.Technicians[2]

	assert.Equal(t, 2, a.CompletedModules)
	assert.Equal(t, 100, a.CompletionPercentage)
	assert.InDelta(t, 87.5, a.AvgScore, 0.001)

	assert.Equal(t, 1, b.CompletedModules)
	assert.Equal(t, 50, b.CompletionPercentage)
	assert.InDelta(t, 40, b.AvgScore, 0.001)

	assert.Equal(t, 0, c.CompletionPercentage)
	assert.Equal(t, 0.0, c.AvgScore)

	board := Leaderboard(stats.Technicians)
	assert.Equal(t, uint(101), board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)

	bStates := BuildModuleStates(modules, progress, Session{UserID: 102, Role: model.Technician})
	assert.True(t, bStates[1].Unlocked)

	cStates := BuildModuleStates(modules, progress, Session{UserID: 103, Role: model.Technician})
	assert.True(t, cStates[0].Unlocked)
	assert.False(t, cStates[1].Unlocked)

	require.Len(t, stats.Modules, 2)
	assert.Equal(t, 67, stats.Modules[0].CompletionRate)
	assert.InDelta(t, 65, stats.Modules[0].AvgScore, 0.001)
	assert.False(t, stats.Modules[0].IsGap)

	assert.Equal(t, 33, stats.Modules[1].CompletionRate)
	assert.True(t, stats.Modules[1].IsGap)

	gaps := SkillGaps(stats.Modules)
	require.Len(t, gaps, 1)
	assert.Equal(t, uint(2), gaps[0].ModuleID)

	ov := Overview(stats)
	assert.Equal(t, 3, ov.Technicians)
	assert.Equal(t, 1, ov.SkillGaps)
	assert.InDelta(t, 50.0, ov.AverageCompletion, 0.001)
}

func TestIsSkillGapUsesOr(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, IsSkillGap(ModuleStats{CompletionRate: 59, AvgScore: 100, ScoreCount: 3}, p))
	assert.True(t, IsSkillGap(ModuleStats{CompletionRate: 100, AvgScore: 59, ScoreCount: 3}, p))
	assert.False(t, IsSkillGap(ModuleStats{CompletionRate: 60, AvgScore: 60, ScoreCount: 3}, p))
	assert.False(t, IsSkillGap(ModuleStats{CompletionRate: 80, ScoreCount: 0}, p))
}

func TestLeaderboardIsStable(t *testing.T) {
	techs := []TechnicianStats{
		{UserID: 1, AvgScore: 80},
		{UserID: 2, AvgScore: 95},
		{UserID: 3, AvgScore: 95},
		{UserID: 4, AvgScore: 60},
	}

	board := Leaderboard(techs)
	got := make([]uint, len(board))
	for i, e := range board {
		got[i] = e.UserID
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []uint{2, 3, 1, 4}, got)
	assert.Equal(t, uint(1), techs[0].UserID, "input must not be reordered")
}

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  ScoreBucket
	}{
		{100, BucketExcellent},
		{90, BucketExcellent},
		{89.9, BucketGood},
		{70, BucketGood},
		{69.9, BucketNeedsImprovement},
		{50, BucketNeedsImprovement},
		{49.9, BucketCritical},
		{0, BucketCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucket(tt.score), "score %v", tt.score)
	}
}

func TestDistribution(t *testing.T) {
	dist := Distribution([]TechnicianStats{{AvgScore: 95}, {AvgScore: 90}, {AvgScore: 72}, {AvgScore: 10}})
	require.Len(t, dist, 4)
	assert.Equal(t, 2, dist[0].Count)
	assert.Equal(t, 1, dist[1].Count)
	assert.Equal(t, 0, dist[2].Count)
	assert.Equal(t, 1, dist[3].Count)
}

func TestComputeTeamStatsSkipsUnknownRelations(t *testing.T) {
	now := time.Now()
	stats := ComputeTeamStats(TeamInput{
		Technicians: []model.User{tech(1, "A")},
		Modules:     []model.TrainingModule{mod(1, 1, "Law")},
		Progress: []model.ModuleProgress{
			row(1, 77, true, 100), // module removed
			row(9, 1, true, 100),  // not on the roster
		},
		Competencies: []model.CompetencyRecord{
			score(1, uptr(77), "Old module", 10, now),
			score(9, uptr(1), "Law", 10, now),
		},
	}, DefaultPolicy())

	assert.Equal(t, 0, stats.Technicians[0].CompletedModules)
	assert.Equal(t, 0, stats.Modules[0].CompletedUsers)
	assert.Equal(t, 0, stats.Modules[0].ScoreCount)
	// the user's own average still includes every record they hold
	assert.InDelta(t, 10, stats.Technicians[0].AvgScore, 0.001)
}

func TestComputeTeamStatsInProgress(t *testing.T) {
	stats := ComputeTeamStats(TeamInput{
		Technicians: []model.User{tech(1, "A")},
		Modules:     []model.TrainingModule{mod(1, 1, "A"), mod(2, 2, "B"), mod(3, 3, "C")},
		Progress:    []model.ModuleProgress{row(1, 1, false, 50), row(1, 2, false, 0), row(1, 3, true, 100)},
	}, DefaultPolicy())

	assert.Equal(t, 1, stats.Technicians[0].InProgress)
	assert.Equal(t, 1, stats.Technicians[0].CompletedModules)
	assert.Equal(t, 33, stats.Technicians[0].CompletionPercentage)
}

func TestComputeTeamStatsEmptyInputs(t *testing.T) {
	stats := ComputeTeamStats(TeamInput{Modules: []model.TrainingModule{mod(1, 1, "A")}}, DefaultPolicy())
	assert.Empty(t, stats.Technicians)
	assert.Equal(t, 0, stats.Modules[0].CompletionRate)
	assert.True(t, stats.Modules[0].IsGap)

	stats = ComputeTeamStats(TeamInput{Technicians: []model.User{tech(1, "A")}}, DefaultPolicy())
	assert.Equal(t, 0, stats.Technicians[0].CompletionPercentage)
	assert.Empty(t, stats.Modules)
}

func TestLinkCompetency(t *testing.T) {
	modules := []model.TrainingModule{mod(1, 1, "Sterile Compounding"), mod(2, 2, "Pharmacy Law")}

	id, ok := LinkCompetency(model.CompetencyRecord{ModuleID: uptr(2), Competency: "anything"}, modules, false)
	assert.True(t, ok)
	assert.Equal(t, uint(2), id)

	_, ok = LinkCompetency(model.CompetencyRecord{Competency: "sterile technique"}, modules, false)
	assert.False(t, ok)

	id, ok = LinkCompetency(model.CompetencyRecord{Competency: "Sterile technique"}, modules, true)
	assert.True(t, ok)
	assert.Equal(t, uint(1), id)

	_, ok = LinkCompetency(model.CompetencyRecord{ModuleID: uptr(9)}, modules, true)
	assert.False(t, ok)
}
