package training

import (
	"math"
	"sort"
	"strings"

	"pharmtrain_backend/internal/model"
)

type TechnicianStats struct {
	UserID               uint    `json:"userId"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	GroupID              *uint   `json:"groupId,omitempty"`
	CompletedModules     int     `json:"completedModules"`
	TotalModules         int     `json:"totalModules"`
	InProgress           int     `json:"inProgress"`
	AvgScore             float64 `json:"avgScore"`
	CompletionPercentage int     `json:"completionPercentage"`
}

type ModuleStats struct {
	ModuleID       uint    `json:"moduleId"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	OrderIndex     int     `json:"orderIndex"`
	CompletedUsers int     `json:"completedUsers"`
	TotalUsers     int     `json:"totalUsers"`
	CompletionRate int     `json:"completionRate"`
	AvgScore       float64 `json:"avgScore"`
	ScoreCount     int     `json:"scoreCount"`
	IsGap          bool    `json:"isGap"`
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	TechnicianStats
}

type TeamInput struct {
	Technicians  []model.User
	Progress     []model.ModuleProgress
	Competencies []model.CompetencyRecord
	Modules      []model.TrainingModule
}

type TeamStats struct {
	Technicians []TechnicianStats `json:"technicians"`
	Modules     []ModuleStats     `json:"modules"`
}

type TeamOverview struct {
	Technicians       int     `json:"technicians"`
	Modules           int     `json:"modules"`
	AverageCompletion float64 `json:"averageCompletion"`
	AverageScore      float64 `json:"averageScore"`
	SkillGaps         int     `json:"skillGaps"`
}

// LinkCompetency returns the module a competency record belongs to. The explicit module id
// is authoritative. Records without one are matched on the first word of a module title only
// when legacy matching is enabled.
func LinkCompetency(rec model.CompetencyRecord, modules []model.TrainingModule, legacy bool) (uint, bool) {
	if rec.ModuleID != nil {
		for _, m := range modules {
			if m.ID == *rec.ModuleID {
				return m.ID, true
			}
		}
		return 0, false
	}
	if !legacy {
		return 0, false
	}
	name := strings.ToLower(rec.Competency)
	for _, m := range modules {
		fields := strings.Fields(strings.ToLower(m.Title))
		if len(fields) == 0 {
			continue
		}
		if strings.Contains(name, fields[0]) {
			return m.ID, true
		}
	}
	return 0, false
}

// ComputeTeamStats aggregates the roster. Technicians keep the roster order and modules are
// returned by order index. Rows referencing users or modules outside the input are skipped.
func ComputeTeamStats(in TeamInput, policy Policy) TeamStats {
	modules := SortModules(in.Modules)
	totalModules := len(modules)

	knownModule := make(map[uint]bool, totalModules)
	for _, m := range modules {
		knownModule[m.ID] = true
	}
	rosterIndex := make(map[uint]int, len(in.Technicians))
	for i, u := range in.Technicians {
		rosterIndex[u.ID] = i
	}

	techs := make([]TechnicianStats, len(in.Technicians))
	for i, u := range in.Technicians {
		techs[i] = TechnicianStats{
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
			GroupID:      u.GroupID,
			TotalModules: totalModules,
		}
	}

	completedByModule := make(map[uint]int, totalModules)
	for _, row := range in.Progress {
		idx, ok := rosterIndex[row.UserID]
		if !ok || !knownModule[row.ModuleID] {
			continue
		}
		if row.Completed {
			techs[idx].CompletedModules++
			completedByModule[row.ModuleID]++
		} else if row.CompletionPercentage > 0 && row.CompletionPercentage < 100 {
			techs[idx].InProgress++
		}
	}

	userSum := make([]float64, len(techs))
	userCount := make([]int, len(techs))
	moduleSum := make(map[uint]float64, totalModules)
	moduleCount := make(map[uint]int, totalModules)
	for _, rec := range in.Competencies {
		idx, ok := rosterIndex[rec.UserID]
		if !ok {
			continue
		}
		userSum[idx] += float64(rec.Score)
		userCount[idx]++

		if moduleID, ok := LinkCompetency(rec, modules, policy.LegacyCompetencyMatch); ok {
			moduleSum[moduleID] += float64(rec.Score)
			moduleCount[moduleID]++
		}
	}

	for i := range techs {
		if userCount[i] > 0 {
			techs[i].AvgScore = userSum[i] / float64(userCount[i])
		}
		techs[i].CompletionPercentage = roundPercent(techs[i].CompletedModules, totalModules)
	}

	totalUsers := len(techs)
	mods := make([]ModuleStats, totalModules)
	for i, m := range modules {
		ms := ModuleStats{
			ModuleID:       m.ID,
			Title:          m.Title,
			Category:       m.Category,
			OrderIndex:     m.OrderIndex,
			CompletedUsers: completedByModule[m.ID],
			TotalUsers:     totalUsers,
			CompletionRate: roundPercent(completedByModule[m.ID], totalUsers),
			ScoreCount:     moduleCount[m.ID],
		}
		if ms.ScoreCount > 0 {
			ms.AvgScore = moduleSum[m.ID] / float64(ms.ScoreCount)
		}
		ms.IsGap = IsSkillGap(ms, policy)
		mods[i] = ms
	}

	return TeamStats{Technicians: techs, Modules: mods}
}

// IsSkillGap flags low completion or a low average score. A module nobody has been assessed
// on is judged on completion alone.
func IsSkillGap(ms ModuleStats, policy Policy) bool {
	if ms.CompletionRate < policy.GapCompletionRate {
		return true
	}
	return ms.ScoreCount > 0 && ms.AvgScore < policy.GapAverageScore
}

func SkillGaps(mods []ModuleStats) []ModuleStats {
	gaps := make([]ModuleStats, 0)
	for _, m := range mods {
		if m.IsGap {
			gaps = append(gaps, m)
		}
	}
	return gaps
}

// Leaderboard sorts technicians by average score, highest first. Equal scores keep roster order.
func Leaderboard(techs []TechnicianStats) []LeaderboardEntry {
	sorted := make([]TechnicianStats, len(techs))
	copy(sorted, techs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgScore > sorted[j].AvgScore
	})

	entries := make([]LeaderboardEntry, len(sorted))
	for i, t := range sorted {
		entries[i] = LeaderboardEntry{Rank: i + 1, TechnicianStats: t}
	}
	return entries
}

type ScoreBucket string

const (
	BucketExcellent        ScoreBucket = "excellent"
	BucketGood             ScoreBucket = "good"
	BucketNeedsImprovement ScoreBucket = "needs_improvement"
	BucketCritical         ScoreBucket = "critical"
)

// Bucket classifies a score: [90,100] excellent, [70,90) good, [50,70) needs improvement,
// [0,50) critical.
func Bucket(score float64) ScoreBucket {
	switch {
	case score >= 90:
		return BucketExcellent
	case score >= 70:
		return BucketGood
	case score >= 50:
		return BucketNeedsImprovement
	default:
		return BucketCritical
	}
}

type BucketCount struct {
	Bucket ScoreBucket `json:"bucket"`
	Min    int         `json:"min"`
	Max    int         `json:"max"`
	Count  int         `json:"count"`
}

// Distribution counts technicians per score bucket, always returning all four buckets.
func Distribution(techs []TechnicianStats) []BucketCount {
	buckets := []BucketCount{
		{Bucket: BucketExcellent, Min: 90, Max: 100},
		{Bucket: BucketGood, Min: 70, Max: 90},
		{Bucket: BucketNeedsImprovement, Min: 50, Max: 70},
		{Bucket: BucketCritical, Min: 0, Max: 50},
	}
	for _, t := range techs {
		b := Bucket(t.AvgScore)
		for i := range buckets {
			if buckets[i].Bucket == b {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}

func Overview(stats TeamStats) TeamOverview {
	ov := TeamOverview{
		Technicians: len(stats.Technicians),
		Modules:     len(stats.Modules),
	}
	if len(stats.Technicians) > 0 {
		var completion, score float64
		for _, t := range stats.Technicians {
			completion += float64(t.CompletionPercentage)
			score += t.AvgScore
		}
		ov.AverageCompletion = round1(completion / float64(len(stats.Technicians)))
		ov.AverageScore = round1(score / float64(len(stats.Technicians)))
	}
	ov.SkillGaps = len(SkillGaps(stats.Modules))
	return ov
}

func roundPercent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
