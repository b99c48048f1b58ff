package training

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
)

var ruleNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time { return ruleNow.AddDate(0, 0, -d) }

func TestCoachingAlertsConsecutiveLowScores(t *testing.T) {
	in := RuleInput{
		Technicians: []model.User{tech(1, "Ana"), tech(2, "Ben")},
		Modules:     []model.TrainingModule{mod(1, 1, "Dosage Calculations")},
		Competencies: []model.CompetencyRecord{
			// Ana: 45, 70, 40, never two in a row
			score(1, uptr(1), "Dosage", 45, daysAgo(3)),
			score(1, uptr(1), "Dosage", 70, daysAgo(2)),
			score(1, uptr(1), "Dosage", 40, daysAgo(1)),
			// Ben: out of order input, 30 then 49 consecutively, then a third low score
			score(2, uptr(1), "Dosage", 49, daysAgo(2)),
			score(2, uptr(1), "Dosage", 30, daysAgo(3)),
			score(2, uptr(1), "Dosage", 20, daysAgo(1)),
		},
		Now: ruleNow,
	}

	recs := CoachingAlerts(in, DefaultPolicy())
	require.Len(t, recs, 1)
	assert.Equal(t, model.KindIndividualCoaching, recs[0].Kind)
	assert.Equal(t, model.SeverityCritical, recs[0].Severity)
	require.NotNil(t, recs[0].UserID)
	assert.Equal(t, uint(2), *recs[0].UserID)
	assert.Contains(t, recs[0].Message, "30 and 49")
}

func TestCoachingAlertsSeparateStreams(t *testing.T) {
	in := RuleInput{
		Technicians: []model.User{tech(1, "Ana")},
		Competencies: []model.CompetencyRecord{
			score(1, nil, "Inventory", 30, daysAgo(3)),
			score(1, nil, "Customer service", 20, daysAgo(2)),
		},
		Now: ruleNow,
	}
	assert.Empty(t, CoachingAlerts(in, DefaultPolicy()))
}

func TestTrendAlerts(t *testing.T) {
	in := RuleInput{
		Technicians: []model.User{tech(1, "Ana"), tech(2, "Ben")},
		Modules:     []model.TrainingModule{mod(1, 1, "Law"), mod(2, 2, "Billing"), mod(3, 3, "Safety")},
		Competencies: []model.CompetencyRecord{
			// Law improves 60 -> 80
			score(1, uptr(1), "Law", 60, daysAgo(10)),
			score(1, uptr(1), "Law", 80, daysAgo(2)),
			// Billing declines 90 -> 70
			score(2, uptr(2), "Billing", 90, daysAgo(9)),
			score(2, uptr(2), "Billing", 70, daysAgo(1)),
			// Safety moves exactly 10 points, not beyond the threshold
			score(1, uptr(3), "Safety", 70, daysAgo(8)),
			score(1, uptr(3), "Safety", 80, daysAgo(3)),
			// too old to count
			score(2, uptr(1), "Law", 0, daysAgo(20)),
		},
		Now: ruleNow,
	}

	recs := TrendAlerts(in, DefaultPolicy())
	require.Len(t, recs, 2)
	assert.Equal(t, model.KindPositiveTrend, recs[0].Kind)
	assert.Equal(t, uint(1), *recs[0].ModuleID)
	assert.Equal(t, model.KindReviewTraining, recs[1].Kind)
	assert.Equal(t, uint(2), *recs[1].ModuleID)
}

func TestTrendAlertsNeedBothWindows(t *testing.T) {
	in := RuleInput{
		Technicians:  []model.User{tech(1, "Ana")},
		Modules:      []model.TrainingModule{mod(1, 1, "Law")},
		Competencies: []model.CompetencyRecord{score(1, uptr(1), "Law", 10, daysAgo(1))},
		Now:          ruleNow,
	}
	assert.Empty(t, TrendAlerts(in, DefaultPolicy()))
}

func TestGroupAlerts(t *testing.T) {
	groupA := model.TeamGroup{Name: "Night shift"}
	groupA.ID = 7
	groupB := model.TeamGroup{Name: "Day shift"}
	groupB.ID = 8

	members := []model.User{tech(1, "A"), tech(2, "B"), tech(3, "C"), tech(4, "D"), tech(5, "E")}
	for i := range members[:3] {
		members[i].GroupID = uptr(7)
	}
	members[3].GroupID = uptr(8)
	members[4].GroupID = uptr(8)

	in := RuleInput{
		Technicians: members,
		Groups:      []model.TeamGroup{groupB, groupA},
		Modules:     []model.TrainingModule{mod(1, 1, "Law")},
		Competencies: []model.CompetencyRecord{
			// night shift: 2 of 3 below 60 (67%)
			score(1, uptr(1), "Law", 50, daysAgo(1)),
			score(2, uptr(1), "Law", 55, daysAgo(1)),
			score(3, uptr(1), "Law", 90, daysAgo(1)),
			// day shift: D was low but improved, E is low -> 1 of 2 (50%)
			score(4, uptr(1), "Law", 40, daysAgo(5)),
			score(4, uptr(1), "Law", 85, daysAgo(1)),
			score(5, uptr(1), "Law", 30, daysAgo(1)),
		},
		Now: ruleNow,
	}

	recs := GroupAlerts(in, DefaultPolicy())
	require.Len(t, recs, 1)
	assert.Equal(t, model.KindAssignTraining, recs[0].Kind)
	assert.Equal(t, uint(7), *recs[0].GroupID)
	assert.Contains(t, recs[0].Message, "2 of 3")
}

func TestPrioritizeRecommendations(t *testing.T) {
	var recs []model.Recommendation
	for i := 0; i < 6; i++ {
		recs = append(recs, model.Recommendation{Severity: model.SeverityLow, Title: "low"})
	}
	for i := 0; i < 4; i++ {
		recs = append(recs, model.Recommendation{Severity: model.SeverityMedium, Title: "medium"})
	}
	recs = append(recs,
		model.Recommendation{Severity: model.SeverityHigh, Title: "high-1"},
		model.Recommendation{Severity: model.SeverityCritical, Title: "critical"},
		model.Recommendation{Severity: model.SeverityHigh, Title: "high-2"},
	)

	out := PrioritizeRecommendations(recs, 10)
	require.Len(t, out, 10)
	assert.Equal(t, "critical", out[0].Title)
	assert.Equal(t, "high-1", out[1].Title)
	assert.Equal(t, "high-2", out[2].Title)
	assert.Equal(t, "medium", out[3].Title)
	assert.Equal(t, model.SeverityLow, out[9].Severity)

	assert.Len(t, PrioritizeRecommendations(recs, 0), len(recs))
}

func TestGenerateRuleRecommendationsIsDeterministic(t *testing.T) {
	in := RuleInput{
		Technicians: []model.User{tech(1, "Ana"), tech(2, "Ben")},
		Modules:     []model.TrainingModule{mod(1, 1, "Law"), mod(2, 2, "Billing")},
		Competencies: []model.CompetencyRecord{
			score(1, uptr(1), "Law", 20, daysAgo(2)),
			score(1, uptr(1), "Law", 30, daysAgo(1)),
			score(2, uptr(2), "Billing", 10, daysAgo(2)),
			score(2, uptr(2), "Billing", 15, daysAgo(1)),
		},
		ModuleStats: []ModuleStats{{ModuleID: 2, Title: "Billing", CompletionRate: 0, IsGap: true}},
		Now:         ruleNow,
	}

	first := GenerateRuleRecommendations(in, DefaultPolicy())
	second := GenerateRuleRecommendations(in, DefaultPolicy())
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "Skill gap: Billing", first[2].Title)
}

func TestCertificationStatus(t *testing.T) {
	now := ruleNow
	within := 30 * 24 * time.Hour
	past := now.AddDate(0, 0, -1)
	soon := now.AddDate(0, 0, 10)
	later := now.AddDate(1, 0, 0)

	assert.Equal(t, CertificationActive, CertificationStatus(model.Certification{}, now, within))
	assert.Equal(t, CertificationExpired, CertificationStatus(model.Certification{ExpiresAt: &past}, now, within))
	assert.Equal(t, CertificationExpiring, CertificationStatus(model.Certification{ExpiresAt: &soon}, now, within))
	assert.Equal(t, CertificationActive, CertificationStatus(model.Certification{ExpiresAt: &later}, now, within))
}
