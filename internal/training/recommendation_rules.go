package training

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"pharmtrain_backend/internal/model"
)

type RuleInput struct {
	Technicians  []model.User
	Competencies []model.CompetencyRecord
	Modules      []model.TrainingModule
	Groups       []model.TeamGroup
	ModuleStats  []ModuleStats
	Now          time.Time
}

// GenerateRuleRecommendations runs every deterministic rule. The result is not yet prioritised.
func GenerateRuleRecommendations(in RuleInput, policy Policy) []model.Recommendation {
	var recs []model.Recommendation
	recs = append(recs, CoachingAlerts(in, policy)...)
	recs = append(recs, TrendAlerts(in, policy)...)
	recs = append(recs, GroupAlerts(in, policy)...)
	recs = append(recs, GapAlerts(in.ModuleStats, in.Now)...)
	return recs
}

// CoachingAlerts flags a technician with two consecutive scores below the coaching floor in
// the same competency stream. A stream is the linked module, or the competency name.
func CoachingAlerts(in RuleInput, policy Policy) []model.Recommendation {
	modules := SortModules(in.Modules)
	titles := moduleTitles(modules)

	type stream struct {
		key   string
		label string
		mod   *uint
		recs  []model.CompetencyRecord
	}

	var recs []model.Recommendation
	for _, u := range in.Technicians {
		var order []string
		streams := make(map[string]*stream)
		for _, rec := range in.Competencies {
			if rec.UserID != u.ID {
				continue
			}
			key := "c:" + strings.ToLower(strings.TrimSpace(rec.Competency))
			label := rec.Competency
			var mod *uint
			if moduleID, ok := LinkCompetency(rec, modules, policy.LegacyCompetencyMatch); ok {
				key = fmt.Sprintf("m:%d", moduleID)
				label = titles[moduleID]
				id := moduleID
				mod = &id
			}
			s, ok := streams[key]
			if !ok {
				s = &stream{key: key, label: label, mod: mod}
				streams[key] = s
				order = append(order, key)
			}
			s.recs = append(s.recs, rec)
		}

		for _, key := range order {
			s := streams[key]
			sortByAssessed(s.recs)
			for i := 1; i < len(s.recs); i++ {
				prev, cur := s.recs[i-1], s.recs[i]
				if prev.Score < policy.CoachingScoreFloor && cur.Score < policy.CoachingScoreFloor {
					userID := u.ID
					recs = append(recs, model.Recommendation{
						Kind:     model.KindIndividualCoaching,
						Severity: model.SeverityCritical,
						Title:    fmt.Sprintf("Individual coaching for %s", u.Name),
						Message: fmt.Sprintf("%s scored %d and %d on consecutive %s assessments. Schedule a one-on-one coaching session.",
							u.Name, prev.Score, cur.Score, s.label),
						UserID:      &userID,
						ModuleID:    s.mod,
						GroupID:     u.GroupID,
						Source:      model.SourceRule,
						Metadata:    metadata(map[string]interface{}{"scores": []int{prev.Score, cur.Score}, "competency": s.label}),
						GeneratedAt: in.Now,
					})
					break
				}
			}
		}
	}
	return recs
}

// TrendAlerts compares each module's mean score in the trailing window with the window before.
func TrendAlerts(in RuleInput, policy Policy) []model.Recommendation {
	modules := SortModules(in.Modules)
	roster := make(map[uint]bool, len(in.Technicians))
	for _, u := range in.Technicians {
		roster[u.ID] = true
	}

	currentStart := in.Now.Add(-policy.TrendWindow)
	previousStart := currentStart.Add(-policy.TrendWindow)

	type window struct{ sum, n float64 }
	current := make(map[uint]*window)
	previous := make(map[uint]*window)
	for _, rec := range in.Competencies {
		if !roster[rec.UserID] || rec.AssessedAt.After(in.Now) {
			continue
		}
		moduleID, ok := LinkCompetency(rec, modules, policy.LegacyCompetencyMatch)
		if !ok {
			continue
		}
		var w map[uint]*window
		switch {
		case !rec.AssessedAt.Before(currentStart):
			w = current
		case !rec.AssessedAt.Before(previousStart):
			w = previous
		default:
			continue
		}
		if w[moduleID] == nil {
			w[moduleID] = &window{}
		}
		w[moduleID].sum += float64(rec.Score)
		w[moduleID].n++
	}

	var recs []model.Recommendation
	for _, m := range modules {
		cur, prev := current[m.ID], previous[m.ID]
		if cur == nil || prev == nil {
			continue
		}
		curMean, prevMean := cur.sum/cur.n, prev.sum/prev.n
		delta := curMean - prevMean
		moduleID := m.ID
		meta := metadata(map[string]interface{}{
			"currentMean":  round1(curMean),
			"previousMean": round1(prevMean),
			"delta":        round1(delta),
		})
		switch {
		case delta > policy.TrendDelta:
			recs = append(recs, model.Recommendation{
				Kind:        model.KindPositiveTrend,
				Severity:    model.SeverityMedium,
				Title:       fmt.Sprintf("Scores improving in %s", m.Title),
				Message:     fmt.Sprintf("Average %s scores rose %.1f points over the last week. Recognise the team's progress.", m.Title, delta),
				ModuleID:    &moduleID,
				Source:      model.SourceRule,
				Metadata:    meta,
				GeneratedAt: in.Now,
			})
		case delta < -policy.TrendDelta:
			recs = append(recs, model.Recommendation{
				Kind:        model.KindReviewTraining,
				Severity:    model.SeverityHigh,
				Title:       fmt.Sprintf("Review training for %s", m.Title),
				Message:     fmt.Sprintf("Average %s scores fell %.1f points over the last week. Review the module content and delivery.", m.Title, -delta),
				ModuleID:    &moduleID,
				Source:      model.SourceRule,
				Metadata:    meta,
				GeneratedAt: in.Now,
			})
		}
	}
	return recs
}

// GroupAlerts fires when enough of a group's scored members are below the low-score line on
// a module. Each member counts with their latest score.
func GroupAlerts(in RuleInput, policy Policy) []model.Recommendation {
	modules := SortModules(in.Modules)
	groups := make([]model.TeamGroup, len(in.Groups))
	copy(groups, in.Groups)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })

	type key struct{ user, module uint }
	latest := make(map[key]model.CompetencyRecord)
	for _, rec := range in.Competencies {
		moduleID, ok := LinkCompetency(rec, modules, policy.LegacyCompetencyMatch)
		if !ok {
			continue
		}
		k := key{rec.UserID, moduleID}
		if prev, ok := latest[k]; !ok || rec.AssessedAt.After(prev.AssessedAt) ||
			(rec.AssessedAt.Equal(prev.AssessedAt) && rec.ID > prev.ID) {
			latest[k] = rec
		}
	}

	var recs []model.Recommendation
	for _, g := range groups {
		var members []model.User
		for _, u := range in.Technicians {
			if u.GroupID != nil && *u.GroupID == g.ID {
				members = append(members, u)
			}
		}
		if len(members) == 0 {
			continue
		}
		for _, m := range modules {
			scored, low := 0, 0
			for _, u := range members {
				rec, ok := latest[key{u.ID, m.ID}]
				if !ok {
					continue
				}
				scored++
				if rec.Score < policy.GroupLowScore {
					low++
				}
			}
			if scored == 0 {
				continue
			}
			ratio := float64(low) / float64(scored)
			if ratio < policy.GroupLowScoreRatio {
				continue
			}
			groupID, moduleID := g.ID, m.ID
			recs = append(recs, model.Recommendation{
				Kind:     model.KindAssignTraining,
				Severity: model.SeverityHigh,
				Title:    fmt.Sprintf("Assign %s to %s", m.Title, g.Name),
				Message: fmt.Sprintf("%d of %d assessed technicians in %s scored below %d on %s. Assign refresher training to the group.",
					low, scored, g.Name, policy.GroupLowScore, m.Title),
				ModuleID:    &moduleID,
				GroupID:     &groupID,
				Source:      model.SourceRule,
				Metadata:    metadata(map[string]interface{}{"lowCount": low, "scoredCount": scored, "ratio": round1(ratio * 100)}),
				GeneratedAt: in.Now,
			})
		}
	}
	return recs
}

// GapAlerts turns team-wide skill gaps into training assignments.
func GapAlerts(mods []ModuleStats, now time.Time) []model.Recommendation {
	var recs []model.Recommendation
	for _, m := range mods {
		if !m.IsGap {
			continue
		}
		moduleID := m.ModuleID
		recs = append(recs, model.Recommendation{
			Kind:     model.KindAssignTraining,
			Severity: model.SeverityHigh,
			Title:    fmt.Sprintf("Skill gap: %s", m.Title),
			Message: fmt.Sprintf("%s has a %d%% completion rate and an average score of %.1f across the team.",
				m.Title, m.CompletionRate, m.AvgScore),
			ModuleID:    &moduleID,
			Source:      model.SourceRule,
			Metadata:    metadata(map[string]interface{}{"completionRate": m.CompletionRate, "avgScore": round1(m.AvgScore)}),
			GeneratedAt: now,
		})
	}
	return recs
}

// PrioritizeRecommendations orders by severity, keeping input order within a severity, and
// keeps at most limit entries. A non-positive limit keeps everything.
func PrioritizeRecommendations(recs []model.Recommendation, limit int) []model.Recommendation {
	sorted := make([]model.Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func sortByAssessed(recs []model.CompetencyRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].AssessedAt.Equal(recs[j].AssessedAt) {
			return recs[i].AssessedAt.Before(recs[j].AssessedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

func moduleTitles(modules []model.TrainingModule) map[uint]string {
	titles := make(map[uint]string, len(modules))
	for _, m := range modules {
		titles[m.ID] = m.Title
	}
	return titles
}

func metadata(v map[string]interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
