package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/internal/util"
	"pharmtrain_backend/pkg/logger"
	"pharmtrain_backend/pkg/monitoring"
)

// InsightProvider turns a team summary into free-text advice. AIService implements it.
type InsightProvider interface {
	Insight(ctx context.Context, summary []byte) (string, error)
}

type RecommendationService struct {
	Analytics       *AnalyticsService
	GroupRepo       *repository.GroupRepository
	RecRepo         *repository.RecommendationRepository
	AI              InsightProvider
	Policy          *PolicyStore
	Timeout         time.Duration
	MaxSummaryBytes int
	Now             func() time.Time
}

func NewRecommendationService(
	analytics *AnalyticsService,
	groupRepo *repository.GroupRepository,
	recRepo *repository.RecommendationRepository,
	ai InsightProvider,
	policy *PolicyStore,
	timeout time.Duration,
	maxSummaryBytes int,
) *RecommendationService {
	return &RecommendationService{
		Analytics:       analytics,
		GroupRepo:       groupRepo,
		RecRepo:         recRepo,
		AI:              ai,
		Policy:          policy,
		Timeout:         timeout,
		MaxSummaryBytes: maxSummaryBytes,
		Now:             time.Now,
	}
}

// Generate runs the rules over the whole team, adds the language model's advice when it is
// available, keeps the most severe entries and stores them as the open batch.
func (s *RecommendationService) Generate(ctx context.Context) ([]model.Recommendation, error) {
	policy := s.Policy.Get()
	now := s.Now()

	data, err := s.Analytics.LoadTeamData(ctx, nil)
	if err != nil {
		return nil, err
	}
	groups, err := s.GroupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	stats := training.ComputeTeamStats(training.TeamInput{
		Technicians:  data.Technicians,
		Progress:     data.Progress,
		Competencies: data.Competencies,
		Modules:      data.Modules,
	}, policy)

	recs := training.GenerateRuleRecommendations(training.RuleInput{
		Technicians:  data.Technicians,
		Competencies: data.Competencies,
		Modules:      data.Modules,
		Groups:       groups,
		ModuleStats:  stats.Modules,
		Now:          now,
	}, policy)
	monitoring.RecommendationsGenerated.WithLabelValues(model.SourceRule).Add(float64(len(recs)))

	if insight, ok := s.insight(ctx, BuildSummary(stats, recs, s.MaxSummaryBytes)); ok {
		recs = append(recs, model.Recommendation{
			Kind:        model.KindInformational,
			Severity:    model.SeverityLow,
			Title:       "Strategic suggestions",
			Message:     insight,
			Source:      model.SourceAI,
			GeneratedAt: now,
		})
		monitoring.RecommendationsGenerated.WithLabelValues(model.SourceAI).Inc()
	}

	recs = training.PrioritizeRecommendations(recs, policy.RecommendationCap)

	if err := s.RecRepo.ReplaceOpen(ctx, recs); err != nil {
		return nil, fmt.Errorf("failed to save recommendations: %w", err)
	}
	logger.Log.Info("Recommendations generated", zap.Int("count", len(recs)))
	return recs, nil
}

func (s *RecommendationService) insight(ctx context.Context, summary []byte) (string, bool) {
	if s.AI == nil {
		return "", false
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	text, err := s.AI.Insight(ctx, summary)
	if err != nil {
		logger.Log.Warn("AI insight skipped", zap.Error(err))
		return "", false
	}
	if text == "" {
		return "", false
	}
	return text, true
}

func (s *RecommendationService) List(ctx context.Context, openOnly bool) ([]model.Recommendation, error) {
	return s.RecRepo.List(ctx, openOnly)
}

func (s *RecommendationService) Acknowledge(id uint) error {
	if err := s.RecRepo.Acknowledge(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRecommendationGone
		}
		return err
	}
	return nil
}

type teamSummary struct {
	Overview     training.TeamOverview  `json:"overview"`
	SkillGaps    []gapSummary           `json:"skillGaps,omitempty"`
	Distribution []training.BucketCount `json:"distribution"`
	Alerts       []string               `json:"alerts,omitempty"`
}

type gapSummary struct {
	Module         string  `json:"module"`
	CompletionRate int     `json:"completionRate"`
	AvgScore       float64 `json:"avgScore"`
}

const summaryGapLimit = 5

// BuildSummary encodes the statistics sent to the language model. Alert titles and then gaps
// are dropped from the end until the document fits in maxBytes.
func BuildSummary(stats training.TeamStats, recs []model.Recommendation, maxBytes int) []byte {
	sum := teamSummary{
		Overview:     training.Overview(stats),
		Distribution: training.Distribution(stats.Technicians),
	}
	for _, g := range training.SkillGaps(stats.Modules) {
		if len(sum.SkillGaps) == summaryGapLimit {
			break
		}
		sum.SkillGaps = append(sum.SkillGaps, gapSummary{Module: g.Title, CompletionRate: g.CompletionRate, AvgScore: g.AvgScore})
	}
	for _, r := range recs {
		sum.Alerts = append(sum.Alerts, r.Title)
	}

	for {
		raw, err := json.Marshal(sum)
		if err != nil {
			return []byte("{}")
		}
		if maxBytes <= 0 || len(raw) <= maxBytes {
			return raw
		}
		switch {
		case len(sum.Alerts) > 0:
			sum.Alerts = sum.Alerts[:len(sum.Alerts)-1]
		case len(sum.SkillGaps) > 0:
			sum.SkillGaps = sum.SkillGaps[:len(sum.SkillGaps)-1]
		default:
			return raw
		}
	}
}
