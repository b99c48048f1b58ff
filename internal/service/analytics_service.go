package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/internal/util"
)

// AnalyticsService builds the manager-facing team reports. Statistics are always derived from
// the raw progress and competency rows.
type AnalyticsService struct {
	UserRepo       *repository.UserRepository
	ModuleRepo     *repository.ModuleRepository
	ProgressRepo   *repository.ProgressRepository
	CompetencyRepo *repository.CompetencyRepository
	Cache          TeamStatsCache
	Policy         *PolicyStore
}

func NewAnalyticsService(
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.ProgressRepository,
	competencyRepo *repository.CompetencyRepository,
	cache TeamStatsCache,
	policy *PolicyStore,
) *AnalyticsService {
	return &AnalyticsService{
		UserRepo:       userRepo,
		ModuleRepo:     moduleRepo,
		ProgressRepo:   progressRepo,
		CompetencyRepo: competencyRepo,
		Cache:          cache,
		Policy:         policy,
	}
}

// TeamData is the bulk snapshot every team report is computed from.
type TeamData struct {
	Technicians  []model.User
	Modules      []model.TrainingModule
	Progress     []model.ModuleProgress
	Competencies []model.CompetencyRecord
}

func (s *AnalyticsService) LoadTeamData(ctx context.Context, groupID *uint) (*TeamData, error) {
	techs, err := s.UserRepo.ListTechnicians(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load technicians: %w", err)
	}
	modules, err := s.ModuleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}

	ids := make([]uint, len(techs))
	for i, u := range techs {
		ids[i] = u.ID
	}
	progress, err := s.ProgressRepo.ListByUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	competencies, err := s.CompetencyRepo.ListByUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load competencies: %w", err)
	}

	return &TeamData{
		Technicians:  techs,
		Modules:      modules,
		Progress:     progress,
		Competencies: competencies,
	}, nil
}

func (s *AnalyticsService) TeamStats(ctx context.Context, groupID *uint) (*training.TeamStats, error) {
	key := teamStatsKey(groupID)
	if s.Cache != nil {
		if stats, ok := s.Cache.Get(ctx, key); ok {
			return stats, nil
		}
	}

	data, err := s.LoadTeamData(ctx, groupID)
	if err != nil {
		return nil, err
	}

	stats := training.ComputeTeamStats(training.TeamInput{
		Technicians:  data.Technicians,
		Progress:     data.Progress,
		Competencies: data.Competencies,
		Modules:      data.Modules,
	}, s.Policy.Get())

	if s.Cache != nil {
		s.Cache.Set(ctx, key, &stats)
	}
	return &stats, nil
}

func (s *AnalyticsService) Overview(ctx context.Context, groupID *uint) (*training.TeamOverview, error) {
	stats, err := s.TeamStats(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ov := training.Overview(*stats)
	return &ov, nil
}

func (s *AnalyticsService) Leaderboard(ctx context.Context, groupID *uint) ([]training.LeaderboardEntry, error) {
	stats, err := s.TeamStats(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return training.Leaderboard(stats.Technicians), nil
}

func (s *AnalyticsService) SkillGaps(ctx context.Context, groupID *uint) ([]training.ModuleStats, error) {
	stats, err := s.TeamStats(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return training.SkillGaps(stats.Modules), nil
}

func (s *AnalyticsService) Distribution(ctx context.Context, groupID *uint) ([]training.BucketCount, error) {
	stats, err := s.TeamStats(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return training.Distribution(stats.Technicians), nil
}

// TechnicianSummary computes one user's own statistics without touching the team cache.
func (s *AnalyticsService) TechnicianSummary(ctx context.Context, userID uint) (*training.TechnicianStats, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	modules, err := s.ModuleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}
	progress, err := s.ProgressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	competencies, err := s.CompetencyRepo.ListByUsers(ctx, []uint{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load competencies: %w", err)
	}

	stats := training.ComputeTeamStats(training.TeamInput{
		Technicians:  []model.User{*user},
		Progress:     progress,
		Competencies: competencies,
		Modules:      modules,
	}, s.Policy.Get())
	return &stats.Technicians[0], nil
}

// Invalidate drops cached team statistics after a write that changes them.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
}
