package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
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

// statsInvalidator is satisfied by AnalyticsService.
type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

type LearningService struct {
	ModuleRepo     *repository.ModuleRepository
	ProgressRepo   *repository.ProgressRepository
	QuizRepo       *repository.QuizRepository
	CompetencyRepo *repository.CompetencyRepository
	Policy         *PolicyStore
	Stats          statsInvalidator
	Now            func() time.Time
}

func NewLearningService(
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.ProgressRepository,
	quizRepo *repository.QuizRepository,
	competencyRepo *repository.CompetencyRepository,
	policy *PolicyStore,
	stats statsInvalidator,
) *LearningService {
	return &LearningService{
		ModuleRepo:     moduleRepo,
		ProgressRepo:   progressRepo,
		QuizRepo:       quizRepo,
		CompetencyRepo: competencyRepo,
		Policy:         policy,
		Stats:          stats,
		Now:            time.Now,
	}
}

type QuestionView struct {
	ID       uint     `json:"id"`
	Position int      `json:"position"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
}

type ModuleDetail struct {
	training.ModuleState
	VideoURL  string         `json:"videoUrl,omitempty"`
	Questions []QuestionView `json:"questions"`
}

type QuizSubmission struct {
	training.QuizResult
	RetakeAllowed bool                  `json:"retakeAllowed"`
	ResponseID    uint                  `json:"responseId"`
	Progress      *model.ModuleProgress `json:"progress,omitempty"`
}

func (s *LearningService) moduleStates(ctx context.Context, session training.Session) ([]model.TrainingModule, []training.ModuleState, error) {
	modules, err := s.ModuleRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load modules: %w", err)
	}
	rows, err := s.ProgressRepo.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return modules, training.BuildModuleStates(modules, rows, session), nil
}

// ListModules returns every module with the session user's progress and unlock state.
func (s *LearningService) ListModules(ctx context.Context, session training.Session) ([]training.ModuleState, error) {
	_, states, err := s.moduleStates(ctx, session)
	return states, err
}

func (s *LearningService) GetModule(ctx context.Context, session training.Session, moduleID uint) (*ModuleDetail, error) {
	modules, states, err := s.moduleStates(ctx, session)
	if err != nil {
		return nil, err
	}
	state, ok := training.FindState(states, moduleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}

	questions, err := s.ModuleRepo.ListQuestions(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	detail := &ModuleDetail{ModuleState: state, Questions: make([]QuestionView, len(questions))}
	for _, m := range modules {
		if m.ID == moduleID {
			detail.VideoURL = m.VideoURL
			break
		}
	}
	for i, q := range questions {
		detail.Questions[i] = QuestionView{ID: q.ID, Position: q.Position, Prompt: q.Prompt, Options: []string(q.Options)}
	}
	return detail, nil
}

func (s *LearningService) checkUnlocked(ctx context.Context, session training.Session, moduleID uint) error {
	_, states, err := s.moduleStates(ctx, session)
	if err != nil {
		return err
	}
	if _, ok := training.FindState(states, moduleID); !ok {
		return util.ErrModuleNotFound
	}
	return training.CanStart(states, moduleID)
}

// UpdateProgress records viewing progress. A module without a quiz completes at 100; a module
// with a quiz stays below 100 until the quiz is passed.
func (s *LearningService) UpdateProgress(ctx context.Context, session training.Session, moduleID uint, percentage int) (*model.ModuleProgress, error) {
	if err := s.checkUnlocked(ctx, session, moduleID); err != nil {
		return nil, err
	}

	count, err := s.ModuleRepo.CountQuestions(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	update := training.ProgressUpdate{Percentage: percentage}
	if count == 0 {
		update.Completed = percentage >= 100
	} else if update.Percentage > 99 {
		update.Percentage = 99
	}

	row, err := s.ProgressRepo.Upsert(ctx, session.UserID, moduleID, update, s.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	s.invalidate(ctx)
	return row, nil
}

// SubmitQuiz scores the selections, stores the attempt and a competency record, and commits
// completion only when the attempt passes.
func (s *LearningService) SubmitQuiz(ctx context.Context, session training.Session, moduleID uint, selections []int) (*QuizSubmission, error) {
	if err := s.checkUnlocked(ctx, session, moduleID); err != nil {
		return nil, err
	}

	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	questions, err := s.ModuleRepo.ListQuestions(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	attempt, err := training.NewQuizAttempt(questions, s.Policy.Get().PassPercentage)
	if err != nil {
		return nil, err
	}
	if err := attempt.SelectAll(selections); err != nil {
		return nil, err
	}
	result, err := attempt.Submit()
	if err != nil {
		return nil, err
	}
	monitoring.QuizSubmissions.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()

	now := s.Now()
	resp := &model.QuizResponse{
		UserID:     session.UserID,
		ModuleID:   moduleID,
		Score:      result.Score,
		Total:      result.Total,
		Percentage: result.Percentage,
		Passed:     result.Passed,
		Answers:    selections,
	}
	if err := s.QuizRepo.CreateResponse(resp); err != nil {
		return nil, fmt.Errorf("failed to save quiz response: %w", err)
	}

	linked := moduleID
	rec := &model.CompetencyRecord{
		UserID:     session.UserID,
		ModuleID:   &linked,
		Competency: module.Title,
		Score:      result.Percentage,
		AssessedAt: now,
		Notes:      "quiz",
	}
	if err := s.CompetencyRepo.Create(rec); err != nil {
		return nil, fmt.Errorf("failed to save competency record: %w", err)
	}

	out := &QuizSubmission{QuizResult: result, RetakeAllowed: attempt.RetakeAllowed(), ResponseID: resp.ID}
	if result.Passed {
		row, err := s.ProgressRepo.Upsert(ctx, session.UserID, moduleID, training.ProgressUpdate{Percentage: 100, Completed: true}, now)
		if err != nil {
			return nil, fmt.Errorf("failed to save progress: %w", err)
		}
		out.Progress = row
	}

	logger.Log.Info("Quiz submitted",
		zap.Uint("userId", session.UserID),
		zap.Uint("moduleId", moduleID),
		zap.Int("percentage", result.Percentage),
		zap.Bool("passed", result.Passed),
	)
	s.invalidate(ctx)
	return out, nil
}

// RecordCompetency stores an assessment entered by a manager.
func (s *LearningService) RecordCompetency(ctx context.Context, rec *model.CompetencyRecord) error {
	rec.Competency = strings.TrimSpace(rec.Competency)
	if rec.ModuleID != nil {
		module, err := s.ModuleRepo.FindByID(*rec.ModuleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrModuleNotFound
			}
			return err
		}
		if rec.Competency == "" {
			rec.Competency = module.Title
		}
	}
	if rec.AssessedAt.IsZero() {
		rec.AssessedAt = s.Now()
	}
	if err := s.CompetencyRepo.Create(rec); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CreateModule stores a module and drops cached team stats so the new module shows up at once.
func (s *LearningService) CreateModule(ctx context.Context, module *model.TrainingModule) error {
	if err := s.ModuleRepo.Create(module); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *LearningService) AddQuestion(moduleID uint, q *model.QuizQuestion) error {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}
	if training.CorrectIndex(*q) < 0 {
		return util.ErrInvalidQuestion
	}
	q.ModuleID = moduleID
	return s.ModuleRepo.AddQuestion(q)
}

func (s *LearningService) invalidate(ctx context.Context) {
	if s.Stats != nil {
		s.Stats.Invalidate(ctx)
	}
}
