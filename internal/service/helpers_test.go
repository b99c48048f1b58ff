package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/testutil"
	"pharmtrain_backend/internal/training"
)

var fixedNow = time.Date(2026, 4, 20, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	users     *repository.UserRepository
	groups    *repository.GroupRepository
	modules   *repository.ModuleRepository
	progress  *repository.ProgressRepository
	quiz      *repository.QuizRepository
	comps     *repository.CompetencyRepository
	recs      *repository.RecommendationRepository
	policy    *PolicyStore
	cache     *memoryCache
	analytics *AnalyticsService
	learning  *LearningService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		modules:  repository.NewModuleRepository(db),
		progress: repository.NewProgressRepository(db),
		quiz:     repository.NewQuizRepository(db),
		comps:    repository.NewCompetencyRepository(db),
		recs:     repository.NewRecommendationRepository(db),
		policy:   NewPolicyStore(training.DefaultPolicy()),
		cache:    newMemoryCache(),
	}
	f.analytics = NewAnalyticsService(f.users, f.modules, f.progress, f.comps, f.cache, f.policy)
	f.learning = NewLearningService(f.modules, f.progress, f.quiz, f.comps, f.policy, f.analytics)
	f.learning.Now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) technician(t *testing.T, name string, group *uint) model.User {
	t.Helper()
	u := model.User{Name: name, Email: name + "@pharm.test", Password: "x", Role: model.Technician, GroupID: group}
	require.NoError(t, f.users.Create(&u))
	return u
}

func (f *fixture) module(t *testing.T, title string, order int, correct ...string) model.TrainingModule {
	t.Helper()
	m := model.TrainingModule{Title: title, OrderIndex: order}
	require.NoError(t, f.modules.Create(&m))
	for i, c := range correct {
		require.NoError(t, f.modules.AddQuestion(&model.QuizQuestion{
			ModuleID:      m.ID,
			Position:      i,
			Prompt:        "question",
			Options:       []string{"wrong", c},
			CorrectAnswer: c,
		}))
	}
	return m
}

func techSession(u model.User) training.Session {
	return training.Session{UserID: u.ID, Role: model.Technician}
}

// memoryCache is an in-process TeamStatsCache for tests.
type memoryCache struct {
	mu          sync.Mutex
	data        map[string]training.TeamStats
	hits        int
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]training.TeamStats)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*training.TeamStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	if ok {
		c.hits++
	}
	return &s, ok
}

func (c *memoryCache) Set(ctx context.Context, key string, stats *training.TeamStats) {
	c.mu.Lock()
	c.data[key] = *stats
	c.mu.Unlock()
}

func (c *memoryCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.data = make(map[string]training.TeamStats)
	c.invalidated++
	c.mu.Unlock()
}
