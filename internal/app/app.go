package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/controller"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/pkg/configwatcher"
	"pharmtrain_backend/pkg/database"
	"pharmtrain_backend/pkg/logger"
	"pharmtrain_backend/pkg/monitoring"
	"pharmtrain_backend/pkg/security"
	"pharmtrain_backend/pkg/tracing"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	scheduler       *cron.Cron
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user           *repository.UserRepository
	group          *repository.GroupRepository
	module         *repository.ModuleRepository
	progress       *repository.ProgressRepository
	quiz           *repository.QuizRepository
	competency     *repository.CompetencyRepository
	recommendation *repository.RecommendationRepository
	consultation   *repository.ConsultationRepository
	certification  *repository.CertificationRepository
}

type services struct {
	policy         *service.PolicyStore
	auth           *service.AuthService
	storage        *service.StorageService
	ai             *service.AIService
	analytics      *service.AnalyticsService
	learning       *service.LearningService
	team           *service.TeamService
	recommendation *service.RecommendationService
	content        *service.ContentService
	certification  *service.CertificationService
	consultation   *service.ConsultationService
	hub            *service.ConsultationHub
}

type controllers struct {
	auth           *controller.AuthController
	learning       *controller.LearningController
	team           *controller.TeamController
	recommendation *controller.RecommendationController
	certification  *controller.CertificationController
	consultation   *controller.ConsultationController
	admin          *controller.AdminController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:           repository.NewUserRepository(db),
		group:          repository.NewGroupRepository(db),
		module:         repository.NewModuleRepository(db),
		progress:       repository.NewProgressRepository(db),
		quiz:           repository.NewQuizRepository(db),
		competency:     repository.NewCompetencyRepository(db),
		recommendation: repository.NewRecommendationRepository(db),
		consultation:   repository.NewConsultationRepository(db),
		certification:  repository.NewCertificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.policy = service.NewPolicyStore(service.PolicyFromConfig(cfg.Training))
	s.storage = service.NewStorageService(cfg)
	s.ai = service.NewAIService(cfg.AI)

	var cache service.TeamStatsCache
	if rdb != nil {
		cache = service.NewRedisTeamStatsCache(rdb, cfg.Cache.TeamStatsTTL())
	}
	s.analytics = service.NewAnalyticsService(repos.user, repos.module, repos.progress, repos.competency, cache, s.policy)
	s.auth = service.NewAuthService(repos.user, cfg, s.analytics)
	s.learning = service.NewLearningService(repos.module, repos.progress, repos.quiz, repos.competency, s.policy, s.analytics)
	s.team = service.NewTeamService(repos.user, repos.group, s.analytics)
	s.recommendation = service.NewRecommendationService(
		s.analytics,
		repos.group,
		repos.recommendation,
		s.ai,
		s.policy,
		cfg.AI.Timeout(),
		cfg.AI.MaxSummaryBytes,
	)
	s.content = service.NewContentService(repos.module, s.storage)
	s.certification = service.NewCertificationService(repos.certification, s.storage, s.policy)

	var publisher service.MessagePublisher
	if rdb != nil {
		s.hub = service.NewConsultationHub(rdb)
		publisher = s.hub
	}
	s.consultation = service.NewConsultationService(repos.consultation, s.ai, publisher)

	// thresholds follow config file edits without a restart
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.policy.Set(service.PolicyFromConfig(newCfg.Training))
		s.analytics.Invalidate(context.Background())
		logger.Log.Info("Training policy reloaded", zap.Int("passPercentage", newCfg.Training.PassPercentage))
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:           controller.NewAuthController(s.auth),
		learning:       controller.NewLearningController(s.learning, s.analytics),
		team:           controller.NewTeamController(s.analytics, s.team),
		recommendation: controller.NewRecommendationController(s.recommendation),
		certification:  controller.NewCertificationController(s.certification),
		consultation:   controller.NewConsultationController(s.consultation, s.hub),
		admin:          controller.NewAdminController(s.learning, s.content),
		health:         controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	a.scheduler = a.startScheduler(ctx, a.Config.Schedule, s)

	go func() {
		err := configwatcher.WatchConfig(ctx, configFile, time.Second, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// the cache and live consultation updates are optional
		logger.Log.Warn("Redis unavailable, running without cache and realtime updates", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", filepath.Clean(cfg.Storage.LocalPath))
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// wait for an interrupt, then give in-flight requests 5 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.cancel != nil {
		a.cancel()
	}
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
