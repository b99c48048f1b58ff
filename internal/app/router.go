package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pharmtrain_backend/docs"
	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/middleware"
	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerTechnicianRoutes(authGroup, c)

		manager := authGroup.Group("")
		manager.Use(middleware.RoleMiddleware(model.Manager))
		{
			a.registerManagerRoutes(manager, c)
			a.registerAdminRoutes(manager, c)
		}
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerTechnicianRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)

	modules := group.Group("/modules")
	{
		modules.GET("", c.learning.ListModules)
		modules.GET("/:id", c.learning.GetModule)
		modules.PUT("/:id/progress", c.learning.UpdateProgress)
		modules.POST("/:id/quiz", c.learning.SubmitQuiz)
	}
	group.GET("/progress/summary", c.learning.ProgressSummary)

	certs := group.Group("/certifications")
	{
		certs.GET("", c.certification.List)
		certs.POST("", c.certification.Create)
		certs.POST("/:id/document", c.certification.UploadDocument)
	}

	consultations := group.Group("/consultations")
	{
		consultations.POST("", c.consultation.OpenSession)
		consultations.GET("", c.consultation.ListSessions)
		consultations.GET("/:id/messages", c.consultation.Messages)
		consultations.POST("/:id/messages", c.consultation.PostMessage)
		consultations.GET("/:id/ws", c.consultation.HandleWS)
	}
}

func (a *App) registerManagerRoutes(group *gin.RouterGroup, c *controllers) {
	team := group.Group("/team")
	{
		team.GET("/overview", c.team.Overview)
		team.GET("/technicians", c.team.Technicians)
		team.GET("/modules", c.team.Modules)
		team.GET("/skill-gaps", c.team.SkillGaps)
		team.GET("/leaderboard", c.team.Leaderboard)
		team.GET("/distribution", c.team.Distribution)
		team.GET("/groups", c.team.ListGroups)

		team.POST("/recommendations/generate", c.recommendation.Generate)
		team.GET("/recommendations", c.recommendation.List)
		team.PATCH("/recommendations/:id/acknowledge", c.recommendation.Acknowledge)

		team.GET("/certifications/expiring", c.certification.Expiring)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	{
		admin.POST("/modules", c.admin.CreateModule)
		admin.POST("/modules/:id/questions", c.admin.AddQuestion)
		admin.POST("/modules/:id/video", c.admin.UploadVideo)
		admin.POST("/competencies", c.admin.RecordCompetency)
		admin.POST("/groups", c.team.CreateGroup)
		admin.PUT("/users/:id/group", c.team.AssignGroup)
	}
}
