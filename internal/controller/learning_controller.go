package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/internal/util"
)

type LearningController struct {
	LearningService  *service.LearningService
	AnalyticsService *service.AnalyticsService
}

func NewLearningController(learningService *service.LearningService, analyticsService *service.AnalyticsService) *LearningController {
	return &LearningController{LearningService: learningService, AnalyticsService: analyticsService}
}

type ProgressRequest struct {
	Percentage int `json:"percentage" binding:"min=0,max=100" example:"40"`
}

type QuizSubmitRequest struct {
	Selections []int `json:"selections" binding:"required" example:"0,2,1"`
}

func session(ctx *gin.Context, claims *util.Claims) training.Session {
	return training.Session{
		UserID:          claims.UserID,
		Role:            claims.Role,
		ManagerOverride: util.ParseBool(ctx.Query("override"), false),
	}
}

// pathID reads the :id path parameter and answers 400 when it is not a valid id.
func pathID(ctx *gin.Context) (uint, bool) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return 0, false
	}
	return id, true
}

// writeLearningError maps the learning errors onto response codes.
func writeLearningError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrModuleNotFound):
		util.NotFound(ctx)
	case errors.Is(err, training.ErrModuleLocked):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, training.ErrAnswerMissing), errors.Is(err, training.ErrNoQuestions):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary List training modules
// @Description Every module in order with the caller's progress and unlock state. Managers may pass override=true to unlock everything.
// @Tags Learning
// @Produce json
// @Security BearerAuth
// @Param override query bool false "Manager override"
// @Success 200 {object} util.Response{data=[]training.ModuleState}
// @Router /api/modules [get]
func (c *LearningController) ListModules(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	states, err := c.LearningService.ListModules(ctx.Request.Context(), session(ctx, claims))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, states)
}

// @Summary Module detail
// @Tags Learning
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param override query bool false "Manager override"
// @Success 200 {object} util.Response{data=service.ModuleDetail}
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [get]
func (c *LearningController) GetModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}
	detail, err := c.LearningService.GetModule(ctx.Request.Context(), session(ctx, claims), id)
	if err != nil {
		writeLearningError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary Report viewing progress
// @Tags Learning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param body body ProgressRequest true "Progress"
// @Success 200 {object} util.Response{data=model.ModuleProgress}
// @Failure 403 {object} util.Response "Module locked"
// @Router /api/modules/{id}/progress [put]
func (c *LearningController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}
	row, err := c.LearningService.UpdateProgress(ctx.Request.Context(), session(ctx, claims), id, req.Percentage)
	if err != nil {
		writeLearningError(ctx, err)
		return
	}
	util.Success(ctx, row)
}

// @Summary Submit a module quiz
// @Description Scores the selections. A passing attempt completes the module.
// @Tags Learning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param body body QuizSubmitRequest true "One option index per question"
// @Success 200 {object} util.Response{data=service.QuizSubmission}
// @Failure 400 {object} util.Response "Unanswered question"
// @Router /api/modules/{id}/quiz [post]
func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req QuizSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}
	result, err := c.LearningService.SubmitQuiz(ctx.Request.Context(), session(ctx, claims), id, req.Selections)
	if err != nil {
		writeLearningError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Own progress summary
// @Tags Learning
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=training.TechnicianStats}
// @Router /api/progress/summary [get]
func (c *LearningController) ProgressSummary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.AnalyticsService.TechnicianSummary(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
