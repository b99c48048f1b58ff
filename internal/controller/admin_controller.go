package controller

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/util"
)

// AdminController holds the manager-only content and assessment endpoints.
type AdminController struct {
	LearningService *service.LearningService
	ContentService  *service.ContentService
}

func NewAdminController(learningService *service.LearningService, contentService *service.ContentService) *AdminController {
	return &AdminController{LearningService: learningService, ContentService: contentService}
}

type CreateModuleRequest struct {
	Title           string `json:"title" binding:"required" example:"Pharmacy Law"`
	Description     string `json:"description"`
	Category        string `json:"category" example:"Compliance"`
	OrderIndex      int    `json:"orderIndex" example:"1"`
	DurationMinutes int    `json:"durationMinutes" example:"20"`
}

type AddQuestionRequest struct {
	Position      int      `json:"position"`
	Prompt        string   `json:"prompt" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

type RecordCompetencyRequest struct {
	UserID     uint       `json:"userId" binding:"required"`
	ModuleID   *uint      `json:"moduleId"`
	Competency string     `json:"competency"`
	Score      int        `json:"score" binding:"min=0,max=100"`
	AssessedAt *time.Time `json:"assessedAt"`
	Notes      string     `json:"notes"`
}

// @Summary Create a training module
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateModuleRequest true "Module"
// @Success 201 {object} util.Response{data=model.TrainingModule}
// @Router /api/admin/modules [post]
func (c *AdminController) CreateModule(ctx *gin.Context) {
	var req CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module := &model.TrainingModule{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		OrderIndex:      req.OrderIndex,
		DurationMinutes: req.DurationMinutes,
	}
	if err := c.LearningService.CreateModule(ctx.Request.Context(), module); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// @Summary Add a quiz question
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param body body AddQuestionRequest true "Question"
// @Success 201 {object} util.Response{data=model.QuizQuestion}
// @Router /api/admin/modules/{id}/questions [post]
func (c *AdminController) AddQuestion(ctx *gin.Context) {
	var req AddQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q := &model.QuizQuestion{
		Position:      req.Position,
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.LearningService.AddQuestion(id, q); err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidQuestion):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// @Summary Upload a module video
// @Description Stores the video and sets the module duration from the file.
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Module ID"
// @Param file formData file true "Video"
// @Success 200 {object} util.Response{data=model.TrainingModule}
// @Router /api/admin/modules/{id}/video [post]
func (c *AdminController) UploadVideo(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}
	module, err := c.ContentService.UploadModuleVideo(ctx.Request.Context(), id, header)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidFileType):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, module)
}

// @Summary Record a competency assessment
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordCompetencyRequest true "Assessment"
// @Success 201 {object} util.Response{data=model.CompetencyRecord}
// @Router /api/admin/competencies [post]
func (c *AdminController) RecordCompetency(ctx *gin.Context) {
	var req RecordCompetencyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.ModuleID == nil && req.Competency == "" {
		util.BadRequest(ctx, "moduleId or competency is required")
		return
	}

	rec := &model.CompetencyRecord{
		UserID:     req.UserID,
		ModuleID:   req.ModuleID,
		Competency: req.Competency,
		Score:      req.Score,
		Notes:      req.Notes,
	}
	if req.AssessedAt != nil {
		rec.AssessedAt = *req.AssessedAt
	}
	if err := c.LearningService.RecordCompetency(ctx.Request.Context(), rec); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, rec)
}
