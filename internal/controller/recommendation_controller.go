package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/util"
)

type RecommendationController struct {
	RecommendationService *service.RecommendationService
}

func NewRecommendationController(recommendationService *service.RecommendationService) *RecommendationController {
	return &RecommendationController{RecommendationService: recommendationService}
}

// @Summary Generate recommendations
// @Description Runs the coaching, trend, group and skill-gap rules, adds AI advice when available and replaces the open batch.
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Recommendation}
// @Router /api/team/recommendations/generate [post]
func (c *RecommendationController) Generate(ctx *gin.Context) {
	recs, err := c.RecommendationService.Generate(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, recs)
}

// @Summary List recommendations
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param open query bool false "Only unacknowledged entries (default true)"
// @Success 200 {object} util.Response{data=[]model.Recommendation}
// @Router /api/team/recommendations [get]
func (c *RecommendationController) List(ctx *gin.Context) {
	recs, err := c.RecommendationService.List(ctx.Request.Context(), util.ParseBool(ctx.Query("open"), true))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, recs)
}

// @Summary Acknowledge a recommendation
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recommendation ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/team/recommendations/{id}/acknowledge [patch]
func (c *RecommendationController) Acknowledge(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.RecommendationService.Acknowledge(id); err != nil {
		if errors.Is(err, util.ErrRecommendationGone) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Recommendation acknowledged"})
}
