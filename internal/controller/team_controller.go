package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/util"
)

// TeamController serves the manager reports. Every report accepts an optional group_id.
type TeamController struct {
	AnalyticsService *service.AnalyticsService
	TeamService      *service.TeamService
}

func NewTeamController(analyticsService *service.AnalyticsService, teamService *service.TeamService) *TeamController {
	return &TeamController{AnalyticsService: analyticsService, TeamService: teamService}
}

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required" example:"Night shift"`
}

type AssignGroupRequest struct {
	GroupID *uint `json:"groupId" example:"1"`
}

// groupFilter reads the optional group_id query. It answers 400 and returns false on a bad id.
func groupFilter(ctx *gin.Context) (*uint, bool) {
	raw := ctx.Query("group_id")
	if raw == "" {
		return nil, true
	}
	id, err := util.ParseID(raw)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return nil, false
	}
	return &id, true
}

// @Summary Team overview
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group filter"
// @Success 200 {object} util.Response{data=training.TeamOverview}
// @Router /api/team/overview [get]
func (c *TeamController) Overview(ctx *gin.Context) {
	group, ok := groupFilter(ctx)
	if !ok {
		return
	}
	overview, err := c.AnalyticsService.Overview(ctx.Request.Context(), group)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary Per-technician statistics
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group filter"
// @Success 200 {object} util.Response{data=[]training.TechnicianStats}
// @Router /api/team/technicians [get]
func (c *TeamController) Technicians(ctx *gin.Context) {
	group, ok := groupFilter(ctx)
	if !ok {
		return
	}
	stats, err := c.AnalyticsService.TeamStats(ctx.Request.Context(), group)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats.Technicians)
}

// @Summary Per-module statistics
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group filter"
// @Success 200 {object} util.Response{data=[]training.ModuleStats}
// @Router /api/team/modules [get]
func (c *TeamController) Modules(ctx *gin.Context) {
	group, ok := groupFilter(ctx)
	if !ok {
		return
	}
	stats, err := c.AnalyticsService.TeamStats(ctx.Request.Context(), group)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats.Modules)
}

// @Summary Modules flagged as skill gaps
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group filter"
// @Success 200 {object} util.Response{data=[]training.ModuleStats}
// @Router /api/team/skill-gaps [get]
func (c *TeamController) SkillGaps(ctx *gin.Context) {
	group, ok := groupFilter(ctx)
	if !ok {
		return
	}
	gaps, err := c.AnalyticsService.SkillGaps(ctx.Request.Context(), group)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gaps)
}

// @Summary Leaderboard by average score
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group filter"
// @Success 200 {object} util.Response{data=[]training.LeaderboardEntry}
// @Router /api/team/leaderboard [get]
func (c *TeamController) Leaderboard(ctx *gin.Context) {
	group, ok := groupFilter(ctx)
	if !ok {
		return
	}
	board, err := c.AnalyticsService.Leaderboard(ctx.Request.Context(), group)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, board)
}

// @Summary Score distribution
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group filter"
// @Success 200 {object} util.Response{data=[]training.BucketCount}
// @Router /api/team/distribution [get]
func (c *TeamController) Distribution(ctx *gin.Context) {
	group, ok := groupFilter(ctx)
	if !ok {
		return
	}
	dist, err := c.AnalyticsService.Distribution(ctx.Request.Context(), group)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dist)
}

// @Summary List groups
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TeamGroup}
// @Router /api/team/groups [get]
func (c *TeamController) ListGroups(ctx *gin.Context) {
	groups, err := c.TeamService.ListGroups(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}

// @Summary Create a group
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateGroupRequest true "Group"
// @Success 201 {object} util.Response{data=model.TeamGroup}
// @Router /api/admin/groups [post]
func (c *TeamController) CreateGroup(ctx *gin.Context) {
	var req CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.TeamService.CreateGroup(req.Name)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, group)
}

// @Summary Assign a technician to a group
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body AssignGroupRequest true "Target group, null to clear"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/group [put]
func (c *TeamController) AssignGroup(ctx *gin.Context) {
	var req AssignGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, ok := pathID(ctx)
	if !ok {
		return
	}
	err := c.TeamService.AssignGroup(ctx.Request.Context(), id, req.GroupID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound), errors.Is(err, util.ErrGroupNotFound):
			util.Error(ctx, http.StatusNotFound, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"message": "Group updated"})
}
