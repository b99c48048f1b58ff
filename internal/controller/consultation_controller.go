package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/util"
)

// ConsultationController handles the AI consultant chat.
type ConsultationController struct {
	ConsultationService *service.ConsultationService
	Hub                 *service.ConsultationHub
}

// OpenSessionRequest opens a consultation.
type OpenSessionRequest struct {
	Topic string `json:"topic" example:"Controlled substance logs"`
}

// PostMessageRequest asks the consultant a question.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required" example:"How long do we keep CII invoices?"`
}

func NewConsultationController(consultationService *service.ConsultationService, hub *service.ConsultationHub) *ConsultationController {
	return &ConsultationController{ConsultationService: consultationService, Hub: hub}
}

// OpenSession godoc
// @Summary Open a consultation session
// @Tags Consultation
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   request body OpenSessionRequest false "Session topic"
// @Success 201 {object} util.Response{data=model.ConsultationSession}
// @Router /api/consultations [post]
func (ctrl *ConsultationController) OpenSession(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	var req OpenSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.BadRequest(c, err.Error())
			return
		}
	}

	session, err := ctrl.ConsultationService.OpenSession(claims.UserID, req.Topic)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, session)
}

// ListSessions godoc
// @Summary List own consultation sessions
// @Tags Consultation
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.ConsultationSession}
// @Router /api/consultations [get]
func (ctrl *ConsultationController) ListSessions(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	sessions, err := ctrl.ConsultationService.ListSessions(claims.UserID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, sessions)
}

// Messages godoc
// @Summary Messages of a session
// @Tags Consultation
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "Session ID"
// @Success 200 {object} util.Response{data=[]model.ConsultationMessage}
// @Failure 404 {object} util.Response
// @Router /api/consultations/{id}/messages [get]
func (ctrl *ConsultationController) Messages(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	msgs, err := ctrl.ConsultationService.Messages(claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, msgs)
}

// PostMessage godoc
// @Summary Ask the consultant
// @Description Stores the question and the reply. When the model is unavailable the question is kept and 502 is returned.
// @Tags Consultation
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "Session ID"
// @Param   request body PostMessageRequest true "Question"
// @Success 200 {object} util.Response{data=object}
// @Failure 502 {object} util.Response "Consultant unavailable"
// @Router /api/consultations/{id}/messages [post]
func (ctrl *ConsultationController) PostMessage(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	question, reply, err := ctrl.ConsultationService.Ask(c.Request.Context(), claims.UserID, c.Param("id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(c)
		case errors.Is(err, util.ErrInsightUnavailable):
			util.BadGateway(c, "Consultant is unavailable, please try again later")
		case errors.Is(err, util.ErrEmptyMessage):
			util.BadRequest(c, err.Error())
		default:
			util.LogInternalError(c, err)
		}
		return
	}
	util.Success(c, gin.H{"question": question, "reply": reply})
}

// HandleWS godoc
// @Summary Subscribe to a session over WebSocket
// @Tags Consultation
// @Security BearerAuth
// @Param   id path string true "Session ID"
// @Param   token query string false "JWT Token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/consultations/{id}/ws [get]
func (ctrl *ConsultationController) HandleWS(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	session, err := ctrl.ConsultationService.Session(claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	if ctrl.Hub == nil {
		util.Error(c, http.StatusServiceUnavailable, "Realtime updates are unavailable")
		return
	}
	service.ServeWs(ctrl.Hub, c.Writer, c.Request, session.ID)
}
