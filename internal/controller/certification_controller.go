package controller

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/service"
	"pharmtrain_backend/internal/util"
)

type CertificationController struct {
	CertificationService *service.CertificationService
}

func NewCertificationController(certificationService *service.CertificationService) *CertificationController {
	return &CertificationController{CertificationService: certificationService}
}

type CreateCertificationRequest struct {
	Name      string     `json:"name" binding:"required" example:"CPhT"`
	Issuer    string     `json:"issuer" example:"PTCB"`
	IssuedAt  time.Time  `json:"issuedAt" binding:"required" example:"2025-01-15T00:00:00Z"`
	ExpiresAt *time.Time `json:"expiresAt" example:"2027-01-15T00:00:00Z"`
}

// @Summary List own certifications
// @Tags Certifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.CertificationView}
// @Router /api/certifications [get]
func (c *CertificationController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.CertificationService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// @Summary Record a certification
// @Tags Certifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCertificationRequest true "Certification"
// @Success 201 {object} util.Response{data=service.CertificationView}
// @Router /api/certifications [post]
func (c *CertificationController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateCertificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.CertificationService.Create(claims.UserID, &model.Certification{
		Name:      req.Name,
		Issuer:    req.Issuer,
		IssuedAt:  req.IssuedAt,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, util.ErrInvalidExpiry) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary Upload the certificate document
// @Description Accepts a PDF or an image.
// @Tags Certifications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certification ID"
// @Param file formData file true "Scanned certificate"
// @Success 200 {object} util.Response{data=service.CertificationView}
// @Router /api/certifications/{id}/document [post]
func (c *CertificationController) UploadDocument(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	id, ok := pathID(ctx)
	if !ok {
		return
	}
	view, err := c.CertificationService.UploadDocument(ctx.Request.Context(), claims.UserID, id, header.Filename, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCertNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrInvalidFileType):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// @Summary Certifications that are expired or expiring soon
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.CertificationView}
// @Router /api/team/certifications/expiring [get]
func (c *CertificationController) Expiring(ctx *gin.Context) {
	certs, err := c.CertificationService.Expiring(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}
