package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/util"
	"pharmtrain_backend/pkg/logger"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	Stats    statsInvalidator
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, stats statsInvalidator) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Stats:    stats,
	}
}

// Register creates a technician account. Manager accounts are provisioned by the seed script.
func (s *AuthService) Register(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	user.Role = model.Technician
	if err := s.UserRepo.Create(user); err != nil {
		return err
	}
	if s.Stats != nil {
		s.Stats.Invalidate(ctx)
	}
	return nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to record login time", zap.Uint("userId", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	return token, user, nil
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
