package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/util"
)

// TeamService manages the pharmacy groups technicians report under.
type TeamService struct {
	UserRepo  *repository.UserRepository
	GroupRepo *repository.GroupRepository
	Stats     statsInvalidator
}

func NewTeamService(userRepo *repository.UserRepository, groupRepo *repository.GroupRepository, stats statsInvalidator) *TeamService {
	return &TeamService{UserRepo: userRepo, GroupRepo: groupRepo, Stats: stats}
}

func (s *TeamService) ListGroups(ctx context.Context) ([]model.TeamGroup, error) {
	return s.GroupRepo.List(ctx)
}

func (s *TeamService) CreateGroup(name string) (*model.TeamGroup, error) {
	group := &model.TeamGroup{Name: strings.TrimSpace(name)}
	if group.Name == "" {
		return nil, errors.New("group name is required")
	}
	if err := s.GroupRepo.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

// AssignGroup moves a technician into groupID, or out of every group when groupID is nil.
func (s *TeamService) AssignGroup(ctx context.Context, userID uint, groupID *uint) error {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}
	if groupID != nil {
		if _, err := s.GroupRepo.FindByID(*groupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrGroupNotFound
			}
			return err
		}
	}
	if err := s.UserRepo.AssignGroup(userID, groupID); err != nil {
		return err
	}
	if s.Stats != nil {
		s.Stats.Invalidate(ctx)
	}
	return nil
}

// Technicians lists the roster, optionally limited to one group.
func (s *TeamService) Technicians(ctx context.Context, groupID *uint) ([]model.User, error) {
	return s.UserRepo.ListTechnicians(ctx, groupID)
}
