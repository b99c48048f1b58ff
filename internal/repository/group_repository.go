package repository

import (
	"context"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(group *model.TeamGroup) error {
	return r.DB.Create(group).Error
}

func (r *GroupRepository) FindByID(id uint) (*model.TeamGroup, error) {
	var group model.TeamGroup
	err := r.DB.First(&group, id).Error
	return &group, err
}

func (r *GroupRepository) List(ctx context.Context) ([]model.TeamGroup, error) {
	var groups []model.TeamGroup
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&groups).Error
	return groups, err
}
