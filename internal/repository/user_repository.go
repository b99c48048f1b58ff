package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastLogin(userID uint, at time.Time) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_login", at).Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", time.Now()).Error
}

// ListTechnicians returns the technician roster ordered by id, optionally limited to one group.
func (r *UserRepository) ListTechnicians(ctx context.Context, groupID *uint) ([]model.User, error) {
	var users []model.User
	q := r.DB.WithContext(ctx).Where("role = ?", model.Technician)
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	err := q.Order("id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) AssignGroup(userID uint, groupID *uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("group_id", groupID).Error
}
