package repository

import (
	"context"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.TrainingModule) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.TrainingModule, error) {
	var module model.TrainingModule
	err := r.DB.First(&module, id).Error
	return &module, err
}

// List returns every module in display order.
func (r *ModuleRepository) List(ctx context.Context) ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.WithContext(ctx).Order("order_index ASC, id ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) UpdateVideo(id uint, url string, durationMinutes int) error {
	updates := map[string]interface{}{"video_url": url}
	if durationMinutes > 0 {
		updates["duration_minutes"] = durationMinutes
	}
	return r.DB.Model(&model.TrainingModule{}).Where("id = ?", id).Updates(updates).Error
}

func (r *ModuleRepository) AddQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

// ListQuestions returns a module's questions in quiz order.
func (r *ModuleRepository) ListQuestions(moduleID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("module_id = ?", moduleID).Order("position ASC, id ASC").Find(&questions).Error
	return questions, err
}

func (r *ModuleRepository) CountQuestions(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizQuestion{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}
