package repository

import (
	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateResponse(resp *model.QuizResponse) error {
	return r.DB.Create(resp).Error
}

// ListResponses returns a technician's attempts on a module, newest first.
func (r *QuizRepository) ListResponses(userID, moduleID uint) ([]model.QuizResponse, error) {
	var responses []model.QuizResponse
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("created_at DESC, id DESC").
		Find(&responses).Error
	return responses, err
}
