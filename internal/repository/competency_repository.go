package repository

import (
	"context"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type CompetencyRepository struct {
	DB *gorm.DB
}

func NewCompetencyRepository(db *gorm.DB) *CompetencyRepository {
	return &CompetencyRepository{DB: db}
}

func (r *CompetencyRepository) Create(rec *model.CompetencyRecord) error {
	return r.DB.Create(rec).Error
}

// ListByUsers returns the records of a roster ordered by assessment time.
func (r *CompetencyRepository) ListByUsers(ctx context.Context, userIDs []uint) ([]model.CompetencyRecord, error) {
	var recs []model.CompetencyRecord
	if len(userIDs) == 0 {
		return recs, nil
	}
	err := r.DB.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("assessed_at ASC, id ASC").
		Find(&recs).Error
	return recs, err
}
