package repository

import (
	"context"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

// ReplaceOpen swaps the unacknowledged batch for recs. Acknowledged rows are kept as history.
func (r *RecommendationRepository) ReplaceOpen(ctx context.Context, recs []model.Recommendation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("acknowledged = ?", false).Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.Create(&recs).Error
	})
}

// List returns recommendations in the order they were generated. With openOnly set,
// acknowledged entries are skipped.
func (r *RecommendationRepository) List(ctx context.Context, openOnly bool) ([]model.Recommendation, error) {
	var recs []model.Recommendation
	q := r.DB.WithContext(ctx)
	if openOnly {
		q = q.Where("acknowledged = ?", false)
	}
	err := q.Order("generated_at DESC, id ASC").Find(&recs).Error
	return recs, err
}

func (r *RecommendationRepository) Acknowledge(id uint) error {
	res := r.DB.Model(&model.Recommendation{}).Where("id = ?", id).Update("acknowledged", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
