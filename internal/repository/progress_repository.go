package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/training"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

// ListByUsers loads the progress rows of a roster in one query.
func (r *ProgressRepository) ListByUsers(ctx context.Context, userIDs []uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := r.DB.WithContext(ctx).Where("user_id IN ?", userIDs).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) Find(userID, moduleID uint) (*model.ModuleProgress, error) {
	var row model.ModuleProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&row).Error
	return &row, err
}

// Upsert merges update into the stored row for (userID, moduleID). Progress never moves
// backwards and a completed row stays completed.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, moduleID uint, update training.ProgressUpdate, now time.Time) (*model.ModuleProgress, error) {
	var result model.ModuleProgress
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < 2; attempt++ {
			var current model.ModuleProgress
			err := tx.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&current).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			current.UserID = userID
			current.ModuleID = moduleID

			next := training.ApplyProgress(current, update, now)

			if current.ID != 0 {
				err = tx.Model(&model.ModuleProgress{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
					"completed":             next.Completed,
					"completion_percentage": next.CompletionPercentage,
					"completed_at":          next.CompletedAt,
					"updated_at":            now,
				}).Error
				if err != nil {
					return err
				}
				break
			}

			next.CreatedAt = now
			next.UpdatedAt = now
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				break
			}
			// another writer created the row first, merge into it
		}

		return tx.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
