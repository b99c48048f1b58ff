package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type CertificationRepository struct {
	DB *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{DB: db}
}

func (r *CertificationRepository) Create(cert *model.Certification) error {
	return r.DB.Create(cert).Error
}

func (r *CertificationRepository) FindByID(id uint) (*model.Certification, error) {
	var cert model.Certification
	err := r.DB.First(&cert, id).Error
	return &cert, err
}

func (r *CertificationRepository) ListByUser(userID uint) ([]model.Certification, error) {
	var certs []model.Certification
	err := r.DB.Where("user_id = ?", userID).Order("expires_at ASC, id ASC").Find(&certs).Error
	return certs, err
}

// ListExpiringBefore returns certifications with an expiry date up to before, already expired
// ones included.
func (r *CertificationRepository) ListExpiringBefore(ctx context.Context, before time.Time) ([]model.Certification, error) {
	var certs []model.Certification
	err := r.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", before).
		Order("expires_at ASC, id ASC").
		Find(&certs).Error
	return certs, err
}

func (r *CertificationRepository) UpdateDocument(id uint, url string) error {
	return r.DB.Model(&model.Certification{}).Where("id = ?", id).Update("document_url", url).Error
}
