package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/internal/util"
)

type CertificationService struct {
	Repo    *repository.CertificationRepository
	Storage *StorageService
	Policy  *PolicyStore
	Now     func() time.Time
}

func NewCertificationService(repo *repository.CertificationRepository, storage *StorageService, policy *PolicyStore) *CertificationService {
	return &CertificationService{Repo: repo, Storage: storage, Policy: policy, Now: time.Now}
}

type CertificationView struct {
	model.Certification
	Status training.CertificationState `json:"status"`
}

func (s *CertificationService) view(cert model.Certification, now time.Time) CertificationView {
	return CertificationView{
		Certification: cert,
		Status:        training.CertificationStatus(cert, now, s.Policy.Get().ExpiringWithin),
	}
}

func (s *CertificationService) Create(userID uint, cert *model.Certification) (*CertificationView, error) {
	cert.UserID = userID
	if cert.ExpiresAt != nil && cert.ExpiresAt.Before(cert.IssuedAt) {
		return nil, util.ErrInvalidExpiry
	}
	if err := s.Repo.Create(cert); err != nil {
		return nil, err
	}
	v := s.view(*cert, s.Now())
	return &v, nil
}

func (s *CertificationService) List(userID uint) ([]CertificationView, error) {
	certs, err := s.Repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	views := make([]CertificationView, len(certs))
	for i, c := range certs {
		views[i] = s.view(c, now)
	}
	return views, nil
}

// Expiring lists every certification that is expired or expires inside the policy window.
func (s *CertificationService) Expiring(ctx context.Context) ([]CertificationView, error) {
	now := s.Now()
	certs, err := s.Repo.ListExpiringBefore(ctx, now.Add(s.Policy.Get().ExpiringWithin))
	if err != nil {
		return nil, err
	}
	views := make([]CertificationView, len(certs))
	for i, c := range certs {
		views[i] = s.view(c, now)
	}
	return views, nil
}

// UploadDocument stores a scanned certificate (PDF or image) and links it to the record.
func (s *CertificationService) UploadDocument(ctx context.Context, userID, certID uint, filename string, file io.ReadSeeker, size int64) (*CertificationView, error) {
	cert, err := s.Repo.FindByID(certID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertNotFound
		}
		return nil, err
	}
	if cert.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	mimeType, err := util.ValidateMimeType(file, util.AllowedCertificateMimeTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidFileType, mimeType)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	url, err := s.Storage.Upload(ctx, ObjectName(util.FolderCertificates, filename), file, size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if err := s.Repo.UpdateDocument(cert.ID, url); err != nil {
		return nil, err
	}
	cert.DocumentURL = url
	v := s.view(*cert, s.Now())
	return &v, nil
}
