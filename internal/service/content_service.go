package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/util"
	"pharmtrain_backend/pkg/logger"
)

// VideoProber reads media metadata. util.GetVideoInfo is the production implementation.
type VideoProber func(path string) (*util.VideoInfo, error)

type ContentService struct {
	ModuleRepo *repository.ModuleRepository
	Storage    *StorageService
	Probe      VideoProber
}

func NewContentService(moduleRepo *repository.ModuleRepository, storage *StorageService) *ContentService {
	return &ContentService{ModuleRepo: moduleRepo, Storage: storage, Probe: util.GetVideoInfo}
}

// UploadModuleVideo stores a training video and sets the module's duration from the file.
// When probing fails the previous duration is kept.
func (s *ContentService) UploadModuleVideo(ctx context.Context, moduleID uint, header *multipart.FileHeader) (*model.TrainingModule, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if !util.HasVideoExtension(header.Filename) {
		return nil, util.ErrInvalidFileType
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidFileType, mimeType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "module-video-*"+filepath.Ext(header.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	minutes := 0
	if s.Probe != nil {
		info, err := s.Probe(tmp.Name())
		if err != nil {
			logger.Log.Warn("Video probe failed, keeping module duration", zap.Uint("moduleId", moduleID), zap.Error(err))
		} else {
			minutes = info.DurationMinutes()
		}
	}

	url, err := s.Storage.UploadFile(ctx, ObjectName(util.FolderModuleVideos, header.Filename), tmp.Name(), mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store video: %w", err)
	}
	if err := s.ModuleRepo.UpdateVideo(moduleID, url, minutes); err != nil {
		return nil, err
	}

	module.VideoURL = url
	if minutes > 0 {
		module.DurationMinutes = minutes
	}
	return module, nil
}
