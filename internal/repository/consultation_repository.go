package repository

import (
	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
)

type ConsultationRepository struct {
	DB *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) *ConsultationRepository {
	return &ConsultationRepository{DB: db}
}

func (r *ConsultationRepository) CreateSession(session *model.ConsultationSession) error {
	return r.DB.Create(session).Error
}

func (r *ConsultationRepository) FindSession(id string) (*model.ConsultationSession, error) {
	var session model.ConsultationSession
	err := r.DB.Where("id = ?", id).First(&session).Error
	return &session, err
}

func (r *ConsultationRepository) ListSessions(userID uint) ([]model.ConsultationSession, error) {
	var sessions []model.ConsultationSession
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *ConsultationRepository) CreateMessage(msg *model.ConsultationMessage) error {
	return r.DB.Create(msg).Error
}

// ListMessages returns the whole conversation in insertion order.
func (r *ConsultationRepository) ListMessages(sessionID string) ([]model.ConsultationMessage, error) {
	var msgs []model.ConsultationMessage
	err := r.DB.Where("session_id = ?", sessionID).Order("id ASC").Find(&msgs).Error
	return msgs, err
}

// RecentMessages returns the last limit messages, oldest first.
func (r *ConsultationRepository) RecentMessages(sessionID string, limit int) ([]model.ConsultationMessage, error) {
	var msgs []model.ConsultationMessage
	err := r.DB.Where("session_id = ?", sessionID).Order("id DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
