package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/util"
	"pharmtrain_backend/pkg/logger"
)

const consultationHistoryLimit = 10

// Consultant answers technician questions. AIService implements it.
type Consultant interface {
	Consult(ctx context.Context, history []AIChatMessage, question string) (string, error)
}

// MessagePublisher pushes stored messages to live subscribers. ConsultationHub implements it.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *model.ConsultationMessage) error
}

type ConsultationService struct {
	Repo      *repository.ConsultationRepository
	AI        Consultant
	Publisher MessagePublisher
}

func NewConsultationService(repo *repository.ConsultationRepository, ai Consultant, publisher MessagePublisher) *ConsultationService {
	return &ConsultationService{Repo: repo, AI: ai, Publisher: publisher}
}

func (s *ConsultationService) OpenSession(userID uint, topic string) (*model.ConsultationSession, error) {
	session := &model.ConsultationSession{UserID: userID, Topic: strings.TrimSpace(topic)}
	if err := s.Repo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ConsultationService) ListSessions(userID uint) ([]model.ConsultationSession, error) {
	return s.Repo.ListSessions(userID)
}

// Session returns the session when it belongs to userID.
func (s *ConsultationService) Session(userID uint, sessionID string) (*model.ConsultationSession, error) {
	session, err := s.Repo.FindSession(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

func (s *ConsultationService) Messages(userID uint, sessionID string) ([]model.ConsultationMessage, error) {
	if _, err := s.Session(userID, sessionID); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(sessionID)
}

// Ask stores the question, asks the consultant with the recent conversation as context and
// stores the reply. When the consultant fails the question is kept and the error wraps
// util.ErrInsightUnavailable.
func (s *ConsultationService) Ask(ctx context.Context, userID uint, sessionID, content string) (*model.ConsultationMessage, *model.ConsultationMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, util.ErrEmptyMessage
	}
	if _, err := s.Session(userID, sessionID); err != nil {
		return nil, nil, err
	}

	recent, err := s.Repo.RecentMessages(sessionID, consultationHistoryLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := make([]AIChatMessage, len(recent))
	for i, m := range recent {
		history[i] = AIChatMessage{Role: m.Role, Content: m.Content}
	}

	question := &model.ConsultationMessage{SessionID: sessionID, Role: model.ConsultationRoleUser, Content: content}
	if err := s.Repo.CreateMessage(question); err != nil {
		return nil, nil, err
	}
	s.publish(ctx, question)

	if s.AI == nil {
		return question, nil, util.ErrInsightUnavailable
	}
	text, err := s.AI.Consult(ctx, history, content)
	if err != nil {
		logger.Log.Warn("Consultant reply failed", zap.String("sessionId", sessionID), zap.Error(err))
		if !errors.Is(err, util.ErrInsightUnavailable) {
			err = fmt.Errorf("%w: %v", util.ErrInsightUnavailable, err)
		}
		return question, nil, err
	}

	reply := &model.ConsultationMessage{SessionID: sessionID, Role: model.ConsultationRoleAssistant, Content: text}
	if err := s.Repo.CreateMessage(reply); err != nil {
		return question, nil, err
	}
	s.publish(ctx, reply)
	return question, reply, nil
}

func (s *ConsultationService) publish(ctx context.Context, msg *model.ConsultationMessage) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, msg); err != nil {
		logger.Log.Warn("Failed to publish consultation message", zap.String("sessionId", msg.SessionID), zap.Error(err))
	}
}
