package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/testutil"
	"pharmtrain_backend/internal/util"
)

type fakeConsultant struct {
	reply   string
	err     error
	history []AIChatMessage
}

func (f *fakeConsultant) Consult(ctx context.Context, history []AIChatMessage, question string) (string, error) {
	f.history = history
	return f.reply, f.err
}

type recordingPublisher struct {
	published []model.ConsultationMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *model.ConsultationMessage) error {
	p.published = append(p.published, *msg)
	return nil
}

func TestAskKeepsQuestionWhenConsultantFails(t *testing.T) {
	repo := repository.NewConsultationRepository(testutil.NewDB(t))
	ai := &fakeConsultant{err: errors.New("timeout")}
	pub := &recordingPublisher{}
	svc := NewConsultationService(repo, ai, pub)
	ctx := context.Background()

	session, err := svc.OpenSession(7, "  Controlled substances  ")
	require.NoError(t, err)
	assert.Equal(t, "Controlled substances", session.Topic)

	question, reply, err := svc.Ask(ctx, 7, session.ID, "How do I log a CII transfer?")
	assert.ErrorIs(t, err, util.ErrInsightUnavailable)
	require.NotNil(t, question)
	assert.Nil(t, reply)

	msgs, err := svc.Messages(7, session.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.ConsultationRoleUser, msgs[0].Role)
	assert.Len(t, pub.published, 1)

	ai.err = nil
	ai.reply = "Use the DEA form 222 workflow."
	_, reply, err = svc.Ask(ctx, 7, session.ID, "And for CIII?")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, model.ConsultationRoleAssistant, reply.Role)
	require.Len(t, ai.history, 1)
	assert.Equal(t, "How do I log a CII transfer?", ai.history[0].Content)

	msgs, err = svc.Messages(7, session.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Len(t, pub.published, 3)
}

func TestConsultationSessionsAreOwned(t *testing.T) {
	repo := repository.NewConsultationRepository(testutil.NewDB(t))
	svc := NewConsultationService(repo, &fakeConsultant{reply: "ok"}, nil)

	session, err := svc.OpenSession(1, "Billing")
	require.NoError(t, err)

	_, err = svc.Messages(2, session.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, _, err = svc.Ask(context.Background(), 2, session.ID, "hello")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, _, err = svc.Ask(context.Background(), 1, session.ID, "   ")
	assert.ErrorIs(t, err, util.ErrEmptyMessage)

	_, err = svc.Session(1, "missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestAskHistoryIsBounded(t *testing.T) {
	repo := repository.NewConsultationRepository(testutil.NewDB(t))
	ai := &fakeConsultant{reply: "noted"}
	svc := NewConsultationService(repo, ai, nil)

	session, err := svc.OpenSession(3, "")
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		_, _, err := svc.Ask(context.Background(), 3, session.ID, "question")
		require.NoError(t, err)
	}
	assert.Len(t, ai.history, consultationHistoryLimit)
	assert.Equal(t, model.ConsultationRoleAssistant, ai.history[len(ai.history)-1].Role)
}
