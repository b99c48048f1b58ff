package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/internal/util"
)

func TestListModulesUnlocksSequentially(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tech := f.technician(t, "ana", nil)
	m1 := f.module(t, "Pharmacy Law", 1)
	m2 := f.module(t, "Medication Safety", 2)

	states, err := f.learning.ListModules(ctx, techSession(tech))
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.True(t, states[0].Unlocked)
	assert.False(t, states[1].Unlocked)

	_, err = f.learning.UpdateProgress(ctx, techSession(tech), m2.ID, 50)
	assert.ErrorIs(t, err, training.ErrModuleLocked)

	row, err := f.learning.UpdateProgress(ctx, techSession(tech), m1.ID, 100)
	require.NoError(t, err)
	assert.True(t, row.Completed)

	states, err = f.learning.ListModules(ctx, techSession(tech))
	require.NoError(t, err)
	assert.True(t, states[1].Unlocked)

	manager := training.Session{UserID: tech.ID, Role: model.Manager, ManagerOverride: true}
	_, err = f.learning.UpdateProgress(ctx, manager, m2.ID, 10)
	assert.NoError(t, err)
}

func TestUpdateProgressHoldsQuizModulesBelowComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tech := f.technician(t, "ben", nil)
	m := f.module(t, "Sterile Compounding", 1, "ISO 5")

	row, err := f.learning.UpdateProgress(ctx, techSession(tech), m.ID, 100)
	require.NoError(t, err)
	assert.False(t, row.Completed)
	assert.Equal(t, 99, row.CompletionPercentage)
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestSubmitQuizPassCommitsCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tech := f.technician(t, "cy", nil)
	m := f.module(t, "Dosage Calculations", 1, "a", "b", "c")

	failed, err := f.learning.SubmitQuiz(ctx, techSession(tech), m.ID, []int{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 33, failed.Percentage)
	assert.False(t, failed.Passed)
	assert.True(t, failed.RetakeAllowed)
	assert.Nil(t, failed.Progress)

	_, err = f.progress.Find(tech.ID, m.ID)
	assert.Error(t, err, "a failed attempt must not create progress")

	passed, err := f.learning.SubmitQuiz(ctx, techSession(tech), m.ID, []int{1, 1, 1})
	require.NoError(t, err)
	assert.True(t, passed.Passed)
	assert.False(t, passed.RetakeAllowed)
	require.NotNil(t, passed.Progress)
	assert.True(t, passed.Progress.Completed)
	assert.Equal(t, 100, passed.Progress.CompletionPercentage)

	responses, err := f.quiz.ListResponses(tech.ID, m.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 2)

	recs, err := f.comps.ListByUsers(ctx, []uint{tech.ID})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []int{33, 100}, []int{recs[0].Score, recs[1].Score})
	require.NotNil(t, recs[0].ModuleID)
	assert.Equal(t, m.ID, *recs[0].ModuleID)
}

func TestSubmitQuizRejectsMissingAnswers(t *testing.T) {
	f := newFixture(t)
	tech := f.technician(t, "dee", nil)
	m := f.module(t, "Inventory", 1, "a", "b")

	_, err := f.learning.SubmitQuiz(context.Background(), techSession(tech), m.ID, []int{1})
	assert.ErrorIs(t, err, training.ErrAnswerMissing)

	_, err = f.learning.SubmitQuiz(context.Background(), techSession(tech), 999, []int{1})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestSubmitQuizWithoutQuestionsWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tech := f.technician(t, "fay", nil)
	m := f.module(t, "Orientation", 1)

	_, err := f.learning.SubmitQuiz(ctx, techSession(tech), m.ID, []int{})
	assert.ErrorIs(t, err, training.ErrNoQuestions)

	responses, err := f.quiz.ListResponses(tech.ID, m.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)

	recs, err := f.comps.ListByUsers(ctx, []uint{tech.ID})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, f.cache.invalidated)
}

func TestCreateModuleInvalidatesTeamStats(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.learning.CreateModule(context.Background(), &model.TrainingModule{Title: "Immunizations", OrderIndex: 1}))
	assert.Equal(t, 1, f.cache.invalidated)
}

func TestGetModuleHidesAnswers(t *testing.T) {
	f := newFixture(t)
	tech := f.technician(t, "eve", nil)
	m := f.module(t, "Customer Care", 1, "listen")

	detail, err := f.learning.GetModule(context.Background(), techSession(tech), m.ID)
	require.NoError(t, err)
	require.Len(t, detail.Questions, 1)
	assert.Equal(t, []string{"wrong", "listen"}, detail.Questions[0].Options)
	assert.True(t, detail.Unlocked)
}

func TestAddQuestionRequiresMatchingAnswer(t *testing.T) {
	f := newFixture(t)
	m := f.module(t, "Billing", 1)

	err := f.learning.AddQuestion(m.ID, &model.QuizQuestion{Prompt: "?", Options: []string{"a", "b"}, CorrectAnswer: "c"})
	assert.ErrorIs(t, err, util.ErrInvalidQuestion)

	err = f.learning.AddQuestion(m.ID, &model.QuizQuestion{Prompt: "?", Options: []string{"a", "b"}, CorrectAnswer: "b"})
	assert.NoError(t, err)
}
