package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/model"
)

func question(correct string, options ...string) model.QuizQuestion {
	return model.QuizQuestion{Prompt: "q", Options: options, CorrectAnswer: correct}
}

// tenQuestions returns questions whose correct option is always index 1.
func tenQuestions() []model.QuizQuestion {
	qs := make([]model.QuizQuestion, 10)
	for i := range qs {
		qs[i] = question("right", "wrong", "right", "other")
	}
	return qs
}

func selectionsWithCorrect(n, correct int) []int {
	sel := make([]int, n)
	for i := range sel {
		if i < correct {
			sel[i] = 1
		}
	}
	return sel
}

func TestScoreQuizPassBoundary(t *testing.T) {
	qs := tenQuestions()

	res, err := ScoreQuiz(qs, selectionsWithCorrect(10, 7), 70)
	require.NoError(t, err)
	assert.Equal(t, QuizResult{Score: 7, Total: 10, Percentage: 70, Passed: true}, res)

	res, err = ScoreQuiz(qs, selectionsWithCorrect(10, 6), 70)
	require.NoError(t, err)
	assert.Equal(t, QuizResult{Score: 6, Total: 10, Percentage: 60, Passed: false}, res)
}

func TestScoreQuizIsIdempotent(t *testing.T) {
	qs := []model.QuizQuestion{
		question("Schedule II", "Schedule I", "Schedule II", "Schedule V"),
		question("Refrigerate", "Freeze", "Refrigerate"),
		question("NDC", "NDC", "UPC"),
	}
	sel := []int{1, 0, 0}

	first, err := ScoreQuiz(qs, sel, 70)
	require.NoError(t, err)
	second, err := ScoreQuiz(qs, sel, 70)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Score)
	assert.Equal(t, 67, first.Percentage)
	assert.False(t, first.Passed)
}

func TestScoreQuizComparesByValue(t *testing.T) {
	// same question with options reordered still grades by the answer text
	a := question("Tablet", "Capsule", "Tablet", "Syrup")
	b := question("Tablet", "Tablet", "Syrup", "Capsule")

	res, err := ScoreQuiz([]model.QuizQuestion{a, b}, []int{1, 0}, 70)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)
	assert.True(t, res.Passed)
}

func TestScoreQuizDuplicateOptionFirstMatchWins(t *testing.T) {
	q := question("Yes", "Yes", "No", "Yes")
	assert.Equal(t, 0, CorrectIndex(q))

	res, err := ScoreQuiz([]model.QuizQuestion{q}, []int{2}, 70)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)

	res, err = ScoreQuiz([]model.QuizQuestion{q}, []int{0}, 70)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
}

func TestScoreQuizRejectsMissingAnswers(t *testing.T) {
	qs := []model.QuizQuestion{question("a", "a", "b"), question("b", "a", "b")}

	_, err := ScoreQuiz(qs, []int{0}, 70)
	assert.ErrorIs(t, err, ErrAnswerMissing)

	_, err = ScoreQuiz(qs, []int{0, -1}, 70)
	assert.ErrorIs(t, err, ErrAnswerMissing)

	_, err = ScoreQuiz(qs, []int{0, 5}, 70)
	assert.ErrorIs(t, err, ErrAnswerMissing)
}

func TestScoreQuizNoQuestions(t *testing.T) {
	_, err := ScoreQuiz(nil, nil, 70)
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = NewQuizAttempt(nil, 70)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestQuizAttemptRetake(t *testing.T) {
	qs := tenQuestions()
	attempt, err := NewQuizAttempt(qs, 70)
	require.NoError(t, err)

	_, err = attempt.Submit()
	assert.ErrorIs(t, err, ErrAnswerMissing)
	assert.Nil(t, attempt.Result())
	assert.False(t, attempt.RetakeAllowed())

	for i := range qs {
		require.NoError(t, attempt.Select(i, 0))
	}
	assert.True(t, attempt.Answered(3))
	assert.Error(t, attempt.Select(0, 9))

	res, err := attempt.Submit()
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.NotNil(t, attempt.Result())
	assert.True(t, attempt.RetakeAllowed())

	attempt.Retake()
	assert.Nil(t, attempt.Result())
	for i := range qs {
		assert.False(t, attempt.Answered(i))
	}
	assert.Equal(t, -1, attempt.Selections()[0])

	require.NoError(t, attempt.SelectAll(selectionsWithCorrect(10, 10)))
	res, err = attempt.Submit()
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 100, res.Percentage)
	assert.False(t, attempt.RetakeAllowed())
}

func TestQuizAttemptSelectAllIsAtomic(t *testing.T) {
	qs := tenQuestions()
	attempt, err := NewQuizAttempt(qs, 70)
	require.NoError(t, err)

	bad := selectionsWithCorrect(10, 10)
	bad[9] = 7
	assert.ErrorIs(t, attempt.SelectAll(bad), ErrAnswerMissing)
	assert.False(t, attempt.Answered(0))

	assert.ErrorIs(t, attempt.SelectAll([]int{1}), ErrAnswerMissing)
}
