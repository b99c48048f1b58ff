package training

import (
	"errors"
	"math"

	"pharmtrain_backend/internal/model"
)

var (
	ErrAnswerMissing = errors.New("please select an answer for every question")
	ErrNoQuestions   = errors.New("module has no quiz questions")
)

type QuizResult struct {
	Score      int  `json:"score"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Passed     bool `json:"passed"`
}

// CorrectIndex resolves the stored answer text to an option index. When option text repeats,
// the first match wins. It returns -1 if no option carries the answer text.
func CorrectIndex(q model.QuizQuestion) int {
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// Percentage rounds score/total to the nearest whole percent.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// ScoreQuiz grades one attempt. selections[i] is the option index chosen for questions[i].
func ScoreQuiz(questions []model.QuizQuestion, selections []int, passPercentage int) (QuizResult, error) {
	if len(questions) == 0 {
		return QuizResult{}, ErrNoQuestions
	}
	if len(selections) != len(questions) {
		return QuizResult{}, ErrAnswerMissing
	}
	for i, sel := range selections {
		if sel < 0 || sel >= len(questions[i].Options) {
			return QuizResult{}, ErrAnswerMissing
		}
	}

	score := 0
	for i, q := range questions {
		if selections[i] == CorrectIndex(q) {
			score++
		}
	}

	total := len(questions)
	pct := Percentage(score, total)
	return QuizResult{
		Score:      score,
		Total:      total,
		Percentage: pct,
		Passed:     pct >= passPercentage,
	}, nil
}

// QuizAttempt holds the answers of an attempt in progress. It never touches storage;
// callers persist the result explicitly.
type QuizAttempt struct {
	questions      []model.QuizQuestion
	selections     []int
	answered       []bool
	result         *QuizResult
	passPercentage int
}

// NewQuizAttempt starts an attempt over questions. A module without questions has no quiz.
func NewQuizAttempt(questions []model.QuizQuestion, passPercentage int) (*QuizAttempt, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	a := &QuizAttempt{questions: questions, passPercentage: passPercentage}
	a.Retake()
	return a, nil
}

func (a *QuizAttempt) Select(question, option int) error {
	if question < 0 || question >= len(a.questions) {
		return ErrAnswerMissing
	}
	if option < 0 || option >= len(a.questions[question].Options) {
		return ErrAnswerMissing
	}
	a.selections[question] = option
	a.answered[question] = true
	return nil
}

func (a *QuizAttempt) Answered(question int) bool {
	return question >= 0 && question < len(a.answered) && a.answered[question]
}

func (a *QuizAttempt) Selections() []int {
	out := make([]int, len(a.selections))
	copy(out, a.selections)
	return out
}

func (a *QuizAttempt) Submit() (QuizResult, error) {
	res, err := ScoreQuiz(a.questions, a.selections, a.passPercentage)
	if err != nil {
		return QuizResult{}, err
	}
	a.result = &res
	return res, nil
}

// SelectAll answers every question in order. The attempt is unchanged when any selection is invalid.
func (a *QuizAttempt) SelectAll(selections []int) error {
	if len(selections) != len(a.questions) {
		return ErrAnswerMissing
	}
	for i, sel := range selections {
		if sel < 0 || sel >= len(a.questions[i].Options) {
			return ErrAnswerMissing
		}
	}
	for i, sel := range selections {
		a.selections[i] = sel
		a.answered[i] = true
	}
	return nil
}

// RetakeAllowed reports whether the last submitted attempt failed.
func (a *QuizAttempt) RetakeAllowed() bool {
	return a.result != nil && !a.result.Passed
}

// Result returns the last submitted result, or nil before Submit or after Retake.
func (a *QuizAttempt) Result() *QuizResult {
	return a.result
}

// Retake clears the score and every answered flag.
func (a *QuizAttempt) Retake() {
	a.selections = make([]int, len(a.questions))
	a.answered = make([]bool, len(a.questions))
	for i := range a.selections {
		a.selections[i] = -1
	}
	a.result = nil
}
