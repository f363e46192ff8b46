package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
)

func defaultRules() entity.ScoringRules {
	return entity.ScoringRules{
		CorrectPoints: 10,
		WrongPoints:   0,
		StreakBonus:   5,
		StreakEvery:   5,
	}
}

func answerKey() map[uint]string {
	return map[uint]string{
		1: "A", 2: "B", 3: "C", 4: "D", 5: "A", 6: "B",
	}
}

func TestScoreAnswers_StreakBonus(t *testing.T) {
	// 5 подряд правильных: 5×10 + бонус 5 = 55
	submitted := []SubmittedAnswer{
		{QuestionID: 1, SelectedOption: "A"},
		{QuestionID: 2, SelectedOption: "B"},
		{QuestionID: 3, SelectedOption: "C"},
		{QuestionID: 4, SelectedOption: "D"},
		{QuestionID: 5, SelectedOption: "A"},
	}

	summary := ScoreAnswers(defaultRules(), submitted, answerKey())

	assert.Equal(t, 55, summary.Score)
	assert.Equal(t, 5, summary.CorrectCount)
	assert.Equal(t, 0, summary.WrongCount)
	assert.Equal(t, 5, summary.MaxStreak)

	// Шестой правильный (серия 6, не кратна 5) добавляет только 10
	submitted = append(submitted, SubmittedAnswer{QuestionID: 6, SelectedOption: "B"})
	summary = ScoreAnswers(defaultRules(), submitted, answerKey())
	assert.Equal(t, 65, summary.Score)
	assert.Equal(t, 6, summary.MaxStreak)
}

func TestScoreAnswers_WrongAnswerResetsStreak(t *testing.T) {
	rules := defaultRules()
	rules.StreakEvery = 3
	rules.StreakBonus = 7

	submitted := []SubmittedAnswer{
		{QuestionID: 1, SelectedOption: "A"}, // верно, серия 1
		{QuestionID: 2, SelectedOption: "B"}, // верно, серия 2
		{QuestionID: 3, SelectedOption: "X"}, // неверно, серия 0
		{QuestionID: 4, SelectedOption: "D"}, // верно, серия 1
	}

	summary := ScoreAnswers(rules, submitted, answerKey())

	assert.Equal(t, 30, summary.Score, "бонус за серию не должен начисляться")
	assert.Equal(t, 3, summary.CorrectCount)
	assert.Equal(t, 1, summary.WrongCount)
	assert.Equal(t, 2, summary.MaxStreak)
}

func TestScoreAnswers_WrongValueApplied(t *testing.T) {
	rules := entity.ScoringRules{CorrectPoints: 10, WrongPoints: -3}

	submitted := []SubmittedAnswer{
		{QuestionID: 1, SelectedOption: "A"},
		{QuestionID: 2, SelectedOption: "X"},
		{QuestionID: 3, SelectedOption: "X"},
	}

	summary := ScoreAnswers(rules, submitted, answerKey())
	assert.Equal(t, 4, summary.Score) // 10 - 3 - 3
}

func TestScoreAnswers_UnknownQuestionScoredAsWrong(t *testing.T) {
	// Устаревший id вопроса не валит подсчет, а считается неправильным ответом
	submitted := []SubmittedAnswer{
		{QuestionID: 999, SelectedOption: "A"},
		{QuestionID: 1, SelectedOption: "A"},
	}

	summary := ScoreAnswers(defaultRules(), submitted, answerKey())

	assert.Equal(t, 10, summary.Score)
	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 1, summary.WrongCount)
	assert.False(t, summary.Answers[0].IsCorrect)
	assert.True(t, summary.Answers[1].IsCorrect)
}

func TestScoreAnswers_Deterministic(t *testing.T) {
	submitted := []SubmittedAnswer{
		{QuestionID: 1, SelectedOption: "A"},
		{QuestionID: 2, SelectedOption: "X"},
		{QuestionID: 3, SelectedOption: "C"},
	}

	first := ScoreAnswers(defaultRules(), submitted, answerKey())
	for i := 0; i < 10; i++ {
		again := ScoreAnswers(defaultRules(), submitted, answerKey())
		assert.Equal(t, first, again, "подсчет очков должен быть детерминированным")
	}
}

func TestScoreAnswers_OrderDependence(t *testing.T) {
	rules := entity.ScoringRules{CorrectPoints: 10, StreakBonus: 5, StreakEvery: 2}

	// Два правильных подряд дают бонус...
	inOrder := ScoreAnswers(rules, []SubmittedAnswer{
		{QuestionID: 1, SelectedOption: "A"},
		{QuestionID: 2, SelectedOption: "B"},
		{QuestionID: 3, SelectedOption: "X"},
	}, answerKey())

	// ...а перемежающиеся - нет
	interleaved := ScoreAnswers(rules, []SubmittedAnswer{
		{QuestionID: 1, SelectedOption: "A"},
		{QuestionID: 3, SelectedOption: "X"},
		{QuestionID: 2, SelectedOption: "B"},
	}, answerKey())

	assert.Equal(t, 25, inOrder.Score)
	assert.Equal(t, 20, interleaved.Score)
}

func TestScoreAnswers_Empty(t *testing.T) {
	summary := ScoreAnswers(defaultRules(), nil, answerKey())
	assert.Equal(t, 0, summary.Score)
	assert.Empty(t, summary.Answers)
}

func TestScoreAnswers_AnswerOrderRecorded(t *testing.T) {
	submitted := []SubmittedAnswer{
		{QuestionID: 3, SelectedOption: "C"},
		{QuestionID: 1, SelectedOption: "A"},
	}

	summary := ScoreAnswers(defaultRules(), submitted, answerKey())
	assert.Equal(t, 1, summary.Answers[0].AnswerOrder)
	assert.Equal(t, uint(3), summary.Answers[0].QuestionID)
	assert.Equal(t, 2, summary.Answers[1].AnswerOrder)
}
