package service

import (
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
)

// SubmittedAnswer представляет один ответ участника в порядке отправки
type SubmittedAnswer struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	TimeTakenSec   int    `json:"time_taken_sec"`
}

// ScoreSummary - результат подсчета очков по попытке
type ScoreSummary struct {
	Score        int
	CorrectCount int
	WrongCount   int
	MaxStreak    int
	Answers      []entity.AttemptAnswer
}

// ScoreAnswers считает очки по правилам события. Чистая функция без доступа
// к хранилищу: один и тот же вход всегда дает один и тот же результат.
//
// Ответы обрабатываются строго в порядке отправки: серия (streak) растет на
// каждом правильном ответе, сбрасывается на неправильном, и каждый
// StreakEvery-й подряд правильный ответ добавляет StreakBonus.
// Вопрос, отсутствующий в ключе (устаревший или неизвестный id),
// засчитывается как неправильный ответ.
func ScoreAnswers(rules entity.ScoringRules, submitted []SubmittedAnswer, key map[uint]string) ScoreSummary {
	summary := ScoreSummary{
		Answers: make([]entity.AttemptAnswer, 0, len(submitted)),
	}

	streak := 0
	for i, ans := range submitted {
		correctAnswer, known := key[ans.QuestionID]
		isCorrect := known && ans.SelectedOption == correctAnswer

		if isCorrect {
			summary.Score += rules.CorrectPoints
			summary.CorrectCount++
			streak++
			if rules.StreakEvery > 0 && streak%rules.StreakEvery == 0 {
				summary.Score += rules.StreakBonus
			}
			if streak > summary.MaxStreak {
				summary.MaxStreak = streak
			}
		} else {
			summary.Score += rules.WrongPoints
			summary.WrongCount++
			streak = 0
		}

		summary.Answers = append(summary.Answers, entity.AttemptAnswer{
			QuestionID:     ans.QuestionID,
			SelectedOption: ans.SelectedOption,
			IsCorrect:      isCorrect,
			TimeTakenSec:   ans.TimeTakenSec,
			AnswerOrder:    i + 1,
		})
	}

	return summary
}
