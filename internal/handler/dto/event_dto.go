package dto

import (
	"time"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	"github.com/yourusername/gamequiz-api/internal/service"
)

// QuestionResponse представляет вопрос события в формате для ответа клиенту.
// Правильный ответ в DTO отсутствует вовсе: участник не получает его ни при
// выдаче вопросов, ни в составе события.
type QuestionResponse struct {
	ID           uint      `json:"id"`
	EventID      uint      `json:"event_id"`
	Text         string    `json:"text"`
	Options      []string  `json:"options"`
	TimeLimitSec int       `json:"time_limit_sec"`
	PointValue   int       `json:"point_value"`
	CreatedAt    time.Time `json:"created_at"`
}

// RewardResponse представляет строку таблицы наград
type RewardResponse struct {
	Place int    `json:"place"`
	Coins int    `json:"coins"`
	Badge string `json:"badge,omitempty"`
}

// EventResponse представляет игровое событие в формате для ответа клиенту
type EventResponse struct {
	ID                    uint                `json:"id"`
	Title                 string              `json:"title"`
	Description           string              `json:"description,omitempty"`
	Category              string              `json:"category,omitempty"`
	Difficulty            string              `json:"difficulty,omitempty"`
	Mode                  string              `json:"mode"`
	StartTime             time.Time           `json:"start_time"`
	EndTime               time.Time           `json:"end_time"`
	Status                string              `json:"status"`
	EntryCostCoins        int                 `json:"entry_cost_coins"`
	AllowMultipleAttempts bool                `json:"allow_multiple_attempts"`
	RandomizeQuestions    bool                `json:"randomize_questions"`
	PerQuestionSec        int                 `json:"per_question_sec"`
	Scoring               entity.ScoringRules `json:"scoring"`
	QuestionCount         int                 `json:"question_count"`
	Questions             []QuestionResponse  `json:"questions,omitempty"`
	Rewards               []RewardResponse    `json:"rewards,omitempty"`
	IsActive              bool                `json:"is_active"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.EventQuestion) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		EventID:      q.EventID,
		Text:         q.Text,
		Options:      []string(q.Options),
		TimeLimitSec: q.TimeLimitSec,
		PointValue:   q.PointValue,
		CreatedAt:    q.CreatedAt,
	}
}

// NewEventResponse создает DTO для события
func NewEventResponse(event *entity.GamingEvent, includeQuestions bool) *EventResponse {
	if event == nil {
		return nil
	}

	var questionsDTO []QuestionResponse
	if includeQuestions {
		questionsDTO = make([]QuestionResponse, len(event.Questions))
		for i := range event.Questions {
			questionsDTO[i] = NewQuestionResponse(&event.Questions[i])
		}
	}

	rewardsDTO := make([]RewardResponse, len(event.Rewards))
	for i, rw := range event.Rewards {
		rewardsDTO[i] = RewardResponse{Place: rw.Place, Coins: rw.Coins, Badge: rw.Badge}
	}

	return &EventResponse{
		ID:                    event.ID,
		Title:                 event.Title,
		Description:           event.Description,
		Category:              event.Category,
		Difficulty:            event.Difficulty,
		Mode:                  event.Mode,
		StartTime:             event.StartTime,
		EndTime:               event.EndTime,
		Status:                event.Status,
		EntryCostCoins:        event.EntryCostCoins,
		AllowMultipleAttempts: event.AllowMultipleAttempts,
		RandomizeQuestions:    event.RandomizeQuestions,
		PerQuestionSec:        event.PerQuestionSec,
		Scoring:               event.Scoring,
		QuestionCount:         len(event.Questions),
		Questions:             questionsDTO,
		Rewards:               rewardsDTO,
		IsActive:              event.IsActive,
		CreatedAt:             event.CreatedAt,
		UpdatedAt:             event.UpdatedAt,
	}
}

// NewListEventResponse создает список DTO для событий
func NewListEventResponse(events []entity.GamingEvent) []*EventResponse {
	response := make([]*EventResponse, len(events))
	for i := range events {
		response[i] = NewEventResponse(&events[i], false)
	}
	return response
}

// AttemptResponse представляет попытку участника в формате для ответа клиенту
type AttemptResponse struct {
	ID           uint       `json:"id"`
	EventID      uint       `json:"event_id"`
	UserID       uint       `json:"user_id"`
	AttemptSeq   int        `json:"attempt_seq"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	DurationSec  int        `json:"duration_sec"`
	Score        int        `json:"score"`
	CorrectCount int        `json:"correct_count"`
	WrongCount   int        `json:"wrong_count"`
	MaxStreak    int        `json:"max_streak"`
	Disqualified bool       `json:"disqualified"`
}

// NewAttemptResponse создает DTO для попытки
func NewAttemptResponse(attempt *entity.Attempt) *AttemptResponse {
	if attempt == nil {
		return nil
	}
	return &AttemptResponse{
		ID:           attempt.ID,
		EventID:      attempt.EventID,
		UserID:       attempt.UserID,
		AttemptSeq:   attempt.AttemptSeq,
		StartedAt:    attempt.StartedAt,
		FinishedAt:   attempt.FinishedAt,
		DurationSec:  attempt.DurationSec,
		Score:        attempt.Score,
		CorrectCount: attempt.CorrectCount,
		WrongCount:   attempt.WrongCount,
		MaxStreak:    attempt.MaxStreak,
		Disqualified: attempt.Disqualified,
	}
}

// QuestionSetResponse представляет набор вопросов, выданный участнику
type QuestionSetResponse struct {
	AttemptID           uint               `json:"attempt_id"`
	Questions           []QuestionResponse `json:"questions"`
	TotalTimerSec       int                `json:"total_timer_sec"`
	PerQuestionTimerSec int                `json:"per_question_timer_sec"`
}

// NewQuestionSetResponse создает DTO для набора вопросов участника
func NewQuestionSetResponse(set *service.QuestionSet) *QuestionSetResponse {
	questionsDTO := make([]QuestionResponse, len(set.Questions))
	for i := range set.Questions {
		questionsDTO[i] = NewQuestionResponse(&set.Questions[i])
	}
	return &QuestionSetResponse{
		AttemptID:           set.AttemptID,
		Questions:           questionsDTO,
		TotalTimerSec:       set.TotalTimerSec,
		PerQuestionTimerSec: set.PerQuestionTimerSec,
	}
}
