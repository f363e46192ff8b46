package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	"github.com/yourusername/gamequiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

// EventService предоставляет административные операции над игровыми событиями
type EventService struct {
	eventRepo repository.EventRepository
	clock     Clock
}

// NewEventService создает новый сервис событий
func NewEventService(eventRepo repository.EventRepository, clock Clock) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		clock:     clock,
	}
}

// QuestionInput - входные данные одного вопроса при создании события
type QuestionInput struct {
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
	TimeLimitSec  int
	PointValue    int
}

// RewardInput - строка таблицы наград при создании события
type RewardInput struct {
	Place int
	Coins int
	Badge string
}

// CreateEventInput - входные данные создания события
type CreateEventInput struct {
	Title                 string
	Description           string
	Category              string
	Difficulty            string
	Mode                  string
	StartTime             time.Time
	EndTime               time.Time
	EntryCostCoins        int
	AllowMultipleAttempts bool
	RandomizeQuestions    bool
	PerQuestionSec        int
	Scoring               entity.ScoringRules
	Questions             []QuestionInput
	Rewards               []RewardInput
}

// CreateEvent создает событие вместе с вопросами и таблицей наград.
// Статус выводится из окна, а не задается клиентом.
func (s *EventService) CreateEvent(input CreateEventInput) (*entity.GamingEvent, error) {
	if !input.StartTime.Before(input.EndTime) {
		return nil, fmt.Errorf("%w: start_time must be before end_time", apperrors.ErrValidation)
	}
	if input.EntryCostCoins < 0 {
		return nil, fmt.Errorf("%w: entry_cost_coins must be >= 0", apperrors.ErrValidation)
	}

	mode := input.Mode
	if mode == "" {
		mode = entity.EventModeSolo
	}
	switch mode {
	case entity.EventModeSolo, entity.EventModeTeam, entity.EventModeLive:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", apperrors.ErrValidation, input.Mode)
	}

	questions := make([]entity.EventQuestion, 0, len(input.Questions))
	for i, q := range input.Questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question #%d must have at least 2 options", apperrors.ErrValidation, i+1)
		}
		eq := entity.EventQuestion{
			Text:          q.Text,
			Options:       entity.StringArray(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			TimeLimitSec:  q.TimeLimitSec,
			PointValue:    q.PointValue,
		}
		if eq.TimeLimitSec <= 0 {
			eq.TimeLimitSec = 30
		}
		if eq.PointValue <= 0 {
			eq.PointValue = 10
		}
		if !eq.HasOption(q.CorrectAnswer) {
			return nil, fmt.Errorf("%w: correct answer of question #%d is not among its options", apperrors.ErrValidation, i+1)
		}
		questions = append(questions, eq)
	}

	rewards := make([]entity.EventReward, 0, len(input.Rewards))
	for i, rw := range input.Rewards {
		if rw.Place <= 0 {
			return nil, fmt.Errorf("%w: reward #%d has non-positive place", apperrors.ErrValidation, i+1)
		}
		rewards = append(rewards, entity.EventReward{
			Place: rw.Place,
			Coins: rw.Coins,
			Badge: rw.Badge,
		})
	}

	perQuestionSec := input.PerQuestionSec
	if perQuestionSec <= 0 {
		perQuestionSec = 30
	}

	event := &entity.GamingEvent{
		Title:                 input.Title,
		Description:           input.Description,
		Category:              input.Category,
		Difficulty:            input.Difficulty,
		Mode:                  mode,
		StartTime:             input.StartTime,
		EndTime:               input.EndTime,
		EntryCostCoins:        input.EntryCostCoins,
		AllowMultipleAttempts: input.AllowMultipleAttempts,
		RandomizeQuestions:    input.RandomizeQuestions,
		PerQuestionSec:        perQuestionSec,
		Scoring:               input.Scoring,
		Questions:             questions,
		Rewards:               rewards,
		IsActive:              true,
	}
	event.Status = event.ComputeStatus(s.clock.Now())

	if err := s.eventRepo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Printf("[EventService] Создано событие #%d %q, окно %v - %v", event.ID, event.Title, event.StartTime, event.EndTime)
	return event, nil
}

// UpdateEventInput - частичное обновление события. nil-поля не трогаются.
type UpdateEventInput struct {
	Title          *string
	Description    *string
	Category       *string
	Difficulty     *string
	StartTime      *time.Time
	EndTime        *time.Time
	EntryCostCoins *int
	IsActive       *bool
	Disabled       *bool // true: перевести в терминальный статус disabled
}

// UpdateEvent обновляет событие. Набор вопросов и правила начисления очков
// после перехода в live/completed неизменяемы, поэтому patch их не принимает
// вовсе; окно и entry cost тоже запрещено менять после старта.
func (s *EventService) UpdateEvent(eventID uint, input UpdateEventInput) (*entity.GamingEvent, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	started := event.IsDisabled() || !now.Before(event.StartTime) || event.IsLive() || event.IsCompleted()

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Difficulty != nil {
		updates["difficulty"] = *input.Difficulty
	}
	if input.StartTime != nil || input.EndTime != nil {
		if started {
			return nil, fmt.Errorf("%w: cannot reschedule an event that already started", apperrors.ErrConflict)
		}
		start := event.StartTime
		end := event.EndTime
		if input.StartTime != nil {
			start = *input.StartTime
		}
		if input.EndTime != nil {
			end = *input.EndTime
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("%w: start_time must be before end_time", apperrors.ErrValidation)
		}
		updates["start_time"] = start
		updates["end_time"] = end
	}
	if input.EntryCostCoins != nil {
		if started {
			return nil, fmt.Errorf("%w: cannot change entry cost after the event started", apperrors.ErrConflict)
		}
		if *input.EntryCostCoins < 0 {
			return nil, fmt.Errorf("%w: entry_cost_coins must be >= 0", apperrors.ErrValidation)
		}
		updates["entry_cost_coins"] = *input.EntryCostCoins
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Disabled != nil && *input.Disabled {
		// Терминальный статус: transitioner его больше не перезапишет
		updates["status"] = entity.EventStatusDisabled
	}

	if len(updates) == 0 {
		return event, nil
	}

	if err := s.eventRepo.UpdateFields(eventID, updates); err != nil {
		return nil, fmt.Errorf("failed to update event #%d: %w", eventID, err)
	}

	return s.eventRepo.GetByID(eventID)
}

// GetEvent возвращает событие по ID (с таблицей наград, без вопросов)
func (s *EventService) GetEvent(eventID uint) (*entity.GamingEvent, error) {
	return s.eventRepo.GetByID(eventID)
}

// GetEventWithQuestions возвращает событие вместе с вопросами
func (s *EventService) GetEventWithQuestions(eventID uint) (*entity.GamingEvent, error) {
	return s.eventRepo.GetWithQuestions(eventID)
}

// ListEvents возвращает события по scope (upcoming|live|past) относительно текущего времени
func (s *EventService) ListEvents(scope string, activeOnly bool) ([]entity.GamingEvent, error) {
	switch scope {
	case "", repository.EventScopeUpcoming, repository.EventScopeLive, repository.EventScopePast:
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", apperrors.ErrValidation, scope)
	}

	return s.eventRepo.List(repository.EventFilters{
		Scope:      scope,
		ActiveOnly: activeOnly,
	}, s.clock.Now())
}

// DeleteEvent удаляет событие. Идущее прямо сейчас событие удалить нельзя.
func (s *EventService) DeleteEvent(eventID uint) error {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}

	if event.ComputeStatus(s.clock.Now()) == entity.EventStatusLive {
		return fmt.Errorf("%w: cannot delete a live event", apperrors.ErrValidation)
	}

	if err := s.eventRepo.Delete(eventID); err != nil {
		return fmt.Errorf("failed to delete event #%d: %w", eventID, err)
	}
	log.Printf("[EventService] Удалено событие #%d", eventID)
	return nil
}
