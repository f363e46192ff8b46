package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	"github.com/yourusername/gamequiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
	"github.com/yourusername/gamequiz-api/internal/service"
)

// EventHandler обрабатывает административные запросы и read-пути игровых событий
type EventHandler struct {
	eventService       *service.EventService
	attemptService     *service.AttemptService
	leaderboardService *service.LeaderboardService
	analyticsService   *service.AnalyticsService
}

// NewEventHandler создает новый обработчик событий
func NewEventHandler(
	eventService *service.EventService,
	attemptService *service.AttemptService,
	leaderboardService *service.LeaderboardService,
	analyticsService *service.AnalyticsService,
) *EventHandler {
	return &EventHandler{
		eventService:       eventService,
		attemptService:     attemptService,
		leaderboardService: leaderboardService,
		analyticsService:   analyticsService,
	}
}

// QuestionRequest представляет один вопрос в запросе на создание события
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=3,max=500"`
	Options       []string `json:"options" binding:"required,min=2,max=5"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=500"`
	TimeLimitSec  int      `json:"time_limit_sec" binding:"omitempty,min=5,max=120"`
	PointValue    int      `json:"point_value" binding:"omitempty,min=1,max=100"`
}

// RewardRequest представляет строку таблицы наград в запросе на создание события
type RewardRequest struct {
	Place int    `json:"place" binding:"required,min=1"`
	Coins int    `json:"coins" binding:"omitempty,min=0"`
	Badge string `json:"badge" binding:"omitempty,max=100"`
}

// CreateEventRequest представляет запрос на создание игрового события
type CreateEventRequest struct {
	Title                 string              `json:"title" binding:"required,min=3,max=100"`
	Description           string              `json:"description" binding:"omitempty,max=500"`
	Category              string              `json:"category" binding:"omitempty,max=50"`
	Difficulty            string              `json:"difficulty" binding:"omitempty,max=20"`
	Mode                  string              `json:"mode" binding:"omitempty,oneof=solo team live"`
	StartTime             time.Time           `json:"start_time" binding:"required"`
	EndTime               time.Time           `json:"end_time" binding:"required"`
	EntryCostCoins        int                 `json:"entry_cost_coins" binding:"omitempty,min=0"`
	AllowMultipleAttempts bool                `json:"allow_multiple_attempts"`
	RandomizeQuestions    *bool               `json:"randomize_questions"` // nil = true
	PerQuestionSec        int                 `json:"per_question_sec" binding:"omitempty,min=5,max=300"`
	Scoring               entity.ScoringRules `json:"scoring"`
	Questions             []QuestionRequest   `json:"questions" binding:"omitempty,dive"`
	Rewards               []RewardRequest     `json:"rewards" binding:"omitempty,dive"`
}

// CreateEvent обрабатывает запрос на создание события
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	randomize := true
	if req.RandomizeQuestions != nil {
		randomize = *req.RandomizeQuestions
	}

	questions := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, service.QuestionInput{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			TimeLimitSec:  q.TimeLimitSec,
			PointValue:    q.PointValue,
		})
	}
	rewards := make([]service.RewardInput, 0, len(req.Rewards))
	for _, rw := range req.Rewards {
		rewards = append(rewards, service.RewardInput{Place: rw.Place, Coins: rw.Coins, Badge: rw.Badge})
	}

	event, err := h.eventService.CreateEvent(service.CreateEventInput{
		Title:                 req.Title,
		Description:           req.Description,
		Category:              req.Category,
		Difficulty:            req.Difficulty,
		Mode:                  req.Mode,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		EntryCostCoins:        req.EntryCostCoins,
		AllowMultipleAttempts: req.AllowMultipleAttempts,
		RandomizeQuestions:    randomize,
		PerQuestionSec:        req.PerQuestionSec,
		Scoring:               req.Scoring,
		Questions:             questions,
		Rewards:               rewards,
	})
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewEventResponse(event, false))
}

// UpdateEventRequest представляет запрос на частичное обновление события.
// Отсутствующие поля не трогаются. Вопросы и правила начисления очков через
// patch не меняются вовсе: после старта события они неизменяемы.
type UpdateEventRequest struct {
	Title          *string    `json:"title" binding:"omitempty,min=3,max=100"`
	Description    *string    `json:"description" binding:"omitempty,max=500"`
	Category       *string    `json:"category" binding:"omitempty,max=50"`
	Difficulty     *string    `json:"difficulty" binding:"omitempty,max=20"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	EntryCostCoins *int       `json:"entry_cost_coins"`
	IsActive       *bool      `json:"is_active"`
	Disabled       *bool      `json:"disabled"`
}

// UpdateEvent обрабатывает запрос на обновление события
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint) // Получаем из контекста

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.UpdateEvent(eventID, service.UpdateEventInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Difficulty:     req.Difficulty,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		EntryCostCoins: req.EntryCostCoins,
		IsActive:       req.IsActive,
		Disabled:       req.Disabled,
	})
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventResponse(event, false))
}

// DeleteEvent обрабатывает запрос на удаление события
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)

	if err := h.eventService.DeleteEvent(eventID); err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// GetEvent возвращает информацию о событии
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventResponse(event, false))
}

// ListEvents возвращает список событий по scope (upcoming|live|past)
// GET /api/gaming-events?scope=live&active_only=true
func (h *EventHandler) ListEvents(c *gin.Context) {
	scope := c.Query("scope")
	activeOnly := c.DefaultQuery("active_only", "true") == "true"

	events, err := h.eventService.ListEvents(scope, activeOnly)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": dto.NewListEventResponse(events),
		"total":  len(events),
	})
}

// GetLeaderboard возвращает рейтинг события
// GET /api/gaming-events/:id/leaderboard?limit=50
func (h *EventHandler) GetLeaderboard(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > service.MaxLeaderboardLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be an integer between 1 and %d", service.MaxLeaderboardLimit)})
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboardService.GetLeaderboard(eventID, limit)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":    eventID,
		"leaderboard": entries,
		"total":       len(entries),
	})
}

// ExportLeaderboard выгружает полный рейтинг события в xlsx
// GET /api/gaming-events/:id/leaderboard/export
func (h *EventHandler) ExportLeaderboard(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)

	data, err := h.leaderboardService.ExportXLSX(eventID)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	filename := fmt.Sprintf("event_%d_leaderboard_%s.xlsx", eventID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetAnalytics возвращает агрегированную сводку участия по событию
// GET /api/gaming-events/:id/analytics
func (h *EventHandler) GetAnalytics(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)

	analytics, err := h.analyticsService.GetEventAnalytics(eventID)
	if err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// DisqualifyAttemptRequest представляет запрос на дисквалификацию попытки
type DisqualifyAttemptRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=255"`
}

// DisqualifyAttempt помечает попытку дисквалифицированной по решению администратора
// POST /api/gaming-events/attempts/:attempt_id/disqualify
func (h *EventHandler) DisqualifyAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	var req DisqualifyAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.attemptService.Disqualify(attemptID, req.Reason); err != nil {
		h.handleEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attempt disqualified"})
}

// handleEventError обрабатывает ошибки сервисов событий и отправляет соответствующий HTTP ответ
func (h *EventHandler) handleEventError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrInsufficientFunds) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrUnavailable) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in EventHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
