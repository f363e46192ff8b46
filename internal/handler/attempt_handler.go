package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/gamequiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
	"github.com/yourusername/gamequiz-api/internal/service"
)

// AttemptHandler обрабатывает запросы участника: вход в событие, получение
// вопросов, отправку ответов и проверку завершения
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// userIDFromContext достает ID аутентифицированного участника из контекста gin
func userIDFromContext(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	return userID, ok
}

// JoinEvent обрабатывает вход участника в событие.
// 201 - создана новая попытка, 200 - возвращена существующая незавершенная
// (продолжение после обрыва соединения).
// POST /api/gaming-events/:id/join
func (h *AttemptHandler) JoinEvent(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint) // Получаем из контекста
	userID, ok := userIDFromContext(c)
	if !ok {
		h.handleAttemptError(c, apperrors.ErrUnauthorized)
		return
	}

	meta := service.JoinMetadata{
		ClientIP:   c.ClientIP(),
		DeviceInfo: c.GetHeader("User-Agent"),
	}

	attempt, created, err := h.attemptService.Join(eventID, userID, meta)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"attempt": dto.NewAttemptResponse(attempt),
		"created": created,
	})
}

// GetQuestions выдает участнику вопросы события (без правильных ответов)
// GET /api/gaming-events/:id/questions
func (h *AttemptHandler) GetQuestions(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)
	userID, ok := userIDFromContext(c)
	if !ok {
		h.handleAttemptError(c, apperrors.ErrUnauthorized)
		return
	}

	set, err := h.attemptService.FetchQuestions(eventID, userID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionSetResponse(set))
}

// SubmittedAnswerRequest представляет один ответ участника
type SubmittedAnswerRequest struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedOption string `json:"selected_option" binding:"required"`
	TimeTakenSec   int    `json:"time_taken_sec" binding:"omitempty,min=0"`
}

// SubmitAnswersRequest представляет запрос на отправку ответов
type SubmitAnswersRequest struct {
	Answers     []SubmittedAnswerRequest `json:"answers" binding:"required"`
	DurationSec int                      `json:"duration_sec" binding:"omitempty,min=0"`
}

// SubmitAnswers принимает ответы участника и финализирует попытку
// POST /api/gaming-events/:id/submit
func (h *AttemptHandler) SubmitAnswers(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)
	userID, ok := userIDFromContext(c)
	if !ok {
		h.handleAttemptError(c, apperrors.ErrUnauthorized)
		return
	}

	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answers := make([]service.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.SubmittedAnswer{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			TimeTakenSec:   a.TimeTakenSec,
		})
	}

	attempt, err := h.attemptService.Submit(eventID, userID, answers, req.DurationSec)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// CheckCompleted сообщает, завершил ли участник событие
// GET /api/gaming-events/:id/completed
func (h *AttemptHandler) CheckCompleted(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)
	userID, ok := userIDFromContext(c)
	if !ok {
		h.handleAttemptError(c, apperrors.ErrUnauthorized)
		return
	}

	completed, attempt, err := h.attemptService.CheckCompleted(eventID, userID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completed": completed,
		"attempt":   dto.NewAttemptResponse(attempt),
	})
}

// CheckCompletedFor отвечает на запрос внешнего сервиса наград: завершил ли
// указанный участник указанное событие. Идентификаторы берутся из пути.
func (h *AttemptHandler) CheckCompletedFor(c *gin.Context) {
	eventID := c.MustGet("eventID").(uint)
	userID := c.MustGet("targetUserID").(uint)

	completed, attempt, err := h.attemptService.CheckCompleted(eventID, userID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completed": completed,
		"attempt":   dto.NewAttemptResponse(attempt),
	})
}

// handleAttemptError обрабатывает ошибки сервиса попыток и отправляет соответствующий HTTP ответ
func (h *AttemptHandler) handleAttemptError(c *gin.Context, err error) {
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
		log.Printf("ERROR: Internal server error in AttemptHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
