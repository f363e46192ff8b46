package repository

import (
	"time"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
)

// AttemptFinalization содержит счетные поля, записываемые при отправке ответов.
// Это единственная точка, где попытка становится неизменяемой.
type AttemptFinalization struct {
	FinishedAt   time.Time
	DurationSec  int
	Score        int
	CorrectCount int
	WrongCount   int
	MaxStreak    int
}

// AttemptRepository определяет методы для работы с попытками участников
type AttemptRepository interface {
	// Create создает попытку. Уникальность (event_id, user_id, attempt_seq)
	// обеспечивается индексом БД: при нарушении возвращается ErrAttemptExists.
	Create(attempt *entity.Attempt) error
	GetByID(id uint) (*entity.Attempt, error)
	// GetActive возвращает незавершенную попытку пары (событие, участник)
	GetActive(eventID, userID uint) (*entity.Attempt, error)
	// GetLatest возвращает последнюю по attempt_seq попытку пары (событие, участник)
	GetLatest(eventID, userID uint) (*entity.Attempt, error)
	CountByEventAndUser(eventID, userID uint) (int64, error)
	// Finalize записывает итог попытки и ее ответы одной транзакцией.
	// Update условный (finished_at IS NULL): при конкурентных отправках
	// побеждает ровно одна, остальные получают ErrAttemptFinished.
	Finalize(attemptID uint, fin AttemptFinalization, answers []entity.AttemptAnswer) error
	// GetRanked возвращает завершенные недисквалифицированные попытки события:
	// score DESC, duration_sec ASC, created_at ASC
	GetRanked(eventID uint, limit int) ([]entity.Attempt, error)
	// GetFinished возвращает все завершенные недисквалифицированные попытки события
	GetFinished(eventID uint) ([]entity.Attempt, error)
	// SetDisqualified помечает попытку (запись сохраняется для аудита)
	SetDisqualified(attemptID uint, reason string) error
}
