package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	"github.com/yourusername/gamequiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create создает попытку. Уникальность пары (событие, участник) обеспечивает
// индекс idx_attempt_event_user_seq: при гонке двух Join одна вставка
// получает 23505 и транслируется в ErrAttemptExists.
func (r *AttemptRepo) Create(attempt *entity.Attempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event #%d user #%d", repository.ErrAttemptExists, attempt.EventID, attempt.UserID)
		}
		return err
	}
	return nil
}

// GetByID возвращает попытку с ответами
func (r *AttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("answer_order ASC")
	}).First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetActive возвращает незавершенную попытку пары (событие, участник)
func (r *AttemptRepo) GetActive(eventID, userID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("event_id = ? AND user_id = ? AND finished_at IS NULL", eventID, userID).
		Order("attempt_seq DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetLatest возвращает последнюю по attempt_seq попытку пары (событие, участник)
func (r *AttemptRepo) GetLatest(eventID, userID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("attempt_seq DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// CountByEventAndUser возвращает количество попыток пары (событие, участник)
func (r *AttemptRepo) CountByEventAndUser(eventID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Attempt{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count, err
}

// Finalize записывает итог попытки и ее ответы одной транзакцией.
// Update условный (finished_at IS NULL): это compare-and-swap, при
// конкурентных отправках побеждает ровно одна, остальные получают
// ErrAttemptFinished. После успешного Finalize попытка неизменяема.
func (r *AttemptRepo) Finalize(attemptID uint, fin repository.AttemptFinalization, answers []entity.AttemptAnswer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Attempt{}).
			Where("id = ? AND finished_at IS NULL", attemptID).
			Updates(map[string]interface{}{
				"finished_at":   fin.FinishedAt,
				"duration_sec":  fin.DurationSec,
				"score":         fin.Score,
				"correct_count": fin.CorrectCount,
				"wrong_count":   fin.WrongCount,
				"max_streak":    fin.MaxStreak,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Либо попытки нет, либо она уже финализирована
			var exists int64
			if err := tx.Model(&entity.Attempt{}).Where("id = ?", attemptID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("%w: attempt #%d", repository.ErrAttemptFinished, attemptID)
		}

		if len(answers) > 0 {
			for i := range answers {
				answers[i].AttemptID = attemptID
			}
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRanked возвращает завершенные недисквалифицированные попытки события
// в порядке рейтинга: score DESC, duration_sec ASC, created_at ASC
func (r *AttemptRepo) GetRanked(eventID uint, limit int) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	query := r.db.Where("event_id = ? AND finished_at IS NOT NULL AND disqualified = ?", eventID, false).
		Order("score DESC, duration_sec ASC, created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&attempts).Error
	return attempts, err
}

// GetFinished возвращает все завершенные недисквалифицированные попытки события
func (r *AttemptRepo) GetFinished(eventID uint) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.Where("event_id = ? AND finished_at IS NOT NULL AND disqualified = ?", eventID, false).
		Find(&attempts).Error
	return attempts, err
}

// SetDisqualified помечает попытку дисквалифицированной, не трогая счетные поля
func (r *AttemptRepo) SetDisqualified(attemptID uint, reason string) error {
	result := r.db.Model(&entity.Attempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"disqualified":      true,
			"disqualify_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
