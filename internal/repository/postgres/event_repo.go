package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	"github.com/yourusername/gamequiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

// EventRepo реализует repository.EventRepository
type EventRepo struct {
	db *gorm.DB
}

// NewEventRepo создает новый репозиторий игровых событий
func NewEventRepo(db *gorm.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create создает событие вместе с вопросами и таблицей наград (одной транзакцией GORM)
func (r *EventRepo) Create(event *entity.GamingEvent) error {
	return r.db.Create(event).Error
}

// GetByID возвращает событие по ID (без вопросов)
func (r *EventRepo) GetByID(id uint) (*entity.GamingEvent, error) {
	var event entity.GamingEvent
	err := r.db.Preload("Rewards").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// GetWithQuestions возвращает событие вместе с вопросами и наградами
func (r *EventRepo) GetWithQuestions(id uint) (*entity.GamingEvent, error) {
	var event entity.GamingEvent
	err := r.db.Preload("Questions").Preload("Rewards").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// UpdateFields точечно обновляет перечисленные колонки без full Save
func (r *EventRepo) UpdateFields(eventID uint, updates map[string]interface{}) error {
	result := r.db.Model(&entity.GamingEvent{}).
		Where("id = ?", eventID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает события по фильтрам. Scope фильтрует по окну относительно now.
func (r *EventRepo) List(filters repository.EventFilters, now time.Time) ([]entity.GamingEvent, error) {
	var events []entity.GamingEvent

	query := r.db.Model(&entity.GamingEvent{}).Preload("Rewards")

	switch filters.Scope {
	case repository.EventScopeUpcoming:
		query = query.Where("start_time > ?", now).Order("start_time ASC")
	case repository.EventScopeLive:
		query = query.Where("start_time <= ? AND end_time >= ?", now, now).Order("end_time ASC")
	case repository.EventScopePast:
		query = query.Where("end_time < ?", now).Order("end_time DESC")
	default:
		query = query.Order("start_time DESC")
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ? AND status <> ?", true, entity.EventStatusDisabled)
	}

	err := query.Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Delete удаляет событие вместе с вопросами и наградами
func (r *EventRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&entity.EventQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&entity.EventReward{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.GamingEvent{}, id).Error
	})
}

// TransitionDueStatuses пересчитывает статусы всех не-disabled событий из момента now.
// Три условных bulk-update, каждый затрагивает только строки с неактуальным статусом,
// поэтому повторный вызов с тем же now дает RowsAffected=0.
func (r *EventRepo) TransitionDueStatuses(now time.Time) (int64, error) {
	var affected int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// startTime > now -> scheduled
		res := tx.Model(&entity.GamingEvent{}).
			Where("status NOT IN ? AND start_time > ?",
				[]string{entity.EventStatusDisabled, entity.EventStatusScheduled}, now).
			Update("status", entity.EventStatusScheduled)
		if res.Error != nil {
			return res.Error
		}
		affected += res.RowsAffected

		// startTime <= now <= endTime -> live
		res = tx.Model(&entity.GamingEvent{}).
			Where("status NOT IN ? AND start_time <= ? AND end_time >= ?",
				[]string{entity.EventStatusDisabled, entity.EventStatusLive}, now, now).
			Update("status", entity.EventStatusLive)
		if res.Error != nil {
			return res.Error
		}
		affected += res.RowsAffected

		// endTime < now -> completed
		res = tx.Model(&entity.GamingEvent{}).
			Where("status NOT IN ? AND end_time < ?",
				[]string{entity.EventStatusDisabled, entity.EventStatusCompleted}, now).
			Update("status", entity.EventStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		affected += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
