package repository

import (
	"time"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
)

// Значения scope для выборки событий относительно текущего времени
const (
	EventScopeUpcoming = "upcoming"
	EventScopeLive     = "live"
	EventScopePast     = "past"
)

// EventFilters определяет фильтры для выборки игровых событий.
// Scope фильтрует чисто по StartTime/EndTime относительно now, без побочных эффектов.
type EventFilters struct {
	Scope      string // upcoming | live | past | "" (все)
	ActiveOnly bool   // только is_active=true и статус не disabled
}

// EventRepository определяет методы для работы с игровыми событиями
type EventRepository interface {
	Create(event *entity.GamingEvent) error
	GetByID(id uint) (*entity.GamingEvent, error)
	// GetWithQuestions возвращает событие вместе с вопросами и таблицей наград
	GetWithQuestions(id uint) (*entity.GamingEvent, error)
	// UpdateFields точечно обновляет перечисленные колонки без full Save
	UpdateFields(eventID uint, updates map[string]interface{}) error
	List(filters EventFilters, now time.Time) ([]entity.GamingEvent, error)
	Delete(id uint) error
	// TransitionDueStatuses пересчитывает статусы всех не-disabled событий
	// из момента now. Идемпотентный bulk-update: повторный вызов с тем же now
	// ничего не меняет. Возвращает число затронутых строк.
	TransitionDueStatuses(now time.Time) (int64, error)
}
