package service

import (
	"log"

	"github.com/yourusername/gamequiz-api/internal/domain/repository"
)

// LifecycleService пересчитывает статусы событий из текущего времени.
// Сам он не владеет расписанием: внешний таймер (тикер в cmd/api) дергает
// Tick с фиксированным интервалом. Пересчет идемпотентен и безопасен при
// конкурентном запуске с read-путями.
type LifecycleService struct {
	eventRepo repository.EventRepository
	clock     Clock
}

// NewLifecycleService создает новый сервис жизненного цикла событий
func NewLifecycleService(eventRepo repository.EventRepository, clock Clock) *LifecycleService {
	return &LifecycleService{
		eventRepo: eventRepo,
		clock:     clock,
	}
}

// Tick выполняет один проход пересчета статусов. Возвращает число
// затронутых событий. disabled - sink и никогда не перезаписывается.
func (s *LifecycleService) Tick() (int64, error) {
	now := s.clock.Now()
	affected, err := s.eventRepo.TransitionDueStatuses(now)
	if err != nil {
		log.Printf("[LifecycleService] Ошибка пересчета статусов: %v", err)
		return 0, err
	}
	if affected > 0 {
		log.Printf("[LifecycleService] Пересчитаны статусы %d событий (now=%v)", affected, now)
	}
	return affected, nil
}
