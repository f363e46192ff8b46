package service

import (
	"fmt"

	"github.com/yourusername/gamequiz-api/internal/domain/repository"
)

// EventAnalytics - агрегированная сводка участия по событию
type EventAnalytics struct {
	EventID        uint    `json:"event_id"`
	Participants   int     `json:"participants"`
	AvgScore       float64 `json:"avg_score"`
	AvgDurationSec float64 `json:"avg_duration_sec"`
	AvgAccuracy    float64 `json:"avg_accuracy"`
}

// AnalyticsService считает сводки по завершенным недисквалифицированным попыткам
type AnalyticsService struct {
	attemptRepo repository.AttemptRepository
}

// NewAnalyticsService создает новый сервис аналитики
func NewAnalyticsService(attemptRepo repository.AttemptRepository) *AnalyticsService {
	return &AnalyticsService{attemptRepo: attemptRepo}
}

// GetEventAnalytics возвращает сводку по событию.
// AvgAccuracy считается по попыткам, в которых есть хотя бы один ответ:
// попытка без ответов исключается из этого среднего, а не считается нулем.
// Если подходящих попыток нет вовсе, возвращается нулевая сводка.
func (s *AnalyticsService) GetEventAnalytics(eventID uint) (*EventAnalytics, error) {
	attempts, err := s.attemptRepo.GetFinished(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load finished attempts for event #%d: %w", eventID, err)
	}

	analytics := &EventAnalytics{EventID: eventID}
	if len(attempts) == 0 {
		return analytics, nil
	}

	var scoreSum, durationSum int
	var accuracySum float64
	accuracyCount := 0

	for _, a := range attempts {
		scoreSum += a.Score
		durationSum += a.DurationSec
		if acc, ok := a.Accuracy(); ok {
			accuracySum += acc
			accuracyCount++
		}
	}

	n := float64(len(attempts))
	analytics.Participants = len(attempts)
	analytics.AvgScore = float64(scoreSum) / n
	analytics.AvgDurationSec = float64(durationSum) / n
	if accuracyCount > 0 {
		analytics.AvgAccuracy = accuracySum / float64(accuracyCount)
	}

	return analytics, nil
}
