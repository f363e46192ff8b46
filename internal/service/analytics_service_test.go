package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
)

func TestAnalyticsService_GetEventAnalytics_Empty(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepository)
	attemptRepo.On("GetFinished", uint(1)).Return([]entity.Attempt{}, nil)

	svc := NewAnalyticsService(attemptRepo)

	// Act
	analytics, err := svc.GetEventAnalytics(1)

	// Assert: нет участников - нулевая сводка, не ошибка и не деление на ноль
	require.NoError(t, err)
	assert.Equal(t, 0, analytics.Participants)
	assert.Zero(t, analytics.AvgScore)
	assert.Zero(t, analytics.AvgAccuracy)
}

func TestAnalyticsService_GetEventAnalytics_Averages(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepository)
	attemptRepo.On("GetFinished", uint(1)).Return([]entity.Attempt{
		{ID: 1, Score: 80, DurationSec: 100, CorrectCount: 8, WrongCount: 2},
		{ID: 2, Score: 40, DurationSec: 200, CorrectCount: 4, WrongCount: 6},
	}, nil)

	svc := NewAnalyticsService(attemptRepo)

	// Act
	analytics, err := svc.GetEventAnalytics(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.Participants)
	assert.InDelta(t, 60.0, analytics.AvgScore, 1e-9)
	assert.InDelta(t, 150.0, analytics.AvgDurationSec, 1e-9)
	assert.InDelta(t, 0.6, analytics.AvgAccuracy, 1e-9)
}

func TestAnalyticsService_GetEventAnalytics_NullSafeAccuracy(t *testing.T) {
	// Попытка без единого ответа не тянет среднюю точность к нулю:
	// она исключается из среднего, а не считается нулем
	attemptRepo := new(MockAttemptRepository)
	attemptRepo.On("GetFinished", uint(1)).Return([]entity.Attempt{
		{ID: 1, Score: 100, DurationSec: 90, CorrectCount: 3, WrongCount: 1}, // точность 0.75
		{ID: 2, Score: 0, DurationSec: 5, CorrectCount: 0, WrongCount: 0},    // без ответов
	}, nil)

	svc := NewAnalyticsService(attemptRepo)

	// Act
	analytics, err := svc.GetEventAnalytics(1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.Participants)
	assert.InDelta(t, 0.75, analytics.AvgAccuracy, 1e-9)
}
