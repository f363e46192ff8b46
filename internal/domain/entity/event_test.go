package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testEvent(start, end time.Time) *GamingEvent {
	return &GamingEvent{
		ID:        1,
		Title:     "Тестовое событие",
		StartTime: start,
		EndTime:   end,
		Status:    EventStatusScheduled,
	}
}

func TestGamingEvent_ComputeStatus(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	event := testEvent(start, end)

	tests := []struct {
		name     string
		now      time.Time
		expected string
	}{
		{"до начала окна", start.Add(-time.Minute), EventStatusScheduled},
		{"ровно на начале окна", start, EventStatusLive},
		{"внутри окна", start.Add(30 * time.Minute), EventStatusLive},
		{"ровно на конце окна", end, EventStatusLive},
		{"после конца окна", end.Add(time.Second), EventStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, event.ComputeStatus(tt.now))
		})
	}
}

func TestGamingEvent_ComputeStatus_DisabledIsSink(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := testEvent(start, start.Add(time.Hour))
	event.Status = EventStatusDisabled

	// disabled не пересчитывается ни в одной точке времени
	assert.Equal(t, EventStatusDisabled, event.ComputeStatus(start.Add(-time.Hour)))
	assert.Equal(t, EventStatusDisabled, event.ComputeStatus(start.Add(30*time.Minute)))
	assert.Equal(t, EventStatusDisabled, event.ComputeStatus(start.Add(2*time.Hour)))
}

func TestGamingEvent_IsWithinWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	event := testEvent(start, end)

	assert.False(t, event.IsWithinWindow(start.Add(-time.Nanosecond)))
	assert.True(t, event.IsWithinWindow(start))
	assert.True(t, event.IsWithinWindow(end))
	assert.False(t, event.IsWithinWindow(end.Add(time.Nanosecond)))
}

func TestGamingEvent_AnswerKey(t *testing.T) {
	event := testEvent(time.Now(), time.Now().Add(time.Hour))
	event.Questions = []EventQuestion{
		{ID: 10, CorrectAnswer: "Париж"},
		{ID: 11, CorrectAnswer: "4"},
	}

	key := event.AnswerKey()
	assert.Len(t, key, 2)
	assert.Equal(t, "Париж", key[10])
	assert.Equal(t, "4", key[11])
}

func TestAttempt_Accuracy(t *testing.T) {
	withAnswers := &Attempt{CorrectCount: 3, WrongCount: 1}
	acc, ok := withAnswers.Accuracy()
	assert.True(t, ok)
	assert.InDelta(t, 0.75, acc, 1e-9)

	// Попытка без ответов не дает определенной точности
	empty := &Attempt{}
	_, ok = empty.Accuracy()
	assert.False(t, ok)
}
