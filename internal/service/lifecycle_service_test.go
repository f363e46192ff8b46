package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleService_Tick(t *testing.T) {
	// Arrange
	eventRepo := new(MockEventRepository)
	eventRepo.On("TransitionDueStatuses", testNow).Return(int64(3), nil)

	svc := NewLifecycleService(eventRepo, fixedClock{now: testNow})

	// Act
	affected, err := svc.Tick()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	eventRepo.AssertExpectations(t)
}

func TestLifecycleService_Tick_Idempotent(t *testing.T) {
	// Повторный тик при неизменившемся времени ничего не трогает
	eventRepo := new(MockEventRepository)
	eventRepo.On("TransitionDueStatuses", testNow).Return(int64(0), nil).Twice()

	svc := NewLifecycleService(eventRepo, fixedClock{now: testNow})

	// Act
	_, err := svc.Tick()
	require.NoError(t, err)
	affected, err := svc.Tick()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestLifecycleService_Tick_Error(t *testing.T) {
	eventRepo := new(MockEventRepository)
	eventRepo.On("TransitionDueStatuses", testNow).Return(int64(0), errors.New("db down"))

	svc := NewLifecycleService(eventRepo, fixedClock{now: testNow})

	affected, err := svc.Tick()
	assert.Error(t, err)
	assert.Zero(t, affected)
}
