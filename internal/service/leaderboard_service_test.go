package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

func rankedAttempts() []entity.Attempt {
	// Порядок уже задан слоем хранения: score DESC, duration ASC, created ASC
	return []entity.Attempt{
		{ID: 10, UserID: 1, Score: 90, DurationSec: 120, CorrectCount: 9, MaxStreak: 5},
		{ID: 11, UserID: 2, Score: 90, DurationSec: 150, CorrectCount: 9, MaxStreak: 4},
		{ID: 12, UserID: 3, Score: 40, DurationSec: 60, CorrectCount: 4, MaxStreak: 2},
	}
}

func TestLeaderboardService_GetLeaderboard_ResolvesUsers(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	attemptRepo.On("GetRanked", uint(1), MaxLeaderboardLimit).Return(rankedAttempts(), nil)
	userRepo.On("GetByIDs", []uint{1, 2, 3}).Return(map[uint]entity.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob", ProfilePicture: "bob.png"},
		// участник 3 удален: строка остается с пустым именем
	}, nil)

	svc := NewLeaderboardService(attemptRepo, userRepo, nil, time.Minute)

	// Act
	entries, err := svc.GetLeaderboard(1, 0)

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, "bob.png", entries[1].ProfilePicture)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Empty(t, entries[2].Username)
}

func TestLeaderboardService_GetLeaderboard_TieBreakOrderPreserved(t *testing.T) {
	// Равный счет: побеждает меньшая длительность, ранги строго возрастают
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	attemptRepo.On("GetRanked", uint(1), MaxLeaderboardLimit).Return(rankedAttempts(), nil)
	userRepo.On("GetByIDs", mock.Anything).Return(map[uint]entity.User{}, nil)

	svc := NewLeaderboardService(attemptRepo, userRepo, nil, time.Minute)

	// Act
	entries, err := svc.GetLeaderboard(1, 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(10), entries[0].AttemptID, "быстрый финиш выше при равном счете")
	assert.Equal(t, uint(11), entries[1].AttemptID)
	assert.Equal(t, []int{1, 2}, []int{entries[0].Rank, entries[1].Rank})
}

func TestLeaderboardService_GetLeaderboard_CacheHitSkipsRepo(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("GetJSON", "leaderboard:event:1", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*[]LeaderboardEntry)
			*dest = []LeaderboardEntry{{Rank: 1, AttemptID: 10, Score: 90}}
		}).Return(nil)

	svc := NewLeaderboardService(attemptRepo, userRepo, cacheRepo, time.Minute)

	// Act
	entries, err := svc.GetLeaderboard(1, 0)

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(10), entries[0].AttemptID)
	attemptRepo.AssertNotCalled(t, "GetRanked")
}

func TestLeaderboardService_GetLeaderboard_CacheMissPopulatesCache(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	cacheRepo := new(MockCacheRepository)
	cacheRepo.On("GetJSON", "leaderboard:event:1", mock.Anything).Return(apperrors.ErrNotFound)
	attemptRepo.On("GetRanked", uint(1), MaxLeaderboardLimit).Return(rankedAttempts(), nil)
	userRepo.On("GetByIDs", mock.Anything).Return(map[uint]entity.User{}, nil)
	cacheRepo.On("SetJSON", "leaderboard:event:1", mock.Anything, time.Minute).Return(nil)

	svc := NewLeaderboardService(attemptRepo, userRepo, cacheRepo, time.Minute)

	// Act
	entries, err := svc.GetLeaderboard(1, 0)

	// Assert
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	cacheRepo.AssertExpectations(t)
}

// fakeCache - кеш в памяти с точным совпадением ключей, как DEL в Redis
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Delete(key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) SetJSON(key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeCache) GetJSON(key string, dest interface{}) error {
	b, ok := f.data[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

func TestLeaderboardService_InvalidationRefreshesCachedLeaderboard(t *testing.T) {
	// Arrange: ключ, который снимают Submit и Disqualify, должен совпадать
	// с ключом, под которым read-путь кеширует рейтинг
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	cache := newFakeCache()

	attemptRepo.On("GetRanked", uint(7), MaxLeaderboardLimit).
		Return([]entity.Attempt{{ID: 1, UserID: 1, Score: 10}}, nil).Once()
	attemptRepo.On("GetRanked", uint(7), MaxLeaderboardLimit).
		Return([]entity.Attempt{
			{ID: 2, UserID: 2, Score: 99},
			{ID: 1, UserID: 1, Score: 10},
		}, nil).Once()
	userRepo.On("GetByIDs", mock.Anything).Return(map[uint]entity.User{}, nil)

	svc := NewLeaderboardService(attemptRepo, userRepo, cache, time.Minute)

	// Act: читаем, читаем из кеша, инвалидируем, читаем снова
	entries, err := svc.GetLeaderboard(7, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].Score)

	entries, err = svc.GetLeaderboard(7, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, entries[0].Score, "повторное чтение идет из кеша")

	require.NoError(t, cache.Delete(leaderboardCacheKey(7)))

	// Assert: после инвалидации отдается свежий рейтинг
	entries, err = svc.GetLeaderboard(7, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 99, entries[0].Score)
	attemptRepo.AssertExpectations(t)
}

func TestLeaderboardService_GetLeaderboard_RepoError(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	attemptRepo.On("GetRanked", uint(1), MaxLeaderboardLimit).Return(nil, errors.New("db down"))

	svc := NewLeaderboardService(attemptRepo, new(MockUserRepository), nil, time.Minute)

	_, err := svc.GetLeaderboard(1, 0)
	assert.Error(t, err)
}

func TestLeaderboardService_ExportXLSX(t *testing.T) {
	// Arrange
	attemptRepo := new(MockAttemptRepository)
	userRepo := new(MockUserRepository)
	// limit=0: выгрузка целиком, мимо кеша
	attemptRepo.On("GetRanked", uint(1), 0).Return(rankedAttempts(), nil)
	userRepo.On("GetByIDs", mock.Anything).Return(map[uint]entity.User{1: {ID: 1, Username: "alice"}}, nil)

	svc := NewLeaderboardService(attemptRepo, userRepo, nil, time.Minute)

	// Act
	data, err := svc.ExportXLSX(1)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx - это zip-контейнер
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
