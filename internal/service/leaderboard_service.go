package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/gamequiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

// DefaultLeaderboardLimit - размер рейтинга по умолчанию
const DefaultLeaderboardLimit = 50

// MaxLeaderboardLimit - верхняя граница запрашиваемого размера рейтинга.
// Кеш хранит полный top-MaxLeaderboardLimit, запросы нарезают его по limit.
const MaxLeaderboardLimit = 500

// LeaderboardEntry - одна строка рейтинга с резолвленными полями участника
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	AttemptID      uint   `json:"attempt_id"`
	UserID         uint   `json:"user_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Score          int    `json:"score"`
	DurationSec    int    `json:"duration_sec"`
	CorrectCount   int    `json:"correct_count"`
	MaxStreak      int    `json:"max_streak"`
}

// LeaderboardService строит рейтинг события. Чистый read-путь:
// ничего не мутирует, кроме собственного кеша.
type LeaderboardService struct {
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
	cacheTTL    time.Duration
}

// NewLeaderboardService создает новый сервис рейтинга
func NewLeaderboardService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
	}
}

// GetLeaderboard возвращает top-limit завершенных недисквалифицированных
// попыток события. Порядок: score DESC, duration ASC (быстрый финиш выигрывает
// тай-брейк), createdAt ASC (ранний вход выигрывает следующий).
func (s *LeaderboardService) GetLeaderboard(eventID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	// Единственный ключ на событие: инвалидация при сабмите снимает его
	// одним DEL, независимо от limit в запросах на чтение
	cacheKey := leaderboardCacheKey(eventID)
	if s.cacheRepo != nil {
		var cached []LeaderboardEntry
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return topEntries(cached, limit), nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[LeaderboardService] Ошибка чтения кеша рейтинга события #%d: %v", eventID, err)
		}
	}

	entries, err := s.buildLeaderboard(eventID, MaxLeaderboardLimit)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, entries, s.cacheTTL); err != nil {
			log.Printf("[LeaderboardService] Ошибка записи кеша рейтинга события #%d: %v", eventID, err)
		}
	}
	return topEntries(entries, limit), nil
}

func topEntries(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func (s *LeaderboardService) buildLeaderboard(eventID uint, limit int) ([]LeaderboardEntry, error) {
	attempts, err := s.attemptRepo.GetRanked(eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranked attempts for event #%d: %w", eventID, err)
	}

	userIDs := make([]uint, 0, len(attempts))
	for _, a := range attempts {
		userIDs = append(userIDs, a.UserID)
	}
	users, err := s.userRepo.GetByIDs(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(attempts))
	for i, a := range attempts {
		entry := LeaderboardEntry{
			Rank:         i + 1,
			AttemptID:    a.ID,
			UserID:       a.UserID,
			Score:        a.Score,
			DurationSec:  a.DurationSec,
			CorrectCount: a.CorrectCount,
			MaxStreak:    a.MaxStreak,
		}
		if u, ok := users[a.UserID]; ok {
			entry.Username = u.Username
			entry.ProfilePicture = u.ProfilePicture
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ExportXLSX выгружает полный рейтинг события в xlsx для административного разбора
func (s *LeaderboardService) ExportXLSX(eventID uint) ([]byte, error) {
	// limit=0: выгружается рейтинг целиком, мимо кеша
	entries, err := s.buildLeaderboard(eventID, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[LeaderboardService] Ошибка закрытия xlsx файла: %v", err)
		}
	}()

	sheet := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Rank", "User ID", "Username", "Score", "Duration (sec)", "Correct", "Max Streak"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, e := range entries {
		values := []interface{}{e.Rank, e.UserID, e.Username, e.Score, e.DurationSec, e.CorrectCount, e.MaxStreak}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
