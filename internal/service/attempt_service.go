package service

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	"github.com/yourusername/gamequiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

// leaderboardCacheKey - ключ кеша рейтинга события, инвалидируется при каждой отправке
func leaderboardCacheKey(eventID uint) string {
	return fmt.Sprintf("leaderboard:event:%d", eventID)
}

// AttemptService оркестрирует вход в событие, выдачу вопросов и прием ответов
type AttemptService struct {
	eventRepo   repository.EventRepository
	attemptRepo repository.AttemptRepository
	wallet      Wallet
	broadcaster Broadcaster
	cacheRepo   repository.CacheRepository
	clock       Clock
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	eventRepo repository.EventRepository,
	attemptRepo repository.AttemptRepository,
	wallet Wallet,
	broadcaster Broadcaster,
	cacheRepo repository.CacheRepository,
	clock Clock,
) *AttemptService {
	return &AttemptService{
		eventRepo:   eventRepo,
		attemptRepo: attemptRepo,
		wallet:      wallet,
		broadcaster: broadcaster,
		cacheRepo:   cacheRepo,
		clock:       clock,
	}
}

// JoinMetadata - контекст запроса для антифрод-аудита
type JoinMetadata struct {
	ClientIP   string
	DeviceInfo string
}

// Join впускает участника в событие.
// Возвращаемый флаг created: true - создана новая попытка, false - возвращена
// существующая незавершенная (продолжение после обрыва соединения).
func (s *AttemptService) Join(eventID, userID uint, meta JoinMetadata) (*entity.Attempt, bool, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, false, err
	}
	if !event.IsActive {
		return nil, false, fmt.Errorf("%w: event #%d is not active", apperrors.ErrNotFound, eventID)
	}
	if event.IsDisabled() {
		return nil, false, fmt.Errorf("%w: event #%d is disabled", apperrors.ErrUnavailable, eventID)
	}

	// Статус может отставать от часов между тиками transitioner-а,
	// поэтому окно проверяется независимо от статуса
	now := s.clock.Now()
	if !event.IsWithinWindow(now) && !event.IsLive() {
		return nil, false, fmt.Errorf("%w: event #%d is outside its time window", apperrors.ErrUnavailable, eventID)
	}

	// Незавершенная попытка возвращается как продолжение, без ошибки
	if active, err := s.attemptRepo.GetActive(eventID, userID); err == nil {
		return active, false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	attemptSeq := 1
	if event.AllowMultipleAttempts {
		count, err := s.attemptRepo.CountByEventAndUser(eventID, userID)
		if err != nil {
			return nil, false, err
		}
		attemptSeq = int(count) + 1
	} else {
		latest, err := s.attemptRepo.GetLatest(eventID, userID)
		if err == nil && latest.IsFinished() {
			return nil, false, fmt.Errorf("%w: attempt #%d already completed", apperrors.ErrConflict, latest.ID)
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, err
		}
	}

	// Списание entry cost строго до создания попытки; любой провал создания
	// дальше компенсируется синхронным возвратом монет
	debited := false
	if event.EntryCostCoins > 0 {
		if err := s.wallet.Debit(userID, event.EntryCostCoins); err != nil {
			return nil, false, err
		}
		debited = true
	}

	attempt := &entity.Attempt{
		EventID:    eventID,
		UserID:     userID,
		AttemptSeq: attemptSeq,
		StartedAt:  now,
		ClientIP:   meta.ClientIP,
		DeviceInfo: meta.DeviceInfo,
	}

	if err := s.attemptRepo.Create(attempt); err != nil {
		if debited {
			s.refund(userID, event.EntryCostCoins)
		}
		if errors.Is(err, repository.ErrAttemptExists) {
			// Гонка конкурентных Join: уникальный индекс пропустил только одного.
			// Проигравший возвращает попытку победителя как продолжение.
			if active, gErr := s.attemptRepo.GetActive(eventID, userID); gErr == nil {
				return active, false, nil
			}
			if latest, gErr := s.attemptRepo.GetLatest(eventID, userID); gErr == nil && latest.IsFinished() {
				return nil, false, fmt.Errorf("%w: attempt #%d already completed", apperrors.ErrConflict, latest.ID)
			}
			return nil, false, fmt.Errorf("%w: concurrent join for event #%d", apperrors.ErrConflict, eventID)
		}
		return nil, false, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Printf("[AttemptService] Участник #%d вошел в событие #%d (попытка #%d, seq %d)", userID, eventID, attempt.ID, attemptSeq)
	return attempt, true, nil
}

// refund синхронно компенсирует списание entry cost
func (s *AttemptService) refund(userID uint, amount int) {
	if err := s.wallet.Credit(userID, amount); err != nil {
		// Участник потерял монеты без попытки: это инцидент для ручного разбора
		log.Printf("[AttemptService] КРИТИЧНО: не удалось вернуть %d монет участнику #%d: %v", amount, userID, err)
	}
}

// QuestionSet - набор вопросов, выдаваемый участнику (без правильных ответов)
type QuestionSet struct {
	AttemptID           uint
	Questions           []entity.EventQuestion
	TotalTimerSec       int
	PerQuestionTimerSec int
}

// FetchQuestions выдает участнику вопросы события. Требуется активная
// (незавершенная) попытка. Порядок перемешивается детерминированно:
// сид выводится из (событие, участник, попытка), поэтому порядок выглядит
// случайным для каждого участника, но воспроизводим для аудита.
//
// TotalTimerSec - это время, оставшееся до конца окна с момента выдачи,
// ограниченное сверху длительностью окна: поздно вошедший участник не
// получает больше времени, чем осталось.
func (s *AttemptService) FetchQuestions(eventID, userID uint) (*QuestionSet, error) {
	event, err := s.eventRepo.GetWithQuestions(eventID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.GetActive(eventID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active attempt for event #%d", apperrors.ErrForbidden, eventID)
		}
		return nil, err
	}

	if len(event.Questions) == 0 {
		return nil, fmt.Errorf("%w: event #%d has no questions", apperrors.ErrNotFound, eventID)
	}

	questions := make([]entity.EventQuestion, len(event.Questions))
	copy(questions, event.Questions)

	if event.RandomizeQuestions {
		rng := rand.New(rand.NewSource(questionOrderSeed(eventID, userID, attempt.ID)))
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	now := s.clock.Now()
	remaining := int(event.EndTime.Sub(now).Seconds())
	if window := event.WindowSeconds(); remaining > window {
		remaining = window
	}
	if remaining < 0 {
		remaining = 0
	}

	return &QuestionSet{
		AttemptID:           attempt.ID,
		Questions:           questions,
		TotalTimerSec:       remaining,
		PerQuestionTimerSec: event.PerQuestionSec,
	}, nil
}

// questionOrderSeed выводит сид перемешивания из тройки (событие, участник, попытка)
func questionOrderSeed(eventID, userID, attemptID uint) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%d", eventID, userID, attemptID)
	return int64(h.Sum64())
}

// Submit принимает ответы участника, считает очки и финализирует попытку.
// Финализация - условный update (CAS по finished_at): при конкурентных
// отправках побеждает ровно одна, остальные получают ErrConflict, а поля,
// записанные победителем, не меняются.
func (s *AttemptService) Submit(eventID, userID uint, answers []SubmittedAnswer, durationSec int) (*entity.Attempt, error) {
	event, err := s.eventRepo.GetWithQuestions(eventID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.attemptRepo.GetActive(eventID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// Активной попытки нет: либо уже отправлено (Conflict), либо входа не было (NotFound)
		latest, lErr := s.attemptRepo.GetLatest(eventID, userID)
		if lErr != nil {
			return nil, fmt.Errorf("%w: no attempt for event #%d", apperrors.ErrNotFound, eventID)
		}
		if latest.IsFinished() {
			return nil, fmt.Errorf("%w: attempt #%d already submitted", apperrors.ErrConflict, latest.ID)
		}
		return nil, fmt.Errorf("%w: no attempt for event #%d", apperrors.ErrNotFound, eventID)
	}

	now := s.clock.Now()
	if durationSec <= 0 {
		durationSec = int(now.Sub(attempt.StartedAt).Seconds())
	}

	summary := ScoreAnswers(event.Scoring, answers, event.AnswerKey())

	fin := repository.AttemptFinalization{
		FinishedAt:   now,
		DurationSec:  durationSec,
		Score:        summary.Score,
		CorrectCount: summary.CorrectCount,
		WrongCount:   summary.WrongCount,
		MaxStreak:    summary.MaxStreak,
	}
	if err := s.attemptRepo.Finalize(attempt.ID, fin, summary.Answers); err != nil {
		if errors.Is(err, repository.ErrAttemptFinished) {
			return nil, fmt.Errorf("%w: attempt #%d already submitted", apperrors.ErrConflict, attempt.ID)
		}
		return nil, fmt.Errorf("failed to finalize attempt #%d: %w", attempt.ID, err)
	}

	log.Printf("[AttemptService] Попытка #%d финализирована: счет %d (%d верных, %d неверных, серия %d)",
		attempt.ID, summary.Score, summary.CorrectCount, summary.WrongCount, summary.MaxStreak)

	// Рассылка и инвалидация кеша best-effort: их провал не откатывает отправку
	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastScoreUpdate(eventID, userID, summary.Score); err != nil {
			log.Printf("[AttemptService] Не удалось разослать score-updated для события #%d: %v", eventID, err)
		}
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.Delete(leaderboardCacheKey(eventID)); err != nil {
			log.Printf("[AttemptService] Не удалось сбросить кеш рейтинга события #%d: %v", eventID, err)
		}
	}

	return s.attemptRepo.GetByID(attempt.ID)
}

// CheckCompleted сообщает, завершил ли участник событие, и возвращает
// последнюю попытку, если она есть
func (s *AttemptService) CheckCompleted(eventID, userID uint) (bool, *entity.Attempt, error) {
	latest, err := s.attemptRepo.GetLatest(eventID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return latest.IsFinished(), latest, nil
}

// Disqualify помечает попытку по решению антифрод-коллаборатора.
// Запись не удаляется: она исключается из рейтинга и аналитики, но остается для аудита.
func (s *AttemptService) Disqualify(attemptID uint, reason string) error {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return err
	}

	if err := s.attemptRepo.SetDisqualified(attemptID, reason); err != nil {
		return fmt.Errorf("failed to disqualify attempt #%d: %w", attemptID, err)
	}
	log.Printf("[AttemptService] Попытка #%d дисквалифицирована: %s", attemptID, reason)

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Delete(leaderboardCacheKey(attempt.EventID)); err != nil {
			log.Printf("[AttemptService] Не удалось сбросить кеш рейтинга события #%d: %v", attempt.EventID, err)
		}
	}
	return nil
}
