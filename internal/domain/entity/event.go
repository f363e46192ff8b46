package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Константы статусов игрового события
const (
	EventStatusScheduled = "scheduled"
	EventStatusLive      = "live"
	EventStatusCompleted = "completed"
	EventStatusDisabled  = "disabled"
)

// Режимы проведения события
const (
	EventModeSolo = "solo"
	EventModeTeam = "team"
	EventModeLive = "live"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// ScoringRules описывает правила начисления очков события.
// После перехода события в live/completed правила неизменяемы (no retroactive rescoring).
type ScoringRules struct {
	CorrectPoints int `gorm:"not null;default:10" json:"correct_points"`
	WrongPoints   int `gorm:"not null;default:0" json:"wrong_points"`
	StreakBonus   int `gorm:"not null;default:0" json:"streak_bonus"`
	StreakEvery   int `gorm:"not null;default:0" json:"streak_every"`
}

// GamingEvent представляет соревновательное игровое событие с собственным
// набором вопросов, окном проведения и таблицей наград
type GamingEvent struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	Title                 string          `gorm:"size:100;not null" json:"title"`
	Description           string          `gorm:"size:500;not null;default:''" json:"description"`
	Category              string          `gorm:"size:50;not null;default:''" json:"category"`
	Difficulty            string          `gorm:"size:20;not null;default:''" json:"difficulty"`
	StartTime             time.Time       `gorm:"not null;index" json:"start_time"`
	EndTime               time.Time       `gorm:"not null;index" json:"end_time"`
	Status                string          `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	Mode                  string          `gorm:"size:20;not null;default:'solo'" json:"mode"`
	EntryCostCoins        int             `gorm:"not null;default:0" json:"entry_cost_coins"`
	AllowMultipleAttempts bool            `gorm:"not null;default:false" json:"allow_multiple_attempts"`
	RandomizeQuestions    bool            `gorm:"not null;default:true" json:"randomize_questions"`
	PerQuestionSec        int             `gorm:"not null;default:30" json:"per_question_sec"`
	Scoring               ScoringRules    `gorm:"embedded;embeddedPrefix:scoring_" json:"scoring"`
	Questions             []EventQuestion `gorm:"foreignKey:EventID" json:"questions,omitempty"`
	Rewards               []EventReward   `gorm:"foreignKey:EventID" json:"rewards,omitempty"`
	IsActive              bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (GamingEvent) TableName() string {
	return "gaming_events"
}

// IsLive проверяет, идет ли событие прямо сейчас (по статусу)
func (e *GamingEvent) IsLive() bool {
	return e.Status == EventStatusLive
}

// IsCompleted проверяет, завершено ли событие
func (e *GamingEvent) IsCompleted() bool {
	return e.Status == EventStatusCompleted
}

// IsDisabled проверяет, отключено ли событие администратором.
// Статус disabled терминальный и не пересчитывается по времени.
func (e *GamingEvent) IsDisabled() bool {
	return e.Status == EventStatusDisabled
}

// IsWithinWindow проверяет, попадает ли момент now в окно [StartTime, EndTime].
// Границы включительно: на обеих границах событие считается live.
func (e *GamingEvent) IsWithinWindow(now time.Time) bool {
	return !now.Before(e.StartTime) && !now.After(e.EndTime)
}

// ComputeStatus выводит статус события из текущего времени.
// disabled - sink: он никогда не перезаписывается расчетом по времени.
func (e *GamingEvent) ComputeStatus(now time.Time) string {
	if e.IsDisabled() {
		return EventStatusDisabled
	}
	switch {
	case now.Before(e.StartTime):
		return EventStatusScheduled
	case now.After(e.EndTime):
		return EventStatusCompleted
	default:
		return EventStatusLive
	}
}

// WindowSeconds возвращает длительность окна события в секундах
func (e *GamingEvent) WindowSeconds() int {
	return int(e.EndTime.Sub(e.StartTime).Seconds())
}

// AnswerKey строит ключ ответов по встроенным вопросам события
func (e *GamingEvent) AnswerKey() map[uint]string {
	key := make(map[uint]string, len(e.Questions))
	for _, q := range e.Questions {
		key[q.ID] = q.CorrectAnswer
	}
	return key
}

// EventQuestion представляет вопрос, принадлежащий событию (композиция).
// Правильный ответ никогда не отдается участнику до отправки ответов.
type EventQuestion struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	EventID       uint        `gorm:"not null;index" json:"event_id"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer string      `gorm:"size:255;not null" json:"-"` // Скрыто от клиента
	Explanation   string      `gorm:"size:500;not null;default:''" json:"explanation,omitempty"`
	TimeLimitSec  int         `gorm:"not null;default:30" json:"time_limit_sec"`
	PointValue    int         `gorm:"not null;default:10" json:"point_value"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (EventQuestion) TableName() string {
	return "event_questions"
}

// HasOption проверяет, входит ли вариант в список вариантов вопроса
func (q *EventQuestion) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// EventReward представляет строку таблицы наград события: место -> монеты/бейдж
type EventReward struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EventID uint   `gorm:"not null;index" json:"event_id"`
	Place   int    `gorm:"not null" json:"place"`
	Coins   int    `gorm:"not null;default:0" json:"coins"`
	Badge   string `gorm:"size:100;not null;default:''" json:"badge,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (EventReward) TableName() string {
	return "event_rewards"
}
