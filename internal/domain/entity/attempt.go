package entity

import (
	"time"
)

// Attempt представляет один проход участника по событию: от входа до отправки ответов.
// После заполнения FinishedAt счетные поля и ответы неизменяемы.
type Attempt struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EventID    uint       `gorm:"not null;index;uniqueIndex:idx_attempt_event_user_seq" json:"event_id"`
	UserID     uint       `gorm:"not null;index;uniqueIndex:idx_attempt_event_user_seq" json:"user_id"`
	AttemptSeq int        `gorm:"not null;default:1;uniqueIndex:idx_attempt_event_user_seq" json:"attempt_seq"`
	TeamID     *uint      `gorm:"index" json:"team_id,omitempty"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `gorm:"index" json:"finished_at,omitempty"`

	DurationSec  int `gorm:"not null;default:0" json:"duration_sec"`
	Score        int `gorm:"not null;default:0" json:"score"`
	CorrectCount int `gorm:"not null;default:0" json:"correct_count"`
	WrongCount   int `gorm:"not null;default:0" json:"wrong_count"`
	MaxStreak    int `gorm:"not null;default:0" json:"max_streak"`

	// Попытка с флагом Disqualified исключается из рейтинга и аналитики,
	// но сохраняется для аудита.
	Disqualified     bool   `gorm:"not null;default:false;index" json:"disqualified"`
	DisqualifyReason string `gorm:"size:255;not null;default:''" json:"disqualify_reason,omitempty"`

	// Контекст для антифрод-проверки
	ClientIP   string `gorm:"size:45;not null;default:''" json:"-"`
	DeviceInfo string `gorm:"size:255;not null;default:''" json:"-"`

	Answers []AttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// IsFinished проверяет, отправлены ли ответы по этой попытке
func (a *Attempt) IsFinished() bool {
	return a.FinishedAt != nil
}

// Accuracy возвращает долю правильных ответов попытки.
// ok=false, если участник не ответил ни на один вопрос: такая попытка
// исключается из среднего по аналитике, а не считается нулем.
func (a *Attempt) Accuracy() (float64, bool) {
	answered := a.CorrectCount + a.WrongCount
	if answered == 0 {
		return 0, false
	}
	return float64(a.CorrectCount) / float64(answered), true
}

// AttemptAnswer представляет один отправленный ответ в составе попытки
type AttemptAnswer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AttemptID      uint      `gorm:"not null;index" json:"attempt_id"`
	QuestionID     uint      `gorm:"not null;index" json:"question_id"`
	SelectedOption string    `gorm:"size:255;not null;default:''" json:"selected_option"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	TimeTakenSec   int       `gorm:"not null;default:0" json:"time_taken_sec"`
	AnswerOrder    int       `gorm:"not null;default:0" json:"answer_order"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
