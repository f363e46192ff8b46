package entity

import (
	"time"
)

// User представляет участника. Регистрация и аутентификация живут во внешнем
// identity-сервисе; движку нужны только отображаемые поля и баланс монет.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	ProfilePicture string    `gorm:"size:255;not null;default:''" json:"profile_picture"`
	Coins          int       `gorm:"not null;default:0" json:"coins"`
	Role           string    `gorm:"size:20;not null;default:'user'" json:"-"` // "user" или "admin"
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsAdmin проверяет, имеет ли пользователь права администратора
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
