package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем (рейтинги событий)
type CacheRepository interface {
	Delete(key string) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	// GetJSON при отсутствии ключа возвращает ErrNotFound
	GetJSON(key string, dest interface{}) error
}
