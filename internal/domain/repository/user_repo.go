package repository

import (
	"github.com/yourusername/gamequiz-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с участниками и их балансом монет
type UserRepository interface {
	// GetByIDs возвращает участников по списку идентификаторов (для рейтинга)
	GetByIDs(ids []uint) (map[uint]entity.User, error)
	// DebitCoins атомарно списывает amount монет: условный update с проверкой
	// coins >= amount. При нехватке баланса возвращает ErrInsufficientFunds.
	DebitCoins(userID uint, amount int) error
	// CreditCoins начисляет amount монет (компенсация неудавшегося входа, награды)
	CreditCoins(userID uint, amount int) error
}
