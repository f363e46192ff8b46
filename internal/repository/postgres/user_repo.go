package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/gamequiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/gamequiz-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий участников
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByIDs возвращает участников по списку идентификаторов
func (r *UserRepo) GetByIDs(ids []uint) (map[uint]entity.User, error) {
	users := make(map[uint]entity.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []entity.User
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// DebitCoins атомарно списывает amount монет. Условный update с проверкой
// coins >= amount: баланс не может уйти в минус даже при конкурентных списаниях.
func (r *UserRepo) DebitCoins(userID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", apperrors.ErrValidation)
	}

	result := r.db.Model(&entity.User{}).
		Where("id = ? AND coins >= ?", userID, amount).
		Update("coins", gorm.Expr("coins - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Либо участника нет, либо не хватает монет
		var exists int64
		if err := r.db.Model(&entity.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: need %d coins", apperrors.ErrInsufficientFunds, amount)
	}
	return nil
}

// CreditCoins начисляет amount монет участнику
func (r *UserRepo) CreditCoins(userID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", apperrors.ErrValidation)
	}

	result := r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		Update("coins", gorm.Expr("coins + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
