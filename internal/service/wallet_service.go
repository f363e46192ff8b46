package service

import (
	"github.com/yourusername/gamequiz-api/internal/domain/repository"
)

// CoinWallet реализует Wallet поверх баланса в таблице users.
// Атомарность списания обеспечивает условный update в UserRepository.
type CoinWallet struct {
	users repository.UserRepository
}

// NewCoinWallet создает кошелек поверх репозитория участников
func NewCoinWallet(users repository.UserRepository) *CoinWallet {
	return &CoinWallet{users: users}
}

// Debit списывает amount монет с баланса участника
func (w *CoinWallet) Debit(userID uint, amount int) error {
	return w.users.DebitCoins(userID, amount)
}

// Credit начисляет amount монет на баланс участника
func (w *CoinWallet) Credit(userID uint, amount int) error {
	return w.users.CreditCoins(userID, amount)
}
