package service

import (
	"time"
)

// Clock отдает текущее время. Инжектируется во все сервисы, зависящие от
// времени, чтобы граничные моменты окна события тестировались детерминированно.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock возвращает Clock поверх системного времени
func SystemClock() Clock { return systemClock{} }

// Wallet - внешний коллаборатор баланса монет. Debit обязан быть атомарным
// (проверка баланса и списание одной операцией), Credit используется как
// компенсация, если создание попытки после списания не удалось.
type Wallet interface {
	Debit(userID uint, amount int) error
	Credit(userID uint, amount int) error
}

// Broadcaster - внешний коллаборатор realtime-рассылки. Вызовы best-effort:
// ошибка рассылки логируется и не проваливает операцию.
type Broadcaster interface {
	BroadcastScoreUpdate(eventID, userID uint, score int) error
}
