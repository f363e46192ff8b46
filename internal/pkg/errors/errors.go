package errors

import "errors"

// Общие ошибки приложения. Сервисы оборачивают их через fmt.Errorf("%w"),
// а хендлеры сопоставляют с HTTP-кодами через errors.Is.
var (
	// ErrNotFound используется, когда событие, попытка или участник не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (неверный или отсутствующий токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда действие недоступно пользователю
	// (например, запрос вопросов без активной попытки).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (повторная отправка ответов, повторное участие в событии).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable используется, когда событие вне своего временного окна
	// и не находится в статусе live.
	ErrUnavailable = errors.New("event is not available")

	// ErrInsufficientFunds используется, когда баланса монет не хватает на entry cost.
	ErrInsufficientFunds = errors.New("insufficient coin balance")
)
