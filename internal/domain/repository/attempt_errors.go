package repository

import "errors"

var (
	// ErrAttemptExists означает нарушение уникального индекса
	// (event_id, user_id, attempt_seq) при создании попытки.
	ErrAttemptExists = errors.New("attempt already exists for this event and user")

	// ErrAttemptFinished означает, что условный update финализации не прошел:
	// попытка уже была завершена другой отправкой.
	ErrAttemptFinished = errors.New("attempt is already finished")
)
