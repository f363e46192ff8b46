package websocket

import "encoding/json"

// Типы событий, рассылаемых сервером
const (
	// EventScoreUpdated - участник финализировал попытку, рейтинг изменился
	EventScoreUpdated = "event:score_updated"

	// EventServerHeartbeat - ответ на heartbeat клиента
	EventServerHeartbeat = "server:heartbeat"
)

// Типы сообщений, принимаемых от клиента
const (
	// MessageSubscribe - подписка на обновления конкретного события
	MessageSubscribe = "user:subscribe"

	// MessageHeartbeat - проверка соединения
	MessageHeartbeat = "user:heartbeat"
)

// Envelope - общий конверт сообщений в обе стороны
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ScoreUpdatedPayload - содержимое события event:score_updated
type ScoreUpdatedPayload struct {
	EventID uint `json:"event_id"`
	UserID  uint `json:"user_id"`
	Score   int  `json:"score"`
}
