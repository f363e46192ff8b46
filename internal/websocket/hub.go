package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// subscription - запрос клиента на подписку на обновления события
type subscription struct {
	client  *Client
	eventID uint
}

// outbound - сообщение для рассылки подписчикам события
type outbound struct {
	eventID uint
	payload []byte
}

// Hub держит реестр активных клиентов и рассылает обновления рейтинга
// подписчикам событий. Все мутации реестра проходят через один select
// в Run, поэтому мьютексы не нужны.
type Hub struct {
	// Подписчики по событиям
	byEvent map[uint]map[*Client]bool

	// Подписки клиента (для отписки при отключении)
	byClient map[*Client]map[uint]bool

	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan outbound

	// Закрывается при выходе из Run: снимает блокировку горутин,
	// пишущих в каналы остановленного hub
	done chan struct{}

	clientCount int
}

// NewHub создает новый hub
func NewHub() *Hub {
	return &Hub{
		byEvent:    make(map[uint]map[*Client]bool),
		byClient:   make(map[*Client]map[uint]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription, 16),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрации, подписки и рассылки.
// Запускается одной горутиной из main, завершается при отмене контекста.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.byClient {
				close(client.send)
			}
			h.byClient = make(map[*Client]map[uint]bool)
			h.byEvent = make(map[uint]map[*Client]bool)
			log.Printf("[WebSocket] Hub остановлен, отключено клиентов: %d", h.clientCount)
			h.clientCount = 0
			close(h.done)
			return

		case client := <-h.register:
			h.byClient[client] = make(map[uint]bool)
			h.clientCount++
			log.Printf("[WebSocket] Клиент %s (участник #%d) подключен, всего клиентов: %d",
				client.ConnectionID, client.UserID, h.clientCount)

		case client := <-h.unregister:
			if events, ok := h.byClient[client]; ok {
				for eventID := range events {
					delete(h.byEvent[eventID], client)
					if len(h.byEvent[eventID]) == 0 {
						delete(h.byEvent, eventID)
					}
				}
				delete(h.byClient, client)
				close(client.send)
				h.clientCount--
				log.Printf("[WebSocket] Клиент %s отключен, всего клиентов: %d", client.ConnectionID, h.clientCount)
			}

		case sub := <-h.subscribe:
			if _, ok := h.byClient[sub.client]; !ok {
				// Клиент уже отключился
				continue
			}
			if h.byEvent[sub.eventID] == nil {
				h.byEvent[sub.eventID] = make(map[*Client]bool)
			}
			h.byEvent[sub.eventID][sub.client] = true
			h.byClient[sub.client][sub.eventID] = true
			log.Printf("[WebSocket] Участник #%d подписан на событие #%d", sub.client.UserID, sub.eventID)

		case msg := <-h.broadcast:
			dropped := 0
			for client := range h.byEvent[msg.eventID] {
				if !client.enqueue(msg.payload) {
					dropped++
				}
			}
			if dropped > 0 {
				log.Printf("[WebSocket] Переполнены буферы %d клиентов события #%d, сообщения отброшены", dropped, msg.eventID)
			}
		}
	}
}

// handleClientMessage обрабатывает сообщение, прочитанное readPump-ом клиента
func (h *Hub) handleClientMessage(client *Client, msg *Envelope) {
	switch msg.Type {
	case MessageSubscribe:
		var payload struct {
			EventID uint `json:"event_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.EventID == 0 {
			log.Printf("[WebSocket] Некорректная подписка от участника #%d: %s", client.UserID, string(msg.Data))
			return
		}
		select {
		case h.subscribe <- subscription{client: client, eventID: payload.EventID}:
		case <-h.done:
		}

	case MessageHeartbeat:
		response, err := envelope(EventServerHeartbeat, map[string]interface{}{
			"timestamp": time.Now().UnixMilli(),
		})
		if err == nil {
			client.enqueue(response)
		}

	default:
		log.Printf("[WebSocket] Неизвестный тип сообщения %q от участника #%d", msg.Type, client.UserID)
	}
}

// BroadcastScoreUpdate рассылает подписчикам события обновление рейтинга.
// Реализует service.Broadcaster.
func (h *Hub) BroadcastScoreUpdate(eventID, userID uint, score int) error {
	payload, err := envelope(EventScoreUpdated, ScoreUpdatedPayload{
		EventID: eventID,
		UserID:  userID,
		Score:   score,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal score update: %w", err)
	}

	select {
	case h.broadcast <- outbound{eventID: eventID, payload: payload}:
		return nil
	default:
		return fmt.Errorf("hub broadcast buffer is full")
	}
}

// envelope собирает конверт сообщения с сериализованным содержимым
func envelope(msgType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}
