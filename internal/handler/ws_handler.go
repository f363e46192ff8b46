package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/gamequiz-api/internal/websocket"
	"github.com/yourusername/gamequiz-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения для live-обновлений рейтинга
type WSHandler struct {
	hub        *websocket.Hub
	jwtService *auth.JWTService
	// Список разрешенных origin (синхронизирован с CORS в main.go)
	allowedOrigins []string
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(hub *websocket.Hub, jwtService *auth.JWTService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:            hub,
		jwtService:     jwtService,
		allowedOrigins: allowedOrigins,
	}
}

func (h *WSHandler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Пустой Origin - не браузерный клиент (мобильное приложение, curl).
			// Такие подключения разрешаем.
			if origin == "" {
				return true
			}

			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}

			log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
			return false
		},
		EnableCompression: true,
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение.
// Токен передается query-параметром: браузерный WebSocket API не
// позволяет установить Authorization header.
// GET /ws?token=...
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token parameter"})
		return
	}

	claims, err := h.jwtService.ParseToken(token)
	if err != nil {
		log.Printf("WebSocket: Invalid or expired token - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket: Error upgrading connection: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, claims.UserID)
	client.StartPumps()
}
