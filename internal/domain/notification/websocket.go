package notification

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame is the envelope of every push message.
type Frame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

const EventConnected = "connected"

type WSHandler struct {
	hub  *Hub
	gate auth.Gate
}

func NewWSHandler(hub *Hub, gate auth.Gate) *WSHandler {
	return &WSHandler{hub: hub, gate: gate}
}

// HandleWebSocket upgrades an authenticated request into a push subscription.
//
// Endpoint: GET /ws?token=JWT
//
// The token travels in the query because browsers cannot set headers on a
// websocket handshake.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// 1. Получаем токен из query
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "token query parameter is required")
		return
	}

	// 2. Валидируем токен через gate
	identity, err := h.gate.Resolve(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	// 3. Upgrade HTTP → WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed user_id=%d: %v", identity.ID, err)
		return
	}

	// 4. Регистрируем клиента в hub
	client := h.hub.Register(identity.ID)
	log.Printf("push: connected user_id=%d client_id=%s", identity.ID, client.ID)

	// 5. Приветствие идёт через hub, канал мог уже закрыться
	if hello, err := json.Marshal(Frame{Event: EventConnected, Payload: gin.H{"client_id": client.ID}}); err == nil {
		h.hub.Send(client, hello)
	}

	// 6. Writer в отдельной goroutine, reader держит соединение
	go h.writePump(conn, client)
	h.readPump(conn, client)
}

// readPump only drains control frames; clients never send data we act on.
func (h *WSHandler) readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
		log.Printf("push: disconnected user_id=%d client_id=%s", client.UserID, client.ID)
	}()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("push: read error user_id=%d: %v", client.UserID, err)
			}
			return
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
