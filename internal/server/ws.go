package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"driftline/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// controlFrame is what connected clients send to manage their channel
// subscriptions.
type controlFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// RealtimeHandler upgrades authenticated requests to websocket connections
// and services subscribe/unsubscribe frames against the hub.
type RealtimeHandler struct {
	hub *Hub
	log *logger.Logger
}

func NewRealtimeHandler(hub *Hub, log *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, log: log}
}

func (h *RealtimeHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, currentUserID(c))
	h.hub.Register(client)

	go client.WriteLoop(c.Request.Context())
	h.readLoop(client)
}

func (h *RealtimeHandler) readLoop(client *Client) {
	defer func() {
		h.hub.Unregister(client)
		_ = client.Conn.Close()
	}()

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("realtime connection %s dropped: %v", client.ID, err)
			}
			return
		}

		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Channel == "" {
			continue
		}

		switch frame.Action {
		case "subscribe":
			h.hub.Subscribe(client, frame.Channel)
		case "unsubscribe":
			h.hub.Unsubscribe(client, frame.Channel)
		}
	}
}
