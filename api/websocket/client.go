package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 4096
	defaultBufferSize     = 1024
	defaultClientBuffer   = 64
)

// Settings holds the runtime-tunable knobs for a Hub's connections, derived
// from config.WebSocketConfig with sensible fallbacks.
type Settings struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	ReadBuffer     int
	WriteBuffer    int
	ClientBuffer   int
}

func NewSettings(cfg config.WebSocketConfig) *Settings {
	s := &Settings{
		WriteWait:      defaultWriteWait,
		PongWait:       defaultPongWait,
		MaxMessageSize: defaultMaxMessageSize,
		ReadBuffer:     defaultBufferSize,
		WriteBuffer:    defaultBufferSize,
		ClientBuffer:   defaultClientBuffer,
	}

	if cfg.WriteTimeout > 0 {
		s.WriteWait = cfg.WriteTimeout
	}
	if cfg.PongTimeout > 0 {
		s.PongWait = cfg.PongTimeout
	}
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageSize = cfg.MaxMessageSize
	}
	if cfg.ReadBufferSize > 0 {
		s.ReadBuffer = cfg.ReadBufferSize
	}
	if cfg.WriteBufferSize > 0 {
		s.WriteBuffer = cfg.WriteBufferSize
	}
	if cfg.ClientBuffer > 0 {
		s.ClientBuffer = cfg.ClientBuffer
	}

	s.PingPeriod = (s.PongWait * 9) / 10
	return s
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	clusterId string
	settings  *Settings
}

type IncomingMessage struct {
	Type      string `json:"type"`
	ClusterId string `json:"cluster_id,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, clusterId string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, hub.settings.ClientBuffer),
		clusterId: clusterId,
		settings:  hub.settings,
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("websocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		c.clusterId = msg.ClusterId
		logger.Infof("websocket client subscribed to cluster: %s", msg.ClusterId)
		c.sendConfirmation("subscribed", msg.ClusterId)
	case "unsubscribe":
		old := c.clusterId
		c.clusterId = ""
		logger.Info("websocket client unsubscribed")
		c.sendConfirmation("unsubscribed", old)
	}
}

func (c *Client) sendConfirmation(action, clusterId string) {
	confirmation := map[string]interface{}{
		"type":       "subscription_update",
		"action":     action,
		"cluster_id": clusterId,
		"timestamp":  time.Now(),
	}
	data, err := json.Marshal(confirmation)
	if err != nil {
		logger.Errorf("failed to marshal confirmation: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("client send channel full, dropping confirmation")
	}
}

func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBuffer,
		WriteBufferSize: hub.settings.WriteBuffer,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("websocket upgrade failed: %v", err)
			return
		}

		clusterId := c.Query("cluster_id")
		client := NewClient(hub, conn, clusterId)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
