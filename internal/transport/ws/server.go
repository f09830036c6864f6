package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/neonsprawl/engine/internal/router"
)

const (
	sendBufferSize = 32
	writeTimeout   = 5 * time.Second
)

// clientMessage is the envelope clients send over the socket.
type clientMessage struct {
	Type       string         `json:"type"`
	ActionType string         `json:"action_type,omitempty"`
	ActionData map[string]any `json:"action_data,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// Server upgrades HTTP requests to game WebSocket sessions and feeds
// client messages into the router. Authentication happens upstream;
// the character is identified by query parameter.
type Server struct {
	router *router.Router
	logger *slog.Logger

	upgrader websocket.Upgrader
}

func NewServer(r *router.Router, logger *slog.Logger) *Server {
	return &Server{
		router: r,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		characterID, err := strconv.ParseInt(r.URL.Query().Get("character_id"), 10, 64)
		if err != nil {
			http.Error(w, "character_id query parameter required", http.StatusBadRequest)
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		connID := uuid.New().String()
		client := newWSConn(conn, s.logger.With("conn_id", connID))
		go client.writeLoop()
		defer client.close()

		ctx := r.Context()
		if err := s.router.OnConnect(ctx, connID, client, characterID); err != nil {
			s.logger.Warn("Rejected connection", "conn_id", connID, "character_id", characterID, "error", err)
			return
		}
		defer s.router.OnDisconnect(connID)

		// Reader loop.
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var m clientMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				client.sendError("Invalid message")
				continue
			}

			switch m.Type {
			case "action":
				if m.ActionType == "" {
					client.sendError("Action type is required")
					continue
				}
				s.router.OnAction(ctx, connID, m.ActionType, m.ActionData)
			case "chat":
				if m.Message == "" {
					client.sendError("Message is required")
					continue
				}
				channel := m.Channel
				if channel == "" {
					channel = "location"
				}
				s.router.RouteChat(ctx, connID, channel, m.Message)
			default:
				client.sendError("Unknown message type")
			}
		}
	}
}

// wsConn adapts a websocket connection to the router's Conn. Sends go
// through a buffered channel drained by a single writer goroutine;
// overflow drops the event rather than blocking the router.
type wsConn struct {
	conn   *websocket.Conn
	send   chan router.Event
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newWSConn(conn *websocket.Conn, logger *slog.Logger) *wsConn {
	return &wsConn{
		conn:   conn,
		send:   make(chan router.Event, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

var _ router.Conn = (*wsConn)(nil)

func (c *wsConn) Send(event router.Event) {
	select {
	case <-c.done:
	case c.send <- event:
	default:
		c.logger.Warn("Send buffer full, dropping event", "event_type", event.Type)
	}
}

func (c *wsConn) sendError(message string) {
	c.Send(router.Event{Type: router.EventError, Data: map[string]any{"message": message}})
}

func (c *wsConn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case event := <-c.send:
			b, err := json.Marshal(event)
			if err != nil {
				c.logger.Error("Failed to marshal event", "event_type", event.Type, "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
