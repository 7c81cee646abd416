package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/engine"
	"network-journal/backend/internal/interaction"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// pointerMessage is one pointer or wheel event sent by a client, in screen
// coordinates of the viewport
type pointerMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y,omitempty"`
}

var pointerKinds = map[string]interaction.EventKind{
	constants.MessagePointerDown:  interaction.Down,
	constants.MessagePointerMove:  interaction.Move,
	constants.MessagePointerUp:    interaction.Up,
	constants.MessagePointerLeave: interaction.Leave,
	constants.MessageWheel:        interaction.Wheel,
}

func (m pointerMessage) event(now time.Time) (interaction.Event, bool) {
	kind, ok := pointerKinds[m.Type]
	if !ok {
		return interaction.Event{}, false
	}
	return interaction.Event{Kind: kind, X: m.X, Y: m.Y, DeltaY: m.DeltaY, Time: now}, true
}

// wsSession serialises writes to one connection
type wsSession struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (ws *wsSession) sendJSON(v interface{}) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.conn.WriteJSON(v)
}

// handleWebsocket feeds client pointer events into the engine and pushes
// engine events back to the client
func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id, events, unsubscribe := s.loop.Subscribe()
	defer unsubscribe()
	ws := &wsSession{id: id, conn: conn}
	log := s.log.With(zap.String("session_id", id))

	if err := ws.sendJSON(gin.H{"type": constants.EventSessionCreated, "session_id": id}); err != nil {
		log.Warn("Failed to write websocket message", zap.Error(err))
		return
	}
	log.Info("Websocket session opened")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range events {
			if err := ws.sendJSON(ev); err != nil {
				log.Warn("Failed to write websocket message", zap.Error(err))
				return
			}
		}
	}()

	ctx := c.Request.Context()
	for {
		var msg pointerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Websocket read failed", zap.Error(err))
			}
			break
		}
		ev, ok := msg.event(time.Now())
		if !ok {
			_ = ws.sendJSON(gin.H{"type": constants.EventError, "error": "unknown message type: " + msg.Type})
			continue
		}
		err := s.loop.Do(ctx, func(e *engine.Engine) error {
			e.HandlePointer(ev)
			return nil
		})
		if err != nil {
			log.Warn("Engine rejected pointer event", zap.Error(err))
			break
		}
	}

	unsubscribe()
	<-writerDone
	log.Info("Websocket session closed")
}
