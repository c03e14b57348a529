package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
	sendBuffer     = 32
)

// ActorHandle is the per-user actor as the gateway sees it: somewhere to
// deliver inbound frames and a place to hang a push sink.
type ActorHandle interface {
	Deliver(Frame) error
	Attach(push func(Frame)) (detach func())
}

// ResolveFunc activates (or finds) the actor for a user.
type ResolveFunc func(ctx context.Context, userID uuid.UUID) (ActorHandle, error)

// Gateway bridges websocket connections and actor mailboxes. Each
// connection gets a read loop feeding Deliver and a write pump draining the
// actor's pushes.
type Gateway struct {
	log      *logger.Logger
	resolve  ResolveFunc
	upgrader websocket.Upgrader
}

func NewGateway(log *logger.Logger, resolve ResolveFunc) *Gateway {
	return &Gateway{
		log:     log.With("component", "realtime_gateway"),
		resolve: resolve,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleConnection upgrades the request and runs the connection until either
// side goes away. The caller has already authenticated userID.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	log := g.log.With("user_id", userID)

	actor, err := g.resolve(r.Context(), userID)
	if err != nil {
		log.Error("actor activation failed", "error", err)
		http.Error(w, "activation failed", http.StatusServiceUnavailable)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}

	send := make(chan Frame, sendBuffer)
	detach := actor.Attach(func(f Frame) {
		select {
		case send <- f:
		default:
			log.Warn("push buffer full, frame dropped", "type", f.Type)
		}
	})

	connected, err := NewFrame(FrameConnected, map[string]any{"user_id": userID})
	if err == nil {
		select {
		case send <- connected:
		default:
		}
	}

	done := make(chan struct{})
	go g.writePump(conn, send, done, log)
	g.readPump(conn, actor, log)

	detach()
	close(done)
	conn.Close()
}

func (g *Gateway) readPump(conn *websocket.Conn, actor ActorHandle, log *logger.Logger) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			return
		}
		if err := actor.Deliver(frame); err != nil {
			log.Warn("frame delivery refused", "type", frame.Type, "error", err)
		}
	}
}

func (g *Gateway) writePump(conn *websocket.Conn, send <-chan Frame, done <-chan struct{}, log *logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case frame := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				log.Warn("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
