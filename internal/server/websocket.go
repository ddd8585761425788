package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/targets"
)

// Websocket event types. The browser sends the register/remove events; the
// server sends the rest.
const (
	eventMessage        = "message"
	eventClick          = "click"
	eventScroll         = "scroll"
	eventRegisterClick  = "registerClick"
	eventRemoveClick    = "removeClick"
	eventRegisterScroll = "registerScroll"
	eventRemoveScroll   = "removeScroll"
)

const (
	writeWait     = 10 * time.Second
	sendBuffer    = 64
	hubBuffer     = 64
	maxFrameBytes = 64 << 10
)

var errDisconnected = errors.New("browser disconnected")

type wsEvent struct {
	Type    string             `json:"type"`
	ID      string             `json:"id,omitempty"`
	Info    string             `json:"info,omitempty"`
	Message *bus.DialogMessage `json:"message,omitempty"`
}

// wsSession is one browser connection. Targets the browser registers live
// exactly as long as the connection.
type wsSession struct {
	conn    *websocket.Conn
	clicks  *targets.ClickService
	scrolls *targets.ScrollService

	send chan wsEvent
	done chan struct{}

	clickIDs  map[string]struct{}
	scrollIDs map[string]struct{}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	sess := &wsSession{
		conn:      conn,
		clicks:    s.clicks,
		scrolls:   s.scrolls,
		send:      make(chan wsEvent, sendBuffer),
		done:      make(chan struct{}),
		clickIDs:  make(map[string]struct{}),
		scrollIDs: make(map[string]struct{}),
	}

	msgs, unsubscribe := s.hub.Subscribe(hubBuffer)
	slog.Info("Websocket connected", "remote", conn.RemoteAddr().String())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); sess.forward(msgs) }()
	go func() { defer wg.Done(); sess.writeLoop() }()

	sess.readLoop()

	sess.removeTargets()
	unsubscribe()
	close(sess.done)
	_ = conn.Close()
	wg.Wait()
	slog.Info("Websocket disconnected", "remote", conn.RemoteAddr().String())
}

// forward relays hub messages until the subscription or the session ends.
func (w *wsSession) forward(msgs <-chan bus.DialogMessage) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if !w.push(wsEvent{Type: eventMessage, Message: &msg}) {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *wsSession) push(ev wsEvent) bool {
	select {
	case w.send <- ev:
		return true
	case <-w.done:
		return false
	}
}

// writeLoop is the only writer on the connection.
func (w *wsSession) writeLoop() {
	for {
		select {
		case ev := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteJSON(ev); err != nil {
				slog.Debug("Websocket write failed", "err", err)
				// Unblocks readLoop.
				_ = w.conn.Close()
				return
			}
		case <-w.done:
			_ = w.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

func (w *wsSession) readLoop() {
	for {
		var ev wsEvent
		if err := w.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("Websocket read failed", "err", err)
			}
			return
		}
		w.handle(ev)
	}
}

func (w *wsSession) handle(ev wsEvent) {
	if ev.ID == "" {
		slog.Warn("Websocket event without id", "type", ev.Type)
		return
	}
	switch ev.Type {
	case eventRegisterClick:
		if _, ok := w.clickIDs[ev.ID]; ok {
			w.clicks.Remove(ev.ID)
		}
		info := ev.Info
		w.clicks.Register(targets.ClickTarget{
			ID:     ev.ID,
			Info:   func() string { return info },
			Action: w.action(eventClick, ev.ID),
		})
		w.clickIDs[ev.ID] = struct{}{}
	case eventRemoveClick:
		w.clicks.Remove(ev.ID)
		delete(w.clickIDs, ev.ID)
	case eventRegisterScroll:
		w.scrolls.Register(ev.ID, ev.Info, w.action(eventScroll, ev.ID))
		w.scrollIDs[ev.ID] = struct{}{}
	case eventRemoveScroll:
		w.scrolls.Remove(ev.ID)
		delete(w.scrollIDs, ev.ID)
	default:
		slog.Warn("Unknown websocket event", "type", ev.Type)
	}
}

// action returns the target action that asks the browser to perform kind on id.
func (w *wsSession) action(kind, id string) targets.ActionFunc {
	return func(ctx context.Context) error {
		select {
		case w.send <- wsEvent{Type: kind, ID: id}:
			return nil
		case <-w.done:
			return errDisconnected
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *wsSession) removeTargets() {
	for id := range w.clickIDs {
		w.clicks.Remove(id)
	}
	for id := range w.scrollIDs {
		w.scrolls.Remove(id)
	}
}
