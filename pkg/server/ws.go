package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/language"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/session"
)

const (
	// writeWait is the deadline for a single outbound frame.
	writeWait = 10 * time.Second
	// pongWait is how long the read side tolerates silence.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The widget is served from arbitrary origins, same as the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsCommand is a client-to-server message on the session socket.
type wsCommand struct {
	Type   string `json:"type"` // input, swap, clear, retry, languages
	Text   string `json:"text,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// wsEvent is a server-to-client message.
type wsEvent struct {
	Type    string            `json:"type"` // state, error
	Session *session.Snapshot `json:"session,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// handleSessionWS upgrades the request and drives one widget connection:
// commands come in over the socket, state snapshots are pushed back out.
func (s *HTTPServer) handleSessionWS(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	log := s.logger.WithField("session_id", sess.ID)
	log.Info("WebSocket connection established")

	ch, cancel := sess.Subscribe()
	defer cancel()

	// All writes go through the write pump; the read loop only feeds the
	// session and reports command errors over errc.
	errc := make(chan string, 4)
	done := make(chan struct{})
	go s.wsWritePump(conn, sess, ch, errc, done)

	defer close(done)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("WebSocket read error")
			} else {
				log.Info("WebSocket connection closed")
			}
			return
		}

		switch cmd.Type {
		case "input":
			sess.SetInput(cmd.Text)
		case "swap":
			sess.Swap()
		case "clear":
			sess.Clear()
		case "retry":
			sess.Retry()
		case "languages":
			if err := sess.SetLanguages(language.Code(cmd.Source), language.Code(cmd.Target)); err != nil {
				sendWSError(errc, err.Error())
			}
		default:
			sendWSError(errc, "unknown command type: "+cmd.Type)
		}
	}
}

// wsWritePump is the single writer for one connection: state snapshots,
// command errors and keepalive pings.
func (s *HTTPServer) wsWritePump(conn *websocket.Conn, sess *session.Session, ch <-chan session.Snapshot, errc <-chan string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	writeEvent := func(event wsEvent) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			s.logger.WithError(err).Debug("WebSocket write failed")
			return false
		}
		return true
	}

	// Send the current state immediately
	snap := sess.Snapshot()
	if !writeEvent(wsEvent{Type: "state", Session: &snap}) {
		return
	}

	for {
		select {
		case <-done:
			return
		case snap, ok := <-ch:
			if !ok {
				// Session closed server-side
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !writeEvent(wsEvent{Type: "state", Session: &snap}) {
				return
			}
		case msg := <-errc:
			if !writeEvent(wsEvent{Type: "error", Error: msg}) {
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

// sendWSError queues an error reply without ever blocking the read loop.
func sendWSError(errc chan<- string, msg string) {
	select {
	case errc <- msg:
	default:
	}
}
