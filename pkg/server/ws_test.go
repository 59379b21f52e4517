package server

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readUntil pumps events off the socket until cond matches one.
func readUntil(t *testing.T, conn *websocket.Conn, cond func(wsEvent) bool) wsEvent {
	t.Helper()
	for i := 0; i < 50; i++ {
		var ev wsEvent
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&ev))
		if cond(ev) {
			return ev
		}
	}
	t.Fatal("no matching WebSocket event")
	return wsEvent{}
}

func TestWebSocketRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "").ID

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The current state is pushed on connect.
	ev := readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "state" })
	require.NotNil(t, ev.Session)
	assert.Equal(t, id, ev.Session.ID)
	assert.Equal(t, "pt", ev.Session.SourceLang.String())

	// Commands flow in, snapshots flow back out.
	require.NoError(t, conn.WriteJSON(wsCommand{Type: "input", Text: "Olá"}))
	ev = readUntil(t, conn, func(ev wsEvent) bool {
		return ev.Session != nil && ev.Session.TranslatedText == "Hello"
	})
	assert.Equal(t, "Olá", ev.Session.InputText)
	assert.False(t, ev.Session.Loading)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "swap"}))
	ev = readUntil(t, conn, func(ev wsEvent) bool {
		return ev.Session != nil && ev.Session.SourceLang == "en"
	})
	assert.Equal(t, "Hello", ev.Session.InputText)
	assert.Equal(t, "Olá", ev.Session.TranslatedText)

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "clear"}))
	ev = readUntil(t, conn, func(ev wsEvent) bool {
		return ev.Session != nil && ev.Session.InputText == "" && ev.Session.TranslatedText == ""
	})
	assert.Nil(t, ev.Session.Error)
}

func TestWebSocketCommandErrors(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "").ID

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "state" })

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "languages", Source: "klingon"}))
	ev := readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "error" })
	assert.Contains(t, ev.Error, "unsupported")

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "teleport"}))
	ev = readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "error" })
	assert.Contains(t, ev.Error, "unknown command type")
}

func TestWebSocketLanguagesCommand(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "").ID

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	readUntil(t, conn, func(ev wsEvent) bool { return ev.Type == "state" })

	require.NoError(t, conn.WriteJSON(wsCommand{Type: "languages", Source: "de", Target: "ja"}))
	ev := readUntil(t, conn, func(ev wsEvent) bool {
		return ev.Session != nil && ev.Session.SourceLang == "de"
	})
	assert.Equal(t, "ja", ev.Session.TargetLang.String())
}
