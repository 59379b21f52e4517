package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/server"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/session"
	"github.com/cracros-cyber/Tradutor-Inteligente-IA/pkg/translate"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	manager := session.NewManager(session.ManagerConfig{
		Translator:    translate.NewStubTranslator(nil),
		DebounceDelay: 50 * time.Millisecond,
		Logger:        logger,
	})
	t.Cleanup(manager.CloseAll)

	srv := server.NewHTTPServer(server.Config{
		Manager:       manager,
		Logger:        logger,
		EngineName:    "stub",
		DefaultSource: "pt",
		DefaultTarget: "en",
		DefaultLocale: "en",
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestTranslateOnceConsecutiveLines(t *testing.T) {
	ts := newTestBackend(t)
	client := &http.Client{}

	snap, err := createSession(client, ts.URL, "pt", "en")
	require.NoError(t, err)
	defer deleteSession(client, ts.URL, snap.ID)

	streamCtx, streamCancel := context.WithCancel(context.Background())
	defer streamCancel()

	events, err := streamEvents(streamCtx, client, ts.URL, snap.ID)
	require.NoError(t, err)

	first, err := translateOnce(client, ts.URL, snap.ID, "Olá", events)
	require.NoError(t, err)
	require.Nil(t, first.Error)
	assert.Equal(t, "Hello", first.TranslatedText)

	// The second line reuses the stream while the session still holds the
	// first result; it must wait for its own translation, not accept the
	// edit echo that carries the previous one.
	second, err := translateOnce(client, ts.URL, snap.ID, "Obrigado pela ajuda", events)
	require.NoError(t, err)
	require.Nil(t, second.Error)
	require.NotEqual(t, first.TranslatedText, second.TranslatedText,
		"second line must not return the first line's translation")
	assert.Equal(t, "Thank you for the help", second.TranslatedText)
	assert.Equal(t, "Obrigado pela ajuda", second.InputText)
}
