package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngineType(t *testing.T) {
	tests := []struct {
		input   string
		want    EngineType
		wantErr bool
	}{
		{"gemini", EngineGemini, false},
		{"Gemini", EngineGemini, false},
		{"GEMINI", EngineGemini, false},
		{"libretranslate", EngineLibreTranslate, false},
		{"LibreTranslate", EngineLibreTranslate, false},
		{"stub", EngineStub, false},
		{"argos", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEngineType(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestNewTranslatorEngines(t *testing.T) {
	logger := newTestLogger()

	tests := []struct {
		engine   EngineType
		wantName string
	}{
		{EngineGemini, "gemini"},
		{EngineLibreTranslate, "libretranslate"},
		{EngineStub, "stub"},
	}

	for _, tt := range tests {
		translator, err := NewTranslator(Config{
			Engine: tt.engine,
			APIKey: "test-key",
			Logger: logger,
		})
		require.NoError(t, err, "engine %s", tt.engine)
		assert.Equal(t, tt.wantName, translator.Name())
	}
}

func TestNewTranslatorUnknownEngine(t *testing.T) {
	_, err := NewTranslator(Config{Engine: "carrier-pigeon", Logger: newTestLogger()})
	assert.Error(t, err)
}
