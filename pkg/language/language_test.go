package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedSet(t *testing.T) {
	codes := Supported()
	assert.Len(t, codes, 12)
	assert.Equal(t, Code("en"), codes[0])

	for _, c := range codes {
		assert.True(t, IsSupported(c), "expected %q to be supported", c)
	}

	assert.True(t, IsSupported(DefaultSource))
	assert.True(t, IsSupported(DefaultTarget))
	assert.False(t, IsSupported("sw"))
	assert.False(t, IsSupported(""))
}

func TestSupportedReturnsCopy(t *testing.T) {
	codes := Supported()
	codes[0] = "xx"
	assert.Equal(t, Code("en"), Supported()[0])
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Code
	}{
		{"EN", "en"},
		{"pt-BR", "pt"},
		{"zh_CN", "zh"},
		{"  fr ", "fr"},
		{"ja", "ja"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.raw), "Normalize(%q)", tt.raw)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Portuguese", Code("pt").Name())
	assert.Equal(t, "English", Code("en").Name())
	assert.Equal(t, "Japanese", Code("ja").Name())

	// Outside the supported set but still resolvable.
	assert.Equal(t, "Swahili", DisplayName("sw"))

	// Unresolvable input falls back to the raw code.
	assert.Equal(t, "not a code", DisplayName("not a code"))
	assert.Equal(t, "", DisplayName(""))
}

func TestNativeName(t *testing.T) {
	assert.Equal(t, "português", Code("pt").NativeName())
	assert.Equal(t, "English", Code("en").NativeName())
}
