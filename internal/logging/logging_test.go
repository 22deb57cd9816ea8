package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", FormatJSON, &buf)

	log.Debug().Str("location", "Pittsburgh, PA").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "weather-cache", line["service"])
	assert.Equal(t, "Pittsburgh, PA", line["location"])
}

func TestNewLevelFallback(t *testing.T) {
	log := New("nonsense", FormatJSON, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log = New("", FormatJSON, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log = New("warn", FormatConsole, &bytes.Buffer{})
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNewConsoleFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", FormatConsole, &buf)

	log.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	log.Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}
