package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		" info ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"fatal":    zerolog.FatalLevel,
		"off":      zerolog.Disabled,
		"":         zerolog.WarnLevel,
		"nonsense": zerolog.WarnLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Writer: &buf})

	log.Debug().Msg("hidden")
	log.Info().Int("port", 1).Msg("opened")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "opened", rec["message"])
	assert.Equal(t, "info", rec["level"])
	assert.EqualValues(t, 1, rec["port"])
	assert.Contains(t, rec, "time")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Writer: &buf, NoColor: true})
	log.Debug().Str("register", "data").Msg("frob")

	out := buf.String()
	assert.Contains(t, out, "frob")
	assert.Contains(t, out, "register=data")
	assert.NotContains(t, out, "{")
}
