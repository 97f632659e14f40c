package logging

import (
	"bytes"
	"encoding/json"
	stdLog "log"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {

	testCases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}

	for in, want := range testCases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestConfigure_JSON(t *testing.T) {

	var buf bytes.Buffer
	SetLogWriter(&buf)
	t.Cleanup(func() {
		SetLogWriter(os.Stderr)
		Configure("info", FormatConsole)
	})

	level := Configure("warn", FormatJSON)
	assert.Equal(t, zerolog.WarnLevel, level)

	log.Info().Msg("dropped")
	log.Warn().Str("component", "poller").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "poller", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}

func TestConfigure_RedirectsStdLog(t *testing.T) {

	var buf bytes.Buffer
	SetLogWriter(&buf)
	t.Cleanup(func() {
		SetLogWriter(os.Stderr)
		Configure("info", FormatConsole)
	})

	Configure("info", FormatJSON)

	stdLog.Printf("Job %s queued", "abc")

	assert.Contains(t, buf.String(), "Job abc queued")
}
