package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(NewLogger(&buf), "graph")

	logger.Info().Int("clips", 3).Msg("generating filter graph")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "graph", entry["component"])
	assert.Equal(t, "generating filter graph", entry["message"])
	assert.EqualValues(t, 3, entry["clips"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewLogger(&a, &b)

	logger.Warn().Msg("fan out")

	assert.Contains(t, a.String(), "fan out")
	assert.Contains(t, b.String(), "fan out")
}

func TestInitWritesLogFile(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	path := filepath.Join(t.TempDir(), "logs", "log.txt")
	closer, err := Init(false, path)
	require.NoError(t, err)

	log.Info().Str("output", "outputs/output.mp4").Msg("done")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"output":"outputs/output.mp4"`)
}
