package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy1rusu999/tiktok-transcriptor1/internal/domain"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closer, err := New(domain.LogSettings{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File:   path,
	})
	require.NoError(t, err)

	logger.WithField("video_id", "v1").Debug("transcription started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"video_id":"v1"`)
	assert.Contains(t, string(data), `"message":"transcription started"`)
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	logger, closer, err := New(domain.LogSettings{Level: "chatty", Output: "stdout"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	logger := Nop()
	assert.Same(t, logger, OrNop(logger))
}
