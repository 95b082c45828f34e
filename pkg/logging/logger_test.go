package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
	if !strings.Contains(output, "warning message") {
		t.Errorf("Expected warning message in output, got: %s", output)
	}
}

func TestContextFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	ctx = logging.WithRunID(ctx, "run-1")
	ctx = logging.WithStage(ctx, "map")
	ctx = logging.WithProject(ctx, "ABC")
	ctx = logging.WithDataset(ctx, "https://xnat.example.com/data/archive/projects/ABC")

	logging.FromContext(ctx).Info().Msg("mapped")

	testLogger.AssertContains(t, `"run_id":"run-1"`)
	testLogger.AssertContains(t, `"stage":"map"`)
	testLogger.AssertContains(t, `"project":"ABC"`)
	testLogger.AssertContains(t, `"dataset":"https://xnat.example.com/data/archive/projects/ABC"`)
	assert.Equal(t, "run-1", logging.RunID(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is exercised on purpose
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestWithFieldsTypes(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"created": 3,
		"dry_run": true,
	})
	logging.FromContext(ctx).Info().Msg("summary")

	testLogger.AssertContains(t, `"created":3`)
	testLogger.AssertContains(t, `"dry_run":true`)
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	t.Run("defaults", func(t *testing.T) {
		cfg := logging.DefaultConfig()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "auto", cfg.Format)
		assert.Equal(t, "stderr", cfg.Output)
	})

	t.Run("log file receives lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "img2catalog.log")
		logger, err := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: "discard",
			File:   path,
		})
		require.NoError(t, err)
		logger.Info().Msg("harvest started")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "harvest started")
	})

	t.Run("unwritable log file is reported", func(t *testing.T) {
		_, err := logging.NewLoggerFromConfig(&logging.Config{
			Output: "discard",
			File:   filepath.Join(t.TempDir(), "missing", "dir", "x.log"),
		})
		assert.Error(t, err)
	})

	t.Run("level names", func(t *testing.T) {
		_, err := logging.NewLoggerFromConfig(&logging.Config{Level: "warning", Output: "discard"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	})
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Warn().Str("project", "P1").Msg("keyword fallback used")

	captured.AssertContains(t, "keyword fallback used")
	captured.AssertNotContains(t, "panic")
	assert.Len(t, captured.Lines(), 1)
}
