package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorHandlerOutput(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("configuration persisted", "serial", "A001")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "configuration persisted")
	assert.Contains(t, out, "serial=A001")
}

func TestColorHandlerWithAttrs(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	logger := slog.New(newColorHandler(&buf, slog.LevelDebug)).With("cmd", "set")
	logger.Warn("send failed")

	assert.Contains(t, buf.String(), "cmd=set")
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = parseLevel("verbose")
	assert.Error(t, err)
}
