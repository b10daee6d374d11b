package cmd

import (
	"bytes"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureConsole(t *testing.T) (*bytes.Buffer, zerolog.Logger) {
	t.Helper()

	buf := &bytes.Buffer{}
	return buf, zerolog.New(&ConsoleWriter{out: buf})
}

func TestConsoleWriterRendersCommands(t *testing.T) {
	buf, logger := captureConsole(t)

	logger.Info().
		Str("task", "check").
		Bool("command", true).
		Msg("go vet ./...")

	assert.Contains(t, buf.String(), "check: $ go vet ./...")
}

func TestConsoleWriterRendersErrors(t *testing.T) {
	buf, logger := captureConsole(t)

	logger.Error().
		Err(eris.New("boom")).
		Msg("task failed")

	out := buf.String()
	assert.Contains(t, out, "Error: task failed")
	assert.Contains(t, out, "boom")
}

func TestConsoleWriterPrefixesPaths(t *testing.T) {
	buf, logger := captureConsole(t)

	logger.Error().
		Str("path", "tasks.star").
		Msg("task check is not declared")

	assert.Contains(t, buf.String(), "tasks.star: task check is not declared")
}

func TestConsoleWriterRejectsGarbage(t *testing.T) {
	w := &ConsoleWriter{out: &bytes.Buffer{}}

	_, err := w.Write([]byte("not json"))
	require.Error(t, err)
}
