package tasks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaelony/dx-fintools-fs/pkg/tasks"
)

func testCtx() context.Context {
	logger := zerolog.Nop()
	return tasks.WithLogger(context.Background(), &logger)
}

func writeScript(t *testing.T, content string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, dir
}

const sampleScript = `
version = option("version", default="1.0.0", help="Release version")

def configure():
    helper = task(
        desc="hidden helper",
        cmds=["echo helper"],
    )

    task(
        "check",
        desc="Run static checks",
        cmds=["echo checking", helper],
    )

    task(
        "bundle",
        desc="Bundle version " + version,
        deps=["check"],
        cmds=[("echo", version)],
    )
`

func TestLoadCollectsTasksAndOptions(t *testing.T) {
	path, dir := writeScript(t, sampleScript)

	list, options, err := tasks.Load(testCtx(), path, dir, nil, true)
	require.NoError(t, err)

	require.Contains(t, list, "check")
	require.Contains(t, list, "bundle")
	assert.Len(t, list, 2, "hidden tasks must not be listed")

	assert.Equal(t, "Run static checks", list["check"].Desc)
	assert.Equal(t, []string{"check"}, list["bundle"].Deps)

	require.Contains(t, options, "version")
	assert.Equal(t, "1.0.0", options["version"].Default())
	assert.Equal(t, "Release version", options["version"].Help)
}

func TestLoadAppliesOptionValues(t *testing.T) {
	path, dir := writeScript(t, sampleScript)

	list, _, err := tasks.Load(testCtx(), path, dir, map[string]string{"version": "2.3.4"}, true)
	require.NoError(t, err)

	assert.Equal(t, "Bundle version 2.3.4", list["bundle"].Desc)
}

func TestLoadRejectsReservedTaskName(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    task("configure", desc="nope", cmds=["true"])
`)

	_, _, err := tasks.Load(testCtx(), path, dir, nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestLoadRequiresConfigure(t *testing.T) {
	path, dir := writeScript(t, `x = 1`)

	_, _, err := tasks.Load(testCtx(), path, dir, nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configure")
}

func TestLoadSkipsConfigureOnRequest(t *testing.T) {
	path, dir := writeScript(t, sampleScript)

	list, options, err := tasks.Load(testCtx(), path, dir, nil, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Contains(t, options, "version")
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path, dir := writeScript(t, `
setenv("FINTOOLS_TEST_MARKER", "on")

def configure():
    task("noop", desc="does nothing", cmds=["true"])
`)

	list, _, err := tasks.Load(testCtx(), path, dir, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "on", list["noop"].Env["FINTOOLS_TEST_MARKER"])
}
