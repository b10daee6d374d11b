package tasks_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaelony/dx-fintools-fs/pkg/tasks"
)

const buildScript = `
def configure():
    task(
        "prep",
        desc="write the prep marker",
        cmds=["echo one > prep.txt"],
    )

    task(
        "build",
        desc="build after prep",
        deps=["prep"],
        cmds=["echo two > build.txt"],
    )
`

func TestRunTaskRunsDependenciesFirst(t *testing.T) {
	path, dir := writeScript(t, buildScript)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "build", list, false, false))

	assert.FileExists(t, filepath.Join(dir, "prep.txt"))
	assert.FileExists(t, filepath.Join(dir, "build.txt"))
}

func TestRunTaskDryRunExecutesNothing(t *testing.T) {
	path, dir := writeScript(t, buildScript)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "build", list, true, false))

	assert.NoFileExists(t, filepath.Join(dir, "prep.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "build.txt"))
}

func TestRunTaskUnknownTask(t *testing.T) {
	path, dir := writeScript(t, buildScript)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	err = tasks.RunTask(ctx, dir, "deploy", list, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunTaskDetectsCycles(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    task("a", desc="a", deps=["b"], cmds=["true"])
    task("b", desc="b", deps=["a"], cmds=["true"])
`)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	err = tasks.RunTask(ctx, dir, "a", list, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursively")
}

func TestRunTaskSkipIfExists(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    task(
        "gen",
        desc="generate once",
        skip_if_exists=["done.txt"],
        cmds=["echo x > generated.txt"],
    )
`)
	ctx := testCtx()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "done.txt"), []byte("x"), 0o600))

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "gen", list, false, false))
	assert.NoFileExists(t, filepath.Join(dir, "generated.txt"))

	// force overrides the skip list
	require.NoError(t, tasks.RunTask(ctx, dir, "gen", list, false, true))
	assert.FileExists(t, filepath.Join(dir, "generated.txt"))
}

func TestRunTaskSkipsUpToDateOutputs(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    task(
        "gen",
        desc="regenerate out.txt from in.txt",
        inputs=["in.txt"],
        outputs=["out.txt"],
        cmds=["echo ran >> log.txt"],
    )
`)
	ctx := testCtx()

	inFile := filepath.Join(dir, "in.txt")
	outFile := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(inFile, []byte("in"), 0o600))
	require.NoError(t, os.WriteFile(outFile, []byte("out"), 0o600))

	// output newer than input -> nothing to do
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(inFile, past, past))

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "gen", list, false, false))
	assert.NoFileExists(t, filepath.Join(dir, "log.txt"))

	// input newer than output -> the task has to run
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(inFile, future, future))

	require.NoError(t, tasks.RunTask(ctx, dir, "gen", list, false, false))
	assert.FileExists(t, filepath.Join(dir, "log.txt"))
}

func TestRunTaskForceIgnoresFreshOutputs(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    task(
        "gen",
        desc="regenerate out.txt from in.txt",
        inputs=["in.txt"],
        outputs=["out.txt"],
        cmds=["echo ran >> log.txt"],
    )
`)
	ctx := testCtx()

	inFile := filepath.Join(dir, "in.txt")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.WriteFile(inFile, []byte("in"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.txt"), []byte("out"), 0o600))
	require.NoError(t, os.Chtimes(inFile, past, past))

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "gen", list, false, true))
	assert.FileExists(t, filepath.Join(dir, "log.txt"))
}

func TestRunTaskRunsSharedDependencyOnce(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    task("base", desc="shared dependency", cmds=["echo base >> count.txt"])
    task("left", desc="left branch", deps=["base"], cmds=["true"])
    task("right", desc="right branch", deps=["base"], cmds=["true"])
    task("all", desc="diamond top", deps=["left", "right"], cmds=["true"])
`)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "all", list, false, false))

	content, err := os.ReadFile(filepath.Join(dir, "count.txt"))
	require.NoError(t, err)
	assert.Equal(t, "base\n", string(content))
}

func TestRunTaskRunsTaskRefs(t *testing.T) {
	path, dir := writeScript(t, `
def configure():
    helper = task(
        desc="hidden helper",
        cmds=["echo helper > helper.txt"],
    )

    task("all", desc="run helper", cmds=[helper])
`)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	require.NoError(t, tasks.RunTask(ctx, dir, "all", list, false, false))
	assert.FileExists(t, filepath.Join(dir, "helper.txt"))
}

func TestCacheRoundTrip(t *testing.T) {
	path, dir := writeScript(t, buildScript)
	ctx := testCtx()

	list, _, err := tasks.Load(ctx, path, dir, nil, true)
	require.NoError(t, err)

	cacheFile := filepath.Join(dir, "cache.gob")
	options := map[string]string{"version": "9.9.9"}
	require.NoError(t, tasks.WriteCache(cacheFile, options, list))

	gotOptions, gotList, err := tasks.ReadCache(cacheFile)
	require.NoError(t, err)
	assert.Equal(t, options, gotOptions)
	require.Contains(t, gotList, "build")
	assert.Equal(t, list["build"].Desc, gotList["build"].Desc)
	assert.Equal(t, list["build"].Deps, gotList["build"].Deps)
}
