package bundle

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeAssetTree(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"templates/index.html.tmpl": "<html><body>{{.Result}}</body></html>",
		"static/app.js":             "console.log('hello');",
		"static/logo.png":           "\x89PNG fake image data",
	}

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}

func TestBuildBundle(t *testing.T) {
	t.Setenv("CI", "true")

	source := writeAssetTree(t)
	outDir := filepath.Join(t.TempDir(), "dist")

	archive, err := Build(context.Background(), os.DirFS(source), Options{
		Version: "1.2.3",
		OutDir:  outDir,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "fintools-web-1.2.3.tar.xz"), archive)

	manifest, err := ReadManifest(filepath.Join(outDir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", manifest.Version)
	assert.False(t, manifest.BuiltAt.IsZero())
	require.Len(t, manifest.Files, 3)

	byPath := map[string]ManifestFile{}
	for _, file := range manifest.Files {
		byPath[file.Path] = file
	}

	content, err := os.ReadFile(filepath.Join(source, "static", "app.js"))
	require.NoError(t, err)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), byPath["static/app.js"].SHA256)
	assert.Equal(t, int64(len(content)), byPath["static/app.js"].Size)

	// compressible files get a .br sibling, binary files don't
	assert.FileExists(t, filepath.Join(outDir, "web", "static", "app.js.br"))
	assert.FileExists(t, filepath.Join(outDir, "web", "templates", "index.html.tmpl.br"))
	assert.NoFileExists(t, filepath.Join(outDir, "web", "static", "logo.png.br"))
}

func TestBrotliSiblingsRoundTrip(t *testing.T) {
	t.Setenv("CI", "true")

	source := writeAssetTree(t)
	outDir := filepath.Join(t.TempDir(), "dist")

	_, err := Build(context.Background(), os.DirFS(source), Options{
		Version: "0.1.0",
		OutDir:  outDir,
	})
	require.NoError(t, err)

	compressed, err := os.Open(filepath.Join(outDir, "web", "static", "app.js.br"))
	require.NoError(t, err)
	defer compressed.Close()

	decompressed, err := io.ReadAll(brotli.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "console.log('hello');", string(decompressed))
}

func TestArchiveContents(t *testing.T) {
	t.Setenv("CI", "true")

	source := writeAssetTree(t)
	outDir := filepath.Join(t.TempDir(), "dist")

	archive, err := Build(context.Background(), os.DirFS(source), Options{
		Version: "2.0.0",
		OutDir:  outDir,
	})
	require.NoError(t, err)

	hdl, err := os.Open(archive)
	require.NoError(t, err)
	defer hdl.Close()

	xzr, err := xz.NewReader(hdl)
	require.NoError(t, err)

	names := make([]string, 0)
	tr := tar.NewReader(xzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, header.Name)
	}

	assert.Contains(t, names, "manifest.yaml")
	assert.Contains(t, names, "web/static/app.js")
	assert.Contains(t, names, "web/static/app.js.br")
	assert.Contains(t, names, "web/templates/index.html.tmpl")
	assert.Contains(t, names, "web/static/logo.png")
}

func TestBuildRejectsInvalidVersion(t *testing.T) {
	t.Setenv("CI", "true")

	source := writeAssetTree(t)
	_, err := Build(context.Background(), os.DirFS(source), Options{
		Version: "latest",
		OutDir:  t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid semantic version")
}

func TestBuildRejectsEmptyTree(t *testing.T) {
	t.Setenv("CI", "true")

	_, err := Build(context.Background(), os.DirFS(t.TempDir()), Options{
		Version: "1.0.0",
		OutDir:  t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to bundle")
}
