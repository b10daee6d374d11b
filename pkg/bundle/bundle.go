// Package bundle assembles the release artifacts for the calculator's web
// assets: a verbatim copy plus precompressed variants, a checksum manifest
// and a .tar.xz archive of the whole bundle.
package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/andybalholm/brotli"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
)

// Options controls a release build.
type Options struct {
	// Version has to be a valid semantic version; it names the archive and
	// is recorded in the manifest.
	Version string
	// OutDir is the directory the bundle is written to. It is created if
	// necessary.
	OutDir string
}

var compressibleExts = map[string]bool{
	".html": true,
	".css":  true,
	".js":   true,
	".svg":  true,
	".tmpl": true,
	".json": true,
}

// Build copies the given asset tree into OutDir/web, writes .br siblings for
// compressible files, records every copied file in a manifest and packs the
// result into fintools-web-<version>.tar.xz. It returns the archive path.
func Build(ctx context.Context, source fs.FS, opts Options) (string, error) {
	version, err := semver.NewVersion(opts.Version)
	if err != nil {
		return "", eris.Wrapf(err, "%s is not a valid semantic version", opts.Version)
	}

	files := make([]string, 0)
	err = fs.WalkDir(source, ".", func(item string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			files = append(files, item)
		}
		return nil
	})
	if err != nil {
		return "", eris.Wrap(err, "failed to walk the asset tree")
	}

	if len(files) == 0 {
		return "", eris.New("the asset tree is empty; nothing to bundle")
	}

	webDir := filepath.Join(opts.OutDir, "web")
	if err := os.MkdirAll(webDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "failed to create %s", webDir)
	}

	bar := getProgressBar(int64(len(files)), "Bundling assets")
	manifest := Manifest{
		Version: version.String(),
		BuiltAt: time.Now().UTC(),
		Files:   make([]ManifestFile, 0, len(files)),
	}

	for _, item := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		entry, err := copyAsset(source, item, webDir)
		if err != nil {
			return "", err
		}

		manifest.Files = append(manifest.Files, entry)
		//nolint:errcheck
		bar.Add(1)
	}

	manifestPath := filepath.Join(opts.OutDir, ManifestName)
	if err := manifest.write(manifestPath); err != nil {
		return "", err
	}

	archivePath := filepath.Join(opts.OutDir, "fintools-web-"+version.String()+".tar.xz")
	if err := writeArchive(ctx, archivePath, opts.OutDir, manifestPath, webDir); err != nil {
		return "", err
	}

	return archivePath, nil
}

// copyAsset writes one file into the bundle and returns its manifest entry.
// Compressible files get a precompressed .br sibling so the web server can
// serve them without compressing on the fly.
func copyAsset(source fs.FS, item, webDir string) (ManifestFile, error) {
	var entry ManifestFile

	reader, err := source.Open(item)
	if err != nil {
		return entry, eris.Wrapf(err, "failed to open %s", item)
	}
	defer reader.Close()

	dest := filepath.Join(webDir, filepath.FromSlash(item))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return entry, eris.Wrapf(err, "failed to create %s", filepath.Dir(dest))
	}

	hdl, err := os.Create(dest)
	if err != nil {
		return entry, eris.Wrapf(err, "failed to create %s", dest)
	}
	defer hdl.Close()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(hdl, hash), reader)
	if err != nil {
		return entry, eris.Wrapf(err, "failed to copy %s", item)
	}

	if compressibleExts[path.Ext(item)] {
		if err := writeBrotli(dest); err != nil {
			return entry, err
		}
	}

	entry.Path = item
	entry.Size = size
	entry.SHA256 = hex.EncodeToString(hash.Sum(nil))
	return entry, nil
}

func writeBrotli(dest string) error {
	reader, err := os.Open(dest)
	if err != nil {
		return eris.Wrapf(err, "failed to open %s", dest)
	}
	defer reader.Close()

	hdl, err := os.Create(dest + ".br")
	if err != nil {
		return eris.Wrapf(err, "failed to create %s.br", dest)
	}

	brw := brotli.NewWriterLevel(hdl, brotli.BestCompression)
	if _, err := io.Copy(brw, reader); err != nil {
		hdl.Close()
		return eris.Wrapf(err, "failed to compress %s", dest)
	}

	if err := brw.Close(); err != nil {
		hdl.Close()
		return eris.Wrapf(err, "failed to compress %s", dest)
	}

	return hdl.Close()
}

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.Default(length, desc)
}
