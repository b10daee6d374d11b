package bundle

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

// writeArchive packs the manifest and the web asset tree into a .tar.xz
// archive. Entry names are relative to the output directory so the archive
// unpacks to manifest.yaml plus a web/ tree.
func writeArchive(ctx context.Context, archivePath, outDir, manifestPath, webDir string) error {
	hdl, err := os.Create(archivePath)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", archivePath)
	}
	defer hdl.Close()

	xzw, err := xz.NewWriter(hdl)
	if err != nil {
		return eris.Wrapf(err, "failed to compress %s", archivePath)
	}

	tw := tar.NewWriter(xzw)

	if err := addArchiveEntry(tw, manifestPath, ManifestName); err != nil {
		return err
	}

	err = filepath.WalkDir(webDir, func(item string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(outDir, item)
		if err != nil {
			return err
		}

		return addArchiveEntry(tw, item, filepath.ToSlash(rel))
	})
	if err != nil {
		return eris.Wrapf(err, "failed to pack %s", archivePath)
	}

	if err := tw.Close(); err != nil {
		return eris.Wrapf(err, "failed to finish %s", archivePath)
	}

	if err := xzw.Close(); err != nil {
		return eris.Wrapf(err, "failed to finish %s", archivePath)
	}

	return hdl.Close()
}

func addArchiveEntry(tw *tar.Writer, source, name string) error {
	info, err := os.Stat(source)
	if err != nil {
		return eris.Wrapf(err, "failed to stat %s", source)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return eris.Wrapf(err, "failed to describe %s", source)
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return eris.Wrapf(err, "failed to write header for %s", name)
	}

	reader, err := os.Open(source)
	if err != nil {
		return eris.Wrapf(err, "failed to open %s", source)
	}
	defer reader.Close()

	if _, err := io.Copy(tw, reader); err != nil {
		return eris.Wrapf(err, "failed to pack %s", name)
	}

	return nil
}
