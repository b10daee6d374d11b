package bundle

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file name the manifest is written under, both in the
// output directory and inside the release archive.
const ManifestName = "manifest.yaml"

// ManifestFile describes one bundled asset.
type ManifestFile struct {
	Path   string `yaml:"path"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

// Manifest describes the contents of a release bundle.
type Manifest struct {
	Version string         `yaml:"version"`
	BuiltAt time.Time      `yaml:"built_at"`
	Files   []ManifestFile `yaml:"files"`
}

// ReadManifest parses a manifest.yaml from disk.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", path)
	}

	return &manifest, nil
}

func (m *Manifest) write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "failed to encode manifest")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}

	return nil
}
