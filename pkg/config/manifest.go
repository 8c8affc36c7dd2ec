package config

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	tomlv2 "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/types"
)

// ManifestFile is the default manifest file name
const ManifestFile = "datadeps.toml"

// ManifestEntry is one dependency declaration in a manifest file
type ManifestEntry struct {
	Name      string   `koanf:"name" toml:"name"`
	URLs      []string `koanf:"urls" toml:"urls"`
	Checksums []string `koanf:"checksums" toml:"checksums,omitempty"`
	Message   string   `koanf:"message" toml:"message,omitempty"`
	Unpack    bool     `koanf:"unpack" toml:"unpack,omitempty"`
}

// Manifest is the root of a manifest file
type Manifest struct {
	Dependencies []ManifestEntry `koanf:"dependency" toml:"dependency"`
}

// LoadManifest reads a TOML or YAML manifest and converts each entry to
// a validated Dependency. Declared dependencies use defaultFetch as
// their transport; entries with unpack = true get the unpack hook as
// their post-fetch method.
func LoadManifest(path string, defaultFetch types.FetchMethod, unpack types.PostFetchMethod) ([]*types.Dependency, error) {
	k := koanf.New(".")

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return nil, errors.Newf(errors.ErrManifestValid, "unsupported manifest format %q", filepath.Ext(path))
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load manifest %s", path)
	}

	var manifest Manifest
	if err := k.Unmarshal("", &manifest); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to decode manifest %s", path)
	}

	deps := make([]*types.Dependency, 0, len(manifest.Dependencies))
	for _, entry := range manifest.Dependencies {
		dep, err := entry.ToDependency(defaultFetch, unpack)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// ToDependency converts a manifest entry to a validated Dependency
func (e ManifestEntry) ToDependency(defaultFetch types.FetchMethod, unpack types.PostFetchMethod) (*types.Dependency, error) {
	dep := &types.Dependency{
		Name:     e.Name,
		Locators: e.URLs,
		Fetch:    types.One(defaultFetch),
		Message:  e.Message,
	}

	switch len(e.Checksums) {
	case 0:
	case 1:
		checksum, err := types.ParseChecksum(e.Checksums[0])
		if err != nil {
			return nil, err
		}
		if !checksum.IsZero() {
			dep.Checksums = types.One(checksum)
		}
	default:
		checksums := make([]types.Checksum, 0, len(e.Checksums))
		for _, raw := range e.Checksums {
			checksum, err := types.ParseChecksum(raw)
			if err != nil {
				return nil, err
			}
			checksums = append(checksums, checksum)
		}
		dep.Checksums = types.PerLocator(checksums...)
	}

	if e.Unpack {
		if unpack == nil {
			return nil, errors.Newf(errors.ErrManifestValid,
				"dependency %q requests unpack but no unpack hook is available", e.Name)
		}
		dep.PostFetch = types.One(unpack)
	}

	if err := dep.Validate(); err != nil {
		return nil, err
	}
	return dep, nil
}

// WriteSampleManifest writes a commented starter manifest, used by the
// init command
func WriteSampleManifest(w io.Writer) error {
	sample := Manifest{
		Dependencies: []ManifestEntry{
			{
				Name:      "iris",
				URLs:      []string{"https://archive.ics.uci.edu/ml/machine-learning-databases/iris/iris.data"},
				Checksums: []string{"sha256:6f608b71a7317216319b4d27b4d9bc84e6abd734eda7872b71a458569e2656c0"},
				Message:   "Fisher's iris dataset. Free for research use.",
			},
		},
	}
	return tomlv2.NewEncoder(w).Encode(sample)
}
