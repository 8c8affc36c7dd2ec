package config

import (
	"os"
	"strings"
	"sync"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/logging"
)

// Environment variable names
const (
	// EnvPrefix is the prefix shared by all datadeps environment variables
	EnvPrefix = "DATADEPS_"

	// EnvDisableDownload unconditionally disables all downloads
	EnvDisableDownload = "DATADEPS_DISABLE_DOWNLOAD"

	// EnvAlwaysAccept accepts all terms prompts without asking
	EnvAlwaysAccept = "DATADEPS_ALWAYS_ACCEPT"

	// EnvAlwayAccept is the deprecated spelling of EnvAlwaysAccept.
	// It is still honored but emits a migration warning.
	EnvAlwayAccept = "DATADEPS_ALWAY_ACCEPT"

	// EnvLoadPath is a list of directories searched for existing copies,
	// separated by the OS path list separator
	EnvLoadPath = "DATADEPS_LOAD_PATH"
)

// Settings carries the runtime flags that gate acquisition. It is built
// once and threaded explicitly through resolver, pipeline and terms gate.
type Settings struct {
	// DisableDownloads fails every acquisition immediately, regardless
	// of terms acceptance
	DisableDownloads bool

	// AlwaysAccept answers every terms prompt with yes
	AlwaysAccept bool

	// LoadPath lists extra directories searched for existing copies,
	// ahead of the default data directory
	LoadPath []string
}

var (
	aliasWarning      sync.Once
	pathListSeparator = string(os.PathListSeparator)
)

// FromEnv builds Settings from DATADEPS_* environment variables
func FromEnv() (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to read environment")
	}
	return fromKoanf(k), nil
}

// FromMap builds Settings from a plain map, used by tests. Keys use the
// lower-cased names without the DATADEPS_ prefix.
func FromMap(values map[string]interface{}) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load settings map")
	}
	return fromKoanf(k), nil
}

func fromKoanf(k *koanf.Koanf) *Settings {
	s := &Settings{
		DisableDownloads: k.Bool("disable_download"),
		AlwaysAccept:     k.Bool("always_accept"),
	}

	// Normalize the deprecated alias: honored, warned about once,
	// canonical name wins when both are set.
	if k.Exists("alway_accept") {
		aliasWarning.Do(func() {
			log := logging.GetLogger("config")
			log.Warn().
				Str("deprecated", EnvAlwayAccept).
				Str("replacement", EnvAlwaysAccept).
				Msg("Deprecated environment variable is set, please migrate")
		})
		if !k.Exists("always_accept") {
			s.AlwaysAccept = k.Bool("alway_accept")
		}
	}

	if raw := k.String("load_path"); raw != "" {
		for _, dir := range strings.Split(raw, pathListSeparator) {
			if dir = strings.TrimSpace(dir); dir != "" {
				s.LoadPath = append(s.LoadPath, dir)
			}
		}
	}

	return s
}
