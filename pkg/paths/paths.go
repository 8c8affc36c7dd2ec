// Package paths provides the local search path for datadeps.
// It implements XDG Base Directory specification compliance and
// supplies the default probe that locates already-downloaded copies.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/datadeps/pkg/config"
	"github.com/arthur-debert/datadeps/pkg/types"
)

// AppDirName is the directory name used under each data directory.
// It is not user-configurable; the per-directory layout must stay
// consistent across installations.
const AppDirName = "datadeps"

// LoadPath returns the ordered list of directories searched for
// existing copies of a dependency. Entries from settings come first,
// then the user's XDG data directory, then system data directories.
func LoadPath(settings *config.Settings) []string {
	var dirs []string
	if settings != nil {
		dirs = append(dirs, settings.LoadPath...)
	}
	dirs = append(dirs, filepath.Join(xdg.DataHome, AppDirName))
	for _, dataDir := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(dataDir, AppDirName))
	}
	return dirs
}

// TargetDir returns the directory a new download for name should be
// placed in: the first load path entry, which is where Probe looks
// first on the next resolution.
func TargetDir(settings *config.Settings, name string) string {
	return filepath.Join(LoadPath(settings)[0], name)
}

// Probe looks for an existing directory for name along the load path.
// It is the stock implementation of the resolver's search-path probe;
// callers with their own storage layout supply their own.
func Probe(fs types.FS, settings *config.Settings, name string) (string, bool) {
	for _, dir := range LoadPath(settings) {
		candidate := filepath.Join(dir, name)
		if info, err := fs.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
