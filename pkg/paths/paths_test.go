package paths

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/datadeps/pkg/config"
	"github.com/arthur-debert/datadeps/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPath(t *testing.T) {
	t.Run("settings entries come first", func(t *testing.T) {
		settings := &config.Settings{LoadPath: []string{"/srv/datasets", "/mnt/shared"}}
		dirs := LoadPath(settings)

		require.GreaterOrEqual(t, len(dirs), 3)
		assert.Equal(t, "/srv/datasets", dirs[0])
		assert.Equal(t, "/mnt/shared", dirs[1])
	})

	t.Run("nil settings still yields xdg dirs", func(t *testing.T) {
		dirs := LoadPath(nil)
		require.NotEmpty(t, dirs)
		assert.Equal(t, AppDirName, filepath.Base(dirs[0]))
	})
}

func TestTargetDir(t *testing.T) {
	settings := &config.Settings{LoadPath: []string{"/srv/datasets"}}
	assert.Equal(t, "/srv/datasets/iris", TargetDir(settings, "iris"))
}

func TestProbe(t *testing.T) {
	fs := filesystem.NewMemory()
	settings := &config.Settings{LoadPath: []string{"/primary", "/secondary"}}

	t.Run("absent everywhere", func(t *testing.T) {
		_, found := Probe(fs, settings, "iris")
		assert.False(t, found)
	})

	t.Run("found in later entry", func(t *testing.T) {
		require.NoError(t, fs.MkdirAll("/secondary/iris", 0755))

		dir, found := Probe(fs, settings, "iris")
		require.True(t, found)
		assert.Equal(t, "/secondary/iris", dir)
	})

	t.Run("earlier entry wins", func(t *testing.T) {
		require.NoError(t, fs.MkdirAll("/primary/iris", 0755))

		dir, found := Probe(fs, settings, "iris")
		require.True(t, found)
		assert.Equal(t, "/primary/iris", dir)
	})

	t.Run("plain file does not count", func(t *testing.T) {
		require.NoError(t, fs.WriteFile("/primary/notadir", []byte("x"), 0644))

		_, found := Probe(fs, settings, "notadir")
		assert.False(t, found)
	})
}
