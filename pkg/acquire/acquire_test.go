package acquire

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/arthur-debert/datadeps/pkg/checksum"
	"github.com/arthur-debert/datadeps/pkg/config"
	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/filesystem"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/arthur-debert/datadeps/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

// scriptedTransport writes a queued payload per call and counts calls
type scriptedTransport struct {
	mu       sync.Mutex
	fs       types.FS
	payloads [][]byte
	calls    int
}

func (s *scriptedTransport) method() types.FetchMethod {
	return func(ctx context.Context, locator, destination string) error {
		s.mu.Lock()
		payload := s.payloads[0]
		if len(s.payloads) > 1 {
			s.payloads = s.payloads[1:]
		}
		s.calls++
		s.mu.Unlock()
		return s.fs.WriteFile(destination, payload, 0644)
	}
}

func goodDep(name string, transport types.FetchMethod, expected types.Checksum) *types.Dependency {
	dep := &types.Dependency{
		Name:     name,
		Locators: []string{"https://example.com/" + name + ".csv"},
		Fetch:    types.One(transport),
	}
	if !expected.IsZero() {
		dep.Checksums = types.One(expected)
	}
	return dep
}

func checksumOf(fs types.FS, t *testing.T, data []byte) types.Checksum {
	t.Helper()
	require.NoError(t, fs.WriteFile("/tmp-hash-probe", data, 0644))
	value, err := checksum.File(fs, "sha256", "/tmp-hash-probe")
	require.NoError(t, err)
	require.NoError(t, fs.Remove("/tmp-hash-probe"))
	return types.Checksum{Algo: "sha256", Value: value}
}

func TestAcquireDisabledDownloads(t *testing.T) {
	fs := filesystem.NewMemory()
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
	dialog := &ui.ScriptDialog{}
	p := NewPipeline(fs, dialog, &config.Settings{DisableDownloads: true, AlwaysAccept: true})

	err := p.Acquire(context.Background(), goodDep("iris", transport.method(), types.Checksum{}), "/data/iris", Options{})

	assert.True(t, errors.IsErrorCode(err, errors.ErrDownloadsDisabled))
	assert.Equal(t, 0, transport.calls, "no transport call may happen when downloads are disabled")
	assert.Equal(t, 0, dialog.Interactions())
}

func TestAcquireCallerRefusal(t *testing.T) {
	fs := filesystem.NewMemory()
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
	dialog := &ui.ScriptDialog{}
	p := NewPipeline(fs, dialog, &config.Settings{})

	err := p.Acquire(context.Background(), goodDep("iris", transport.method(), types.Checksum{}), "/data/iris",
		Options{Accept: boolPtr(false)})

	assert.True(t, errors.IsErrorCode(err, errors.ErrTermsDenied))
	assert.Equal(t, 0, dialog.Interactions(), "explicit refusal must not prompt")
	assert.Equal(t, 0, transport.calls)
}

func TestAcquireAlwaysAccept(t *testing.T) {
	fs := filesystem.NewMemory()
	payload := []byte("sepal,petal\n")
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{payload}}
	dialog := &ui.ScriptDialog{}
	p := NewPipeline(fs, dialog, &config.Settings{AlwaysAccept: true})

	dep := goodDep("iris", transport.method(), checksumOf(fs, t, payload))
	err := p.Acquire(context.Background(), dep, "/data/iris", Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, 0, dialog.Interactions(), "always-accept must not prompt")

	data, err := fs.ReadFile("/data/iris/iris.csv")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestAcquireInteractiveTerms(t *testing.T) {
	t.Run("user accepts", func(t *testing.T) {
		fs := filesystem.NewMemory()
		transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
		dialog := &ui.ScriptDialog{ConfirmAnswers: []bool{true}}
		p := NewPipeline(fs, dialog, &config.Settings{})

		dep := goodDep("iris", transport.method(), types.Checksum{})
		dep.Message = "Please cite Fisher (1936)."

		require.NoError(t, p.Acquire(context.Background(), dep, "/data/iris", Options{}))
		assert.Equal(t, 1, dialog.ConfirmCount)
		assert.Equal(t, 1, transport.calls)

		// terms prompt shows the dependency name and its message
		require.NotEmpty(t, dialog.Messages)
		assert.Contains(t, dialog.Messages[0], `"iris"`)
		assert.Contains(t, dialog.Messages[1], "Fisher")
	})

	t.Run("user declines", func(t *testing.T) {
		fs := filesystem.NewMemory()
		transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
		dialog := &ui.ScriptDialog{ConfirmAnswers: []bool{false}}
		p := NewPipeline(fs, dialog, &config.Settings{})

		err := p.Acquire(context.Background(), goodDep("iris", transport.method(), types.Checksum{}), "/data/iris", Options{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrTermsDenied))
		assert.Equal(t, 0, transport.calls)
	})
}

func TestAcquireChecksumRetryLoop(t *testing.T) {
	fs := filesystem.NewMemory()
	good := []byte("correct content")
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("corrupted"), good}}
	// first verify mismatches, user picks re-download, second verify matches
	dialog := &ui.ScriptDialog{ChoiceKeys: []string{"r"}}
	p := NewPipeline(fs, dialog, &config.Settings{AlwaysAccept: true})

	dep := goodDep("iris", transport.method(), checksumOf(fs, t, good))
	err := p.Acquire(context.Background(), dep, "/data/iris", Options{})

	require.NoError(t, err)
	assert.Equal(t, 2, transport.calls, "retry must re-fetch")
	assert.Equal(t, 1, dialog.ChooseCount)
}

func TestAcquireChecksumIgnore(t *testing.T) {
	fs := filesystem.NewMemory()
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("corrupted")}}
	dialog := &ui.ScriptDialog{ChoiceKeys: []string{"i"}}
	p := NewPipeline(fs, dialog, &config.Settings{AlwaysAccept: true})

	dep := goodDep("iris", transport.method(), types.Checksum{Algo: "sha256", Value: "0000"})
	err := p.Acquire(context.Background(), dep, "/data/iris", Options{})

	require.NoError(t, err, "ignore accepts mismatched content")
	assert.Equal(t, 1, transport.calls)
}

func TestAcquireChecksumAbort(t *testing.T) {
	fs := filesystem.NewMemory()
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("corrupted")}}
	dialog := &ui.ScriptDialog{ChoiceKeys: []string{"a"}}
	p := NewPipeline(fs, dialog, &config.Settings{AlwaysAccept: true})

	dep := goodDep("iris", transport.method(), types.Checksum{Algo: "sha256", Value: "0000"})
	err := p.Acquire(context.Background(), dep, "/data/iris", Options{})

	assert.True(t, errors.IsErrorCode(err, errors.ErrChecksumAborted))
}

func TestAcquireSkipChecksum(t *testing.T) {
	fs := filesystem.NewMemory()
	transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("whatever")}}
	dialog := &ui.ScriptDialog{}
	p := NewPipeline(fs, dialog, &config.Settings{AlwaysAccept: true})

	dep := goodDep("iris", transport.method(), types.Checksum{Algo: "sha256", Value: "0000"})
	err := p.Acquire(context.Background(), dep, "/data/iris", Options{SkipChecksum: true})

	require.NoError(t, err)
	assert.Equal(t, 0, dialog.Interactions(), "skip-checksum must not verify or prompt")
}

func TestAcquireLocatorOverride(t *testing.T) {
	t.Run("single fetch method accepts any count", func(t *testing.T) {
		fs := filesystem.NewMemory()
		transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
		p := NewPipeline(fs, &ui.ScriptDialog{}, &config.Settings{AlwaysAccept: true})

		dep := goodDep("iris", transport.method(), types.Checksum{})
		err := p.Acquire(context.Background(), dep, "/data/iris",
			Options{Locators: []string{"https://mirror.example.com/iris.csv"}})

		require.NoError(t, err)
		_, err = fs.Stat("/data/iris/iris.csv")
		assert.NoError(t, err)
	})

	t.Run("plural fetch methods demand matching count", func(t *testing.T) {
		fs := filesystem.NewMemory()
		transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
		p := NewPipeline(fs, &ui.ScriptDialog{}, &config.Settings{AlwaysAccept: true})

		dep := &types.Dependency{
			Name:     "paired",
			Locators: []string{"https://example.com/a", "https://example.com/b"},
			Fetch:    types.PerLocator(transport.method(), transport.method()),
		}
		err := p.Acquire(context.Background(), dep, "/data/paired",
			Options{Locators: []string{"https://mirror.example.com/a"}})

		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("plural checksums demand matching count", func(t *testing.T) {
		fs := filesystem.NewMemory()
		transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
		p := NewPipeline(fs, &ui.ScriptDialog{}, &config.Settings{AlwaysAccept: true})

		dep := &types.Dependency{
			Name:     "paired",
			Locators: []string{"https://example.com/a", "https://example.com/b"},
			Fetch:    types.One(transport.method()),
			Checksums: types.PerLocator(
				types.Checksum{Algo: "sha256", Value: "0000"},
				types.Checksum{Algo: "sha256", Value: "1111"},
			),
		}
		err := p.Acquire(context.Background(), dep, "/data/paired",
			Options{Locators: []string{
				"https://mirror.example.com/a",
				"https://mirror.example.com/b",
				"https://mirror.example.com/c",
			}})

		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		assert.Equal(t, 0, transport.calls, "a bad override must be rejected before any fetch")
	})

	t.Run("plural post-fetch hooks demand matching count", func(t *testing.T) {
		fs := filesystem.NewMemory()
		transport := &scriptedTransport{fs: fs, payloads: [][]byte{[]byte("data")}}
		p := NewPipeline(fs, &ui.ScriptDialog{}, &config.Settings{AlwaysAccept: true})

		noop := types.PostFetchMethod(func(ctx context.Context, fetched string) error { return nil })
		dep := &types.Dependency{
			Name:      "paired",
			Locators:  []string{"https://example.com/a", "https://example.com/b"},
			Fetch:     types.One(transport.method()),
			PostFetch: types.PerLocator(noop, noop),
		}
		err := p.Acquire(context.Background(), dep, "/data/paired",
			Options{Locators: []string{
				"https://mirror.example.com/a",
				"https://mirror.example.com/b",
				"https://mirror.example.com/c",
			}})

		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		assert.Equal(t, 0, transport.calls)
	})
}

func TestAcquirePostFetch(t *testing.T) {
	// Post-fetch hooks see a real working directory, so this test runs
	// on the OS filesystem.
	fs := filesystem.NewOS()
	base := t.TempDir()
	target := filepath.Join(base, "iris")

	transport := types.FetchMethod(func(ctx context.Context, locator, destination string) error {
		return os.WriteFile(destination, []byte("data"), 0644)
	})

	t.Run("hook runs in artifact directory", func(t *testing.T) {
		prev, err := os.Getwd()
		require.NoError(t, err)

		var hookWd, hookArg string
		dep := goodDep("iris", transport, types.Checksum{})
		dep.PostFetch = types.One(types.PostFetchMethod(func(ctx context.Context, fetched string) error {
			hookArg = fetched
			hookWd, _ = os.Getwd()
			return nil
		}))

		p := NewPipeline(fs, &ui.ScriptDialog{}, &config.Settings{AlwaysAccept: true})
		require.NoError(t, p.Acquire(context.Background(), dep, target, Options{}))

		wantDir, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		gotDir, err := filepath.EvalSymlinks(hookWd)
		require.NoError(t, err)
		assert.Equal(t, wantDir, gotDir)
		assert.Equal(t, filepath.Join(target, "iris.csv"), hookArg)

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, prev, wd, "working directory must be restored")
	})

	t.Run("hook failure propagates and restores", func(t *testing.T) {
		prev, err := os.Getwd()
		require.NoError(t, err)

		dep := goodDep("iris", transport, types.Checksum{})
		dep.PostFetch = types.One(types.PostFetchMethod(func(ctx context.Context, fetched string) error {
			return errors.New(errors.ErrPostFetchFailed, "bad archive")
		}))

		p := NewPipeline(fs, &ui.ScriptDialog{}, &config.Settings{AlwaysAccept: true})
		err = p.Acquire(context.Background(), dep, target, Options{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrPostFetchFailed))

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, prev, wd)
	})
}
