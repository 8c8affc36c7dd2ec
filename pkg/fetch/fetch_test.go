package fetch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/arthur-debert/datadeps/pkg/filesystem"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetch records every invocation and writes the destination file
type countingFetch struct {
	mu    sync.Mutex
	fs    types.FS
	calls []string
	dests []string
	fail  map[string]error
}

func (c *countingFetch) method() types.FetchMethod {
	return func(ctx context.Context, locator, destination string) error {
		c.mu.Lock()
		c.calls = append(c.calls, locator)
		c.dests = append(c.dests, destination)
		c.mu.Unlock()
		if err, ok := c.fail[locator]; ok {
			return err
		}
		return c.fs.WriteFile(destination, []byte("content of "+locator), 0644)
	}
}

func TestFetchSingleLocator(t *testing.T) {
	fs := filesystem.NewMemory()
	stub := &countingFetch{fs: fs}
	e := NewExecutor(fs)

	paths, err := e.Fetch(context.Background(), types.One(stub.method()),
		[]string{"https://example.com/data/iris.csv"}, "/data/iris")
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, "/data/iris/iris.csv", paths[0])
	assert.Equal(t, []string{"https://example.com/data/iris.csv"}, stub.calls)

	data, err := fs.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "iris.csv")
}

func TestFetchFanOut(t *testing.T) {
	fs := filesystem.NewMemory()
	stub := &countingFetch{fs: fs}
	e := NewExecutor(fs)

	locators := []string{
		"https://example.com/train.gz",
		"https://example.com/test.gz",
		"https://example.com/labels.gz",
	}

	paths, err := e.Fetch(context.Background(), types.One(stub.method()), locators, "/data/mnist")
	require.NoError(t, err)

	// one call per locator, shared method reused
	require.Len(t, stub.calls, 3)
	sort.Strings(stub.calls)
	assert.Equal(t, []string{
		"https://example.com/labels.gz",
		"https://example.com/test.gz",
		"https://example.com/train.gz",
	}, stub.calls)

	// returned paths follow locator order, all inside the shared dir
	assert.Equal(t, "/data/mnist/train.gz", paths[0])
	assert.Equal(t, "/data/mnist/test.gz", paths[1])
	assert.Equal(t, "/data/mnist/labels.gz", paths[2])
	for _, p := range paths {
		assert.Equal(t, "/data/mnist", filepath.Dir(p))
		_, err := fs.Stat(p)
		assert.NoError(t, err)
	}
}

func TestFetchPerLocatorMethods(t *testing.T) {
	fs := filesystem.NewMemory()
	first := &countingFetch{fs: fs}
	second := &countingFetch{fs: fs}
	e := NewExecutor(fs)

	_, err := e.Fetch(context.Background(),
		types.PerLocator(first.method(), second.method()),
		[]string{"https://example.com/a", "https://example.com/b"}, "/data/paired")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/a"}, first.calls)
	assert.Equal(t, []string{"https://example.com/b"}, second.calls)
}

func TestFetchFailurePropagates(t *testing.T) {
	fs := filesystem.NewMemory()
	boom := fmt.Errorf("connection reset")
	stub := &countingFetch{fs: fs, fail: map[string]error{"https://example.com/b": boom}}
	e := NewExecutor(fs)

	_, err := e.Fetch(context.Background(), types.One(stub.method()),
		[]string{"https://example.com/a", "https://example.com/b"}, "/data/broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestFetchNoLocators(t *testing.T) {
	e := NewExecutor(filesystem.NewMemory())
	_, err := e.Fetch(context.Background(), types.OneOrMany[types.FetchMethod]{}, nil, "/data/none")
	assert.Error(t, err)
}

func TestDestinationName(t *testing.T) {
	tests := []struct {
		locator string
		want    string
	}{
		{"https://example.com/data/iris.csv", "iris.csv"},
		{"https://example.com/archive.tar.gz?token=abc", "archive.tar.gz"},
		{"https://example.com/dir/", "dir"},
		{"https://example.com", "download"},
		{"ftp://host/file.bin", "file.bin"},
		{"plain-name", "plain-name"},
	}

	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			assert.Equal(t, tt.want, DestinationName(tt.locator))
		})
	}
}

func TestDestinationCollision(t *testing.T) {
	paths := destinationPaths([]string{
		"https://mirror-a.example.com/data.bin",
		"https://mirror-b.example.com/data.bin",
	}, "/data/x")

	assert.Equal(t, "/data/x/data.bin", paths[0])
	assert.Equal(t, "/data/x/1-data.bin", paths[1])
}
