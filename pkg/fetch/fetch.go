// Package fetch runs a dependency's transport methods and places the
// fetched artifacts into a local directory. It is a pure orchestration
// layer: the transports themselves are supplied by the descriptor.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/logging"
	"github.com/arthur-debert/datadeps/pkg/types"
)

// Executor invokes transport methods to populate a local directory
type Executor struct {
	fs  types.FS
	log zerolog.Logger
}

// NewExecutor creates an Executor
func NewExecutor(fsys types.FS) *Executor {
	return &Executor{
		fs:  fsys,
		log: logging.GetLogger("fetch"),
	}
}

// Fetch downloads every locator into localDir and returns the fetched
// paths in locator order. The directory is created first, intermediate
// directories included. A single locator is fetched inline; multiple
// locators fan out concurrently, each to its own destination file, and
// the call returns only once all of them finished. The first failure is
// surfaced; sibling writes are not rolled back.
func (e *Executor) Fetch(ctx context.Context, methods types.OneOrMany[types.FetchMethod], locators []string, localDir string) ([]string, error) {
	if len(locators) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "fetch requires at least one locator")
	}
	if err := e.fs.MkdirAll(localDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", localDir)
	}

	destinations := destinationPaths(locators, localDir)

	if len(locators) == 1 {
		e.log.Info().Str("locator", locators[0]).Str("dest", destinations[0]).Msg("Fetching")
		if err := methods.At(0)(ctx, locators[0], destinations[0]); err != nil {
			return nil, err
		}
		return destinations, nil
	}

	e.log.Info().Int("count", len(locators)).Str("dir", localDir).Msg("Fetching locators concurrently")
	g, gctx := errgroup.WithContext(ctx)
	for i := range locators {
		method := methods.At(i)
		locator := locators[i]
		dest := destinations[i]
		g.Go(func() error {
			return method(gctx, locator, dest)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return destinations, nil
}

// destinationPaths derives one file name per locator inside localDir.
// Locators that share a base name are disambiguated by position so each
// fan-out member writes a distinct file.
func destinationPaths(locators []string, localDir string) []string {
	seen := make(map[string]bool, len(locators))
	paths := make([]string, len(locators))
	for i, locator := range locators {
		name := DestinationName(locator)
		if seen[name] {
			name = fmt.Sprintf("%d-%s", i, name)
		}
		seen[name] = true
		paths[i] = filepath.Join(localDir, name)
	}
	return paths
}

// DestinationName derives the local file name for a remote locator
func DestinationName(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" {
		p := strings.TrimRight(u.Path, "/")
		if p == "" {
			return "download"
		}
		return path.Base(p)
	}
	name := path.Base(strings.TrimRight(locator, "/"))
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}
