// Package acquire orchestrates the download of a missing dependency:
// terms acceptance, fetch, checksum verification and the post-fetch
// hook. It owns no transport or storage policy of its own; everything
// comes from the descriptor and the injected collaborators.
package acquire

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/datadeps/pkg/checksum"
	"github.com/arthur-debert/datadeps/pkg/config"
	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/fetch"
	"github.com/arthur-debert/datadeps/pkg/logging"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/arthur-debert/datadeps/pkg/ui"
)

// Pipeline acquires dependencies into local directories
type Pipeline struct {
	fs       types.FS
	dialog   ui.Dialog
	settings *config.Settings
	executor *fetch.Executor
	verifier *checksum.Verifier
	log      zerolog.Logger
}

// NewPipeline creates a Pipeline
func NewPipeline(fsys types.FS, dialog ui.Dialog, settings *config.Settings) *Pipeline {
	return &Pipeline{
		fs:       fsys,
		dialog:   dialog,
		settings: settings,
		executor: fetch.NewExecutor(fsys),
		verifier: checksum.NewVerifier(fsys, dialog),
		log:      logging.GetLogger("acquire"),
	}
}

// Options tune one acquisition
type Options struct {
	// Locators overrides the descriptor's remote locators. With plural
	// per-locator arms the override must keep the locator count.
	Locators []string

	// SkipChecksum accepts fetched content without verification. This
	// is a caller decision, distinct from a descriptor that simply has
	// no checksum configured.
	SkipChecksum bool

	// Accept overrides the terms prompt: true proceeds, false denies
	// without asking. Nil falls back to settings and the dialog.
	Accept *bool
}

// Acquire populates localDir with verified content for dep. It fails
// fast when downloads are disabled, gates on terms acceptance once,
// then fetches and verifies until the user is satisfied or aborts, and
// finally runs the post-fetch hooks.
func (p *Pipeline) Acquire(ctx context.Context, dep *types.Dependency, localDir string, opts Options) error {
	if p.settings.DisableDownloads {
		return errors.Newf(errors.ErrDownloadsDisabled,
			"downloads are disabled (%s is set), cannot fetch %q", config.EnvDisableDownload, dep.Name)
	}

	locators := dep.Locators
	if opts.Locators != nil {
		locators = opts.Locators
		// Plural arms are paired with locators by position, so an
		// override must keep their length. Singular arms take any count.
		if !dep.Fetch.IsSingle() && dep.Fetch.Len() != len(locators) {
			return errors.Newf(errors.ErrInvalidInput,
				"locator override for %q must keep %d locators to pair with its fetch methods",
				dep.Name, dep.Fetch.Len())
		}
		if !dep.Checksums.IsZero() && !dep.Checksums.IsSingle() && dep.Checksums.Len() != len(locators) {
			return errors.Newf(errors.ErrInvalidInput,
				"locator override for %q must keep %d locators to pair with its checksums",
				dep.Name, dep.Checksums.Len())
		}
		if !dep.PostFetch.IsZero() && !dep.PostFetch.IsSingle() && dep.PostFetch.Len() != len(locators) {
			return errors.Newf(errors.ErrInvalidInput,
				"locator override for %q must keep %d locators to pair with its post-fetch methods",
				dep.Name, dep.PostFetch.Len())
		}
	}

	if err := p.authorize(dep, localDir, locators, opts.Accept); err != nil {
		return err
	}

	var fetched []string
	for {
		paths, err := p.executor.Fetch(ctx, dep.Fetch, locators, localDir)
		if err != nil {
			return err
		}
		if opts.SkipChecksum {
			fetched = paths
			break
		}
		ok, err := p.verify(dep, paths)
		if err != nil {
			return err
		}
		if ok {
			fetched = paths
			break
		}
		// User chose to re-download; loop fetches again.
		p.log.Info().Str("dependency", dep.Name).Msg("Re-fetching after checksum retry")
	}

	return p.runPostFetch(ctx, dep, fetched)
}

func (p *Pipeline) verify(dep *types.Dependency, paths []string) (bool, error) {
	if dep.Checksums.IsZero() {
		return true, nil
	}
	// A singular checksum over several artifacts covers their combined
	// digest; otherwise each artifact is checked against its pair.
	if dep.Checksums.IsSingle() && len(paths) > 1 {
		return p.verifier.VerifyCombined(dep.Checksums.At(0), paths)
	}
	for i, path := range paths {
		ok, err := p.verifier.Verify(dep.Checksums.At(i), path)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// runPostFetch invokes the hooks with the working directory scoped to
// the artifact's directory. Hooks run sequentially: the working
// directory is a process-wide resource, so fanning them out would race.
func (p *Pipeline) runPostFetch(ctx context.Context, dep *types.Dependency, fetched []string) error {
	if dep.PostFetch.IsZero() {
		return nil
	}
	for i, artifact := range fetched {
		hook := dep.PostFetch.At(i)
		err := withWorkdir(filepath.Dir(artifact), func() error {
			return hook(ctx, artifact)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
