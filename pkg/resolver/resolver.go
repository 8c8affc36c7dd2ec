// Package resolver turns a data dependency name into a local path,
// triggering acquisition when no valid local copy exists. It is the
// entry point of datadeps.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/arthur-debert/datadeps/pkg/acquire"
	"github.com/arthur-debert/datadeps/pkg/config"
	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/logging"
	"github.com/arthur-debert/datadeps/pkg/paths"
	"github.com/arthur-debert/datadeps/pkg/registry"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/arthur-debert/datadeps/pkg/ui"
)

// Prober locates an existing local copy of a dependency. It returns the
// containing directory and whether one was found.
type Prober func(name string) (string, bool)

// Resolver resolves dependency names to local paths
type Resolver struct {
	registry registry.Registry[*types.Dependency]
	fs       types.FS
	dialog   ui.Dialog
	settings *config.Settings
	pipeline *acquire.Pipeline

	probe  Prober
	target func(name string) string

	// Concurrent resolutions of the same name share one acquisition.
	// The original interactive design said nothing about concurrent
	// callers; serializing per name is a deliberate strengthening.
	group singleflight.Group

	log zerolog.Logger
}

// New creates a Resolver with the stock load-path probe and target
// directory. Use WithProbe and WithTargetDir for custom storage layouts.
func New(reg registry.Registry[*types.Dependency], fsys types.FS, dialog ui.Dialog, settings *config.Settings) *Resolver {
	return &Resolver{
		registry: reg,
		fs:       fsys,
		dialog:   dialog,
		settings: settings,
		pipeline: acquire.NewPipeline(fsys, dialog, settings),
		probe: func(name string) (string, bool) {
			return paths.Probe(fsys, settings, name)
		},
		target: func(name string) string {
			return paths.TargetDir(settings, name)
		},
		log: logging.GetLogger("resolver"),
	}
}

// WithProbe replaces the local search-path probe
func (r *Resolver) WithProbe(probe Prober) *Resolver {
	r.probe = probe
	return r
}

// WithTargetDir replaces the download target directory policy
func (r *Resolver) WithTargetDir(target func(name string) string) *Resolver {
	r.target = target
	return r
}

// SplitName splits a resolution name into the dependency name (first
// path segment) and the inner path (the rest). An empty inner path
// resolves to the dependency directory itself.
func SplitName(name string) (string, string) {
	name = strings.ReplaceAll(name, `\`, "/")
	dep, inner, _ := strings.Cut(name, "/")
	return dep, strings.Trim(inner, "/")
}

// Resolve returns the canonical absolute path for name, downloading the
// dependency first if no local copy exists.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	return r.ResolveWith(ctx, name, acquire.Options{})
}

// ResolveWith is Resolve with explicit acquisition options, used by
// callers that pre-accept terms or skip checksum verification.
func (r *Resolver) ResolveWith(ctx context.Context, name string, opts acquire.Options) (string, error) {
	depName, inner := SplitName(name)
	dep, err := registry.LookupDependency(r.registry, depName)
	if err != nil {
		return "", err
	}

	// The outer loop restarts resolution from scratch after a purge:
	// with the directory gone, locate re-triggers acquisition.
	for {
		dir, err := r.locate(ctx, dep, opts)
		if err != nil {
			return "", err
		}

		target := dir
		if inner != "" {
			target = filepath.Join(dir, inner)
		}

		action, err := r.repair(dep, dir, target, inner == "")
		if err != nil {
			return "", err
		}
		switch action {
		case repairResolved:
			return r.fs.Realpath(target)
		case repairPurged:
			continue
		}
	}
}

func (r *Resolver) locate(ctx context.Context, dep *types.Dependency, opts acquire.Options) (string, error) {
	v, err, _ := r.group.Do(dep.Name, func() (interface{}, error) {
		if dir, ok := r.probe(dep.Name); ok {
			r.log.Debug().Str("dependency", dep.Name).Str("dir", dir).Msg("Found existing local copy")
			return dir, nil
		}
		dir := r.target(dep.Name)
		r.log.Info().Str("dependency", dep.Name).Str("dir", dir).Msg("No local copy, acquiring")
		if err := r.pipeline.Acquire(ctx, dep, dir, opts); err != nil {
			return nil, err
		}
		return dir, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type repairAction int

const (
	repairResolved repairAction = iota
	repairRechecked
	repairPurged
)

// repair validates that target is readable and, when it is not, drives
// the interactive recovery loop. The loop is unbounded: it ends only
// when the file becomes readable, the user purges the directory, or the
// user aborts. User control is the exit valve, not a retry budget.
func (r *Resolver) repair(dep *types.Dependency, dir, target string, wantDir bool) (repairAction, error) {
	for {
		readErr := r.readable(target, wantDir)
		if readErr == nil {
			return repairResolved, nil
		}

		r.log.Warn().Err(readErr).Str("path", target).Msg("Resolved file is not readable")
		result, err := r.dialog.Choose(
			fmt.Sprintf("Cannot read %s", target),
			[]ui.Option{
				{Key: "a", Label: "abort", Action: func() (interface{}, error) {
					return nil, errors.Wrapf(readErr, errors.ErrResolutionAborted,
						"resolution of %q aborted by user", dep.Name)
				}},
				{Key: "r", Label: "check again (fix the file yourself first)", Action: func() (interface{}, error) {
					return repairRechecked, nil
				}},
				{Key: "p", Label: "delete the local copy and download again", Action: func() (interface{}, error) {
					if err := r.fs.RemoveAll(dir); err != nil {
						return nil, errors.Wrapf(err, errors.ErrDirRemove, "failed to purge %s", dir)
					}
					r.log.Info().Str("dependency", dep.Name).Str("dir", dir).Msg("Purged local copy")
					return repairPurged, nil
				}},
			})
		if err != nil {
			return 0, err
		}
		switch result.(repairAction) {
		case repairRechecked:
			continue
		case repairPurged:
			return repairPurged, nil
		}
	}
}

// readable checks that target exists and can actually be read
func (r *Resolver) readable(target string, wantDir bool) error {
	info, err := r.fs.Stat(target)
	if err != nil {
		return err
	}
	if wantDir {
		if !info.IsDir() {
			return errors.Newf(errors.ErrFileAccess, "%s is not a directory", target)
		}
		return nil
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrFileAccess, "%s is a directory, not a file", target)
	}
	f, err := r.fs.Open(target)
	if err != nil {
		return err
	}
	return f.Close()
}
