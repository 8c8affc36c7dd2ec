package types

import (
	"context"
	"strings"

	"github.com/arthur-debert/datadeps/pkg/errors"
)

// FetchMethod is a transport operation that places the resource at
// remote locator into destination path. The file at destination is the
// only expected side effect.
type FetchMethod func(ctx context.Context, locator, destination string) error

// PostFetchMethod is run once on a freshly fetched artifact, for example
// to unpack an archive. It is invoked with the process working directory
// set to the artifact's containing directory, since unpacking tools tend
// to operate on relative paths.
type PostFetchMethod func(ctx context.Context, fetched string) error

// Checksum is an expected content hash for a fetched artifact.
// Algo names a hash constructor registered with pkg/checksum.
type Checksum struct {
	Algo  string
	Value string
}

// IsZero reports whether no checksum was configured
func (c Checksum) IsZero() bool {
	return c.Algo == "" && c.Value == ""
}

// ParseChecksum parses the "algo:hexvalue" form used by manifests.
// A bare hex value defaults to sha256.
func ParseChecksum(s string) (Checksum, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Checksum{}, nil
	}
	if algo, value, ok := strings.Cut(s, ":"); ok {
		if algo == "" || value == "" {
			return Checksum{}, errors.Newf(errors.ErrDependencyDecl, "malformed checksum %q, want algo:hexvalue", s)
		}
		return Checksum{Algo: algo, Value: value}, nil
	}
	return Checksum{Algo: "sha256", Value: s}, nil
}

// String returns the "algo:hexvalue" form
func (c Checksum) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Algo + ":" + c.Value
}

// Dependency describes a named external dataset: where it lives remotely,
// how to fetch it, how to verify it, and what to run on it afterwards.
// A Dependency is immutable once registered.
type Dependency struct {
	// Name identifies the dependency within a registry. It must not
	// contain path separators; those split off the inner path during
	// resolution.
	Name string

	// Locators are the remote addresses of the dependency's artifacts,
	// in order. One fetched file is produced per locator.
	Locators []string

	// Fetch transports a locator to a local file. Singular values are
	// reused for every locator.
	Fetch OneOrMany[FetchMethod]

	// Checksums are the expected hashes, paired with Locators by
	// position when plural. A singular checksum with multiple locators
	// covers the combined digest of all artifacts. Unset means no
	// verification is configured.
	Checksums OneOrMany[Checksum]

	// PostFetch hooks run on the fetched artifacts, paired by position
	// when plural. Optional.
	PostFetch OneOrMany[PostFetchMethod]

	// Message is free text shown to the user during the terms prompt,
	// typically licensing or citation information. Rendered as markdown.
	Message string
}

// Validate checks the descriptor's internal consistency. Registration
// rejects invalid descriptors so that use sites never have to.
func (d *Dependency) Validate() error {
	if d.Name == "" {
		return errors.New(errors.ErrDependencyDecl, "dependency name cannot be empty")
	}
	if strings.ContainsAny(d.Name, `/\`) {
		return errors.Newf(errors.ErrDependencyDecl, "dependency name %q must not contain path separators", d.Name)
	}
	if len(d.Locators) == 0 {
		return errors.Newf(errors.ErrDependencyDecl, "dependency %q has no remote locators", d.Name)
	}
	if d.Fetch.IsZero() {
		return errors.Newf(errors.ErrDependencyDecl, "dependency %q has no fetch method", d.Name)
	}
	if err := d.checkArm("fetch methods", d.Fetch.IsSingle(), d.Fetch.Len()); err != nil {
		return err
	}
	if !d.Checksums.IsZero() {
		if err := d.checkArm("checksums", d.Checksums.IsSingle(), d.Checksums.Len()); err != nil {
			return err
		}
	}
	if !d.PostFetch.IsZero() {
		if err := d.checkArm("post-fetch methods", d.PostFetch.IsSingle(), d.PostFetch.Len()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dependency) checkArm(what string, single bool, n int) error {
	if single || n == len(d.Locators) {
		return nil
	}
	return errors.Newf(errors.ErrDependencyDecl,
		"dependency %q has %d %s for %d locators", d.Name, n, what, len(d.Locators))
}
