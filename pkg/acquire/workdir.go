package acquire

import (
	"os"

	"github.com/arthur-debert/datadeps/pkg/errors"
)

// withWorkdir runs fn with the process working directory set to dir and
// restores the previous directory on every exit path, including panics.
// Post-fetch hooks rely on this: unpacking tools tend to resolve
// relative paths against the current directory.
func withWorkdir(dir string, fn func() error) error {
	prev, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot determine working directory")
	}
	if err := os.Chdir(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot enter %s", dir)
	}
	defer func() {
		_ = os.Chdir(prev)
	}()
	return fn()
}
