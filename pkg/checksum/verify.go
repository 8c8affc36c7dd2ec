package checksum

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/logging"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/arthur-debert/datadeps/pkg/ui"
)

// Verifier validates fetched content against an expected hash, with
// user-directed recovery on mismatch.
type Verifier struct {
	fs     types.FS
	dialog ui.Dialog
	log    zerolog.Logger
}

// NewVerifier creates a Verifier
func NewVerifier(fsys types.FS, dialog ui.Dialog) *Verifier {
	return &Verifier{
		fs:     fsys,
		dialog: dialog,
		log:    logging.GetLogger("checksum"),
	}
}

// Verify compares one fetched file against expected. An unset expected
// checksum means no verification is configured and passes without any
// interaction. On mismatch the user picks: abort (ErrChecksumAborted),
// retry (false, caller re-fetches), or ignore (true, mismatch accepted).
func (v *Verifier) Verify(expected types.Checksum, path string) (bool, error) {
	if expected.IsZero() {
		return true, nil
	}
	actual, err := File(v.fs, expected.Algo, path)
	if err != nil {
		return false, err
	}
	return v.compare(expected, actual, path)
}

// VerifyCombined compares the combined digest of several files against
// a singular expected checksum.
func (v *Verifier) VerifyCombined(expected types.Checksum, paths []string) (bool, error) {
	if expected.IsZero() {
		return true, nil
	}
	actual, err := Combined(v.fs, expected.Algo, paths)
	if err != nil {
		return false, err
	}
	return v.compare(expected, actual, strings.Join(paths, ", "))
}

func (v *Verifier) compare(expected types.Checksum, actual, subject string) (bool, error) {
	if strings.EqualFold(expected.Value, actual) {
		v.log.Debug().Str("path", subject).Str("algo", expected.Algo).Msg("Checksum verified")
		return true, nil
	}

	v.log.Warn().
		Str("path", subject).
		Str("algo", expected.Algo).
		Str("expected", expected.Value).
		Str("actual", actual).
		Msg("Checksum validation failed")

	result, err := v.dialog.Choose(
		fmt.Sprintf("Checksum did not match for %s", subject),
		[]ui.Option{
			{Key: "a", Label: "abort", Action: func() (interface{}, error) {
				return nil, errors.Newf(errors.ErrChecksumAborted,
					"checksum mismatch for %s, aborted by user", subject)
			}},
			{Key: "r", Label: "download again", Action: func() (interface{}, error) {
				return false, nil
			}},
			{Key: "i", Label: "ignore and use the file anyway", Action: func() (interface{}, error) {
				return true, nil
			}},
		})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
