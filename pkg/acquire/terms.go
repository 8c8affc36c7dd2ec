package acquire

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/arthur-debert/datadeps/pkg/ui"
)

// authorize decides whether the download may proceed. Priority order:
// an explicit override from the caller, the always-accept setting, then
// an interactive prompt. A denial is an error, never a silent skip.
func (p *Pipeline) authorize(dep *types.Dependency, localDir string, locators []string, accept *bool) error {
	if accept != nil {
		if *accept {
			p.log.Debug().Str("dependency", dep.Name).Msg("Terms accepted by caller override")
			return nil
		}
		return errors.Newf(errors.ErrTermsDenied,
			"download of %q was refused by caller override", dep.Name)
	}

	if p.settings.AlwaysAccept {
		p.log.Debug().Str("dependency", dep.Name).Msg("Terms accepted by always-accept setting")
		return nil
	}

	p.dialog.Say(fmt.Sprintf(
		"The data dependency %q is not present locally and needs to be downloaded.", dep.Name))
	if dep.Message != "" {
		p.dialog.Say(ui.RenderMarkdown(dep.Message))
	}

	ok, err := p.dialog.Confirm(fmt.Sprintf(
		"Download from %s to %s?", strings.Join(locators, ", "), localDir))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrTermsDenied, "terms for %q were declined", dep.Name)
	}
	return nil
}
