// Package httpfetch provides the stock HTTP transport. The resolution
// core is transport-agnostic; this is the fetch method manifests get by
// default when a dependency only declares URLs.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/logging"
	"github.com/arthur-debert/datadeps/pkg/types"
)

// New creates a fetch method backed by the given HTTP client.
// A nil client uses a default with a generous overall timeout.
func New(client *http.Client) types.FetchMethod {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	log := logging.GetLogger("httpfetch")

	return func(ctx context.Context, locator, destination string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed, "bad locator %s", locator)
		}

		resp, err := client.Do(req)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed, "request to %s failed", locator)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return errors.Newf(errors.ErrFetchFailed, "bad status %s fetching %s", resp.Status, locator)
		}

		out, err := os.Create(destination)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed, "cannot create %s", destination)
		}
		defer func() { _ = out.Close() }()

		bar := newBar(resp.ContentLength, filepath.Base(destination))
		if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed, "download of %s interrupted", locator)
		}
		_ = bar.Finish()

		log.Debug().Str("locator", locator).Str("dest", destination).
			Int64("bytes", resp.ContentLength).Msg("Download complete")
		return nil
	}
}

// Default is the stock transport on a default client
func Default() types.FetchMethod {
	return New(nil)
}

func newBar(total int64, name string) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return progressbar.DefaultBytesSilent(total, name)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(fmt.Sprintf("downloading %s", name)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
