// Package postfetch provides stock post-fetch hooks. Unpack extracts a
// fetched archive next to itself, leaving the archive in place; it is
// what manifests get when a dependency sets unpack = true.
package postfetch

import (
	"archive/tar"
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/logging"
)

// Unpack extracts the archive at fetched into its containing directory.
// Supported formats: .tar.gz/.tgz, .tar.zst, .tar.xz/.txz, .tar, .zip,
// and single-file .gz/.xz/.zst.
func Unpack(ctx context.Context, fetched string) error {
	log := logging.GetLogger("postfetch")
	dir := filepath.Dir(fetched)
	lower := strings.ToLower(fetched)

	log.Debug().Str("archive", fetched).Msg("Unpacking")

	switch {
	case strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		return withArchive(fetched, func(f io.Reader) error {
			gz, err := gzip.NewReader(f)
			if err != nil {
				return wrapUnpack(err, fetched)
			}
			defer func() { _ = gz.Close() }()
			return untar(ctx, gz, dir)
		})

	case strings.HasSuffix(lower, ".tar.zst"):
		return withArchive(fetched, func(f io.Reader) error {
			zr, err := zstd.NewReader(f)
			if err != nil {
				return wrapUnpack(err, fetched)
			}
			defer zr.Close()
			return untar(ctx, zr, dir)
		})

	case strings.HasSuffix(lower, ".tar.xz") || strings.HasSuffix(lower, ".txz"):
		return withArchive(fetched, func(f io.Reader) error {
			xr, err := xz.NewReader(f)
			if err != nil {
				return wrapUnpack(err, fetched)
			}
			return untar(ctx, xr, dir)
		})

	case strings.HasSuffix(lower, ".tar"):
		return withArchive(fetched, func(f io.Reader) error {
			return untar(ctx, f, dir)
		})

	case strings.HasSuffix(lower, ".zip"):
		return unzip(ctx, fetched, dir)

	case strings.HasSuffix(lower, ".gz"):
		return withArchive(fetched, func(f io.Reader) error {
			gz, err := gzip.NewReader(f)
			if err != nil {
				return wrapUnpack(err, fetched)
			}
			defer func() { _ = gz.Close() }()
			return writeDecompressed(gz, strings.TrimSuffix(fetched, filepath.Ext(fetched)))
		})

	case strings.HasSuffix(lower, ".xz"):
		return withArchive(fetched, func(f io.Reader) error {
			xr, err := xz.NewReader(f)
			if err != nil {
				return wrapUnpack(err, fetched)
			}
			return writeDecompressed(xr, strings.TrimSuffix(fetched, filepath.Ext(fetched)))
		})

	case strings.HasSuffix(lower, ".zst"):
		return withArchive(fetched, func(f io.Reader) error {
			zr, err := zstd.NewReader(f)
			if err != nil {
				return wrapUnpack(err, fetched)
			}
			defer zr.Close()
			return writeDecompressed(zr, strings.TrimSuffix(fetched, filepath.Ext(fetched)))
		})
	}

	return errors.Newf(errors.ErrPostFetchFailed, "don't know how to unpack %s", fetched)
}

func withArchive(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return wrapUnpack(err, path)
	}
	defer func() { _ = f.Close() }()
	return fn(f)
}

func wrapUnpack(err error, path string) error {
	return errors.Wrapf(err, errors.ErrPostFetchFailed, "failed to unpack %s", path)
}

func untar(ctx context.Context, r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return wrapUnpack(err, dir)
		}

		target, err := securePath(dir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return wrapUnpack(err, target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return wrapUnpack(err, target)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode&0777))
			if err != nil {
				return wrapUnpack(err, target)
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return wrapUnpack(err, target)
			}
			if err := out.Close(); err != nil {
				return wrapUnpack(err, target)
			}
		}
	}
}

func unzip(ctx context.Context, path, dir string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return wrapUnpack(err, path)
	}
	defer func() { _ = zr.Close() }()

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := securePath(dir, entry.Name)
		if err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return wrapUnpack(err, target)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return wrapUnpack(err, target)
		}
		in, err := entry.Open()
		if err != nil {
			return wrapUnpack(err, entry.Name)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, entry.Mode()&0777)
		if err != nil {
			_ = in.Close()
			return wrapUnpack(err, target)
		}
		_, copyErr := io.Copy(out, in)
		_ = in.Close()
		closeErr := out.Close()
		if copyErr != nil {
			return wrapUnpack(copyErr, target)
		}
		if closeErr != nil {
			return wrapUnpack(closeErr, target)
		}
	}
	return nil
}

func writeDecompressed(r io.Reader, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return wrapUnpack(err, target)
	}
	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return wrapUnpack(copyErr, target)
	}
	if closeErr != nil {
		return wrapUnpack(closeErr, target)
	}
	return nil
}

// securePath joins name under dir and rejects entries escaping it.
// A root entry ("." or "./", as written by tar -C dir .) joins to the
// extraction directory itself and is allowed.
func securePath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target == filepath.Clean(dir) {
		return target, nil
	}
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", errors.Newf(errors.ErrPostFetchFailed, "archive entry %q escapes extraction directory", name)
	}
	return target, nil
}
