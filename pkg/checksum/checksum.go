// Package checksum verifies fetched artifacts against expected hashes.
// The hash algorithm is not fixed: algorithms are registered by name and
// looked up from the Checksum's Algo field, so a descriptor can demand
// any registered construction.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"strings"
	"sync"

	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/types"
)

var (
	algoMu     sync.RWMutex
	algorithms = map[string]func() hash.Hash{
		"md5":    md5.New,
		"sha1":   sha1.New,
		"sha256": sha256.New,
		"sha512": sha512.New,
	}
)

// RegisterAlgorithm makes a hash constructor available under name.
// The stock set covers the crypto package's common digests.
func RegisterAlgorithm(name string, constructor func() hash.Hash) {
	algoMu.Lock()
	defer algoMu.Unlock()
	algorithms[strings.ToLower(name)] = constructor
}

func newHasher(algo string) (hash.Hash, error) {
	algoMu.RLock()
	constructor, ok := algorithms[strings.ToLower(algo)]
	algoMu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrChecksumUnknown, "no registered hash algorithm %q", algo)
	}
	return constructor(), nil
}

// File computes the hex digest of one file
func File(fsys types.FS, algo, path string) (string, error) {
	hasher, err := newHasher(algo)
	if err != nil {
		return "", err
	}
	if err := hashInto(fsys, hasher, path); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Combined computes the digest covering several files: each file is
// hashed on its own and the per-file digests are hashed together in
// order. This is what a singular checksum on a multi-locator dependency
// is compared against.
func Combined(fsys types.FS, algo string, paths []string) (string, error) {
	outer, err := newHasher(algo)
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		inner, err := newHasher(algo)
		if err != nil {
			return "", err
		}
		if err := hashInto(fsys, inner, path); err != nil {
			return "", err
		}
		outer.Write(inner.Sum(nil))
	}
	return hex.EncodeToString(outer.Sum(nil)), nil
}

func hashInto(fsys types.FS, hasher hash.Hash, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s for hashing", path)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(hasher, f); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed hashing %s", path)
	}
	return nil
}
