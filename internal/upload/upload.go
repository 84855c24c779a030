// Package upload stores uploaded files in a size-capped directory.
package upload

import (
	"io"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/c2h5oh/datasize"
	plerrors "github.com/paveg/plotdeck/internal/errors"
	plio "github.com/paveg/plotdeck/internal/io"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxSize is the upload cap used when none is configured
const DefaultMaxSize = 16 * datasize.MB

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// File describes a stored upload
type File struct {
	Name string // sanitized base name
	Path string // path inside the store's filesystem
	Size int64
}

// Store keeps uploads under one directory of an afero filesystem. Files
// with the same sanitized name overwrite each other and nothing is evicted.
type Store struct {
	fs      afero.Fs
	dir     string
	maxSize datasize.ByteSize
}

// NewStore creates the upload directory if needed
func NewStore(fs afero.Fs, dir string, maxSize datasize.ByteSize) (*Store, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", dir)
	}
	return &Store{fs: fs, dir: dir, maxSize: maxSize}, nil
}

// MaxSize returns the per-file cap
func (s *Store) MaxSize() datasize.ByteSize {
	return s.maxSize
}

// Save sanitizes filename, checks its extension and copies r into the
// store. Content over the cap is rejected and the partial file removed.
func (s *Store) Save(filename string, r io.Reader) (*File, error) {
	if filename == "" {
		return nil, plerrors.NewMissingFileError("No selected file")
	}
	if !plio.Allowed(filename) {
		return nil, plerrors.NewInvalidFileTypeError(filename)
	}

	name := SecureFilename(filename)
	if !plio.Allowed(name) {
		return nil, plerrors.NewInvalidFileTypeError(filename)
	}

	p := path.Join(s.dir, name)
	f, err := s.fs.Create(p)
	if err != nil {
		return nil, plerrors.NewInternalError("upload", err)
	}

	limit := int64(s.maxSize.Bytes())
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = s.fs.Remove(p)
		return nil, plerrors.NewInternalError("upload", err)
	case n > limit:
		_ = s.fs.Remove(p)
		return nil, plerrors.NewFileTooLargeError(s.maxSize.HumanReadable())
	case closeErr != nil:
		return nil, plerrors.NewInternalError("upload", closeErr)
	}

	return &File{Name: name, Path: p, Size: n}, nil
}

// Open opens a stored file for decoding
func (s *Store) Open(f *File) (afero.File, error) {
	file, err := s.fs.Open(f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", f.Name)
	}
	return file, nil
}

// SecureFilename reduces name to a flat ASCII file name: accents are
// decomposed and dropped, path separators and whitespace become
// underscores, anything outside [A-Za-z0-9_.-] is removed and leading or
// trailing dots and underscores are stripped.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	return strings.Trim(unsafeChars.ReplaceAllString(joined, ""), "._")
}
