// Package assets stores uploaded product images as files under a dedicated
// directory, addressed by sanitized filename.
package assets

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AllowedFile reports whether the filename carries an extension from the
// image allow-list, case-insensitive.
func AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}

// SanitizeFilename reduces an untrusted filename to a safe basename:
// directory components (both separators) are stripped and anything outside
// [A-Za-z0-9._-] is replaced. Returns "" when nothing safe remains.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

// SaveResult is the explicit outcome of an asset save attempt. A rejected
// upload never touches the filesystem.
type SaveResult struct {
	Accepted bool
	Filename string // sanitized filename, set when accepted
	Reason   string // set when rejected
}

type Store struct {
	dir string
}

// NewStore creates the upload directory if absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk location for a stored filename.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Save validates the upload against the extension allow-list, sanitizes the
// filename and writes the content. The error return covers I/O failures
// only; policy rejections come back in the result.
func (s *Store) Save(filename string, r io.Reader) (SaveResult, error) {
	if strings.TrimSpace(filename) == "" {
		return SaveResult{Reason: "missing filename"}, nil
	}
	if !AllowedFile(filename) {
		return SaveResult{Reason: "file extension not allowed"}, nil
	}
	clean := SanitizeFilename(filename)
	if clean == "" {
		return SaveResult{Reason: "filename empty after sanitizing"}, nil
	}

	dst, err := os.Create(filepath.Join(s.dir, clean))
	if err != nil {
		return SaveResult{}, errors.Wrapf(err, "create asset %s", clean)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return SaveResult{}, errors.Wrapf(err, "write asset %s", clean)
	}
	return SaveResult{Accepted: true, Filename: clean}, nil
}

// Remove deletes a stored asset. A missing file is not an error.
func (s *Store) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(s.Path(filename))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove asset %s", filename)
	}
	return nil
}

// Exists reports whether an asset file is present.
func (s *Store) Exists(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(s.Path(filename))
	return err == nil
}
