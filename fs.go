package remake

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// A FileSystem answers the questions the build engine asks about the
// working directory.
type FileSystem interface {
	// Entries lists the names in the working directory in directory order.
	Entries() ([]string, error)
	// ModTime returns the modification time of name. The second result is
	// false when name does not exist.
	ModTime(name string) (time.Time, bool)
}

// DirFS is a FileSystem rooted at Dir on the host.
type DirFS struct {
	Dir string
}

func (d DirFS) path(name string) string {
	if filepath.IsAbs(name) || d.Dir == "" {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// Entries lists the working directory, leaving out the remake cache.
func (d DirFS) Entries() ([]string, error) {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		switch e.Name() {
		case CacheFile, CacheFile + ".tmp":
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ModTime stats name relative to Dir.
func (d DirFS) ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(d.path(name))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// exists reports whether the named file or directory exists.
func exists(name string) bool {
	_, err := os.Stat(name)
	return !errors.Is(err, fs.ErrNotExist)
}
