// Package conflicts finds the conflict copies that Syncthing creates when a file was modified on
// two devices at the same time, and pairs them with their originals.
//
// Syncthing names a conflict copy of "notes.md" like
// "notes.sync-conflict-20240102-101010-ABCDEF1.md".
package conflicts

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

const marker = ".sync-conflict-"

// ErrNotConflict is returned by OriginalPath for files that are not conflict copies.
var ErrNotConflict = errors.New("not a sync conflict file")

// Conflict is a conflict copy and the file it belongs to. Paths are slash separated and relative to
// the directory that was searched.
type Conflict struct {
	Original string
	Copy     string
	Modified time.Time // Modification time of the copy
}

// OriginalPath returns the path of the file that the conflict copy name belongs to.
func OriginalPath(name string) (string, error) {
	dir, base := path.Split(name)
	stem, rest, ok := strings.Cut(base, marker)
	if !ok || stem == "" {
		return "", ErrNotConflict
	}
	ext := ""
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		ext = rest[i:]
	}
	return dir + stem + ext, nil
}

// Find returns all conflict copies in fsys, sorted by path. Hidden directories, like Syncthing's
// .stversions directory, are skipped.
func Find(fsys fs.FS) ([]Conflict, error) {
	var ret []Conflict
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		orig, err := OriginalPath(p)
		if errors.Is(err, ErrNotConflict) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		ret = append(ret, Conflict{Original: orig, Copy: p, Modified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("finding conflicts: %v", err)
	}
	slices.SortFunc(ret, func(a, b Conflict) int {
		return cmp.Compare(a.Copy, b.Copy)
	})
	return ret, nil
}

// ReadOptions controls how the texts of a conflict are read.
type ReadOptions struct {
	// IgnoreCollapsed removes "collapsed:: true" block properties. Logseq stores whether a block
	// is folded in the page file, which isn't an interesting difference.
	IgnoreCollapsed bool
}

// Read returns the texts of the original and the copy. A missing original is read as an empty
// text.
func (c Conflict) Read(fsys fs.FS, opts ReadOptions) (original, conflicting string, err error) {
	b, err := fs.ReadFile(fsys, c.Original)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		b = nil
	case err != nil:
		return "", "", fmt.Errorf("reading original: %v", err)
	}
	original = string(b)

	b, err = fs.ReadFile(fsys, c.Copy)
	if err != nil {
		return "", "", fmt.Errorf("reading conflict copy: %v", err)
	}
	conflicting = string(b)

	if opts.IgnoreCollapsed {
		original = StripCollapsed(original)
		conflicting = StripCollapsed(conflicting)
	}
	return original, conflicting, nil
}
