// Package resourcetree builds an in-memory mirror of an on-disk source
// directory, in the shape the packer needs: files annotated with their
// compress-flag policy, subdirectories walked in directory order.
//
// This mirrors squashfs's Directory (internal/squashfs/writer.go), which
// likewise builds an in-memory tree of files/subdirectories before a
// separate pass serializes it; here the "serializer" is the packer and
// the tree is reduced to exactly what Packer needs (name, bytes-on-disk
// path, compress flag) rather than file mode/ownership bits, which KXR
// does not model.
package resourcetree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pianosuki/kxrlib/internal/kxrfmt"
)

// File is a leaf resource: a regular file on disk.
type File struct {
	Name     string
	Path     string // path on disk, joined onto the root passed to Walk
	Compress bool
}

// Child is one entry of a Dir's children: exactly one of Dir or File is
// set. Keeping files and subdirectories in a single ordered slice (rather
// than splitting them into two) matches the original resource tree, whose
// children live in one ordered mapping — entry-tree child order and
// payload-offset assignment both follow that single combined listing, not
// a files-then-dirs grouping.
type Child struct {
	Dir  *Dir
	File *File
}

// Name returns the underlying Dir's or File's name.
func (c *Child) Name() string {
	if c.Dir != nil {
		return c.Dir.Name
	}
	return c.File.Name
}

// IsDir reports whether this child is a subdirectory.
func (c *Child) IsDir() bool { return c.Dir != nil }

// Dir is a directory resource: an ordered list of child files/dirs.
type Dir struct {
	Name     string
	Path     string
	Children []*Child
}

// Walk builds a Dir mirroring root. Entries within each directory are
// sorted by name so that pack order is deterministic and reproducible
// across runs on the same source tree, matching the teacher's sorted
// Readdir-based directory walks.
func Walk(root string) (*Dir, error) {
	return walkDir(root, filepath.Base(root))
}

func walkDir(path, name string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	d := &Dir{Name: name, Path: path}
	for _, e := range entries {
		childPath := filepath.Join(path, e.Name())
		if e.IsDir() {
			child, err := walkDir(childPath, e.Name())
			if err != nil {
				return nil, err
			}
			d.Children = append(d.Children, &Child{Dir: child})
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		d.Children = append(d.Children, &Child{File: &File{
			Name:     e.Name(),
			Path:     childPath,
			Compress: kxrfmt.NeedsCompress(ext),
		}})
	}
	return d, nil
}
