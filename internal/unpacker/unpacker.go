// Package unpacker implements the unpack half of the KXR driver: walking
// a kxrfmt.Container's entry tree and reconstructing the directory
// structure and file contents on disk, modeled on internal/install's
// unpackDir (squashfs -> filesystem) but working against kxrfmt's entry
// tree instead of a squashfs inode tree.
package unpacker

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"

	"github.com/pianosuki/kxrlib/internal/kxrfmt"
	"github.com/pianosuki/kxrlib/internal/kxrfmt/entry"
)

// File permissions restored on unpack, built from unix mode-bit constants
// the way squashfs's writer builds directory/file modes. A locked entry
// loses its owner write bit: the container is telling unpack this file
// isn't meant to be edited in place once extracted.
const (
	unpackedFileMode   = os.FileMode(unix.S_IRUSR | unix.S_IWUSR | unix.S_IRGRP | unix.S_IROTH)
	unpackedLockedMode = os.FileMode(unix.S_IRUSR | unix.S_IRGRP | unix.S_IROTH)
	unpackedDirMode    = os.FileMode(unix.S_IRUSR | unix.S_IWUSR | unix.S_IXUSR | unix.S_IRGRP | unix.S_IXGRP | unix.S_IROTH | unix.S_IXOTH)
)

// Unpack reconstructs c's ROOT entry tree under destDir, creating destDir
// if it does not already exist.
//
// onProgress, if given, is called after each file is written with the
// number of files completed so far and the total file count, for a
// caller driving a console.ProgressBar.
func Unpack(c *kxrfmt.Container, destDir string, onProgress ...func(done, total int)) error {
	if err := os.MkdirAll(destDir, unpackedDirMode); err != nil {
		return xerrors.Errorf("unpack %s: %v", destDir, err)
	}
	var progress func(done, total int)
	if len(onProgress) > 0 {
		progress = onProgress[0]
	}
	total := countFiles(c.Root())
	done := 0
	if err := unpackDir(c, destDir, c.Root(), &done, total, progress); err != nil {
		return xerrors.Errorf("unpack %s: %v", destDir, err)
	}
	return nil
}

// countFiles totals the FILE entries under n, recursing into
// directories.
func countFiles(n *entry.Node) int {
	total := 0
	for _, child := range n.Children() {
		if child.IsDir() {
			total += countFiles(child)
			continue
		}
		total++
	}
	return total
}

func unpackDir(c *kxrfmt.Container, destDir string, dir *entry.Node, done *int, total int, onProgress func(done, total int)) error {
	for _, child := range dir.Children() {
		destName := filepath.Join(destDir, child.Name())
		if child.IsDir() {
			if err := os.MkdirAll(destName, unpackedDirMode); err != nil {
				return err
			}
			if err := unpackDir(c, destName, child, done, total, onProgress); err != nil {
				return err
			}
			continue
		}
		if err := unpackFile(c, destName, child); err != nil {
			return xerrors.Errorf("%s: %v", destName, err)
		}
		*done++
		if onProgress != nil {
			onProgress(*done, total)
		}
	}
	return nil
}

func unpackFile(c *kxrfmt.Container, destName string, file *entry.Node) error {
	raw, err := c.ReadAt(file.Offset(), file.Size())
	if err != nil {
		return err
	}
	buf, err := kxrfmt.FromBytes(raw, -1)
	if err != nil {
		return err
	}
	if file.Zipped() {
		if err := buf.Decompress(); err != nil {
			return err
		}
	} else {
		buf.Crypt(c.Passhash() ^ file.Offset())
	}
	mode := unpackedFileMode
	if file.Locked() {
		mode = unpackedLockedMode
	}
	return os.WriteFile(destName, buf.Bytes(), mode)
}
