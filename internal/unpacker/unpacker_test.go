package unpacker

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/pianosuki/kxrlib/internal/kxrfmt"
	"github.com/pianosuki/kxrlib/internal/kxrfmt/entry"
)

func TestUnpackFileModeReflectsLocked(t *testing.T) {
	root := t.TempDir()
	destKxr := filepath.Join(root, "demo.kxr")

	c, err := kxrfmt.Create(destKxr, "demo.kxr")
	if err != nil {
		t.Fatal(err)
	}

	payload := []byte("payload bytes")
	offset := c.Datasize()
	buf, err := kxrfmt.FromBytes(payload, -1)
	if err != nil {
		t.Fatal(err)
	}
	buf.Compress(5)
	compressed := buf.Bytes()
	if err := c.WriteAt(offset, compressed); err != nil {
		t.Fatal(err)
	}
	c.GrowDatasize(uint32(len(compressed)))
	c.Root().AddChild(entry.NewFile("locked.txt", 0, 0, true, true, offset, uint32(len(compressed))))

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c2, err := kxrfmt.Open(destKxr, "demo.kxr", kxrfmt.ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	destDir := filepath.Join(root, "out")
	if err := Unpack(c2, destDir); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(filepath.Join(destDir, "locked.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm()&unix.S_IWUSR != 0 {
		t.Fatalf("locked file should lose owner write bit, got mode %v", fi.Mode())
	}
}
