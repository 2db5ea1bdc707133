package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/cavaliercoder/go-cpio"
	"github.com/klauspost/pgzip"
	"golang.org/x/xerrors"

	"github.com/pianosuki/kxrlib/internal/kxrfmt"
	"github.com/pianosuki/kxrlib/internal/kxrfmt/entry"
)

const exportCpioHelp = `kxr export-cpio <source.kxr> [-o|--output <dest.cpio>]

Export a .kxr container's files as a cpio archive (newc format), with
obfuscation/compression reversed the same way unpack reverses them. This
is a supplemental convenience for feeding a container's contents into
tools that already speak cpio (initramfs builders, package managers);
it is not part of the container format itself.

Example:
  % kxr export-cpio demo.kxr -o demo.cpio
`

func exportCpio(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("export-cpio", flag.ExitOnError)
	var output = fset.String("o", "", "output .cpio path (default: <source.kxr>.cpio[.gz])")
	fset.StringVar(output, "output", "", "alias for -o")
	gz := fset.Bool("gz", false, "gzip-compress the cpio archive (parallel, via pgzip)")
	fset.Usage = usage(fset, exportCpioHelp)
	fset.Parse(args)

	if fset.NArg() != 1 {
		return xerrors.Errorf("syntax: export-cpio <source.kxr> [-o <dest.cpio>] [-gz]")
	}
	src := fset.Arg(0)
	dest := *output
	if dest == "" {
		dest = src + ".cpio"
		if *gz {
			dest += ".gz"
		}
	}

	c, err := kxrfmt.Open(src, src, kxrfmt.ReadOnly)
	if err != nil {
		return xerrors.Errorf("export-cpio: %v", err)
	}
	defer c.Close()

	out, err := os.Create(dest)
	if err != nil {
		return xerrors.Errorf("export-cpio: %v", err)
	}
	defer out.Close()

	var archiveWriter io.Writer = out
	var zw *pgzip.Writer
	if *gz {
		zw = pgzip.NewWriter(out)
		archiveWriter = zw
	}

	w := cpio.NewWriter(archiveWriter)
	if err := writeCpioDir(w, "", c, c.Root()); err != nil {
		w.Close()
		return xerrors.Errorf("export-cpio: %v", err)
	}
	if err := w.Close(); err != nil {
		return xerrors.Errorf("export-cpio: %v", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return xerrors.Errorf("export-cpio: %v", err)
		}
	}
	return nil
}

func writeCpioDir(w *cpio.Writer, prefix string, c *kxrfmt.Container, dir *entry.Node) error {
	for _, child := range dir.Children() {
		name := path.Join(prefix, child.Name())
		if child.IsDir() {
			if err := w.WriteHeader(&cpio.Header{Name: name, Mode: cpio.ModeDir | 0o755}); err != nil {
				return err
			}
			if err := writeCpioDir(w, name, c, child); err != nil {
				return err
			}
			continue
		}
		raw, err := c.ReadAt(child.Offset(), child.Size())
		if err != nil {
			return err
		}
		buf, err := kxrfmt.FromBytes(raw, -1)
		if err != nil {
			return err
		}
		if child.Zipped() {
			if err := buf.Decompress(); err != nil {
				return err
			}
		} else {
			buf.Crypt(c.Passhash() ^ child.Offset())
		}
		data := buf.Bytes()
		if err := w.WriteHeader(&cpio.Header{
			Name: name,
			Mode: cpio.ModeRegular | 0o644,
			Size: int64(len(data)),
		}); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
