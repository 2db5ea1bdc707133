package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/xerrors"

	"github.com/pianosuki/kxrlib/internal/console"
	"github.com/pianosuki/kxrlib/internal/kxrlog"
	"github.com/pianosuki/kxrlib/internal/packer"
	"github.com/pianosuki/kxrlib/internal/resourcetree"
)

const packHelp = `kxr pack <source_dir> [-o|--output <dest.kxr>]

Pack a directory tree into a .kxr container.

Example:
  % kxr pack demo -o demo.kxr
`

func pack(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("pack", flag.ExitOnError)
	var output = fset.String("o", "", "output .kxr path (default: <parent-of-source_dir>/<source_dir_name>.kxr)")
	fset.StringVar(output, "output", "", "alias for -o")
	fset.Usage = usage(fset, packHelp)
	fset.Parse(args)

	if fset.NArg() != 1 {
		return xerrors.Errorf("syntax: pack <source_dir> [-o <dest.kxr>]")
	}
	src := fset.Arg(0)

	info, err := os.Stat(src)
	if err != nil {
		return xerrors.Errorf("pack: %v", err)
	}
	if !info.IsDir() {
		return xerrors.Errorf("pack: %s is not a directory", src)
	}

	dest := *output
	if dest == "" {
		abs, err := filepath.Abs(src)
		if err != nil {
			return xerrors.Errorf("pack: %v", err)
		}
		dest = filepath.Join(filepath.Dir(abs), filepath.Base(abs)+".kxr")
	}

	if _, err := os.Stat(dest); err == nil {
		ok, err := console.Confirm(os.Stdin, os.Stdout, dest+" already exists. Overwrite?", false)
		if err != nil {
			return xerrors.Errorf("pack: %v", err)
		}
		if !ok {
			return nil
		}
		if err := os.Remove(dest); err != nil {
			return xerrors.Errorf("pack: removing %s: %v", dest, err)
		}
	}

	tree, err := resourcetree.Walk(src)
	if err != nil {
		return xerrors.Errorf("pack: %v", err)
	}

	logger, err := kxrlog.New("pack", os.Stderr)
	if err != nil {
		return xerrors.Errorf("pack: %v", err)
	}

	terminal := console.IsTerminal(os.Stdout)
	begin, end := console.BeginEndBlock("pack", 60)
	if terminal {
		fmt.Fprintln(os.Stdout, begin)
	}
	logger.Printf("packing %s into %s", src, dest)
	start := time.Now()

	onProgress := func(done, total int) {
		if terminal {
			fmt.Fprintf(os.Stdout, "\r%s %d/%d", console.ProgressBar(float64(done)/float64(total), 40), done, total)
		}
	}
	if err := packer.Pack(dest, filepath.Base(dest), tree, onProgress); err != nil {
		if terminal {
			fmt.Fprintln(os.Stdout)
		}
		logger.Printf("pack failed: %v", err)
		return xerrors.Errorf("pack: %v", err)
	}
	if terminal {
		fmt.Fprintln(os.Stdout)
	}

	elapsed := time.Since(start).Seconds()
	files, zipped, totalBytes := treeStats(tree)
	logger.Printf("packed %d files (%d bytes) in %s", files, totalBytes, console.FormatTime(elapsed))

	if terminal {
		block, err := console.StatisticsBlock("PACK SUMMARY",
			[]string{"files", "compressed", "obfuscated", "elapsed"},
			[]string{fmt.Sprint(files), fmt.Sprint(zipped), fmt.Sprint(files - zipped), console.FormatTime(elapsed)},
		)
		if err == nil {
			fmt.Fprintln(os.Stdout, block)
		}
		fmt.Fprintln(os.Stdout, end)
	}
	return nil
}

// treeStats walks a resourcetree.Dir and totals file count, how many of
// those files are compress-eligible, and their combined on-disk size
// before packing — purely for the pack summary banner and log line.
func treeStats(dir *resourcetree.Dir) (files, zipped, totalBytes int) {
	for _, child := range dir.Children {
		if child.IsDir() {
			sf, sz, sb := treeStats(child.Dir)
			files += sf
			zipped += sz
			totalBytes += sb
			continue
		}
		files++
		if child.File.Compress {
			zipped++
		}
		if fi, err := os.Stat(child.File.Path); err == nil {
			totalBytes += int(fi.Size())
		}
	}
	return files, zipped, totalBytes
}
