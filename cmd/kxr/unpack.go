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
	"github.com/pianosuki/kxrlib/internal/kxrfmt"
	"github.com/pianosuki/kxrlib/internal/kxrfmt/entry"
	"github.com/pianosuki/kxrlib/internal/kxrlog"
	"github.com/pianosuki/kxrlib/internal/unpacker"
)

const unpackHelp = `kxr unpack <source.kxr> [-o|--output <dest_dir>]

Unpack a .kxr container into a directory.

Example:
  % kxr unpack demo.kxr -o demo
`

func unpack(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("unpack", flag.ExitOnError)
	var output = fset.String("o", "", "output directory (default: <parent-of-source.kxr>/<matched_name>)")
	fset.StringVar(output, "output", "", "alias for -o")
	fset.Usage = usage(fset, unpackHelp)
	fset.Parse(args)

	if fset.NArg() != 1 {
		return xerrors.Errorf("syntax: unpack <source.kxr> [-o <dest_dir>]")
	}
	src := fset.Arg(0)
	base := filepath.Base(src)

	dest := *output
	if dest == "" {
		matched, ok := kxrfmt.MatchedName(base)
		if !ok {
			return xerrors.Errorf("unpack: %s does not match the .kxr filename pattern", base)
		}
		abs, err := filepath.Abs(src)
		if err != nil {
			return xerrors.Errorf("unpack: %v", err)
		}
		dest = filepath.Join(filepath.Dir(abs), matched)
	}

	c, err := kxrfmt.Open(src, base, kxrfmt.ReadOnly)
	if err != nil {
		return xerrors.Errorf("unpack: %v", err)
	}
	defer c.Close()

	logger, err := kxrlog.New("unpack", os.Stderr)
	if err != nil {
		return xerrors.Errorf("unpack: %v", err)
	}

	terminal := console.IsTerminal(os.Stdout)
	begin, end := console.BeginEndBlock("unpack", 60)
	if terminal {
		fmt.Fprintln(os.Stdout, begin)
	}
	logger.Printf("unpacking %s into %s", src, dest)
	start := time.Now()

	onProgress := func(done, total int) {
		if terminal {
			fmt.Fprintf(os.Stdout, "\r%s %d/%d", console.ProgressBar(float64(done)/float64(total), 40), done, total)
		}
	}
	if err := unpacker.Unpack(c, dest, onProgress); err != nil {
		if terminal {
			fmt.Fprintln(os.Stdout)
		}
		logger.Printf("unpack failed: %v", err)
		return xerrors.Errorf("unpack: %v", err)
	}
	if terminal {
		fmt.Fprintln(os.Stdout)
	}

	elapsed := time.Since(start).Seconds()
	files, zipped, totalBytes := entryStats(c.Root())
	logger.Printf("unpacked %d files (%d bytes) in %s", files, totalBytes, console.FormatTime(elapsed))

	if terminal {
		block, err := console.StatisticsBlock("UNPACK SUMMARY",
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

// entryStats walks a container's decoded entry tree and totals file
// count, how many were stored zlib-compressed, and their combined
// on-disk payload size — purely for the unpack summary banner and log
// line.
func entryStats(n *entry.Node) (files, zipped, totalBytes int) {
	for _, child := range n.Children() {
		if child.IsDir() {
			cf, cz, cb := entryStats(child)
			files += cf
			zipped += cz
			totalBytes += cb
			continue
		}
		files++
		if child.Zipped() {
			zipped++
		}
		totalBytes += int(child.Size())
	}
	return files, zipped, totalBytes
}
