// Command kxr packs a directory into a .kxr container and unpacks one back,
// following the same verb-dispatch CLI shape as distri(1).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

var debug = flag.Bool("debug", false, "enable debug mode: format error messages with additional detail")

type cmd struct {
	fn func(ctx context.Context, args []string) error
}

func funcmain() error {
	flag.Parse()

	verbs := map[string]cmd{
		"pack":        {pack},
		"unpack":      {unpack},
		"export-cpio": {exportCpio},
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "syntax: kxr <command> [options]\n")
		fmt.Fprintf(os.Stderr, "commands: pack, unpack, export-cpio\n")
		os.Exit(2)
	}
	verb, args := args[0], args[1:]

	if verb == "help" {
		fmt.Fprintf(os.Stderr, "kxr [-flags] <command> [-flags] <args>\n\n")
		fmt.Fprintf(os.Stderr, "To get help on any command, use kxr <command> -help.\n\n")
		fmt.Fprintf(os.Stderr, "\tpack         - pack a directory into a .kxr container\n")
		fmt.Fprintf(os.Stderr, "\tunpack       - unpack a .kxr container into a directory\n")
		fmt.Fprintf(os.Stderr, "\texport-cpio  - export a .kxr container's payload as a cpio archive\n")
		os.Exit(2)
	}

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: kxr <command> [options]\n")
		os.Exit(2)
	}

	if err := v.fn(context.Background(), args); err != nil {
		if *debug {
			return fmt.Errorf("%s: %+v", verb, err)
		}
		return fmt.Errorf("%s: %v", verb, err)
	}
	return nil
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
