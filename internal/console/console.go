// Package console renders the pack/unpack CLI's interactive surface:
// the yes/no overwrite prompt, a progress bar, and begin/end/statistics
// banner blocks. None of this is format-critical; it exists because the
// reference tool's console/ package provides it and a faithful CLI
// carries the same ambient surface. IsTerminal (built on
// github.com/mattn/go-isatty) lets callers skip the progress bar and
// banner blocks entirely when stdout is redirected; Confirm prompts the
// same way either way.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is connected to an interactive terminal.
func IsTerminal(w *os.File) bool {
	return isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
}

// FormatTime renders a duration given in seconds as HH:MM:SS.mmm.
func FormatTime(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(seconds/60) % 60
	secs := int(seconds) % 60
	millis := int(seconds*1000) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// ProgressBar renders a fixed-width "[===   ]" bar for progress in [0,1].
func ProgressBar(progress float64, length int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	completed := int(float64(length) * progress)
	return "[" + strings.Repeat("=", completed) + strings.Repeat(" ", length-completed) + "]"
}

// BeginEndBlock returns the "BEGIN <TITLE>"/"END <TITLE>" banner pair used
// to bracket a pack/unpack run's console output.
func BeginEndBlock(title string, width int) (begin, end string) {
	return block("BEGIN "+strings.ToUpper(title), width), block("END "+strings.ToUpper(title), width)
}

func block(title string, width int) string {
	bar := strings.Repeat("=", width)
	inner := width - len(title) - 2
	if inner < 0 {
		inner = 0
	}
	left := inner / 2
	right := inner - left
	return fmt.Sprintf("%s\n%s %s %s\n%s", bar, strings.Repeat("=", left), title, strings.Repeat("=", right), bar)
}

// StatisticsBlock renders a boxed "desc: value" summary, one line per
// entry, aligned on the longest description and value strings.
func StatisticsBlock(title string, descs, values []string) (string, error) {
	if len(descs) != len(values) {
		return "", fmt.Errorf("console: descs (%d) and values (%d) length mismatch", len(descs), len(values))
	}
	maxDesc, maxValue := 0, 0
	for i := range descs {
		if len(descs[i]) > maxDesc {
			maxDesc = len(descs[i])
		}
		if len(values[i]) > maxValue {
			maxValue = len(values[i])
		}
	}
	width := maxDesc + maxValue + 7
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", strings.Repeat("=", (width-len(title)-2)/2), title, strings.Repeat("=", (width-len(title)-2)/2))
	for i := range descs {
		fmt.Fprintf(&b, "| %-*s: %-*s |\n", maxDesc, descs[i], maxValue, values[i])
	}
	fmt.Fprintf(&b, "%s", strings.Repeat("=", width))
	return b.String(), nil
}

// Confirm prompts the user on w/r with a yes/no question, defaulting to
// defaultYes when the reply is empty.
func Confirm(r io.Reader, w io.Writer, prompt string, defaultYes bool) (bool, error) {
	suffix := " [Y/n]: "
	if !defaultYes {
		suffix = " [y/N]: "
	}
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, prompt+suffix)
		if !scanner.Scan() {
			return defaultYes, scanner.Err()
		}
		reply := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if reply == "" {
			return defaultYes, nil
		}
		switch reply {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(w, "Invalid input. Please enter 'y' or 'n'.")
	}
}
