// Package kxrlog sets up per-module diagnostic logging. It follows the
// teacher repo's own logging style: plain *log.Logger values built with
// log.New, no structured-logging library, since distr1-distri itself
// never pulls one in either. This mirrors kxrlib's logger_setup.py, which
// creates one file handler per module under a logs/ directory.
package kxrlog

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"
)

// logDirEnv lets callers relocate the logs/ directory, the same way
// internal/env's DISTRIROOT overrides a default working-directory path.
const logDirEnv = "KXR_LOGDIR"

// dir returns the directory diagnostic logs are written under.
func dir() string {
	if d := os.Getenv(logDirEnv); d != "" {
		return d
	}
	return "logs"
}

// New returns a *log.Logger for module, writing to
// <logdir>/<module>.log as well as w (pass io.Discard to log to the file
// only). module is typically a package name like "packer" or "unpacker".
func New(module string, w io.Writer) (*log.Logger, error) {
	if err := os.MkdirAll(dir(), 0o755); err != nil {
		return nil, xerrors.Errorf("kxrlog: %v", err)
	}
	name := module
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	f, err := os.OpenFile(filepath.Join(dir(), name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, xerrors.Errorf("kxrlog: %v", err)
	}
	return log.New(io.MultiWriter(f, w), "", log.LstdFlags), nil
}
