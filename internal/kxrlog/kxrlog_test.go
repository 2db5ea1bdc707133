package kxrlog

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNewWritesToLogDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KXR_LOGDIR", dir)

	logger, err := New("packer", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	logger.Print("test message")

	data, err := os.ReadFile(filepath.Join(dir, "packer.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty log file")
	}
}
