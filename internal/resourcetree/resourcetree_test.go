package resourcetree

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkOrdersAndFlagsFiles(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "demo")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.txt", "a.png", "sub/z.kma"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tree, err := Walk(src)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Name != "demo" {
		t.Fatalf("tree.Name = %q, want demo", tree.Name)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("len(tree.Children) = %d, want 3", len(tree.Children))
	}
	if names := namesOf(tree.Children); names[0] != "a.png" || names[1] != "b.txt" || names[2] != "sub" {
		t.Fatalf("children not sorted: %v", names)
	}
	if tree.Children[0].IsDir() || tree.Children[0].File.Compress {
		t.Fatalf("a.png should not compress")
	}
	if tree.Children[1].IsDir() || !tree.Children[1].File.Compress {
		t.Fatalf("b.txt should compress")
	}
	if !tree.Children[2].IsDir() {
		t.Fatalf("sub should be a directory")
	}
	sub := tree.Children[2].Dir
	if len(sub.Children) != 1 || sub.Children[0].File.Compress {
		t.Fatalf("sub/z.kma should not compress")
	}
}

// TestWalkInterleavesDirsAndFiles pins the ordering requirement directly:
// a directory sorting before a file in the same listing must stay
// interleaved in Children, not be grouped separately, since the original
// resource tree keeps a single ordered children mapping.
func TestWalkInterleavesDirsAndFiles(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "demo")
	if err := os.MkdirAll(filepath.Join(src, "a_sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a_sub", "inner.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "z.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := Walk(src)
	if err != nil {
		t.Fatal(err)
	}
	names := namesOf(tree.Children)
	if len(names) != 2 || names[0] != "a_sub" || names[1] != "z.txt" {
		t.Fatalf("children order = %v, want [a_sub z.txt]", names)
	}
	if !tree.Children[0].IsDir() {
		t.Fatalf("a_sub should be a directory")
	}
}

func namesOf(children []*Child) []string {
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = c.Name()
	}
	return out
}
