// External test package: kxrfmt imports entry, so an in-package test of
// entry that uses kxrfmt.ByteBuffer as its Cursor would form an import
// cycle.
package entry_test

import (
	"testing"

	"github.com/pianosuki/kxrlib/internal/kxrfmt"
	"github.com/pianosuki/kxrlib/internal/kxrfmt/entry"
)

// TestEmptyRootEncoding pins S1 from the format's seed scenarios: an
// empty root named "demo" encodes to exactly 13 bytes.
func TestEmptyRootEncoding(t *testing.T) {
	root := entry.NewRoot("demo", 0, 0)
	buf := kxrfmt.NewByteBuffer(-1)
	if err := entry.Encode(buf, root); err != nil {
		t.Fatal(err)
	}
	want := 2 + len("demo") + 4 + 4 + 1 + 2
	if got := buf.Len(); got != want {
		t.Fatalf("encoded empty root = %d bytes, want %d", got, want)
	}

	buf.SetPos(0)
	decoded, err := entry.Decode(buf, entry.KindRoot, "fallback")
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name() != "demo" || len(decoded.Children()) != 0 {
		t.Fatalf("decoded root = %+v, want name=demo with no children", decoded)
	}
}

func TestCodecRoundTripNested(t *testing.T) {
	root := entry.NewRoot("demo", 1, 2)
	a := entry.NewFile("a.txt", 0, 0, false, true, 48, 10)
	root.AddChild(a)
	sub := entry.NewDirectory("sub", 0, 0, false)
	root.AddChild(sub)
	b := entry.NewFile("b.png", 0, 0, false, false, 58, 256)
	sub.AddChild(b)
	c := entry.NewFile("c.txt", 0, 0, false, true, 314, 20)
	sub.AddChild(c)

	buf := kxrfmt.NewByteBuffer(-1)
	if err := entry.Encode(buf, root); err != nil {
		t.Fatal(err)
	}

	buf.SetPos(0)
	decoded, err := entry.Decode(buf, entry.KindRoot, "fallback")
	if err != nil {
		t.Fatal(err)
	}

	children := decoded.Children()
	if len(children) != 2 {
		t.Fatalf("root has %d children, want 2", len(children))
	}
	if children[0].Name() != "a.txt" || children[1].Name() != "sub" {
		t.Fatalf("child order not preserved: got %q, %q", children[0].Name(), children[1].Name())
	}
	if children[0].Offset() != 48 || children[0].Size() != 10 || !children[0].Zipped() {
		t.Fatalf("a.txt decoded wrong: %+v", children[0])
	}

	subChildren := children[1].Children()
	if len(subChildren) != 2 || subChildren[0].Name() != "b.png" || subChildren[1].Name() != "c.txt" {
		t.Fatalf("sub children wrong: %+v", subChildren)
	}
	if subChildren[0].Zipped() {
		t.Fatalf("b.png should not be zipped")
	}
}

func TestDecodeEmptyRootNameFallback(t *testing.T) {
	root := entry.NewRoot("", 0, 0)
	buf := kxrfmt.NewByteBuffer(-1)
	if err := entry.Encode(buf, root); err != nil {
		t.Fatal(err)
	}
	buf.SetPos(0)
	decoded, err := entry.Decode(buf, entry.KindRoot, "fallback")
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name() != "fallback" {
		t.Fatalf("decoded root name = %q, want fallback", decoded.Name())
	}
}
