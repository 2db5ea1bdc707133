package kxrfmt

import (
	"io"
	"os"
	"sync"

	"github.com/google/renameio"
	"github.com/pianosuki/kxrlib/internal/kxrfmt/entry"
)

// magicBytes is the literal 4-byte prolog magic, written/verified
// individually rather than as a single uint32 so endianness never enters
// into the comparison.
var magicBytes = [4]byte{'k', 'x', 'r', 'f'}

const (
	prologSize     = 16
	stampdataSize  = 32
	initialDatasize = prologSize + stampdataSize
)

// OpenMode selects whether a Container's backing file may be mutated.
type OpenMode int

const (
	ReadOnly OpenMode = iota
	ReadWrite
)

// Container owns one .kxr file: its fixed prolog, payload region and
// entry-tree blob, plus the backing file handle. After creation, all file
// I/O goes through ReadAt, WriteAt and Save, which hold a single mutex
// across each seek-plus-I/O pair and never across compute (crypt, zlib)
// — mirroring internal/squashfs's single-writer-at-a-time file access,
// generalized here to also guard reads.
type Container struct {
	f          *os.File
	mode       OpenMode
	mu         sync.Mutex
	passhash   uint32
	datasize   uint32
	headersize uint32
	root       *entry.Node
	matched    string
	changed    bool
	closed     bool
}

// Open parses an existing .kxr file. basename is used only as the
// fallback root name when the stored root name is empty.
func Open(path, basename string, mode OpenMode) (*Container, error) {
	flag := os.O_RDONLY
	if mode == ReadWrite {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	matched, _ := MatchedName(basename)

	c := &Container{f: f, mode: mode, matched: matched}
	if err := c.parse(); err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) parse() error {
	var prolog [prologSize]byte
	if _, err := io.ReadFull(io.NewSectionReader(c.f, 0, prologSize), prolog[:]); err != nil {
		return &FormatError{Msg: "short read in prolog"}
	}
	if prolog[0] != magicBytes[0] || prolog[1] != magicBytes[1] || prolog[2] != magicBytes[2] || prolog[3] != magicBytes[3] {
		return &FormatError{Msg: "bad magic"}
	}
	hdr, err := FromBytes(prolog[4:16], -1)
	if err != nil {
		return err
	}
	passhash, err := hdr.GetInt32()
	if err != nil {
		return err
	}
	datasize, err := hdr.GetInt32()
	if err != nil {
		return err
	}
	headersize, err := hdr.GetInt32()
	if err != nil {
		return err
	}
	c.passhash = uint32(passhash)
	c.datasize = uint32(datasize)
	c.headersize = uint32(headersize)

	blob := make([]byte, c.headersize)
	if _, err := io.ReadFull(io.NewSectionReader(c.f, int64(c.datasize), int64(c.headersize)), blob); err != nil {
		return &FormatError{Msg: "short read in entry tree"}
	}
	tb, err := FromBytes(blob, -1)
	if err != nil {
		return err
	}
	tb.Crypt(c.passhash ^ c.datasize)

	root, err := entry.Decode(tb, entry.KindRoot, c.matched)
	if err != nil {
		return err
	}
	c.root = root
	return nil
}

// Create makes a brand-new, empty container at path. The file must not
// already exist; Create's caller (the packer) is responsible for the
// explicit-overwrite policy described in the format's failure model.
//
// The initial prolog+stampdata+empty-root write is the one place this
// package uses renameio: it is the only Container write that produces the
// entire file in one shot, so it can be staged and atomically renamed
// into place. Every later Save patches byte ranges of an
// already-growing file and cannot use the same trick (see Save).
func Create(path, basename string) (*Container, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, &UsageError{Msg: "container already exists: " + path}
	}
	matched, _ := MatchedName(basename)
	if matched == "" {
		matched = basename
	}

	root := entry.NewRoot(matched, 0, 0)
	c := &Container{
		mode:     ReadWrite,
		passhash: 0,
		datasize: initialDatasize,
		root:     root,
		matched:  matched,
		changed:  true,
	}

	blob, err := c.encodeTree()
	if err != nil {
		return nil, err
	}
	c.headersize = uint32(len(blob))

	t, err := renameio.TempFile("", path)
	if err != nil {
		return nil, err
	}
	defer t.Cleanup()

	if err := writeProlog(t, c.passhash, c.datasize, c.headersize); err != nil {
		return nil, err
	}
	if _, err := t.Write(make([]byte, stampdataSize)); err != nil {
		return nil, err
	}
	if _, err := t.Write(blob); err != nil {
		return nil, err
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	c.f = f
	c.changed = false
	return c, nil
}

func writeProlog(w io.Writer, passhash, datasize, headersize uint32) error {
	pb := NewByteBuffer(-1)
	if err := pb.write("writeProlog.magic", magicBytes[:]); err != nil {
		return err
	}
	if err := pb.PutInt32(int32(passhash)); err != nil {
		return err
	}
	if err := pb.PutInt32(int32(datasize)); err != nil {
		return err
	}
	if err := pb.PutInt32(int32(headersize)); err != nil {
		return err
	}
	_, err := w.Write(pb.Bytes())
	return err
}

func (c *Container) encodeTree() ([]byte, error) {
	tb := NewByteBuffer(-1)
	if err := entry.Encode(tb, c.root); err != nil {
		return nil, err
	}
	tb.Crypt(c.passhash ^ c.datasize)
	return tb.Bytes(), nil
}

// Root returns the container's ROOT entry node.
func (c *Container) Root() *entry.Node { return c.root }

// Passhash returns the container's obfuscation key seed.
func (c *Container) Passhash() uint32 { return c.passhash }

// Datasize returns the current payload-region end offset (and entry-tree
// start offset).
func (c *Container) Datasize() uint32 { return c.datasize }

// GrowDatasize advances datasize by n bytes, marking the container
// changed. Called by the packer as it appends each file's payload.
func (c *Container) GrowDatasize(n uint32) {
	c.datasize += n
	c.changed = true
}

// ReadAt reads size bytes at the given payload offset. The mutex is held
// only across the seek+read; callers perform any decompress/crypt after
// this returns.
func (c *Container) ReadAt(offset, size uint32) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, size)
	if _, err := c.f.ReadAt(buf, int64(offset)); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteAt writes buf at the given payload offset. The mutex is held only
// across the seek+write; callers must already have compressed/obfuscated
// buf before calling this.
func (c *Container) WriteAt(offset uint32, buf []byte) error {
	if c.mode != ReadWrite {
		return &UsageError{Msg: "write on read-only container"}
	}
	if c.closed {
		return &UsageError{Msg: "write on closed container"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.f.WriteAt(buf, int64(offset))
	if err == nil {
		c.changed = true
	}
	return err
}

// Save rewrites the 16-byte prolog and the obfuscated entry-tree blob at
// the current datasize. It does not touch the payload region.
func (c *Container) Save() error {
	if c.mode != ReadWrite {
		return &UsageError{Msg: "save on read-only container"}
	}
	blob, err := c.encodeTree()
	if err != nil {
		return err
	}
	c.headersize = uint32(len(blob))

	c.mu.Lock()
	defer c.mu.Unlock()

	pb := NewByteBuffer(-1)
	if err := pb.write("Save.magic", magicBytes[:]); err != nil {
		return err
	}
	if err := pb.PutInt32(int32(c.passhash)); err != nil {
		return err
	}
	if err := pb.PutInt32(int32(c.datasize)); err != nil {
		return err
	}
	if err := pb.PutInt32(int32(c.headersize)); err != nil {
		return err
	}
	if _, err := c.f.WriteAt(pb.Bytes(), 0); err != nil {
		return err
	}
	if _, err := c.f.WriteAt(blob, int64(c.datasize)); err != nil {
		return err
	}
	c.changed = false
	return nil
}

// Close saves pending changes (if the container is writable and dirty)
// and closes the backing file.
func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.mode == ReadWrite && c.changed {
		if err := c.Save(); err != nil {
			c.f.Close()
			return err
		}
	}
	return c.f.Close()
}
