// Package entry implements the KXR entry tree: the recursive directory
// listing embedded in a container's obfuscated header blob.
//
// The write-once field set (parent, size, locked, zipped, is_dir) is
// modeled per the design note in the format's own documentation: a Node is
// fully built at construction time through the New* constructors below and
// never mutated afterward, except for AddChild populating a directory's
// children map. This sidesteps the need for an ownership cycle or exposed
// setters, the same way internal/squashfs's Directory builds its entries
// before Flush rather than patching them in place.
package entry

import "fmt"

// Kind distinguishes the three node variants.
type Kind int

const (
	KindRoot Kind = iota
	KindDirectory
	KindFile
)

// Node is one node of the entry tree: a directory-like node (ROOT or
// DIRECTORY) owns an ordered map of named children; a FILE node instead
// carries an offset/size into the container's payload region.
type Node struct {
	kind    Kind
	name    string
	created int32
	updated int32
	locked  bool
	zipped  bool

	// directory-like
	childNames []string
	children   map[string]*Node

	// file-only
	offset uint32
	size   uint32

	parent *Node
}

// NewRoot constructs the ROOT node. Root is always unlocked and unzipped.
func NewRoot(name string, created, updated int32) *Node {
	return &Node{
		kind:     KindRoot,
		name:     name,
		created:  created,
		updated:  updated,
		children: make(map[string]*Node),
	}
}

// NewDirectory constructs a DIRECTORY node, not yet attached to a parent.
func NewDirectory(name string, created, updated int32, locked bool) *Node {
	return &Node{
		kind:     KindDirectory,
		name:     name,
		created:  created,
		updated:  updated,
		locked:   locked,
		children: make(map[string]*Node),
	}
}

// NewFile constructs a FILE node with its offset/size/zipped flag already
// known. Per the write-once design, there is no setter for any of these
// fields after construction.
func NewFile(name string, created, updated int32, locked, zipped bool, offset, size uint32) *Node {
	return &Node{
		kind:    KindFile,
		name:    name,
		created: created,
		updated: updated,
		locked:  locked,
		zipped:  zipped,
		offset:  offset,
		size:    size,
	}
}

func (n *Node) Kind() Kind       { return n.kind }
func (n *Node) Name() string     { return n.name }
func (n *Node) Created() int32   { return n.created }
func (n *Node) Updated() int32   { return n.updated }
func (n *Node) Locked() bool     { return n.locked }
func (n *Node) Zipped() bool     { return n.zipped }
func (n *Node) Offset() uint32   { return n.offset }
func (n *Node) Size() uint32     { return n.size }
func (n *Node) Parent() *Node    { return n.parent }
func (n *Node) IsDir() bool      { return n.kind == KindRoot || n.kind == KindDirectory }

// AddChild inserts (or, for a duplicate name, overwrites in place) a child
// under a directory-like node, preserving first-insertion order. It
// panics if called on a FILE node, which is a programmer error, not a
// runtime condition callers need to handle.
func (n *Node) AddChild(child *Node) {
	if !n.IsDir() {
		panic("entry: AddChild on a non-directory node")
	}
	if _, exists := n.children[child.name]; !exists {
		n.childNames = append(n.childNames, child.name)
	}
	child.parent = n
	n.children[child.name] = child
}

// Children returns this node's children in insertion order. It returns
// nil for a FILE node.
func (n *Node) Children() []*Node {
	if !n.IsDir() {
		return nil
	}
	out := make([]*Node, len(n.childNames))
	for i, name := range n.childNames {
		out[i] = n.children[name]
	}
	return out
}

// Path renders the slash-joined path from the root down to n, for
// logging only; tree walks never need it structurally.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return fmt.Sprintf("%s/%s", n.parent.Path(), n.name)
}

// flags computes the on-disk flags byte: bit0=dir, bit1=locked,
// bit2=zipped. This is the corrected OR of three independent bits, per
// the recommended interoperability behavior: the reference implementation
// computes this expression in a way that, under its source language's
// operator precedence, does not yield a true three-way OR for every
// combination. Readers accept any flags byte; ROOT always forces locked
// and zipped back to false regardless of what was decoded.
func (n *Node) flags() byte {
	var f byte
	if n.IsDir() {
		f |= 1
	}
	if n.locked {
		f |= 2
	}
	if n.zipped {
		f |= 4
	}
	return f
}
