package entry

// Cursor is the subset of kxrfmt.ByteBuffer's typed accessors the codec
// needs. Declaring it locally (rather than importing kxrfmt.ByteBuffer
// directly) keeps entry a leaf package: kxrfmt.Container, which lives in
// the parent package, needs to hold and build entry.Node trees, so entry
// cannot import back into kxrfmt without a cycle. Any *kxrfmt.ByteBuffer
// already satisfies this interface.
type Cursor interface {
	PutString(string) error
	GetString() (string, error)
	PutInt32(int32) error
	GetInt32() (int32, error)
	PutInt16(int16) error
	GetInt16() (int16, error)
	PutByte(byte) error
	GetByte() (byte, error)
}

// Encode appends n's big-endian, length-prefixed encoding to buf,
// recursing into children in insertion order.
func Encode(buf Cursor, n *Node) error {
	if err := buf.PutString(n.name); err != nil {
		return err
	}
	if err := buf.PutInt32(n.created); err != nil {
		return err
	}
	if err := buf.PutInt32(n.updated); err != nil {
		return err
	}
	if err := buf.PutByte(n.flags()); err != nil {
		return err
	}
	if n.IsDir() {
		children := n.Children()
		if err := buf.PutInt16(int16(len(children))); err != nil {
			return err
		}
		for _, child := range children {
			if err := Encode(buf, child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := buf.PutInt32(int32(n.offset)); err != nil {
		return err
	}
	return buf.PutInt32(int32(n.size))
}

// Decode reads one node (recursively, for directories) from buf. kind
// selects whether the top-level call produces a ROOT or a plain
// DIRECTORY/FILE node; children are always decoded with KindDirectory or
// KindFile as appropriate. rootFallbackName substitutes for an empty
// decoded root name.
func Decode(buf Cursor, kind Kind, rootFallbackName string) (*Node, error) {
	name, err := buf.GetString()
	if err != nil {
		return nil, err
	}
	created, err := buf.GetInt32()
	if err != nil {
		return nil, err
	}
	updated, err := buf.GetInt32()
	if err != nil {
		return nil, err
	}
	flagsByte, err := buf.GetByte()
	if err != nil {
		return nil, err
	}
	isDir := flagsByte&1 != 0
	locked := flagsByte&2 != 0
	zipped := flagsByte&4 != 0

	if kind == KindRoot {
		if name == "" {
			name = rootFallbackName
		}
		locked = false
		zipped = false
		isDir = true
	}

	if isDir {
		n := &Node{
			kind:     kind,
			name:     name,
			created:  created,
			updated:  updated,
			locked:   locked,
			children: make(map[string]*Node),
		}
		numChildren, err := buf.GetInt16()
		if err != nil {
			return nil, err
		}
		for i := int16(0); i < numChildren; i++ {
			child, err := Decode(buf, KindDirectory, "")
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
		}
		return n, nil
	}

	offset, err := buf.GetInt32()
	if err != nil {
		return nil, err
	}
	size, err := buf.GetInt32()
	if err != nil {
		return nil, err
	}
	return &Node{
		kind:    KindFile,
		name:    name,
		created: created,
		updated: updated,
		locked:  locked,
		zipped:  zipped,
		offset:  uint32(offset),
		size:    uint32(size),
	}, nil
}
