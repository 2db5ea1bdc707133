package kxrfmt

import "regexp"

// kxrNameRe extracts the "matched name" from a .kxr container's basename:
// an optional trailing "-xxxx" disambiguator (exactly 4 word characters)
// is stripped before the extension.
var kxrNameRe = regexp.MustCompile(`^([a-zA-Z0-9_]+?)(?:-\w{4})?\.kxr$`)

// MatchedName extracts group 1 of the KXR filename regex from basename.
// It is used both as the default root-entry name when packing and as the
// fallback root name when unpacking a container whose stored root name is
// empty.
func MatchedName(basename string) (string, bool) {
	m := kxrNameRe.FindStringSubmatch(basename)
	if m == nil {
		return "", false
	}
	return m[1], true
}
