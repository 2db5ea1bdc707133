package kxrfmt

import "strings"

// noCompressExt holds extensions (without the leading dot, lowercase)
// whose payload is stored obfuscated rather than zlib-compressed. Every
// other recognized or unknown extension compresses.
var noCompressExt = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"kma":  true,
	"ogg":  true,
	"wav":  true,
}

// recognizedExt is the full set of extensions the reference format
// round-trips losslessly. Membership is reported by Recognized only;
// NeedsCompress treats unknown extensions the same as recognized
// compressing ones.
var recognizedExt = map[string]bool{
	"kmd": true, "kmda": true, "ksp": true, "txt": true, "htm": true,
	"html": true, "nut": true, "ptc": true, "scm": true, "mat": true,
	"kgi": true, "dds": true, "png": true, "jpg": true, "jpeg": true,
	"pvr": true, "aif": true, "aiff": true, "kma": true, "ogg": true,
	"wav": true, "fx": true, "mot": true, "mxt": true, "pt2": true,
}

// NeedsCompress reports whether a file with the given extension (without
// the leading dot) should be zlib-compressed when packed. Comparison is
// case-insensitive, matching the reference FileType.from_extension's
// name.lower() == extension.lower() check, so e.g. "IMG.PNG" is stored
// obfuscated the same as "img.png". Unknown extensions compress by
// default.
func NeedsCompress(ext string) bool {
	return !noCompressExt[strings.ToLower(ext)]
}

// Recognized reports whether ext is one of the extensions the format
// documents an explicit compress policy for. Comparison is
// case-insensitive, same as NeedsCompress.
func Recognized(ext string) bool {
	return recognizedExt[strings.ToLower(ext)]
}
