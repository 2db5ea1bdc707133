package kxrfmt

import "testing"

func TestMatchedName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		matches bool
	}{
		{"demo.kxr", "demo", true},
		{"demo-ab3f.kxr", "demo", true},
		{"my_pkg123.kxr", "my_pkg123", true},
		{"demo.KXR", "", false},
		{"demo", "", false},
		{"demo-abcde.kxr", "", false}, // disambiguator must be exactly 4 word chars
	}
	for _, tc := range cases {
		got, ok := MatchedName(tc.in)
		if ok != tc.matches || (ok && got != tc.want) {
			t.Errorf("MatchedName(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.matches)
		}
	}
}

func TestNeedsCompress(t *testing.T) {
	noCompress := []string{"png", "jpg", "jpeg", "kma", "ogg", "wav"}
	for _, ext := range noCompress {
		if NeedsCompress(ext) {
			t.Errorf("NeedsCompress(%q) = true, want false", ext)
		}
	}
	compress := []string{"txt", "htm", "html", "kmd", "mat", "unknownext"}
	for _, ext := range compress {
		if !NeedsCompress(ext) {
			t.Errorf("NeedsCompress(%q) = false, want true", ext)
		}
	}
}
