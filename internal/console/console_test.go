package console

import (
	"strings"
	"testing"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{61.5, "00:01:01.500"},
		{3661.25, "01:01:01.250"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.seconds); got != tc.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 10); got != "[=====     ]" {
		t.Errorf("ProgressBar(0.5, 10) = %q", got)
	}
	if got := ProgressBar(0, 4); got != "[    ]" {
		t.Errorf("ProgressBar(0, 4) = %q", got)
	}
	if got := ProgressBar(1, 4); got != "[====]" {
		t.Errorf("ProgressBar(1, 4) = %q", got)
	}
}

func TestConfirmDefault(t *testing.T) {
	r := strings.NewReader("\n")
	var w strings.Builder
	ok, err := Confirm(r, &w, "overwrite?", true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected default yes")
	}
}

func TestConfirmExplicitNo(t *testing.T) {
	r := strings.NewReader("n\n")
	var w strings.Builder
	ok, err := Confirm(r, &w, "overwrite?", true)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false for explicit n")
	}
}
