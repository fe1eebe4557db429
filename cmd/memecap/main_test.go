package main

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestParseCaption(t *testing.T) {
	pos, text, err := parseCaption("400, 36:one does not simply: caption")
	if err != nil {
		t.Fatal(err)
	}
	if pos != (r2.Vec{X: 400, Y: 36}) {
		t.Fatalf("unexpected position %v", pos)
	}
	if text != "one does not simply: caption" {
		t.Fatalf("unexpected text %q", text)
	}

	for _, bad := range []string{"400:no y", "no colon", "a,b:text"} {
		if _, _, err := parseCaption(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
