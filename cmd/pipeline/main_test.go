package main

import (
	"slices"
	"testing"
)

func TestSplitSources(t *testing.T) {
	cases := map[string][]string{
		"":                  nil,
		"a.csv":             {"a.csv"},
		"a.csv, b.csv":      {"a.csv", "b.csv"},
		" a.csv ,, b.csv ,": {"a.csv", "b.csv"},
	}
	for in, want := range cases {
		if got := splitSources(in); !slices.Equal(got, want) {
			t.Fatalf("splitSources(%q): want=%v got=%v", in, want, got)
		}
	}
}
