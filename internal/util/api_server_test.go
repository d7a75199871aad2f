package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoinURL(t *testing.T) {
	testCases := []struct {
		base     string
		paths    []string
		expected string
	}{
		{base: "http://localhost:9000", paths: []string{"/games"}, expected: "http://localhost:9000/games"},
		{base: "http://localhost:9000/", paths: []string{"games", "abc"}, expected: "http://localhost:9000/games/abc"},
		{base: "http://localhost:9000/api/", paths: []string{"/games/", "/abc/results"}, expected: "http://localhost:9000/api/games/abc/results"},
	}
	for _, tc := range testCases {
		got := JoinURL(tc.base, tc.paths...)
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("JoinURL(%s, %v) = %s, expected %s", tc.base, tc.paths, got, tc.expected)
		}
	}
}
