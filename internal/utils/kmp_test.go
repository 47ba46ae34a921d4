package utils

import (
	"reflect"
	"testing"
)

func TestKMPSearch(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    []int
	}{
		{"@bob", "hey @bob, ping @bob", []int{4, 15}},
		{"abab", "ababab", []int{0, 2}},
		{"aaa", "aaaaa", []int{0, 1, 2}},
		{"@bob", "no mentions here", nil},
		{"", "anything", nil},
		{"x", "", nil},
	}
	for _, tt := range tests {
		got := NewKMP(tt.pattern).Search(tt.text)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Search(%q in %q) = %v, want %v", tt.pattern, tt.text, got, tt.want)
		}
	}
}
