package utils

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"alice bob", "alicebob"},
		{"al!ce@", "alce"},
		{"a_b-c.d", "a_b-c.d"},
		{"", ""},
		{"@#$%", ""},
		{"averyveryverylongusername", "averyveryverylon"},
		{"né", "n"},
		{"tab\tname", "tabname"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
