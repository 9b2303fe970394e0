package utf8x

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want bool
	}{
		{"empty", []byte{}, true},
		{"ascii", []byte("hello"), true},
		{"two-byte", []byte{0xC3, 0xA9}, true},                   // é
		{"three-byte", []byte{0xE2, 0x82, 0xAC}, true},           // €
		{"four-byte", []byte{0xF0, 0x9F, 0x98, 0x80}, true},      // emoji
		{"embedded-nul", []byte{'a', 0x00, 'b'}, false},
		{"overlong-two-byte", []byte{0xC0, 0x80}, false},         // overlong NUL
		{"overlong-three-byte", []byte{0xE0, 0x80, 0x80}, false}, // overlong
		{"lone-surrogate", []byte{0xED, 0xA0, 0x80}, false},      // U+D800
		{"truncated", []byte{0xE2, 0x82}, false},
		{"bad-continuation", []byte{0xC3, 0x28}, false},
		{"invalid-lead", []byte{0xFF}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Valid(c.in); got != c.want {
				t.Errorf("Valid(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
