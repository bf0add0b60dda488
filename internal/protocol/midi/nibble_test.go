package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNibblesToBytes(t *testing.T) {
	ns := HexStringToNibbles("904040")
	assert.Equal(t, []byte{0x90, 0x40, 0x40}, NibblesToBytes(ns))

	// 奇数长度：末尾半字节不参与转换，入参不变
	odd := HexStringToNibbles("F0017")
	assert.Equal(t, []byte{0xF0, 0x01}, NibblesToBytes(odd))
	assert.Equal(t, "F0017", NibblesToString(odd))

	assert.Empty(t, NibblesToBytes(nil))
}

func TestByteToNibbles(t *testing.T) {
	assert.Equal(t, [2]Nibble{0x9, 0x0}, ByteToNibbles(0x90))
	assert.Equal(t, []Nibble{9, 0, 4, 0, 4, 0}, BytesToNibbles([]byte{0x90, 0x40, 0x40}))
}

func TestHexCharToNibble(t *testing.T) {
	tests := []struct {
		c    byte
		want Nibble
		ok   bool
	}{
		{'0', 0x0, true},
		{'9', 0x9, true},
		{'a', 0xA, true},
		{'F', 0xF, true},
		{'g', 0, false},
		{' ', 0, false},
	}
	for _, tt := range tests {
		got, ok := HexCharToNibble(tt.c)
		assert.Equal(t, tt.ok, ok, "char %q", tt.c)
		assert.Equal(t, tt.want, got, "char %q", tt.c)
	}
}

func TestHexStringConversions(t *testing.T) {
	assert.Equal(t, []Nibble{9, 0, 4, 0, 4, 0}, HexStringToNibbles("904040"))
	assert.Equal(t, []byte{144, 64, 64}, HexStringToBytes("904040"))
	assert.Equal(t, "ABCDEF", NibblesToString(HexStringToNibbles("abcdef")))
	assert.Equal(t, "C", Nibble(0xC).String())
}
