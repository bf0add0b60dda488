package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"单个半字节字符串", []any{"9"}, "9"},
		{"整数字节", []any{0x90}, "90"},
		{"字符串字节", []any{"90"}, "90"},
		{"数组", []any{[]int{0x90}}, "90"},
		{"多个整数", []any{0x90, 0x40}, "9040"},
		{"多个字符串", []any{"90", "40"}, "9040"},
		{"长字符串", []any{"9040"}, "9040"},
		{"混合字节", []any{"90", 0x40}, "9040"},
		{"混合半字节与字节", []any{"9", 0x40}, "940"},
		{"嵌套", []any{[]any{"9", []any{0x04, []string{"0"}}}, 64}, "904040"},
		{"小写", []any{"f0ab"}, "F0AB"},
		{"[]byte", []any{[]byte{0xF0, 0xF7}}, "F0F7"},
		{"[]Nibble", []any{[]Nibble{0xC, 0x3}}, "C3"},
		{"json数字", []any{[]any{float64(144), float64(64)}}, "9040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NibblesToString(Normalize(tt.args...)))
		})
	}
}

func TestNormalize_DropsInvalid(t *testing.T) {
	got := Normalize(256, -1, "zz", nil, 1.5, struct{}{}, "9x0", 0x40, uint64(300))
	assert.Equal(t, "9040", NibblesToString(got))
	assert.Empty(t, Normalize())
}
