package midi

import "strings"

// Nibble 半字节（0~15），一个字节拆为高四位在前、低四位在后
type Nibble byte

const hexDigits = "0123456789ABCDEF"

// Char 返回大写十六进制字符
func (n Nibble) Char() byte { return hexDigits[n&0x0F] }

// String 实现 fmt.Stringer
func (n Nibble) String() string { return string(n.Char()) }

// HexCharToNibble 十六进制字符 -> 半字节（大小写均可）
func HexCharToNibble(c byte) (Nibble, bool) {
	switch {
	case c >= '0' && c <= '9':
		return Nibble(c - '0'), true
	case c >= 'A' && c <= 'F':
		return Nibble(c - 'A' + 10), true
	case c >= 'a' && c <= 'f':
		return Nibble(c - 'a' + 10), true
	}
	return 0, false
}

// ByteToNibbles 字节 -> [高, 低] 两个半字节
func ByteToNibbles(b byte) [2]Nibble {
	return [2]Nibble{Nibble(b >> 4), Nibble(b & 0x0F)}
}

// BytesToNibbles 字节序列 -> 半字节序列
func BytesToNibbles(bs []byte) []Nibble {
	out := make([]Nibble, 0, len(bs)*2)
	for _, b := range bs {
		pair := ByteToNibbles(b)
		out = append(out, pair[0], pair[1])
	}
	return out
}

// NibblesToBytes 半字节序列 -> 字节序列
// 奇数长度时末尾半字节还不是完整字节，不参与转换；不修改入参
func NibblesToBytes(ns []Nibble) []byte {
	out := make([]byte, 0, len(ns)/2)
	for i := 0; i+1 < len(ns); i += 2 {
		out = append(out, byte(ns[i]&0x0F)<<4|byte(ns[i+1]&0x0F))
	}
	return out
}

// HexStringToNibbles 十六进制字符串 -> 半字节序列，非十六进制字符被跳过
func HexStringToNibbles(s string) []Nibble {
	out := make([]Nibble, 0, len(s))
	for i := 0; i < len(s); i++ {
		if n, ok := HexCharToNibble(s[i]); ok {
			out = append(out, n)
		}
	}
	return out
}

// HexStringToBytes 十六进制字符串 -> 字节序列
func HexStringToBytes(s string) []byte { return NibblesToBytes(HexStringToNibbles(s)) }

// NibblesToString 半字节序列拼接为大写十六进制字符串
func NibblesToString(ns []Nibble) string {
	var sb strings.Builder
	sb.Grow(len(ns))
	for _, n := range ns {
		sb.WriteByte(n.Char())
	}
	return sb.String()
}
