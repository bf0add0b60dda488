package midi

import "reflect"

// Normalize 把调用方的任意输入整理为半字节序列
// 支持：整数(0x00~0xFF，每个整数一个字节)、十六进制字符串(任意长度，每个字符一个半字节)、
// []byte、[]Nibble，以及以上类型任意嵌套的切片/数组。
// 越界整数、非十六进制字符、不认识的类型直接丢弃，不影响其它片段。
func Normalize(args ...any) []Nibble {
	out := make([]Nibble, 0, len(args)*2)
	for _, arg := range args {
		out = appendValue(out, arg)
	}
	return out
}

func appendValue(out []Nibble, v any) []Nibble {
	switch x := v.(type) {
	case nil:
		return out
	case Nibble:
		return append(out, x&0x0F)
	case []Nibble:
		for _, n := range x {
			out = append(out, n&0x0F)
		}
		return out
	case string:
		return append(out, HexStringToNibbles(x)...)
	case []byte:
		return append(out, BytesToNibbles(x)...)
	case byte:
		return appendByte(out, int64(x))
	case int:
		return appendByte(out, int64(x))
	case int8:
		return appendByte(out, int64(x))
	case int16:
		return appendByte(out, int64(x))
	case int32:
		return appendByte(out, int64(x))
	case int64:
		return appendByte(out, x)
	case uint:
		return appendUint(out, uint64(x))
	case uint16:
		return appendUint(out, uint64(x))
	case uint32:
		return appendUint(out, uint64(x))
	case uint64:
		return appendUint(out, x)
	case float64:
		// encoding/json 解码出的数字
		if x != float64(int64(x)) {
			return out
		}
		return appendByte(out, int64(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out = appendValue(out, rv.Index(i).Interface())
		}
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			out = appendValue(out, rv.Elem().Interface())
		}
	}
	return out
}

func appendByte(out []Nibble, n int64) []Nibble {
	if n < 0x00 || n > 0xFF {
		return out
	}
	pair := ByteToNibbles(byte(n))
	return append(out, pair[0], pair[1])
}

func appendUint(out []Nibble, n uint64) []Nibble {
	if n > 0xFF {
		return out
	}
	return appendByte(out, int64(n))
}
