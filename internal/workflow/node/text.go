package node

import "unicode/utf8"

// TruncateByRunes 按字符数截断字符串，保证不会切断多字节字符。
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	remaining := maxRunes
	for i := 0; i < len(s); {
		if remaining == 0 {
			return s[:i]
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		remaining--
	}
	return s
}
