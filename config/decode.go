package config

import "unicode/utf8"

// cp1252Extra maps the 0x80-0x9F byte range to its CP-1252/Windows-1252
// code points; 0xA0-0xFF already agree with Latin-1 and therefore with
// the low half of Unicode, so only this block needs a table.
var cp1252Extra = [32]rune{
	0x20AC, 0x0081, 0x201A, 0x0192, 0x201E, 0x2026, 0x2020, 0x2021,
	0x02C6, 0x2030, 0x0160, 0x2039, 0x0152, 0x008D, 0x017D, 0x008F,
	0x0090, 0x2018, 0x2019, 0x201C, 0x201D, 0x2022, 0x2013, 0x2014,
	0x02DC, 0x2122, 0x0161, 0x203A, 0x0153, 0x009D, 0x017E, 0x0178,
}

// decodeLine decodes a config file's bytes to a Go string. Config files
// are usually plain ASCII/UTF-8, but some editors still save them in the
// system codepage; if the bytes aren't valid UTF-8, or decoding as UTF-8
// produced a replacement character, this falls back to treating every
// byte as a single CP-1252 code point rather than failing the whole load.
func decodeLine(data []byte) string {
	if utf8.Valid(data) && !containsReplacementChar(data) {
		return string(data)
	}

	runes := make([]rune, len(data))

	for i, b := range data {
		if b < 0x80 || b >= 0xA0 {
			runes[i] = rune(b)
		} else {
			runes[i] = cp1252Extra[b-0x80]
		}
	}

	return string(runes)
}

func containsReplacementChar(data []byte) bool {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return true
		}

		i += size
	}

	return false
}
