package extract

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeRun percent-decodes a run. Text that is not a well-formed UTF-8
// percent encoding falls back to legacyUnescape, so one bad run never fails
// the document.
func decodeRun(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if out, err := url.PathUnescape(s); err == nil && utf8.ValidString(out) {
		return out
	}
	return legacyUnescape(s)
}

// legacyUnescape decodes %XX as a Latin-1 code point and %uXXXX as a UTF-16
// code unit, pairing surrogates. Malformed escapes are kept literally.
func legacyUnescape(s string) string {
	var (
		sb    strings.Builder
		units []uint16
	)
	flushUnits := func() {
		if len(units) > 0 {
			sb.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}

	for i := 0; i < len(s); {
		if s[i] == '%' {
			if i+6 <= len(s) && s[i+1] == 'u' {
				if v, ok := parseHex(s[i+2 : i+6]); ok {
					units = append(units, uint16(v))
					i += 6
					continue
				}
			}
			if i+3 <= len(s) {
				if v, ok := parseHex(s[i+1 : i+3]); ok {
					flushUnits()
					sb.WriteRune(rune(v))
					i += 3
					continue
				}
			}
		}
		flushUnits()
		r, size := utf8.DecodeRuneInString(s[i:])
		sb.WriteRune(r)
		i += size
	}
	flushUnits()
	return sb.String()
}

func parseHex(s string) (uint64, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	return v, err == nil
}
