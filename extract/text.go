package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sheetcheck/sheetcheck/normalize"
)

// extractPlainText decodes raw bytes as text on a best-effort basis.
// Invalid byte sequences are dropped rather than failing the request, so
// this path is total: worst case it yields an empty string.
func extractPlainText(data []byte) *Result {
	return &Result{
		Text:  normalize.Clean(decodeText(data)),
		Pages: []PageResult{{Page: 1, Method: MethodText}},
	}
}

// decodeText sniffs BOMs, falls back from UTF-8 to Windows-1252, and as a
// last resort strips invalid sequences from the raw bytes.
func decodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:])
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		if s, ok := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), data); ok {
			return s
		}
	}
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		if s, ok := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), data); ok {
			return s
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	if s, ok := decodeWith(charmap.Windows1252, data); ok {
		return s
	}

	// Drop whatever cannot be interpreted.
	return strings.ToValidUTF8(string(data), "")
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
