package core

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var unicodeBOMs = [][]byte{
	{0xEF, 0xBB, 0xBF}, // UTF-8
	{0xFE, 0xFF},       // UTF-16 BE
	{0xFF, 0xFE},       // UTF-16 LE
}

// decodeText converts exported CSV bytes to a UTF-8 string with "\n" line
// terminators. A Unicode BOM selects the matching decoder and is stripped.
// Input that is not valid UTF-8 is read as Windows-1252, the usual encoding
// of legacy bank exports.
func decodeText(data []byte) (string, error) {
	var dec transform.Transformer
	if hasUnicodeBOM(data) || utf8.Valid(data) {
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	} else {
		dec = charmap.Windows1252.NewDecoder()
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("%w: decode text: %v", ErrFileUnreadable, err)
	}

	text := strings.TrimPrefix(string(out), "\ufeff")
	if strings.ContainsRune(text, 0) {
		return "", fmt.Errorf("%w: binary content", ErrFileUnreadable)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

func hasUnicodeBOM(data []byte) bool {
	for _, bom := range unicodeBOMs {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}
