package ingest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const sniffBytes = 10000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding names reported by detectEncoding.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// detectEncoding looks at the head of data and reports UTF-8 or Shift_JIS.
func detectEncoding(data []byte) string {
	head := data
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}
	if validUTF8Head(head) {
		return EncodingUTF8
	}
	return EncodingShiftJIS
}

// validUTF8Head is utf8.Valid that tolerates a rune cut off by the sniff window.
func validUTF8Head(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			return len(b) < utf8.UTFMax && !utf8.FullRune(b)
		}
		b = b[size:]
	}
	return true
}

// decodeText returns data as UTF-8 without a BOM.
func decodeText(data []byte) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	enc := detectEncoding(data)
	if enc == EncodingUTF8 {
		return data, enc, nil
	}
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return nil, enc, fmt.Errorf("decode %s: %w", enc, err)
	}
	return out, enc, nil
}
