// Package encoding turns delimited exports into UTF-8 whatever charset the
// exporting tool used.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 8192

// Charset names reported by Decode.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88591    = "ISO-8859-1"
	ISO885915   = "ISO-8859-15"
)

var boms = []struct {
	prefix  []byte
	charset string
	enc     encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8, nil},
	{[]byte{0xFF, 0xFE}, UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// Single-byte charsets chardet may report for French spreadsheet exports.
var singleByte = map[string]encoding.Encoding{
	Windows1252: charmap.Windows1252,
	ISO88591:    charmap.Windows1252,
	ISO885915:   charmap.ISO8859_15,
}

// Decode returns a UTF-8 reader over r and the charset it was read as.
// A byte order mark wins, then valid UTF-8, then chardet's best guess.
// Anything else is read as Windows-1252, the default of French office
// software.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("sniffing charset: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(buf, bom.prefix) {
			continue
		}

		if bom.enc == nil {
			_, _ = br.Discard(len(bom.prefix))
			return br, bom.charset, nil
		}

		return transform.NewReader(br, bom.enc.NewDecoder()), bom.charset, nil
	}

	if validUTF8(buf, len(buf) == sniffSize) {
		return br, UTF8, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if res.Charset == UTF8 {
			return br, UTF8, nil
		}

		if enc, ok := singleByte[res.Charset]; ok {
			return transform.NewReader(br, enc.NewDecoder()), res.Charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// validUTF8 tolerates a rune cut by the end of a truncated sample.
func validUTF8(buf []byte, truncated bool) bool {
	if truncated {
		for i := 0; i < utf8.UTFMax && len(buf) > 0; i++ {
			if utf8.Valid(buf) {
				return true
			}

			if utf8.RuneStart(buf[len(buf)-1]) {
				buf = buf[:len(buf)-1]
				break
			}

			buf = buf[:len(buf)-1]
		}
	}

	return utf8.Valid(buf)
}
