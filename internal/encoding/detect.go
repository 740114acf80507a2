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

const (
	CharsetUTF8    = "UTF-8"
	CharsetUTF16LE = "UTF-16LE"
	CharsetUTF16BE = "UTF-16BE"
	CharsetLatin1  = "windows-1252"
	CharsetLatin9  = "ISO-8859-15"
	CharsetTurkish = "ISO-8859-9"
)

const peekSize = 8192

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decoders maps chardet charset names to the decoder used for them.
var decoders = map[string]struct {
	name string
	enc  encoding.Encoding
}{
	"ISO-8859-1":   {CharsetLatin1, charmap.Windows1252},
	"windows-1252": {CharsetLatin1, charmap.Windows1252},
	"ISO-8859-15":  {CharsetLatin9, charmap.ISO8859_15},
	"ISO-8859-9":   {CharsetTurkish, charmap.ISO8859_9},
}

// Detect sniffs the charset of r and returns a reader producing UTF-8 along with
// the name of the detected source charset.
//
// Order: BOM, valid UTF-8, chardet heuristics, then Windows-1252 as the fallback
// (spreadsheet tools on Windows export delimited text in it by default).
func Detect(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, CharsetUTF8, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), CharsetUTF16LE, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), CharsetUTF16BE, nil
	}

	if validUTF8Prefix(buf) {
		return br, CharsetUTF8, nil
	}

	result, detectErr := chardet.NewTextDetector().DetectBest(buf)
	if detectErr == nil {
		if result.Charset == CharsetUTF8 {
			return br, CharsetUTF8, nil
		}

		if d, ok := decoders[result.Charset]; ok {
			return transform.NewReader(br, d.enc.NewDecoder()), d.name, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), CharsetLatin1, nil
}

// validUTF8Prefix reports whether buf is valid UTF-8, tolerating a multi-byte
// sequence cut off by the peek window.
func validUTF8Prefix(buf []byte) bool {
	if utf8.Valid(buf) {
		return true
	}

	for cut := 1; cut < utf8.UTFMax && cut <= len(buf); cut++ {
		if !utf8.RuneStart(buf[len(buf)-cut]) {
			continue
		}

		return utf8.Valid(buf[:len(buf)-cut])
	}

	return false
}
