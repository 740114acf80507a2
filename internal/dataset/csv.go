package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	enc "github.com/MrJamesThe3rd/retailboard/internal/encoding"
)

// candidates are the delimiters sniffed from the header line, in preference order.
var candidates = []rune{',', ';', '\t', '|'}

// CSVReader reads delimited text in any common charset.
type CSVReader struct{}

func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

func (c *CSVReader) Read(r io.Reader) (Table, error) {
	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return Table{}, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Table{}, fmt.Errorf("peek: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}

	t, err := build(records)
	if err != nil {
		return Table{}, err
	}

	t.Charset = charset

	return t, nil
}

// sniffDelimiter counts candidate delimiters outside quotes on the first line
// and returns the most frequent one, defaulting to a comma.
func sniffDelimiter(buf []byte) rune {
	counts := make(map[rune]int, len(candidates))
	inQuotes := false

	for _, b := range string(buf) {
		if b == '"' {
			inQuotes = !inQuotes
			continue
		}

		if inQuotes {
			continue
		}

		if b == '\n' || b == '\r' {
			break
		}

		counts[b]++
	}

	best := ','
	for _, d := range candidates {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}
