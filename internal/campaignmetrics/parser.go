package campaignmetrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrFileRead reports an upload that could not be read or decoded.
	ErrFileRead = errors.New("could not read the selected file")
	// ErrParse reports a file whose structure is not a supported export.
	ErrParse = errors.New("file format is not supported")
)

const utf8BOM = "\ufeff"

// ParseResult is the outcome of parsing one export.
type ParseResult struct {
	Rows []Row
	// Count is len(Rows); blank lines are never counted.
	Count int
	// Headers holds the resolved key of every header cell, in file order.
	Headers   []Field
	Delimiter rune
}

// ParseReader reads r fully and parses it. Input that is not valid UTF-8 is
// decoded as Windows-1252, the usual encoding of spreadsheet exports.
func ParseReader(r io.Reader) (ParseResult, error) {
	if r == nil {
		return ParseResult{}, ErrFileRead
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrFileRead, err)
	}

	text := string(raw)
	if !utf8.Valid(raw) {
		decoded, decErr := charmap.Windows1252.NewDecoder().String(text)
		if decErr != nil {
			return ParseResult{}, fmt.Errorf("%w: %v", ErrFileRead, decErr)
		}
		text = decoded
	}
	return Parse(text)
}

// Parse turns delimited export text into rows. The first line is the header;
// a comma anywhere in it selects comma as the delimiter, otherwise semicolon.
func Parse(text string) (ParseResult, error) {
	text = strings.TrimPrefix(text, utf8BOM)

	firstLine, _, _ := strings.Cut(text, "\n")
	firstLine = strings.TrimRight(firstLine, "\r")
	if strings.TrimSpace(firstLine) == "" {
		return ParseResult{}, fmt.Errorf("%w: missing header row", ErrParse)
	}

	delimiter := ';'
	if strings.Contains(firstLine, ",") {
		delimiter = ','
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	headerCells, err := reader.Read()
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: reading header: %v", ErrParse, err)
	}
	if spansLines(headerCells) {
		return ParseResult{}, fmt.Errorf("%w: unterminated quote in header", ErrParse)
	}
	headers := make([]Field, len(headerCells))
	for i, cell := range headerCells {
		headers[i], _ = ResolveHeader(cell)
	}

	result := ParseResult{Headers: headers, Delimiter: delimiter}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if spansLines(record) {
			line, _ := reader.FieldPos(0)
			return ParseResult{}, fmt.Errorf("%w: unterminated quote on line %d", ErrParse, line)
		}
		if blankRecord(record) {
			continue
		}
		result.Rows = append(result.Rows, buildRow(headers, record, delimiter))
	}
	result.Count = len(result.Rows)
	return result, nil
}

func buildRow(headers []Field, record []string, delimiter rune) Row {
	var row Row
	for i, key := range headers {
		if key == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		if key.IsNumeric() {
			row.setNumber(key, ParseNumber(value, delimiter == ';'))
			continue
		}
		row.setText(key, value)
	}
	return row
}

// spansLines reports a record that swallowed a line break. Every record is a
// single line, so this only happens after an unbalanced quote.
func spansLines(record []string) bool {
	for _, cell := range record {
		if strings.ContainsAny(cell, "\r\n") {
			return true
		}
	}
	return false
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber coerces a cell to a non-negative finite number. Like a lenient
// float parse it reads the longest numeric prefix, and blank or unparseable
// cells give 0. With brazilian set, "1.234,56" reads as 1234.56.
func ParseNumber(cell string, brazilian bool) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0
	}
	if brazilian && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	prefix := leadingNumber.FindString(s)
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
