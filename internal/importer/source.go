package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// DefaultMaxUploadBytes bounds an uploaded import file.
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// DefaultExtensions are the accepted upload file extensions.
var DefaultExtensions = []string{"csv", "txt"}

// ValidateUpload rejects files with an unexpected extension or above limit.
func ValidateUpload(name string, size int64, limit int64, allowed []string) error {
	if len(allowed) == 0 {
		allowed = DefaultExtensions
	}
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	accepted := false
	for _, a := range allowed {
		if ext == a {
			accepted = true
			break
		}
	}
	if !accepted {
		return apperrors.NewUnsupportedFileType(ext, allowed)
	}
	if size > limit {
		return apperrors.NewPayloadTooLarge(limit)
	}
	return nil
}

// newCSVReader wraps src in a comma-separated reader that tolerates rows of
// varying width and a leading UTF-8 byte order mark.
func newCSVReader(src io.Reader) *csv.Reader {
	r := csv.NewReader(stripUTF8BOM(bufio.NewReader(src)))
	r.FieldsPerRecord = -1
	return r
}

// lineCounter counts the physical lines read from a source.
type lineCounter struct {
	r       io.Reader
	lines   int
	partial bool
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	for _, b := range p[:n] {
		if b == '\n' {
			c.lines++
			c.partial = false
		} else {
			c.partial = true
		}
	}
	return n, err
}

// total returns the number of lines seen, counting an unterminated last line.
func (c *lineCounter) total() int {
	if c.partial {
		return c.lines + 1
	}
	return c.lines
}

// record is one CSV record together with its physical position.
type record struct {
	fields []string
	line   int
	// blank lists the empty physical lines between the previous record and
	// this one. encoding/csv drops them without returning a record.
	blank []int
}

// recordReader reads CSV records and tracks the physical line of each,
// including the empty lines the csv package skips.
type recordReader struct {
	csv     *csv.Reader
	counter *lineCounter
	last    int
}

func newRecordReader(src io.Reader) *recordReader {
	counter := &lineCounter{r: src}
	return &recordReader{csv: newCSVReader(counter), counter: counter}
}

// read returns the next record. At io.EOF the record carries the trailing
// blank lines of the source. On a read error other than a parse error the
// record line is the first line not yet consumed.
func (r *recordReader) read() (record, error) {
	row, err := r.csv.Read()

	var start, end int
	var parseErr *csv.ParseError
	switch {
	case err == nil:
		start, _ = r.csv.FieldPos(0)
		last := len(row) - 1
		end, _ = r.csv.FieldPos(last)
		end += strings.Count(row[last], "\n")
	case errors.As(err, &parseErr):
		start, end = parseErr.StartLine, parseErr.Line
	case errors.Is(err, io.EOF):
		start = r.counter.total() + 1
		end = start - 1
	default:
		return record{line: r.last + 1}, err
	}

	rec := record{fields: row, line: start}
	for l := r.last + 1; l < start; l++ {
		rec.blank = append(rec.blank, l)
	}
	r.last = end
	return rec, err
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
