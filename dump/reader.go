package dump

import (
	"bufio"
	"compress/bzip2"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ErrTruncatedPage is returned when the dump ends inside a <page> element.
var ErrTruncatedPage = errors.New("dump ends inside a page")

const (
	pageOpen  = "<page>"
	pageClose = "</page>"
)

// Block is the raw text of one <page> element and its byte span [Start, Stop)
// in the (decompressed) dump.
type Block struct {
	Text  string
	Start int64
	Stop  int64
}

// Reader splits a dump into page blocks without decoding the XML, so a
// malformed page never stops the pages after it from being read.
type Reader struct {
	r      *bufio.Reader
	offset int64 // bytes read from r

	// tail is the part of the last line after a </page> that has not been
	// scanned yet.
	tail string
}

// NewReader reads page blocks from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<20)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset - int64(len(r.tail))
}

// readLine returns the next line to scan and its offset. A pending tail is
// returned before anything new is read.
func (r *Reader) readLine() (string, int64, error) {
	if r.tail != "" {
		line := r.tail
		r.tail = ""
		return line, r.offset - int64(len(line)), nil
	}
	line, err := r.r.ReadString('\n')
	start := r.offset
	r.offset += int64(len(line))
	return line, start, err
}

// Next returns the next page block, or io.EOF when the dump is exhausted.
func (r *Reader) Next() (Block, error) {
	var (
		b      strings.Builder
		inPage bool
		start  int64
	)
	for {
		line, lineStart, err := r.readLine()

		if line != "" {
			segStart := lineStart
			segment := line
			if !inPage {
				i := strings.Index(line, pageOpen)
				if i >= 0 {
					inPage = true
					start = lineStart + int64(i)
					segment = line[i:]
					segStart = start
				}
			}
			if inPage {
				if j := strings.Index(segment, pageClose); j >= 0 {
					end := j + len(pageClose)
					b.WriteString(segment[:end])
					r.tail = segment[end:]
					return Block{Text: b.String(), Start: start, Stop: segStart + int64(end)}, nil
				}
				b.WriteString(segment)
			}
		}

		if err == io.EOF {
			if inPage {
				return Block{}, errors.Wrapf(ErrTruncatedPage, "page starting at byte %d", start)
			}
			return Block{}, io.EOF
		}
		if err != nil {
			return Block{}, errors.Wrap(err, "reading dump")
		}
	}
}

type dumpFile struct {
	io.Reader
	closers []io.Closer
}

func (d *dumpFile) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenDump opens a dump file, decompressing .bz2 and .gz files on the fly.
func OpenDump(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening dump")
	}
	switch {
	case strings.HasSuffix(path, ".bz2"):
		return &dumpFile{Reader: bzip2.NewReader(bufio.NewReaderSize(f, 1<<20)), closers: []io.Closer{f}}, nil
	case strings.HasSuffix(path, ".gz"):
		z, err := gzip.NewReader(bufio.NewReaderSize(f, 1<<20))
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "opening gzip dump")
		}
		return &dumpFile{Reader: z, closers: []io.Closer{f, z}}, nil
	default:
		return &dumpFile{Reader: f, closers: []io.Closer{f}}, nil
	}
}
