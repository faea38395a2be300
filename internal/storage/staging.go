package storage

import (
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"

	"github.com/danielledeleo/wikigraph/wiki"
	"github.com/danielledeleo/wikigraph/wiki/lang"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Compression selects how the staging log is stored on disk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// ParseCompression validates a staging.compression setting. An empty string
// selects zstd.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionZstd:
		return CompressionZstd, nil
	case CompressionNone:
		return CompressionNone, nil
	}
	return "", &wiki.ConfigurationError{Setting: "staging.compression", Value: s, Err: errors.New("expected zstd or none")}
}

var errSinkClosed = errors.New("staging sink closed")

// stagingSink is the append-only log records are staged in during a load
// session: a CSV file with a header row naming the local_link columns,
// optionally zstd-compressed. Append is safe for concurrent use.
//
// The anchor column is stored Go-quoted. encoding/csv rewrites \r\n inside
// quoted fields to \n, and quoting keeps carriage returns, NUL and invalid
// UTF-8 out of the CSV layer so anchors replay byte for byte.
type stagingSink struct {
	mu          sync.Mutex
	path        string
	file        *os.File
	zw          *zstd.Encoder
	w           *csv.Writer
	row         []string
	rows        int64
	closed      bool
	compression Compression
}

func newStagingSink(dir string, compression Compression) (*stagingSink, error) {
	f, err := os.CreateTemp(dir, "locallink-*.csv")
	if err != nil {
		return nil, errors.Wrap(err, "creating staging file")
	}
	s := &stagingSink{
		path:        f.Name(),
		file:        f,
		row:         make([]string, len(linkColumns)),
		compression: compression,
	}
	var out io.Writer = f
	if compression == CompressionZstd {
		s.zw, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			f.Close()
			os.Remove(s.path)
			return nil, errors.Wrap(err, "creating staging encoder")
		}
		out = s.zw
	}
	s.w = csv.NewWriter(out)
	if err := s.w.Write(linkColumns); err != nil {
		s.discard()
		return nil, errors.Wrap(err, "writing staging header")
	}
	return s, nil
}

// Append stages one record.
func (s *stagingSink) Append(l wiki.LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSinkClosed
	}
	s.row[0] = strconv.FormatInt(int64(l.Language), 10)
	s.row[1] = strconv.Quote(l.AnchorText)
	s.row[2] = strconv.FormatInt(l.SourceID, 10)
	s.row[3] = strconv.FormatInt(l.DestID, 10)
	s.row[4] = strconv.FormatInt(l.Location, 10)
	s.row[5] = strconv.FormatBool(l.IsParseable)
	s.row[6] = strconv.FormatInt(int64(l.LocationType), 10)
	if err := s.w.Write(s.row); err != nil {
		return errors.Wrap(err, "writing staging row")
	}
	s.rows++
	return nil
}

// Rows returns the number of records staged so far.
func (s *stagingSink) Rows() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// Close flushes the log. Appends after Close fail.
func (s *stagingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	err := s.w.Error()
	if s.zw != nil {
		if cerr := s.zw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "closing staging file")
}

// Replay reads the closed log back in append order.
func (s *stagingSink) Replay(fn func(wiki.LinkRecord) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(err, "opening staging file")
	}
	defer f.Close()

	var in io.Reader = f
	if s.compression == CompressionZstd {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "opening staging decoder")
		}
		defer zr.Close()
		in = zr
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = len(linkColumns)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return errors.Wrap(err, "reading staging header")
	}
	if !slices.Equal(header, linkColumns) {
		return errors.Errorf("unexpected staging header %v", header)
	}

	for line := int64(2); ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading staging row %d", line)
		}
		l, err := decodeStagedRow(rec)
		if err != nil {
			return errors.Wrapf(err, "decoding staging row %d", line)
		}
		if err := fn(l); err != nil {
			return err
		}
	}
}

func decodeStagedRow(rec []string) (wiki.LinkRecord, error) {
	var (
		l    wiki.LinkRecord
		ints [5]int64
		err  error
	)
	for i, col := range []int{0, 2, 3, 4, 6} {
		if ints[i], err = strconv.ParseInt(rec[col], 10, 64); err != nil {
			return l, errors.Wrap(err, linkColumns[col])
		}
	}
	parseable, err := strconv.ParseBool(rec[5])
	if err != nil {
		return l, errors.Wrap(err, linkColumns[5])
	}
	locType, err := wiki.LocationTypeFromOrdinal(ints[4])
	if err != nil {
		return l, err
	}
	anchor, err := strconv.Unquote(rec[1])
	if err != nil {
		return l, errors.Wrap(err, linkColumns[1])
	}
	return wiki.LinkRecord{
		Language:     lang.ID(ints[0]),
		AnchorText:   anchor,
		SourceID:     ints[1],
		DestID:       ints[2],
		Location:     ints[3],
		IsParseable:  parseable,
		LocationType: locType,
	}, nil
}

// Remove deletes the log file.
func (s *stagingSink) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing staging file")
	}
	return nil
}

func (s *stagingSink) discard() {
	s.Close()
	s.Remove()
}
