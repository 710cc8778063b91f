// Package stream implements the binary replication stream format.
//
// A stream carries one snapshot: its identity, the identity of the optional
// incremental source, the features the sender relied on and a sequence of
// data records. A trailer with the record count closes the stream so a
// truncated body is always detectable.
package stream

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/fulldump/snapdb/zerrors"
)

var magic = [8]byte{'S', 'N', 'A', 'P', 'S', 'T', 'R', 'M'}

const version = 1

const (
	flagIncremental = 1 << 0
	flagClone       = 1 << 1
)

const (
	recordData    = 1
	recordRemove  = 2
	recordTrailer = 0xFF
)

// KnownFeatures is the set of stream features this implementation can emit
// and apply.
var KnownFeatures = map[string]bool{
	"large_blocks":  true,
	"embedded_data": true,
}

// Header identifies the snapshot a stream carries.
type Header struct {
	Features []string

	ToGUID uuid.UUID
	ToTxg  uint64

	// Incremental source, valid when Incremental is set. Clone marks a
	// source that lives on the origin lineage instead of the target
	// dataset itself.
	Incremental bool
	Clone       bool
	FromGUID    uuid.UUID
	FromTxg     uint64
}

// Record is a single data mutation. Value is nil for removals.
type Record struct {
	Remove bool
	Key    string
	Value  []byte
}

// HeaderSize returns the encoded size of a header, for space estimates.
func HeaderSize(h Header) uint64 {
	size := uint64(8 + 1 + 1 + 16 + 8 + 2)
	if h.Incremental {
		size += 16 + 8
	}
	for _, f := range h.Features {
		size += 2 + uint64(len(f))
	}
	return size
}

// RecordSize returns the encoded size of a record.
func RecordSize(r Record) uint64 {
	size := uint64(1 + 2 + len(r.Key))
	if !r.Remove {
		size += 4 + uint64(len(r.Value))
	}
	return size
}

// TrailerSize is the encoded size of the stream trailer.
const TrailerSize = 1 + 4

type Writer struct {
	w     io.Writer
	count uint32
}

// NewWriter writes the stream header and returns a Writer for the records.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, magic[:]...)
	buf = append(buf, version)

	flags := byte(0)
	if h.Incremental {
		flags |= flagIncremental
	}
	if h.Clone {
		flags |= flagClone
	}
	buf = append(buf, flags)

	buf = append(buf, h.ToGUID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, h.ToTxg)
	if h.Incremental {
		buf = append(buf, h.FromGUID[:]...)
		buf = binary.BigEndian.AppendUint64(buf, h.FromTxg)
	}

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(h.Features)))
	for _, f := range h.Features {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(f)))
		buf = append(buf, f...)
	}

	if _, err := w.Write(buf); err != nil {
		return nil, err
	}

	return &Writer{w: w}, nil
}

func (w *Writer) WriteRecord(r Record) error {
	buf := make([]byte, 0, 16+len(r.Key)+len(r.Value))
	if r.Remove {
		buf = append(buf, recordRemove)
	} else {
		buf = append(buf, recordData)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(r.Key)))
	buf = append(buf, r.Key...)
	if !r.Remove {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Value)))
		buf = append(buf, r.Value...)
	}

	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	w.count++
	return nil
}

// Close writes the trailer. It does not close the underlying writer.
func (w *Writer) Close() error {
	buf := make([]byte, 0, 5)
	buf = append(buf, recordTrailer)
	buf = binary.BigEndian.AppendUint32(buf, w.count)
	_, err := w.w.Write(buf)
	return err
}

type Reader struct {
	r      io.Reader
	header Header
	count  uint32
	done   bool
}

func badStream(reason string) error {
	return &zerrors.BadStream{Reason: reason}
}

// readFull distinguishes transport failures from short payloads: running out
// of bytes is a malformed stream, not an I/O error.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return badStream("unexpected end of stream")
	}
	return err
}

// NewReader parses the stream header.
func NewReader(r io.Reader) (*Reader, error) {
	head := make([]byte, 8+1+1)
	if err := readFull(r, head); err != nil {
		return nil, err
	}
	if [8]byte(head[:8]) != magic {
		return nil, badStream("bad magic")
	}
	if head[8] != version {
		return nil, badStream("unsupported version")
	}
	flags := head[9]
	if flags&^(flagIncremental|flagClone) != 0 {
		return nil, badStream("unknown flags")
	}

	h := Header{
		Incremental: flags&flagIncremental != 0,
		Clone:       flags&flagClone != 0,
	}
	if h.Clone && !h.Incremental {
		return nil, badStream("clone flag without source")
	}

	ident := make([]byte, 16+8)
	if err := readFull(r, ident); err != nil {
		return nil, err
	}
	h.ToGUID = uuid.UUID(ident[:16])
	h.ToTxg = binary.BigEndian.Uint64(ident[16:])

	if h.Incremental {
		if err := readFull(r, ident); err != nil {
			return nil, err
		}
		h.FromGUID = uuid.UUID(ident[:16])
		h.FromTxg = binary.BigEndian.Uint64(ident[16:])
	}

	n := make([]byte, 2)
	if err := readFull(r, n); err != nil {
		return nil, err
	}
	featureCount := binary.BigEndian.Uint16(n)
	for i := 0; i < int(featureCount); i++ {
		if err := readFull(r, n); err != nil {
			return nil, err
		}
		f := make([]byte, binary.BigEndian.Uint16(n))
		if err := readFull(r, f); err != nil {
			return nil, err
		}
		h.Features = append(h.Features, string(f))
	}

	return &Reader{r: r, header: h}, nil
}

func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next record. It returns io.EOF after a valid trailer and
// BadStream when the body is truncated or corrupt.
func (r *Reader) Next() (Record, error) {
	if r.done {
		return Record{}, io.EOF
	}

	kind := make([]byte, 1)
	if err := readFull(r.r, kind); err != nil {
		return Record{}, err
	}

	switch kind[0] {
	case recordTrailer:
		buf := make([]byte, 4)
		if err := readFull(r.r, buf); err != nil {
			return Record{}, err
		}
		if binary.BigEndian.Uint32(buf) != r.count {
			return Record{}, badStream("record count mismatch")
		}
		r.done = true
		return Record{}, io.EOF

	case recordData, recordRemove:
		buf := make([]byte, 2)
		if err := readFull(r.r, buf); err != nil {
			return Record{}, err
		}
		key := make([]byte, binary.BigEndian.Uint16(buf))
		if err := readFull(r.r, key); err != nil {
			return Record{}, err
		}
		rec := Record{Key: string(key)}
		if kind[0] == recordRemove {
			rec.Remove = true
			r.count++
			return rec, nil
		}
		buf = make([]byte, 4)
		if err := readFull(r.r, buf); err != nil {
			return Record{}, err
		}
		rec.Value = make([]byte, binary.BigEndian.Uint32(buf))
		if err := readFull(r.r, rec.Value); err != nil {
			return Record{}, err
		}
		r.count++
		return rec, nil
	}

	return Record{}, badStream("unknown record type")
}
