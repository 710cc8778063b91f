package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/fulldump/biff"
	"github.com/google/uuid"

	"github.com/fulldump/snapdb/zerrors"
)

func TestRoundTrip(t *testing.T) {
	h := Header{
		Features:    []string{"embedded_data"},
		ToGUID:      uuid.New(),
		ToTxg:       42,
		Incremental: true,
		FromGUID:    uuid.New(),
		FromTxg:     7,
	}

	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, h)
	biff.AssertNil(err)

	records := []Record{
		{Key: "file1", Value: []byte("hello")},
		{Key: "file2", Value: []byte{}},
		{Key: "gone", Remove: true},
	}
	for _, rec := range records {
		biff.AssertNil(w.WriteRecord(rec))
	}
	biff.AssertNil(w.Close())

	r, err := NewReader(buf)
	biff.AssertNil(err)
	biff.AssertEqualJson(r.Header(), h)

	for _, want := range records {
		rec, err := r.Next()
		biff.AssertNil(err)
		biff.AssertEqual(rec.Key, want.Key)
		biff.AssertEqual(rec.Remove, want.Remove)
		biff.AssertEqual(len(rec.Value), len(want.Value))
	}

	_, err = r.Next()
	biff.AssertEqual(err, io.EOF)
}

func TestFullStreamHasNoSource(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, Header{ToGUID: uuid.New(), ToTxg: 1})
	biff.AssertNil(err)
	biff.AssertNil(w.Close())

	r, err := NewReader(buf)
	biff.AssertNil(err)
	biff.AssertEqual(r.Header().Incremental, false)

	_, err = r.Next()
	biff.AssertEqual(err, io.EOF)
}

func TestGarbageHeader(t *testing.T) {
	zeros := bytes.NewReader(make([]byte, 1024))

	_, err := NewReader(zeros)
	badStream := &zerrors.BadStream{}
	biff.AssertEqual(errors.As(err, &badStream), true)
}

func TestTruncatedBody(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, Header{ToGUID: uuid.New(), ToTxg: 1})
	biff.AssertNil(err)
	biff.AssertNil(w.WriteRecord(Record{Key: "file1", Value: []byte("data")}))
	biff.AssertNil(w.Close())

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-3])
	r, err := NewReader(truncated)
	biff.AssertNil(err)

	_, err = r.Next() // the data record is intact
	biff.AssertNil(err)

	_, err = r.Next() // the trailer is not
	badStream := &zerrors.BadStream{}
	biff.AssertEqual(errors.As(err, &badStream), true)
}

func TestRecordCountMismatch(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, Header{ToGUID: uuid.New(), ToTxg: 1})
	biff.AssertNil(err)
	biff.AssertNil(w.WriteRecord(Record{Key: "file1", Value: []byte("data")}))

	// trailer claims zero records
	w.count = 0
	biff.AssertNil(w.Close())

	r, err := NewReader(buf)
	biff.AssertNil(err)

	_, err = r.Next()
	biff.AssertNil(err)

	_, err = r.Next()
	badStream := &zerrors.BadStream{}
	biff.AssertEqual(errors.As(err, &badStream), true)
}
