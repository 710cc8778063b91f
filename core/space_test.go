package core

import (
	"bytes"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/snapdb/zerrors"
)

func TestSpaceBetween(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.WriteData("tank/fs1", "file1", make([]byte, 1024)))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1"}, nil))
	biff.AssertNil(s.WriteData("tank/fs1", "file2", make([]byte, 512)))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap2"}, nil))

	space, err := s.SpaceBetween("tank/fs1@snap1", "tank/fs1@snap2")
	biff.AssertNil(err)
	if space < 512 || space > 600 {
		t.Fatalf("unexpected space estimate: %d", space)
	}

	// the degenerate range reports the snapshot's own footprint
	space, err = s.SpaceBetween("tank/fs1@snap1", "tank/fs1@snap1")
	biff.AssertNil(err)
	if space < 1024 {
		t.Fatalf("unexpected space estimate: %d", space)
	}
}

func TestSpaceBetweenErrors(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Create("tank/fs2", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1"}, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap2"}, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs2@snap"}, nil))

	_, err := s.SpaceBetween("tank/fs1", "tank/fs1@snap2")
	asError[*zerrors.NameInvalid](t, err)

	_, err = s.SpaceBetween("tank/fs1@missing", "tank/fs1@snap2")
	e := asError[*zerrors.SnapshotNotFound](t, err)
	biff.AssertEqual(e.Name, "tank/fs1@missing")

	_, err = s.SpaceBetween("tank/fs1@snap1", "tank/fs1@missing")
	e = asError[*zerrors.SnapshotNotFound](t, err)
	biff.AssertEqual(e.Name, "tank/fs1@missing")

	// ranges run oldest to newest within one dataset
	_, err = s.SpaceBetween("tank/fs1@snap2", "tank/fs1@snap1")
	asError[*zerrors.SnapshotMismatch](t, err)

	_, err = s.SpaceBetween("tank/fs2@snap", "tank/fs1@snap2")
	asError[*zerrors.SnapshotMismatch](t, err)
}

func TestSendSpace(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.WriteData("tank/fs1", "file1", make([]byte, 1024)))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1"}, nil))
	biff.AssertNil(s.WriteData("tank/fs1", "file2", make([]byte, 256)))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap2"}, nil))

	// the estimate matches what Send actually produces
	full, err := s.SendSpace("tank/fs1@snap2", "")
	biff.AssertNil(err)
	buf := &bytes.Buffer{}
	biff.AssertNil(s.Send("tank/fs1@snap2", "", nil, buf))
	biff.AssertEqual(full, uint64(buf.Len()))

	incremental, err := s.SendSpace("tank/fs1@snap2", "tank/fs1@snap1")
	biff.AssertNil(err)
	buf.Reset()
	biff.AssertNil(s.Send("tank/fs1@snap2", "tank/fs1@snap1", nil, buf))
	biff.AssertEqual(incremental, uint64(buf.Len()))

	if incremental >= full {
		t.Fatalf("incremental %d should be smaller than full %d", incremental, full)
	}
}

func TestSendSpaceErrors(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1"}, nil))
	biff.AssertNil(s.Bookmark(map[string]string{"tank/fs1#mark1": "tank/fs1@snap1"}))

	_, err := s.SendSpace("tank/fs1", "")
	asError[*zerrors.NameInvalid](t, err)

	_, err = s.SendSpace("tank/fs1@snap1", "tank/fs1#mark1")
	asError[*zerrors.NameInvalid](t, err)

	// the missing side is the one named
	_, err = s.SendSpace("tank/fs1@missing", "")
	e := asError[*zerrors.SnapshotNotFound](t, err)
	biff.AssertEqual(e.Name, "tank/fs1@missing")

	_, err = s.SendSpace("tank/fs1@snap1", "tank/fs1@missing")
	e = asError[*zerrors.SnapshotNotFound](t, err)
	biff.AssertEqual(e.Name, "tank/fs1@missing")

	_, err = s.SendSpace("tank/fs1@snap1", "tank/fs1@snap1")
	asError[*zerrors.SnapshotMismatch](t, err)
}
