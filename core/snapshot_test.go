package core

import (
	"strings"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/snapdb/zerrors"
)

func TestSnapshotBatch(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Create("tank/fs2", KindFilesystem, nil))

	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap", "tank/fs2@snap"}, nil))
	biff.AssertEqual(s.Exists("tank/fs1@snap"), true)
	biff.AssertEqual(s.Exists("tank/fs2@snap"), true)

	// one transaction for the whole batch
	list1, err := s.ListSnapshots("tank/fs1")
	biff.AssertNil(err)
	list2, err := s.ListSnapshots("tank/fs2")
	biff.AssertNil(err)
	biff.AssertEqual(list1[0].CreateTxg, list2[0].CreateTxg)
	if list1[0].GUID == list2[0].GUID {
		t.Fatal("each snapshot must get its own guid")
	}
}

func TestSnapshotEmptyBatch(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Snapshot(nil, nil))
}

func TestSnapshotUserProps(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))

	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, map[string]any{"user:note": "hello"}))

	list, err := s.ListSnapshots("tank/fs1")
	biff.AssertNil(err)
	biff.AssertEqual(list[0].Props["user:note"], "hello")
}

func TestSnapshotInvalidProps(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Create("tank/fs2", KindFilesystem, nil))

	err := s.Snapshot([]string{"tank/fs1@snap", "tank/fs2@snap"}, map[string]any{"atime": 1})
	failure := asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 2)
	asError[*zerrors.PropertyInvalid](t, err)
}

func TestSnapshotAlreadyExists(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))

	err := s.Snapshot([]string{"tank/fs1@snap"}, nil)
	e := asError[*zerrors.SnapshotExists](t, err)
	biff.AssertEqual(e.Name, "tank/fs1@snap")
}

func TestSnapshotMissingFilesystem(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))

	err := s.Snapshot([]string{"tank/fs1@snap", "tank/missing@snap"}, nil)
	failure := asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 1)
	asError[*zerrors.FilesystemNotFound](t, err)

	// nothing from the batch may exist
	biff.AssertEqual(s.Exists("tank/fs1@snap"), false)
}

func TestSnapshotExistsSuppressesMissing(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))

	err := s.Snapshot([]string{"tank/fs1@snap", "tank/missing@snap"}, nil)
	failure := asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 1)
	asError[*zerrors.SnapshotExists](t, err)
}

func TestSnapshotSyntaxFailures(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))

	err := s.Snapshot([]string{"tank/fs1@bad&name"}, nil)
	failure := asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 1)
	invalid := asError[*zerrors.NameInvalid](t, err)
	biff.AssertEqual(invalid.Name, "")

	err = s.Snapshot([]string{"tank/fs1@" + strings.Repeat("x", 256), "tank/fs1@" + strings.Repeat("y", 256)}, nil)
	failure = asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 1)
	tooLong := asError[*zerrors.NameTooLong](t, err)
	biff.AssertEqual(tooLong.Name, "")

	// full names over the limit are reported one by one
	comp := strings.Repeat("x", 130)
	long1 := "tank/" + comp + "/" + comp + "@snap1"
	long2 := "tank/" + comp + "/" + comp + "@snap2"
	err = s.Snapshot([]string{long1, long2, "tank/fs1@ok"}, nil)
	failure = asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 2)
	tooLong = asError[*zerrors.NameTooLong](t, err)
	if tooLong.Name == "" {
		t.Fatal("full name overruns must name the offender")
	}
	biff.AssertEqual(s.Exists("tank/fs1@ok"), false)

	err = s.Snapshot([]string{"tank/fs1@snap", "tank/fs1@snap"}, nil)
	failure = asError[*zerrors.SnapshotFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 1)
	asError[*zerrors.DuplicateSnapshots](t, err)
}

func TestSnapshotAcrossPools(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Create("misc/fs1", KindFilesystem, nil))

	err := s.Snapshot([]string{"tank/fs1@snap", "misc/fs1@snap"}, nil)
	asError[*zerrors.PoolsDiffer](t, err)
}

func TestSnapshotReadonlyPool(t *testing.T) {
	s, catalog := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	catalog.SetReadonly("tank", true)

	err := s.Snapshot([]string{"tank/fs1@snap"}, nil)
	asError[*zerrors.ReadOnlyPool](t, err)
}

func TestSnapshotNonexistentPool(t *testing.T) {
	s, _ := newTestStore()

	err := s.Snapshot([]string{"nopool/fs@snap"}, nil)
	asError[*zerrors.FilesystemNotFound](t, err)
}

func TestDestroySnapshots(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, nil))

	biff.AssertNil(s.DestroySnapshots([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, false))
	biff.AssertEqual(s.Exists("tank/fs1@snap1"), false)
	biff.AssertEqual(s.Exists("tank/fs1@snap2"), false)
}

func TestDestroySnapshotsLenient(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))

	// missing filesystems and snapshots are fine
	biff.AssertNil(s.DestroySnapshots([]string{"tank/fs1@missing", "tank/missing@snap"}, false))

	// malformed and over-long names cannot exist, so nothing to do
	biff.AssertNil(s.DestroySnapshots([]string{"tank/fs1@bad&name"}, false))
	comp := strings.Repeat("x", 130)
	biff.AssertNil(s.DestroySnapshots([]string{"tank/" + comp + "/" + comp + "@snap"}, false))

	// a component over the limit is still a hard error
	err := s.DestroySnapshots([]string{"tank/fs1@" + strings.Repeat("x", 256)}, false)
	asError[*zerrors.NameTooLong](t, err)

	err = s.DestroySnapshots([]string{"nopool/fs@snap"}, false)
	asError[*zerrors.PoolNotFound](t, err)
}

func TestDestroySnapshotsBlocked(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, nil))
	biff.AssertNil(s.Clone("tank/clone1", "tank/fs1@snap1", nil))

	err := s.DestroySnapshots([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, false)
	failure := asError[*zerrors.SnapshotDestructionFailure](t, err)
	biff.AssertEqual(len(failure.Errors), 1)
	asError[*zerrors.SnapshotIsCloned](t, err)

	// a blocked batch destroys nothing
	biff.AssertEqual(s.Exists("tank/fs1@snap1"), true)
	biff.AssertEqual(s.Exists("tank/fs1@snap2"), true)
}

func TestDeferredDestroy(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, nil))
	biff.AssertNil(s.Clone("tank/clone1", "tank/fs1@snap1", nil))

	biff.AssertNil(s.DestroySnapshots([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, true))

	// the cloned snapshot waits, the free one goes at once
	biff.AssertEqual(s.Exists("tank/fs1@snap1"), true)
	biff.AssertEqual(s.Exists("tank/fs1@snap2"), false)

	// the last clone disappearing completes the deferred destruction
	biff.AssertNil(s.DestroyDataset("tank/clone1"))
	biff.AssertEqual(s.Exists("tank/fs1@snap1"), false)
}
