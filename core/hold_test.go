package core

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/snapdb/zerrors"
)

func TestHoldAndRelease(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))

	missing, err := s.Hold(map[string]string{"tank/fs1@snap": "tag1"}, nil)
	biff.AssertNil(err)
	biff.AssertEqual(len(missing), 0)

	holds, err := s.GetHolds("tank/fs1@snap")
	biff.AssertNil(err)
	biff.AssertEqual(len(holds), 1)
	if _, ok := holds["tag1"]; !ok {
		t.Fatal("expected hold tag1")
	}

	// held snapshots resist plain destruction
	err = s.DestroySnapshots([]string{"tank/fs1@snap"}, false)
	asError[*zerrors.SnapshotIsHeld](t, err)
	biff.AssertEqual(s.Exists("tank/fs1@snap"), true)

	missing, err = s.Release(map[string][]string{"tank/fs1@snap": {"tag1"}})
	biff.AssertNil(err)
	biff.AssertEqual(len(missing), 0)

	biff.AssertNil(s.DestroySnapshots([]string{"tank/fs1@snap"}, false))
}

func TestHoldMissingTargets(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))

	missing, err := s.Hold(map[string]string{
		"tank/fs1@snap":    "tag1",
		"tank/fs1@missing": "tag1",
	}, nil)
	biff.AssertNil(err)
	biff.AssertEqual(missing, []string{"tank/fs1@missing"})

	// a missing filesystem is a hard failure, not a missing entry
	_, err = s.Hold(map[string]string{"tank/missing@snap": "tag1"}, nil)
	asError[*zerrors.HoldFailure](t, err)
	asError[*zerrors.FilesystemNotFound](t, err)
}

func TestHoldErrors(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Create("misc/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))
	biff.AssertNil(s.Snapshot([]string{"misc/fs1@snap"}, nil))

	_, err := s.Hold(map[string]string{"tank/fs1@snap": "tag1", "misc/fs1@snap": "tag1"}, nil)
	asError[*zerrors.PoolsDiffer](t, err)

	_, err = s.Hold(map[string]string{"tank/fs1": "tag1"}, nil)
	asError[*zerrors.NameInvalid](t, err)

	_, err = s.Hold(map[string]string{"tank/fs1@snap": strings.Repeat("x", 256)}, nil)
	e := asError[*zerrors.NameTooLong](t, err)
	biff.AssertEqual(e.Name, strings.Repeat("x", 256))

	_, err = s.Hold(map[string]string{"tank/fs1@snap": "tag1"}, nil)
	biff.AssertNil(err)
	_, err = s.Hold(map[string]string{"tank/fs1@snap": "tag1"}, nil)
	asError[*zerrors.HoldExists](t, err)
}

func TestReleaseMissing(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))
	_, err := s.Hold(map[string]string{"tank/fs1@snap": "tag1"}, nil)
	biff.AssertNil(err)

	missing, err := s.Release(map[string][]string{
		"tank/fs1@snap":    {"tag1", "other"},
		"tank/fs1@missing": {"tag1"},
	})
	biff.AssertNil(err)
	biff.AssertEqual(missing, []string{"tank/fs1@missing", "tank/fs1@snap#other"})
}

func TestReleaseTooLongTag(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))
	_, err := s.Hold(map[string]string{"tank/fs1@snap": "tag1"}, nil)
	biff.AssertNil(err)

	// leniency covers snapshot names only, an over-long tag is a hard
	// error, same as in Hold
	longTag := strings.Repeat("t", 256)
	_, err = s.Release(map[string][]string{"tank/fs1@snap": {longTag}})
	asError[*zerrors.HoldReleaseFailure](t, err)
	e := asError[*zerrors.NameTooLong](t, err)
	biff.AssertEqual(e.Name, longTag)

	// nothing was released
	holds, err := s.GetHolds("tank/fs1@snap")
	biff.AssertNil(err)
	biff.AssertEqual(len(holds), 1)
}

func TestGetHoldsErrors(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))

	_, err := s.GetHolds("tank/fs1@missing")
	asError[*zerrors.SnapshotNotFound](t, err)

	// a dataset shaped name resolves to no snapshot
	_, err = s.GetHolds("tank/fs1")
	asError[*zerrors.SnapshotNotFound](t, err)

	_, err = s.GetHolds("tank/fs1@bad@snap")
	asError[*zerrors.NameInvalid](t, err)

	_, err = s.GetHolds("tank/fs1@" + strings.Repeat("x", 256))
	asError[*zerrors.NameTooLong](t, err)
}

func TestCleanupHandle(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap1", "tank/fs1@snap2"}, nil))

	handle := s.OpenCleanupHandle()
	_, err := s.Hold(map[string]string{"tank/fs1@snap1": "tag1", "tank/fs1@snap2": "tag2"}, handle)
	biff.AssertNil(err)

	// deferred destruction waits on the held snapshot
	biff.AssertNil(s.DestroySnapshots([]string{"tank/fs1@snap1"}, true))
	biff.AssertEqual(s.Exists("tank/fs1@snap1"), true)

	biff.AssertNil(handle.Close())

	holds, err := s.GetHolds("tank/fs1@snap2")
	biff.AssertNil(err)
	biff.AssertEqual(len(holds), 0)
	biff.AssertEqual(s.Exists("tank/fs1@snap1"), false)

	// the handle is spent
	err = handle.Close()
	asError[*zerrors.BadHoldCleanupHandle](t, err)
	_, err = s.Hold(map[string]string{"tank/fs1@snap2": "tag3"}, handle)
	asError[*zerrors.BadHoldCleanupHandle](t, err)
}

func TestCleanupHandleCloseRacingHold(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))

	handle := s.OpenCleanupHandle()

	wg := &sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Hold(map[string]string{"tank/fs1@snap": fmt.Sprintf("tag%d", i)}, handle)
		}(i)
	}
	biff.AssertNil(handle.Close())
	wg.Wait()

	// whether each hold won or lost the race against Close, none of them
	// may survive the closed handle
	holds, err := s.GetHolds("tank/fs1@snap")
	biff.AssertNil(err)
	biff.AssertEqual(len(holds), 0)
}

func TestCleanupHandleExplicitReleaseFirst(t *testing.T) {
	s, _ := newTestStore()
	biff.AssertNil(s.Create("tank/fs1", KindFilesystem, nil))
	biff.AssertNil(s.Snapshot([]string{"tank/fs1@snap"}, nil))

	handle := s.OpenCleanupHandle()
	_, err := s.Hold(map[string]string{"tank/fs1@snap": "tag1"}, handle)
	biff.AssertNil(err)

	missing, err := s.Release(map[string][]string{"tank/fs1@snap": {"tag1"}})
	biff.AssertNil(err)
	biff.AssertEqual(len(missing), 0)

	biff.AssertNil(handle.Close())
}
