package core

import (
	"errors"
	"io"
	"syscall"

	"github.com/google/uuid"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/stream"
	"github.com/fulldump/snapdb/zerrors"
)

// ioError maps a transport failure to a StreamIOError carrying the errno.
func ioError(err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &zerrors.StreamIOError{Errno: errno}
	}
	if errors.Is(err, io.ErrClosedPipe) {
		return &zerrors.StreamIOError{Errno: syscall.EPIPE}
	}
	if errors.Is(err, io.ErrShortWrite) {
		return &zerrors.StreamIOError{Errno: syscall.EIO}
	}
	return &zerrors.StreamIOError{Errno: syscall.EIO}
}

// Send writes a replication stream for a snapshot, or for the current state
// of a dataset, to w. An empty from produces a full stream, otherwise from
// must name a snapshot or bookmark on the target's lineage. Unknown
// features are refused before anything is written.
func (s *Store) Send(to, from string, features []string, w io.Writer) error {
	for _, f := range features {
		if !stream.KnownFeatures[f] {
			return &zerrors.UnknownStreamFeature{Feature: f}
		}
	}

	if names.IsBookmark(to) {
		return &zerrors.NameInvalid{Name: to}
	}
	if names.IsSnapshot(to) {
		switch names.CheckSnapshot(to) {
		case names.Invalid:
			return &zerrors.NameInvalid{Name: to}
		case names.TooLongName, names.TooLongComponent:
			return &zerrors.NameTooLong{Name: to}
		}
	} else {
		switch names.CheckDataset(to) {
		case names.Invalid:
			return &zerrors.NameInvalid{Name: to}
		case names.TooLongName, names.TooLongComponent:
			return &zerrors.NameTooLong{Name: to}
		}
	}

	if from != "" {
		if !names.IsSnapshot(from) && !names.IsBookmark(from) {
			return &zerrors.NameInvalid{Name: from}
		}
		check := names.CheckSnapshot
		if names.IsBookmark(from) {
			check = names.CheckBookmark
		}
		switch check(from) {
		case names.Invalid:
			return &zerrors.NameInvalid{Name: from}
		case names.TooLongName, names.TooLongComponent:
			return &zerrors.NameTooLong{Name: from}
		}
		if names.Pool(from) != names.Pool(to) {
			return &zerrors.PoolsDiffer{Name: from}
		}
	}

	ps, ok := s.getPool(names.Pool(to))
	if !ok {
		return &zerrors.SnapshotNotFound{Name: to}
	}

	h, records, err := func() (stream.Header, []stream.Record, error) {
		ps.mu.RLock()
		defer ps.mu.RUnlock()

		var toDS *Dataset
		var toID Identity
		var toData map[string][]byte

		if dsName, snapName, isSnap := names.SplitSnapshot(to); isSnap {
			ds := ps.datasets[dsName]
			if ds == nil {
				return stream.Header{}, nil, &zerrors.SnapshotNotFound{Name: to}
			}
			snap := ds.snapsByName[snapName]
			if snap == nil {
				return stream.Header{}, nil, &zerrors.SnapshotNotFound{Name: to}
			}
			toDS, toID, toData = ds, snap.id, snap.data
		} else {
			ds := ps.datasets[to]
			if ds == nil {
				return stream.Header{}, nil, &zerrors.DatasetNotFound{Name: to}
			}
			// sending the live view gets a transient identity
			toDS = ds
			toID = Identity{GUID: uuid.New(), CreateTxg: ps.nextTxg}
			toData = ds.data
		}

		h := stream.Header{
			Features: features,
			ToGUID:   toID.GUID,
			ToTxg:    toID.CreateTxg,
		}

		if from == "" {
			return h, fullRecords(toData), nil
		}

		fromID, fromData, ok := ps.resolveSource(from)
		if !ok {
			// the error names the stream target, not the missing source
			return stream.Header{}, nil, &zerrors.SnapshotNotFound{Name: to}
		}
		if fromID.GUID == toID.GUID {
			return stream.Header{}, nil, &zerrors.SnapshotMismatch{Name: from}
		}
		member, onOrigin := lineageMember(toDS, toID.CreateTxg, fromID.GUID)
		if !member {
			return stream.Header{}, nil, &zerrors.SnapshotMismatch{Name: from}
		}

		h.Incremental = true
		h.Clone = onOrigin
		h.FromGUID = fromID.GUID
		h.FromTxg = fromID.CreateTxg
		return h, diffRecords(fromData, toData), nil
	}()
	if err != nil {
		return err
	}

	sw, err := stream.NewWriter(w, h)
	if err != nil {
		return ioError(err)
	}
	for _, rec := range records {
		if err := sw.WriteRecord(rec); err != nil {
			return ioError(err)
		}
	}
	if err := sw.Close(); err != nil {
		return ioError(err)
	}

	return nil
}
