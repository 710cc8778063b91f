package core

import (
	"errors"
	"io"
	"slices"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/stream"
	"github.com/fulldump/snapdb/zerrors"
)

func applyRecords(base map[string][]byte, records []stream.Record) map[string][]byte {
	out := cloneData(base)
	for _, rec := range records {
		if rec.Remove {
			delete(out, rec.Key)
		} else {
			out[rec.Key] = slices.Clone(rec.Value)
		}
	}
	return out
}

func recvError(err error) error {
	bad := &zerrors.BadStream{}
	if errors.As(err, &bad) {
		return err
	}
	return ioError(err)
}

// Receive creates the target snapshot from a replication stream. The whole
// stream is read and validated before any state changes, so a failed
// receive leaves the destination untouched.
func (s *Store) Receive(target string, r io.Reader, origin string, force bool) error {
	if names.IsBookmark(target) || !names.IsSnapshot(target) {
		return &zerrors.NameInvalid{Name: target}
	}
	switch names.CheckSnapshot(target) {
	case names.Invalid:
		return &zerrors.NameInvalid{Name: target}
	case names.TooLongName, names.TooLongComponent:
		return &zerrors.NameTooLong{Name: target}
	}

	sr, err := stream.NewReader(r)
	if err != nil {
		return recvError(err)
	}
	h := sr.Header()

	records := []stream.Record{}
	for {
		rec, err := sr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return recvError(err)
		}
		records = append(records, rec)
	}

	poolName := names.Pool(target)
	ps, ok := s.getPool(poolName)
	if !ok {
		return &zerrors.DatasetNotFound{Name: target}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.ReadOnlyPool{Pool: poolName}
	}
	for _, f := range h.Features {
		if !stream.KnownFeatures[f] {
			return &zerrors.UnknownStreamFeature{Feature: f}
		}
		if !s.catalog.FeatureEnabled(poolName, f) {
			return &zerrors.FeatureNotSupported{Pool: poolName, Feature: f}
		}
	}

	dsName, snapName, _ := names.SplitSnapshot(target)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	switch {
	case !h.Incremental:
		return s.receiveFull(ps, dsName, snapName, h, records, origin, force)
	case h.Clone:
		return s.receiveClone(ps, dsName, snapName, h, records, origin)
	default:
		return s.receiveIncremental(ps, dsName, snapName, h, records, force)
	}
}

func (s *Store) receiveFull(ps *poolState, dsName, snapName string, h stream.Header, records []stream.Record, origin string, force bool) error {
	// a full stream has no branch point, so a supplied origin can never
	// match it
	if origin != "" {
		if names.IsBookmark(origin) || !names.IsSnapshot(origin) {
			return &zerrors.NameInvalid{Name: origin}
		}
		if names.CheckSnapshot(origin) != names.Valid {
			return &zerrors.NameInvalid{Name: origin}
		}
		originDS, originSnap, _ := names.SplitSnapshot(origin)
		ds := ps.datasets[originDS]
		if ds == nil || ds.snapsByName[originSnap] == nil {
			return &zerrors.DatasetNotFound{Name: origin}
		}
		return &zerrors.StreamMismatch{Name: origin}
	}

	ds := ps.datasets[dsName]
	if ds == nil {
		if parentName, hasParent := names.Parent(dsName); hasParent {
			parent := ps.datasets[parentName]
			if parent == nil {
				return &zerrors.DatasetNotFound{Name: dsName}
			}
			if parent.kind != KindFilesystem {
				return &zerrors.WrongParent{Name: dsName}
			}
		}

		ds = newDataset(ps, dsName, KindFilesystem, nil)
		ds.createTxg = ps.bumpTxg()
		ds.data = applyRecords(nil, records)
		ps.datasets[dsName] = ds
		ds.addSnapshot(snapName, s.receivedIdentity(ps, h), s.now(), nil, cloneData(ds.data))
		return nil
	}

	if ds.snapsByName[snapName] != nil {
		return &zerrors.DatasetExists{Name: dsName}
	}
	if ds.snaps.Len() > 0 {
		if !force {
			return &zerrors.DatasetExists{Name: dsName}
		}
		snaps := ds.snapshotsAfter(0)
		for _, snap := range snaps {
			if len(snap.holds) > 0 {
				return &zerrors.DatasetBusy{Name: dsName}
			}
			if snap.clones > 0 {
				return &zerrors.DatasetExists{Name: dsName}
			}
		}
		for _, snap := range snaps {
			ps.dropSnapshot(snap)
		}
	} else if !force {
		return &zerrors.DestinationModified{Name: dsName}
	}

	ds.poisonViews()
	ds.data = applyRecords(nil, records)
	ds.modified = false
	ds.addSnapshot(snapName, s.receivedIdentity(ps, h), s.now(), nil, cloneData(ds.data))

	return nil
}

func (s *Store) receiveIncremental(ps *poolState, dsName, snapName string, h stream.Header, records []stream.Record, force bool) error {
	ds := ps.datasets[dsName]
	if ds == nil {
		return &zerrors.DatasetNotFound{Name: dsName}
	}

	src := ps.byGUID[h.FromGUID]
	if src == nil || src.ds != ds {
		return &zerrors.StreamMismatch{Name: dsName}
	}
	if ds.snapsByName[snapName] != nil {
		return &zerrors.DatasetExists{Name: dsName}
	}

	newer := ds.snapshotsAfter(src.id.CreateTxg)
	changed := ds.modified
	for _, snap := range newer {
		if !dataEqual(snap.data, src.data) {
			changed = true
			break
		}
	}

	if changed {
		if !force {
			return &zerrors.DestinationModified{Name: dsName}
		}
		for _, snap := range newer {
			if len(snap.holds) > 0 {
				return &zerrors.DatasetBusy{Name: dsName}
			}
			if snap.clones > 0 {
				return &zerrors.DatasetExists{Name: dsName}
			}
		}
		for _, snap := range newer {
			ps.dropSnapshot(snap)
		}
		ds.poisonViews()
	}

	ds.data = applyRecords(src.data, records)
	ds.modified = false
	ds.addSnapshot(snapName, s.receivedIdentity(ps, h), s.now(), nil, cloneData(ds.data))

	return nil
}

func (s *Store) receiveClone(ps *poolState, dsName, snapName string, h stream.Header, records []stream.Record, origin string) error {
	if ps.datasets[dsName] != nil {
		return &zerrors.BadStream{Reason: "clone stream into existing dataset"}
	}
	if origin == "" {
		return &zerrors.BadStream{Reason: "clone stream without origin"}
	}
	if names.IsBookmark(origin) || !names.IsSnapshot(origin) {
		return &zerrors.NameInvalid{Name: origin}
	}
	if names.CheckSnapshot(origin) != names.Valid {
		return &zerrors.NameInvalid{Name: origin}
	}

	originDS, originSnapName, _ := names.SplitSnapshot(origin)
	originDataset := ps.datasets[originDS]
	if originDataset == nil {
		return &zerrors.DatasetNotFound{Name: origin}
	}
	originSnap := originDataset.snapsByName[originSnapName]
	if originSnap == nil {
		return &zerrors.DatasetNotFound{Name: origin}
	}
	if originSnap.id.GUID != h.FromGUID {
		return &zerrors.StreamMismatch{Name: origin}
	}

	if parentName, hasParent := names.Parent(dsName); hasParent {
		parent := ps.datasets[parentName]
		if parent == nil {
			return &zerrors.DatasetNotFound{Name: dsName}
		}
		if parent.kind != KindFilesystem {
			return &zerrors.WrongParent{Name: dsName}
		}
	}

	ds := newDataset(ps, dsName, originDataset.kind, nil)
	ds.createTxg = ps.bumpTxg()
	ds.data = applyRecords(originSnap.data, records)
	ds.origin = originSnap
	originSnap.clones++
	ps.datasets[dsName] = ds
	ds.addSnapshot(snapName, s.receivedIdentity(ps, h), s.now(), nil, cloneData(ds.data))

	return nil
}

// receivedIdentity preserves the stream GUID but assigns a local creation
// transaction, so ordering within the pool stays monotonic while identity
// survives replication.
func (s *Store) receivedIdentity(ps *poolState, h stream.Header) Identity {
	return Identity{GUID: h.ToGUID, CreateTxg: ps.bumpTxg()}
}
