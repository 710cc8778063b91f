package core

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/stream"
	"github.com/fulldump/snapdb/zerrors"
)

// diffRecords computes the records that turn the from view into the to
// view: changed and added keys plus removals, in key order.
func diffRecords(from, to map[string][]byte) []stream.Record {
	keys := make([]string, 0, len(to)+len(from))
	for k := range to {
		keys = append(keys, k)
	}
	for k := range from {
		if _, ok := to[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	records := []stream.Record{}
	for _, k := range keys {
		v, ok := to[k]
		if !ok {
			records = append(records, stream.Record{Remove: true, Key: k})
			continue
		}
		if w, had := from[k]; had && slices.Equal(v, w) {
			continue
		}
		records = append(records, stream.Record{Key: k, Value: slices.Clone(v)})
	}
	return records
}

func fullRecords(to map[string][]byte) []stream.Record {
	return diffRecords(nil, to)
}

func streamSize(h stream.Header, records []stream.Record) uint64 {
	size := stream.HeaderSize(h) + stream.TrailerSize
	for _, r := range records {
		size += stream.RecordSize(r)
	}
	return size
}

func dataSize(data map[string][]byte) uint64 {
	size := uint64(0)
	for k, v := range data {
		size += uint64(len(k)) + uint64(len(v))
	}
	return size
}

// resolveSource finds a snapshot or bookmark by full name anywhere in the
// pool and returns its identity and frozen data.
func (ps *poolState) resolveSource(name string) (Identity, map[string][]byte, bool) {
	if dsName, snapName, ok := names.SplitSnapshot(name); ok {
		if ds := ps.datasets[dsName]; ds != nil {
			if snap := ds.snapsByName[snapName]; snap != nil {
				return snap.id, snap.data, true
			}
		}
		return Identity{}, nil, false
	}
	if dsName, markName, ok := names.SplitBookmark(name); ok {
		if ds := ps.datasets[dsName]; ds != nil {
			if mark := ds.bookmarks[markName]; mark != nil {
				return mark.id, mark.data, true
			}
		}
	}
	return Identity{}, nil, false
}

// lineageMember reports whether the GUID belongs to a snapshot or bookmark
// on the lineage of ds, strictly older than boundTxg. The walk hops to the
// origin dataset at each clone edge. onOrigin is true when the match lives
// on an ancestor instead of ds itself.
func lineageMember(ds *Dataset, boundTxg uint64, guid uuid.UUID) (member, onOrigin bool) {
	cur := ds
	bound := boundTxg
	for {
		found := false
		cur.snaps.Ascend(func(snap *Snapshot) bool {
			if snap.id.CreateTxg >= bound {
				return false
			}
			if snap.id.GUID == guid {
				found = true
				return false
			}
			return true
		})
		if !found {
			for _, mark := range cur.bookmarks {
				if mark.id.GUID == guid && mark.id.CreateTxg < bound {
					found = true
					break
				}
			}
		}
		if found {
			return true, cur != ds
		}
		if cur.origin == nil {
			return false, false
		}
		// the origin snapshot itself is part of the lineage
		bound = cur.origin.id.CreateTxg + 1
		cur = cur.origin.ds
	}
}

// SpaceBetween estimates the space referenced between two snapshots of the
// same dataset, the older one first.
func (s *Store) SpaceBetween(first, last string) (uint64, error) {
	for _, name := range []string{first, last} {
		if names.IsBookmark(name) || !names.IsSnapshot(name) {
			return 0, &zerrors.NameInvalid{Name: name}
		}
		switch names.CheckSnapshot(name) {
		case names.Invalid:
			return 0, &zerrors.NameInvalid{Name: name}
		case names.TooLongName, names.TooLongComponent:
			return 0, &zerrors.NameTooLong{Name: name}
		}
	}
	if names.Pool(first) != names.Pool(last) {
		return 0, &zerrors.PoolsDiffer{Name: last}
	}

	ps, ok := s.getPool(names.Pool(first))
	if !ok {
		return 0, &zerrors.SnapshotNotFound{Name: first}
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	firstID, firstData, ok := ps.resolveSource(first)
	if !ok {
		return 0, &zerrors.SnapshotNotFound{Name: first}
	}
	lastID, lastData, ok := ps.resolveSource(last)
	if !ok {
		return 0, &zerrors.SnapshotNotFound{Name: last}
	}

	firstDS, _, _ := names.SplitSnapshot(first)
	lastDS, _, _ := names.SplitSnapshot(last)
	if firstDS != lastDS {
		return 0, &zerrors.SnapshotMismatch{Name: first}
	}
	if firstID.CreateTxg > lastID.CreateTxg {
		return 0, &zerrors.SnapshotMismatch{Name: first}
	}

	if firstID == lastID {
		return dataSize(firstData), nil
	}

	size := uint64(0)
	for _, rec := range diffRecords(firstData, lastData) {
		size += uint64(len(rec.Key)) + uint64(len(rec.Value))
	}
	return size, nil
}

// SendSpace estimates the size of the stream Send would produce. An empty
// from estimates a full stream.
func (s *Store) SendSpace(to, from string) (uint64, error) {
	if names.IsBookmark(to) || !names.IsSnapshot(to) {
		return 0, &zerrors.NameInvalid{Name: to}
	}
	switch names.CheckSnapshot(to) {
	case names.Invalid:
		return 0, &zerrors.NameInvalid{Name: to}
	case names.TooLongName, names.TooLongComponent:
		return 0, &zerrors.NameTooLong{Name: to}
	}
	if from != "" {
		if names.IsBookmark(from) || !names.IsSnapshot(from) {
			return 0, &zerrors.NameInvalid{Name: from}
		}
		switch names.CheckSnapshot(from) {
		case names.Invalid:
			return 0, &zerrors.NameInvalid{Name: from}
		case names.TooLongName, names.TooLongComponent:
			return 0, &zerrors.NameTooLong{Name: from}
		}
		if names.Pool(from) != names.Pool(to) {
			return 0, &zerrors.PoolsDiffer{Name: from}
		}
	}

	ps, ok := s.getPool(names.Pool(to))
	if !ok {
		return 0, &zerrors.SnapshotNotFound{Name: to}
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	toID, toData, ok := ps.resolveSource(to)
	if !ok {
		return 0, &zerrors.SnapshotNotFound{Name: to}
	}

	h := stream.Header{ToGUID: toID.GUID, ToTxg: toID.CreateTxg}
	records := fullRecords(toData)
	if from != "" {
		fromID, fromData, ok := ps.resolveSource(from)
		if !ok {
			return 0, &zerrors.SnapshotNotFound{Name: from}
		}
		if fromID.GUID == toID.GUID {
			return 0, &zerrors.SnapshotMismatch{Name: from}
		}
		toDS, _, _ := names.SplitSnapshot(to)
		member, onOrigin := lineageMember(ps.datasets[toDS], toID.CreateTxg, fromID.GUID)
		if !member {
			return 0, &zerrors.SnapshotMismatch{Name: from}
		}
		h.Incremental = true
		h.Clone = onOrigin
		h.FromGUID = fromID.GUID
		h.FromTxg = fromID.CreateTxg
		records = diffRecords(fromData, toData)
	}

	return streamSize(h, records), nil
}
