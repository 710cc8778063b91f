package core

import (
	"sort"
	"time"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/zerrors"
)

// Hold is a named reference keeping a snapshot alive. A held snapshot can
// only be destroyed with deferral, and stays until the last hold goes away.
type Hold struct {
	snap     *Snapshot
	tag      string
	creation time.Time
	handle   *CleanupHandle
}

// Hold places holds on snapshots. Keys are full snapshot names, values the
// tags. Snapshots that do not exist on an existing dataset are returned as
// missing rather than failing the batch. An optional cleanup handle adopts
// the new holds so they die with it.
func (s *Store) Hold(holds map[string]string, handle *CleanupHandle) ([]string, error) {
	if handle != nil && !s.validHandle(handle) {
		return nil, &zerrors.BadHoldCleanupHandle{}
	}
	if len(holds) == 0 {
		return []string{}, nil
	}

	errs := []error{}
	missing := []string{}
	targets := map[string]string{}
	poolName := ""
	for snapName, tag := range holds {
		switch names.CheckSnapshot(snapName) {
		case names.Invalid:
			errs = append(errs, &zerrors.NameInvalid{Name: snapName})
			continue
		case names.TooLongComponent:
			errs = append(errs, &zerrors.NameTooLong{Name: snapName})
			continue
		case names.TooLongName:
			// over-long full names cannot exist, report them missing
			missing = append(missing, snapName)
			continue
		}
		if len(tag) > names.MaxNameLen {
			errs = append(errs, &zerrors.NameTooLong{Name: tag})
			continue
		}

		if poolName == "" {
			poolName = names.Pool(snapName)
		} else if names.Pool(snapName) != poolName {
			errs = append(errs, &zerrors.PoolsDiffer{Name: snapName})
			continue
		}
		targets[snapName] = tag
	}

	if poolName != "" {
		ps, ok := s.getPool(poolName)
		if !ok {
			errs = append(errs, &zerrors.PoolNotFound{Pool: poolName})
		} else {
			ps.mu.Lock()
			defer ps.mu.Unlock()

			resolved := map[*Snapshot]string{}
			for snapName, tag := range targets {
				dsName, name, _ := names.SplitSnapshot(snapName)
				ds := ps.datasets[dsName]
				if ds == nil {
					errs = append(errs, &zerrors.FilesystemNotFound{Name: dsName})
					continue
				}
				snap := ds.snapsByName[name]
				if snap == nil {
					missing = append(missing, snapName)
					continue
				}
				if snap.holds[tag] != nil {
					errs = append(errs, &zerrors.HoldExists{Name: snapName, Tag: tag})
					continue
				}
				resolved[snap] = tag
			}

			if len(errs) == 0 {
				// a Close racing in since the entry check has already
				// snapshotted the handle's holds, anything attached now
				// would never be auto-released
				if handle != nil {
					s.hmu.Lock()
					if _, ok := s.handles[handle]; !ok {
						s.hmu.Unlock()
						return nil, &zerrors.BadHoldCleanupHandle{}
					}
				}
				creation := s.now()
				for snap, tag := range resolved {
					hold := &Hold{
						snap:     snap,
						tag:      tag,
						creation: creation,
						handle:   handle,
					}
					snap.holds[tag] = hold
					if handle != nil {
						handle.holds[hold] = struct{}{}
					}
				}
				if handle != nil {
					s.hmu.Unlock()
				}
			}
		}
	}

	if len(errs) > 0 {
		return nil, &zerrors.HoldFailure{Errors: errs}
	}
	sort.Strings(missing)
	return missing, nil
}

// Release removes holds. Keys are full snapshot names, values the tags to
// drop from each. Missing snapshots and missing tags come back in the
// missing list, the latter as `snapshot#tag`.
func (s *Store) Release(releases map[string][]string) ([]string, error) {
	if len(releases) == 0 {
		return []string{}, nil
	}

	errs := []error{}
	missing := []string{}
	poolName := ""
	targets := map[string][]string{}
	for snapName, tags := range releases {
		switch names.CheckSnapshot(snapName) {
		case names.Invalid:
			errs = append(errs, &zerrors.NameInvalid{Name: snapName})
			continue
		case names.TooLongComponent:
			errs = append(errs, &zerrors.NameTooLong{Name: snapName})
			continue
		case names.TooLongName:
			missing = append(missing, snapName)
			continue
		}

		// leniency covers snapshot names, not tags: an over-long tag is a
		// hard error, same as in Hold
		badTag := false
		for _, tag := range tags {
			if len(tag) > names.MaxNameLen {
				errs = append(errs, &zerrors.NameTooLong{Name: tag})
				badTag = true
			}
		}
		if badTag {
			continue
		}

		if poolName == "" {
			poolName = names.Pool(snapName)
		} else if names.Pool(snapName) != poolName {
			errs = append(errs, &zerrors.PoolsDiffer{Name: snapName})
			continue
		}
		targets[snapName] = tags
	}

	if poolName != "" {
		ps, ok := s.getPool(poolName)
		if !ok {
			errs = append(errs, &zerrors.PoolNotFound{Pool: poolName})
		} else {
			ps.mu.Lock()
			defer ps.mu.Unlock()

			if len(errs) == 0 {
				for snapName, tags := range targets {
					dsName, name, _ := names.SplitSnapshot(snapName)
					ds := ps.datasets[dsName]
					var snap *Snapshot
					if ds != nil {
						snap = ds.snapsByName[name]
					}
					if snap == nil {
						missing = append(missing, snapName)
						continue
					}
					for _, tag := range tags {
						hold := snap.holds[tag]
						if hold == nil {
							missing = append(missing, snapName+"#"+tag)
							continue
						}
						s.releaseHold(ps, hold)
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return nil, &zerrors.HoldReleaseFailure{Errors: errs}
	}
	sort.Strings(missing)
	return missing, nil
}

// releaseHold drops a hold and reaps its snapshot when the hold was the last
// thing keeping a deferred destruction pending. Caller holds the pool lock.
func (s *Store) releaseHold(ps *poolState, hold *Hold) {
	delete(hold.snap.holds, hold.tag)
	if hold.handle != nil {
		s.hmu.Lock()
		delete(hold.handle.holds, hold)
		s.hmu.Unlock()
	}
	ps.reapDeferred(hold.snap)
}

// GetHolds returns the tags held on a snapshot and when each was placed.
func (s *Store) GetHolds(snapName string) (map[string]time.Time, error) {
	if names.IsBookmark(snapName) {
		return nil, &zerrors.NameInvalid{Name: snapName}
	}
	switch names.CheckSnapshot(snapName) {
	case names.Invalid:
		if names.CheckDataset(snapName) == names.Valid {
			// dataset-shaped names resolve to no snapshot at all
			return nil, &zerrors.SnapshotNotFound{Name: snapName}
		}
		return nil, &zerrors.NameInvalid{Name: snapName}
	case names.TooLongName, names.TooLongComponent:
		return nil, &zerrors.NameTooLong{Name: snapName}
	}

	ps, ok := s.getPool(names.Pool(snapName))
	if !ok {
		return nil, &zerrors.SnapshotNotFound{Name: snapName}
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	dsName, name, _ := names.SplitSnapshot(snapName)
	ds := ps.datasets[dsName]
	if ds == nil {
		return nil, &zerrors.SnapshotNotFound{Name: snapName}
	}
	snap := ds.snapsByName[name]
	if snap == nil {
		return nil, &zerrors.SnapshotNotFound{Name: snapName}
	}

	out := make(map[string]time.Time, len(snap.holds))
	for tag, hold := range snap.holds {
		out[tag] = hold.creation
	}
	return out, nil
}
