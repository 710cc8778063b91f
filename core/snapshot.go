package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/pool"
	"github.com/fulldump/snapdb/zerrors"
)

// Snapshot is an immutable copy of a dataset's data at one transaction.
type Snapshot struct {
	ds   *Dataset
	name string

	id       Identity
	creation time.Time
	props    map[string]any
	data     map[string][]byte

	holds    map[string]*Hold
	clones   int
	deferred bool
}

func (s *Snapshot) FullName() string {
	return s.ds.name + "@" + s.name
}

// Snapshot creates every requested snapshot atomically: all of them belong
// to the same transaction or none is created. All targets must live in the
// same pool.
func (s *Store) Snapshot(snapNames []string, props map[string]any) error {
	if len(snapNames) == 0 {
		return nil
	}

	// syntax collapses to one representative error, except full names over
	// the limit which are reported per item
	tooLongFull := []error{}
	componentTooLong := false
	for _, name := range snapNames {
		switch names.CheckSnapshot(name) {
		case names.Invalid:
			return &zerrors.SnapshotFailure{Errors: []error{&zerrors.NameInvalid{}}}
		case names.TooLongComponent:
			componentTooLong = true
		case names.TooLongName:
			tooLongFull = append(tooLongFull, &zerrors.NameTooLong{Name: name})
		}
	}
	if componentTooLong {
		return &zerrors.SnapshotFailure{Errors: []error{&zerrors.NameTooLong{}}}
	}
	if len(tooLongFull) > 0 {
		return &zerrors.SnapshotFailure{Errors: tooLongFull}
	}

	seen := map[string]bool{}
	for _, name := range snapNames {
		if seen[name] {
			return &zerrors.SnapshotFailure{Errors: []error{&zerrors.DuplicateSnapshots{Name: name}}}
		}
		seen[name] = true
	}

	poolName := names.Pool(snapNames[0])
	for _, name := range snapNames[1:] {
		if names.Pool(name) != poolName {
			return &zerrors.SnapshotFailure{Errors: []error{&zerrors.PoolsDiffer{Name: name}}}
		}
	}
	ps, ok := s.getPool(poolName)
	if !ok {
		return &zerrors.SnapshotFailure{Errors: []error{&zerrors.FilesystemNotFound{Name: snapNames[0]}}}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.SnapshotFailure{Errors: []error{&zerrors.ReadOnlyPool{Pool: poolName}}}
	}

	for key, value := range props {
		if !pool.CheckSnapshotProperty(key, value) {
			errs := make([]error, 0, len(snapNames))
			for _, name := range snapNames {
				errs = append(errs, &zerrors.PropertyInvalid{Name: name, Property: key})
			}
			return &zerrors.SnapshotFailure{Errors: errs}
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	exists := []error{}
	missing := false
	for _, name := range snapNames {
		dsName, snapName, _ := names.SplitSnapshot(name)
		ds := ps.datasets[dsName]
		if ds == nil {
			missing = true
			continue
		}
		if ds.snapsByName[snapName] != nil {
			exists = append(exists, &zerrors.SnapshotExists{Name: name})
		}
	}
	if len(exists) > 0 {
		return &zerrors.SnapshotFailure{Errors: exists}
	}
	if missing {
		return &zerrors.SnapshotFailure{Errors: []error{&zerrors.FilesystemNotFound{Name: snapNames[0]}}}
	}

	txg := ps.bumpTxg()
	creation := s.now()
	for _, name := range snapNames {
		dsName, snapName, _ := names.SplitSnapshot(name)
		ds := ps.datasets[dsName]
		ds.addSnapshot(snapName, Identity{GUID: uuid.New(), CreateTxg: txg}, creation, props, cloneData(ds.data))
		ds.modified = false
	}

	return nil
}

func (ds *Dataset) addSnapshot(name string, id Identity, creation time.Time, props map[string]any, data map[string][]byte) *Snapshot {
	snap := &Snapshot{
		ds:       ds,
		name:     name,
		id:       id,
		creation: creation,
		props:    map[string]any{},
		data:     data,
		holds:    map[string]*Hold{},
	}
	for k, v := range props {
		snap.props[k] = v
	}
	ds.snapsByName[name] = snap
	ds.snaps.ReplaceOrInsert(snap)
	ds.pool.byGUID[id.GUID] = snap
	return snap
}

// dropSnapshot removes the snapshot from every index. Bookmarks pointing at
// it stay alive.
func (ps *poolState) dropSnapshot(snap *Snapshot) {
	delete(snap.ds.snapsByName, snap.name)
	snap.ds.snaps.Delete(snap)
	delete(ps.byGUID, snap.id.GUID)
}

// reapDeferred destroys a deferred snapshot once nothing blocks it.
func (ps *poolState) reapDeferred(snap *Snapshot) {
	if snap.deferred && snap.clones == 0 && len(snap.holds) == 0 {
		ps.dropSnapshot(snap)
	}
}

// DestroySnapshots destroys a batch of snapshots. Names that do not resolve
// to an existing snapshot are skipped silently. With deferFlag, snapshots
// blocked by clones or holds are marked for destruction instead of failing
// the batch.
func (s *Store) DestroySnapshots(snapNames []string, deferFlag bool) error {
	if len(snapNames) == 0 {
		return nil
	}

	targets := []string{}
	for _, name := range snapNames {
		switch names.CheckSnapshot(name) {
		case names.TooLongComponent:
			return &zerrors.SnapshotDestructionFailure{Errors: []error{&zerrors.NameTooLong{}}}
		case names.Invalid, names.TooLongName:
			// treated as nonexistent
			continue
		}
		targets = append(targets, name)
	}
	if len(targets) == 0 {
		return nil
	}

	poolName := names.Pool(targets[0])
	for _, name := range targets[1:] {
		if names.Pool(name) != poolName {
			return &zerrors.SnapshotDestructionFailure{Errors: []error{&zerrors.PoolsDiffer{Name: name}}}
		}
	}
	ps, ok := s.getPool(poolName)
	if !ok {
		return &zerrors.SnapshotDestructionFailure{Errors: []error{&zerrors.PoolNotFound{Pool: poolName}}}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.SnapshotDestructionFailure{Errors: []error{&zerrors.ReadOnlyPool{Pool: poolName}}}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	found := []*Snapshot{}
	for _, name := range targets {
		dsName, snapName, _ := names.SplitSnapshot(name)
		ds := ps.datasets[dsName]
		if ds == nil {
			continue
		}
		if snap := ds.snapsByName[snapName]; snap != nil {
			found = append(found, snap)
		}
	}

	if !deferFlag {
		errs := []error{}
		for _, snap := range found {
			if snap.clones > 0 {
				errs = append(errs, &zerrors.SnapshotIsCloned{Name: snap.FullName()})
			} else if len(snap.holds) > 0 {
				errs = append(errs, &zerrors.SnapshotIsHeld{Name: snap.FullName()})
			}
		}
		if len(errs) > 0 {
			return &zerrors.SnapshotDestructionFailure{Errors: errs}
		}
		for _, snap := range found {
			ps.dropSnapshot(snap)
		}
		return nil
	}

	for _, snap := range found {
		if snap.clones > 0 || len(snap.holds) > 0 {
			snap.deferred = true
		} else {
			ps.dropSnapshot(snap)
		}
	}

	return nil
}

type SnapshotInfo struct {
	Name      string         `json:"name"`
	GUID      string         `json:"guid"`
	CreateTxg uint64         `json:"createtxg"`
	Creation  int64          `json:"creation"`
	Holds     int            `json:"holds"`
	Clones    int            `json:"clones"`
	Deferred  bool           `json:"deferred,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
}

// ListSnapshots returns the snapshots of a dataset in creation order.
func (s *Store) ListSnapshots(dsName string) ([]*SnapshotInfo, error) {
	ps, ok := s.getPool(names.Pool(dsName))
	if !ok {
		return nil, &zerrors.FilesystemNotFound{Name: dsName}
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ds := ps.datasets[dsName]
	if ds == nil {
		return nil, &zerrors.FilesystemNotFound{Name: dsName}
	}

	out := []*SnapshotInfo{}
	ds.snaps.Ascend(func(snap *Snapshot) bool {
		out = append(out, &SnapshotInfo{
			Name:      snap.FullName(),
			GUID:      snap.id.GUID.String(),
			CreateTxg: snap.id.CreateTxg,
			Creation:  snap.creation.Unix(),
			Holds:     len(snap.holds),
			Clones:    snap.clones,
			Deferred:  snap.deferred,
			Props:     snap.props,
		})
		return true
	})

	return out, nil
}
