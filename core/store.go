// Package core implements the dataset and snapshot state machine: dataset
// trees per pool, atomic snapshot batches, clones, bookmarks, holds and the
// replication endpoints.
package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/pool"
	"github.com/fulldump/snapdb/zerrors"
)

// Identity is the immutable identity a snapshot gets at creation and keeps
// across replication. The creation transaction number orders snapshots of
// the same pool, the GUID is never reused.
type Identity struct {
	GUID      uuid.UUID
	CreateTxg uint64
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

type Store struct {
	catalog pool.Catalog

	mu    sync.RWMutex
	pools map[string]*poolState

	hmu     sync.Mutex
	handles map[*CleanupHandle]struct{}

	now func() time.Time
}

func NewStore(catalog pool.Catalog) *Store {
	return &Store{
		catalog: catalog,
		pools:   map[string]*poolState{},
		handles: map[*CleanupHandle]struct{}{},
		now:     time.Now,
	}
}

// poolState keeps all namespace state of one pool behind one lock, so
// mutations of different pools never contend.
type poolState struct {
	name string

	mu       sync.RWMutex
	nextTxg  uint64
	datasets map[string]*Dataset
	byGUID   map[uuid.UUID]*Snapshot
}

func (ps *poolState) bumpTxg() uint64 {
	txg := ps.nextTxg
	ps.nextTxg++
	return txg
}

// getPool returns the state of a pool the catalog knows, materializing the
// root dataset on first use.
func (s *Store) getPool(poolName string) (*poolState, bool) {
	if !s.catalog.Exists(poolName) {
		return nil, false
	}

	s.mu.RLock()
	ps := s.pools[poolName]
	s.mu.RUnlock()
	if ps != nil {
		return ps, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ps := s.pools[poolName]; ps != nil {
		return ps, true
	}

	ps = &poolState{
		name:     poolName,
		nextTxg:  1,
		datasets: map[string]*Dataset{},
		byGUID:   map[uuid.UUID]*Snapshot{},
	}
	root := newDataset(ps, poolName, KindFilesystem, nil)
	root.createTxg = ps.bumpTxg()
	ps.datasets[poolName] = root
	s.pools[poolName] = ps

	return ps, true
}

// Create makes a new empty filesystem or volume. The parent must exist and
// be a filesystem.
func (s *Store) Create(name string, kind Kind, props map[string]any) error {
	if kind != KindFilesystem && kind != KindVolume {
		return &zerrors.DatasetTypeInvalid{Kind: string(kind)}
	}
	switch names.CheckDataset(name) {
	case names.Invalid:
		return &zerrors.NameInvalid{Name: name}
	case names.TooLongName, names.TooLongComponent:
		return &zerrors.NameTooLong{Name: name}
	}

	poolName := names.Pool(name)
	ps, ok := s.getPool(poolName)
	if !ok {
		// a missing pool is just the outermost missing parent
		return &zerrors.ParentNotFound{Name: name}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.ReadOnlyPool{Pool: poolName}
	}
	for k, v := range props {
		if !pool.CheckDatasetProperty(string(kind), k, v) {
			return &zerrors.PropertyInvalid{Name: name, Property: k}
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.datasets[name]; exists {
		return &zerrors.FilesystemExists{Name: name}
	}
	if parentName, hasParent := names.Parent(name); hasParent {
		parent := ps.datasets[parentName]
		if parent == nil {
			return &zerrors.ParentNotFound{Name: name}
		}
		if parent.kind != KindFilesystem {
			return &zerrors.WrongParent{Name: name}
		}
	}

	ds := newDataset(ps, name, kind, props)
	ds.createTxg = ps.bumpTxg()
	ps.datasets[name] = ds

	return nil
}

// Exists reports whether a dataset, snapshot or bookmark with the given name
// exists. Malformed names simply do not exist.
func (s *Store) Exists(name string) bool {
	ps, ok := s.getPool(names.Pool(name))
	if !ok {
		return false
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if dsName, snap, isSnap := names.SplitSnapshot(name); isSnap {
		if names.CheckSnapshot(name) != names.Valid {
			return false
		}
		ds := ps.datasets[dsName]
		return ds != nil && ds.snapsByName[snap] != nil
	}
	if dsName, mark, isMark := names.SplitBookmark(name); isMark {
		if names.CheckBookmark(name) != names.Valid {
			return false
		}
		ds := ps.datasets[dsName]
		return ds != nil && ds.bookmarks[mark] != nil
	}
	if names.CheckDataset(name) != names.Valid {
		return false
	}
	return ps.datasets[name] != nil
}

// DestroyDataset removes a dataset, its snapshots and its bookmarks. It
// refuses when children, clones, or holds depend on it.
func (s *Store) DestroyDataset(name string) error {
	switch names.CheckDataset(name) {
	case names.Invalid:
		return &zerrors.NameInvalid{Name: name}
	case names.TooLongName, names.TooLongComponent:
		return &zerrors.NameTooLong{Name: name}
	}

	poolName := names.Pool(name)
	ps, ok := s.getPool(poolName)
	if !ok {
		return &zerrors.PoolNotFound{Pool: poolName}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.ReadOnlyPool{Pool: poolName}
	}
	if name == poolName {
		return &zerrors.DatasetBusy{Name: name}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ds := ps.datasets[name]
	if ds == nil {
		return &zerrors.DatasetNotFound{Name: name}
	}
	if ps.hasChildren(name) {
		return &zerrors.DatasetBusy{Name: name}
	}
	for _, snap := range ds.snapsByName {
		if snap.clones > 0 {
			return &zerrors.SnapshotIsCloned{Name: snap.FullName()}
		}
		if len(snap.holds) > 0 {
			return &zerrors.SnapshotIsHeld{Name: snap.FullName()}
		}
	}

	for _, snap := range ds.snapsByName {
		ps.dropSnapshot(snap)
	}
	ds.poisonViews()
	delete(ps.datasets, name)

	// the origin may have been waiting for its last clone to go away
	if ds.origin != nil {
		ds.origin.clones--
		ps.reapDeferred(ds.origin)
	}

	return nil
}

func (ps *poolState) hasChildren(name string) bool {
	prefix := name + "/"
	for other := range ps.datasets {
		if len(other) > len(prefix) && other[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
