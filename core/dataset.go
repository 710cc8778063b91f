package core

import (
	"slices"
	"sort"

	"github.com/google/btree"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/pool"
	"github.com/fulldump/snapdb/zerrors"
)

type Kind string

const (
	KindFilesystem Kind = Kind(pool.KindFilesystem)
	KindVolume     Kind = Kind(pool.KindVolume)
)

// Dataset is a filesystem or volume. Its data is a flat key/value view, the
// unit the replication stream and the snapshot diffs work on.
type Dataset struct {
	pool *poolState
	name string
	kind Kind

	props     map[string]any
	createTxg uint64

	// origin is set while this dataset is a clone
	origin *Snapshot

	data     map[string][]byte
	modified bool

	snaps       *btree.BTreeG[*Snapshot]
	snapsByName map[string]*Snapshot
	bookmarks   map[string]*Bookmark
	views       map[*View]struct{}
}

func newDataset(ps *poolState, name string, kind Kind, props map[string]any) *Dataset {
	ds := &Dataset{
		pool:        ps,
		name:        name,
		kind:        kind,
		props:       map[string]any{},
		data:        map[string][]byte{},
		snapsByName: map[string]*Snapshot{},
		bookmarks:   map[string]*Bookmark{},
		views:       map[*View]struct{}{},
	}
	// a batch can snapshot the same dataset several times within one
	// transaction, so ties break by name
	ds.snaps = btree.NewG(8, func(a, b *Snapshot) bool {
		if a.id.CreateTxg != b.id.CreateTxg {
			return a.id.CreateTxg < b.id.CreateTxg
		}
		return a.name < b.name
	})
	for k, v := range props {
		ds.props[k] = v
	}
	return ds
}

func (ds *Dataset) latestSnapshot() *Snapshot {
	var latest *Snapshot
	ds.snaps.Descend(func(s *Snapshot) bool {
		latest = s
		return false
	})
	return latest
}

// snapshotsAfter returns the snapshots strictly newer than txg, oldest first.
func (ds *Dataset) snapshotsAfter(txg uint64) []*Snapshot {
	out := []*Snapshot{}
	ds.snaps.Ascend(func(s *Snapshot) bool {
		if s.id.CreateTxg > txg {
			out = append(out, s)
		}
		return true
	})
	return out
}

func cloneData(data map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(data))
	for k, v := range data {
		out[k] = slices.Clone(v)
	}
	return out
}

func dataEqual(a, b map[string][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !slices.Equal(v, w) {
			return false
		}
	}
	return true
}

// Clone creates a new filesystem whose initial content is the origin
// snapshot. The origin cannot be destroyed while the clone exists.
func (s *Store) Clone(name, origin string, props map[string]any) error {
	if names.IsBookmark(origin) || !names.IsSnapshot(origin) {
		return &zerrors.SnapshotNameInvalid{Name: origin}
	}
	switch names.CheckSnapshot(origin) {
	case names.Invalid:
		return &zerrors.SnapshotNameInvalid{Name: origin}
	case names.TooLongName, names.TooLongComponent:
		return &zerrors.NameTooLong{Name: origin}
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
		return &zerrors.DatasetNotFound{Name: name}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.ReadOnlyPool{Pool: poolName}
	}
	if names.Pool(origin) != poolName {
		return &zerrors.PoolsDiffer{Name: name}
	}
	for k, v := range props {
		if !pool.CheckDatasetProperty(string(KindFilesystem), k, v) {
			return &zerrors.PropertyInvalid{Name: name, Property: k}
		}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	originDS, snapName, _ := names.SplitSnapshot(origin)
	originDataset := ps.datasets[originDS]
	if originDataset == nil {
		return &zerrors.DatasetNotFound{Name: origin}
	}
	snap := originDataset.snapsByName[snapName]
	if snap == nil {
		return &zerrors.DatasetNotFound{Name: origin}
	}

	if parentName, hasParent := names.Parent(name); hasParent {
		parent := ps.datasets[parentName]
		if parent == nil {
			return &zerrors.DatasetNotFound{Name: name}
		}
		if parent.kind != KindFilesystem {
			return &zerrors.WrongParent{Name: name}
		}
	}
	if _, exists := ps.datasets[name]; exists {
		return &zerrors.FilesystemExists{Name: name}
	}

	ds := newDataset(ps, name, originDataset.kind, props)
	ds.createTxg = ps.bumpTxg()
	ds.data = cloneData(snap.data)
	ds.origin = snap
	snap.clones++
	ps.datasets[name] = ds

	return nil
}

// Rollback discards the current data of a dataset in favor of its latest
// snapshot and returns that snapshot's full name.
func (s *Store) Rollback(name string) (string, error) {
	if names.IsSnapshot(name) || names.IsBookmark(name) {
		return "", &zerrors.NameInvalid{Name: name}
	}
	switch names.CheckDataset(name) {
	case names.Invalid:
		return "", &zerrors.NameInvalid{Name: name}
	case names.TooLongName, names.TooLongComponent:
		return "", &zerrors.NameTooLong{Name: name}
	}

	poolName := names.Pool(name)
	ps, ok := s.getPool(poolName)
	if !ok {
		return "", &zerrors.FilesystemNotFound{Name: name}
	}
	if s.catalog.Readonly(poolName) {
		return "", &zerrors.ReadOnlyPool{Pool: poolName}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ds := ps.datasets[name]
	if ds == nil {
		return "", &zerrors.FilesystemNotFound{Name: name}
	}
	latest := ds.latestSnapshot()
	if latest == nil {
		return "", &zerrors.SnapshotNotFound{Name: name}
	}

	ds.data = cloneData(latest.data)
	ds.modified = false

	return latest.FullName(), nil
}

// WriteData sets one key of the dataset's current view. A nil value removes
// the key.
func (s *Store) WriteData(name, key string, value []byte) error {
	switch names.CheckDataset(name) {
	case names.Invalid:
		return &zerrors.NameInvalid{Name: name}
	case names.TooLongName, names.TooLongComponent:
		return &zerrors.NameTooLong{Name: name}
	}

	poolName := names.Pool(name)
	ps, ok := s.getPool(poolName)
	if !ok {
		return &zerrors.DatasetNotFound{Name: name}
	}
	if s.catalog.Readonly(poolName) {
		return &zerrors.ReadOnlyPool{Pool: poolName}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ds := ps.datasets[name]
	if ds == nil {
		return &zerrors.DatasetNotFound{Name: name}
	}

	if value == nil {
		delete(ds.data, key)
	} else {
		ds.data[key] = slices.Clone(value)
	}
	ds.modified = true

	return nil
}

// ReadData returns one key of the dataset's current view, nil when absent.
func (s *Store) ReadData(name, key string) ([]byte, error) {
	ps, ok := s.getPool(names.Pool(name))
	if !ok {
		return nil, &zerrors.DatasetNotFound{Name: name}
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ds := ps.datasets[name]
	if ds == nil {
		return nil, &zerrors.DatasetNotFound{Name: name}
	}
	return slices.Clone(ds.data[key]), nil
}

type DatasetInfo struct {
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Origin    string         `json:"origin,omitempty"`
	CreateTxg uint64         `json:"createtxg"`
	Modified  bool           `json:"modified"`
	Snapshots int            `json:"snapshots"`
	Props     map[string]any `json:"props,omitempty"`
}

func (ds *Dataset) info() *DatasetInfo {
	info := &DatasetInfo{
		Name:      ds.name,
		Kind:      string(ds.kind),
		CreateTxg: ds.createTxg,
		Modified:  ds.modified,
		Snapshots: ds.snaps.Len(),
		Props:     ds.props,
	}
	if ds.origin != nil {
		info.Origin = ds.origin.FullName()
	}
	return info
}

// ListDatasets returns every dataset of every pool, sorted by name.
func (s *Store) ListDatasets() []*DatasetInfo {
	s.mu.RLock()
	pools := make([]*poolState, 0, len(s.pools))
	for _, ps := range s.pools {
		pools = append(pools, ps)
	}
	s.mu.RUnlock()

	out := []*DatasetInfo{}
	for _, ps := range pools {
		ps.mu.RLock()
		for _, ds := range ps.datasets {
			out = append(out, ds.info())
		}
		ps.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

// GetDataset returns the description of one dataset.
func (s *Store) GetDataset(name string) (*DatasetInfo, error) {
	ps, ok := s.getPool(names.Pool(name))
	if !ok {
		return nil, &zerrors.DatasetNotFound{Name: name}
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ds := ps.datasets[name]
	if ds == nil {
		return nil, &zerrors.DatasetNotFound{Name: name}
	}
	return ds.info(), nil
}
