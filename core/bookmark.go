package core

import (
	"time"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/zerrors"
)

// Bookmark remembers a snapshot's identity, and enough of its content to
// serve as an incremental source after the snapshot itself is gone.
type Bookmark struct {
	ds   *Dataset
	name string

	id       Identity
	creation time.Time
	data     map[string][]byte
}

func (b *Bookmark) FullName() string {
	return b.ds.name + "#" + b.name
}

// Bookmark creates bookmarks, each pair standing on its own: the valid
// ones are created and the failing ones come back together in a
// BookmarkFailure. Keys are bookmark names, values the snapshot each one
// is taken from. A bookmark must live on the dataset of its source
// snapshot.
func (s *Store) Bookmark(marks map[string]string) error {
	if len(marks) == 0 {
		return nil
	}

	errs := []error{}
	pending := map[string]string{}
	poolName := ""
	for mark, src := range marks {
		switch names.CheckBookmark(mark) {
		case names.Invalid:
			errs = append(errs, &zerrors.NameInvalid{Name: mark})
			continue
		case names.TooLongName, names.TooLongComponent:
			errs = append(errs, &zerrors.NameTooLong{Name: mark})
			continue
		}
		switch names.CheckSnapshot(src) {
		case names.Invalid:
			errs = append(errs, &zerrors.NameInvalid{Name: src})
			continue
		case names.TooLongName, names.TooLongComponent:
			errs = append(errs, &zerrors.NameTooLong{Name: src})
			continue
		}

		markDS, _, _ := names.SplitBookmark(mark)
		srcDS, _, _ := names.SplitSnapshot(src)
		if markDS != srcDS {
			errs = append(errs, &zerrors.BookmarkMismatch{Name: mark})
			continue
		}

		if poolName == "" {
			poolName = names.Pool(mark)
		} else if names.Pool(mark) != poolName {
			errs = append(errs, &zerrors.PoolsDiffer{Name: mark})
			continue
		}
		pending[mark] = src
	}

	if poolName != "" {
		ps, ok := s.getPool(poolName)
		switch {
		case !ok:
			errs = append(errs, &zerrors.FilesystemNotFound{Name: poolName})
		case s.catalog.Readonly(poolName):
			errs = append(errs, &zerrors.ReadOnlyPool{Pool: poolName})
		case !s.catalog.FeatureEnabled(poolName, "bookmarks"):
			errs = append(errs, &zerrors.FeatureNotSupported{Pool: poolName, Feature: "bookmarks"})
		default:
			ps.mu.Lock()
			creation := s.now()
			for mark, src := range pending {
				dsName, markName, _ := names.SplitBookmark(mark)
				_, snapName, _ := names.SplitSnapshot(src)

				ds := ps.datasets[dsName]
				if ds == nil {
					errs = append(errs, &zerrors.FilesystemNotFound{Name: dsName})
					continue
				}
				snap := ds.snapsByName[snapName]
				if snap == nil {
					errs = append(errs, &zerrors.SnapshotNotFound{Name: src})
					continue
				}
				if ds.bookmarks[markName] != nil {
					errs = append(errs, &zerrors.BookmarkExists{Name: mark})
					continue
				}
				ds.bookmarks[markName] = &Bookmark{
					ds:       ds,
					name:     markName,
					id:       snap.id,
					creation: creation,
					data:     cloneData(snap.data),
				}
			}
			ps.mu.Unlock()
		}
	}

	if len(errs) > 0 {
		return &zerrors.BookmarkFailure{Errors: errs}
	}

	return nil
}

// GetBookmarks lists the bookmarks of a dataset with the requested
// properties. Supported properties are guid, createtxg and creation,
// anything else is silently omitted.
func (s *Store) GetBookmarks(dsName string, props []string) (map[string]map[string]any, error) {
	switch names.CheckDataset(dsName) {
	case names.Invalid:
		return nil, &zerrors.NameInvalid{Name: dsName}
	case names.TooLongName, names.TooLongComponent:
		return nil, &zerrors.NameTooLong{Name: dsName}
	}

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

	out := map[string]map[string]any{}
	for name, mark := range ds.bookmarks {
		values := map[string]any{}
		for _, prop := range props {
			switch prop {
			case "guid":
				values["guid"] = mark.id.GUID.String()
			case "createtxg":
				values["createtxg"] = mark.id.CreateTxg
			case "creation":
				values["creation"] = mark.creation.Unix()
			}
		}
		out[name] = values
	}

	return out, nil
}

// DestroyBookmarks removes bookmarks. Missing ones are skipped, invalid
// names are reported, and valid targets are destroyed either way.
func (s *Store) DestroyBookmarks(markNames []string) error {
	errs := []error{}
	for _, mark := range markNames {
		if names.CheckBookmark(mark) != names.Valid {
			errs = append(errs, &zerrors.NameInvalid{Name: mark})
			continue
		}

		ps, ok := s.getPool(names.Pool(mark))
		if !ok {
			continue
		}

		ps.mu.Lock()
		dsName, markName, _ := names.SplitBookmark(mark)
		if ds := ps.datasets[dsName]; ds != nil {
			delete(ds.bookmarks, markName)
		}
		ps.mu.Unlock()
	}

	if len(errs) > 0 {
		return &zerrors.BookmarkDestructionFailure{Errors: errs}
	}
	return nil
}
