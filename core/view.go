package core

import (
	"os"
	"slices"
	"syscall"

	"github.com/fulldump/snapdb/names"
	"github.com/fulldump/snapdb/zerrors"
)

// View is an open handle on a dataset's live data. A forced receive that
// rewinds the dataset poisons every open view: later reads and the close
// itself report an I/O failure, the way an application holding open files
// across a rewind would see it.
type View struct {
	ds       *Dataset
	poisoned bool
	closed   bool
}

func (s *Store) OpenView(name string) (*View, error) {
	switch names.CheckDataset(name) {
	case names.Invalid:
		return nil, &zerrors.NameInvalid{Name: name}
	case names.TooLongName, names.TooLongComponent:
		return nil, &zerrors.NameTooLong{Name: name}
	}

	ps, ok := s.getPool(names.Pool(name))
	if !ok {
		return nil, &zerrors.DatasetNotFound{Name: name}
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ds := ps.datasets[name]
	if ds == nil {
		return nil, &zerrors.DatasetNotFound{Name: name}
	}

	v := &View{ds: ds}
	ds.views[v] = struct{}{}
	return v, nil
}

func (v *View) Read(key string) ([]byte, error) {
	ps := v.ds.pool
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if v.poisoned {
		return nil, &zerrors.StreamIOError{Errno: syscall.EIO}
	}
	if v.closed {
		return nil, os.ErrClosed
	}
	return slices.Clone(v.ds.data[key]), nil
}

func (v *View) Close() error {
	ps := v.ds.pool
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if v.closed {
		return os.ErrClosed
	}
	v.closed = true
	if v.poisoned {
		return &zerrors.StreamIOError{Errno: syscall.EIO}
	}
	delete(v.ds.views, v)
	return nil
}

// poisonViews invalidates every open view. Caller holds the pool lock.
func (ds *Dataset) poisonViews() {
	for v := range ds.views {
		v.poisoned = true
	}
	ds.views = map[*View]struct{}{}
}
