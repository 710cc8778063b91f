package core

import (
	"github.com/fulldump/snapdb/zerrors"
)

// CleanupHandle owns temporary holds. Closing it releases every hold still
// attached, which in turn completes any deferred destruction those holds
// were blocking. A closed handle is unusable.
type CleanupHandle struct {
	store *Store
	holds map[*Hold]struct{}
}

// OpenCleanupHandle registers a new cleanup handle with the store.
func (s *Store) OpenCleanupHandle() *CleanupHandle {
	h := &CleanupHandle{
		store: s,
		holds: map[*Hold]struct{}{},
	}

	s.hmu.Lock()
	s.handles[h] = struct{}{}
	s.hmu.Unlock()

	return h
}

func (s *Store) validHandle(h *CleanupHandle) bool {
	if h.store != s {
		return false
	}
	s.hmu.Lock()
	defer s.hmu.Unlock()
	_, ok := s.handles[h]
	return ok
}

// Close releases every hold the handle still owns and invalidates the
// handle. Closing twice is an error.
func (h *CleanupHandle) Close() error {
	s := h.store

	s.hmu.Lock()
	if _, ok := s.handles[h]; !ok {
		s.hmu.Unlock()
		return &zerrors.BadHoldCleanupHandle{}
	}
	delete(s.handles, h)

	byPool := map[*poolState][]*Hold{}
	for hold := range h.holds {
		ps := hold.snap.ds.pool
		byPool[ps] = append(byPool[ps], hold)
	}
	s.hmu.Unlock()

	for ps, holds := range byPool {
		ps.mu.Lock()
		for _, hold := range holds {
			// an explicit release may have beaten us to it
			if hold.snap.holds[hold.tag] == hold {
				s.releaseHold(ps, hold)
			}
		}
		ps.mu.Unlock()
	}

	return nil
}
