// Package service exposes the snapshot store as a single facade the HTTP
// layer talks to. It also owns the HTTP visible cleanup handles, mapping
// opaque ids to the store's hold cleanup handles.
package service

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulldump/snapdb/core"
	"github.com/fulldump/snapdb/zerrors"
)

type Service struct {
	store *core.Store

	mu       sync.Mutex
	cleanups map[string]*core.CleanupHandle
}

func NewService(store *core.Store) *Service {
	return &Service{
		store:    store,
		cleanups: map[string]*core.CleanupHandle{},
	}
}

func (s *Service) CreateDataset(name, kind string, props map[string]any) error {
	return s.store.Create(name, core.Kind(kind), props)
}

func (s *Service) ListDatasets() []*core.DatasetInfo {
	return s.store.ListDatasets()
}

func (s *Service) GetDataset(name string) (*core.DatasetInfo, error) {
	return s.store.GetDataset(name)
}

func (s *Service) DestroyDataset(name string) error {
	return s.store.DestroyDataset(name)
}

func (s *Service) Exists(name string) bool {
	return s.store.Exists(name)
}

func (s *Service) Clone(name, origin string, props map[string]any) error {
	return s.store.Clone(name, origin, props)
}

func (s *Service) Rollback(name string) (string, error) {
	return s.store.Rollback(name)
}

func (s *Service) WriteData(name, key string, value []byte) error {
	return s.store.WriteData(name, key, value)
}

func (s *Service) ReadData(name, key string) ([]byte, error) {
	return s.store.ReadData(name, key)
}

func (s *Service) Snapshot(names []string, props map[string]any) error {
	return s.store.Snapshot(names, props)
}

func (s *Service) DestroySnapshots(names []string, deferDestroy bool) error {
	return s.store.DestroySnapshots(names, deferDestroy)
}

func (s *Service) ListSnapshots(dataset string) ([]*core.SnapshotInfo, error) {
	return s.store.ListSnapshots(dataset)
}

func (s *Service) SpaceBetween(first, last string) (uint64, error) {
	return s.store.SpaceBetween(first, last)
}

func (s *Service) SendSpace(to, from string) (uint64, error) {
	return s.store.SendSpace(to, from)
}

func (s *Service) Bookmark(marks map[string]string) error {
	return s.store.Bookmark(marks)
}

func (s *Service) GetBookmarks(dataset string, props []string) (map[string]map[string]any, error) {
	return s.store.GetBookmarks(dataset, props)
}

func (s *Service) DestroyBookmarks(names []string) error {
	return s.store.DestroyBookmarks(names)
}

func (s *Service) Hold(holds map[string]string, cleanup string) ([]string, error) {
	var handle *core.CleanupHandle
	if cleanup != "" {
		s.mu.Lock()
		handle = s.cleanups[cleanup]
		s.mu.Unlock()
		if handle == nil {
			return nil, &zerrors.BadHoldCleanupHandle{}
		}
	}
	return s.store.Hold(holds, handle)
}

func (s *Service) Release(releases map[string][]string) ([]string, error) {
	return s.store.Release(releases)
}

func (s *Service) GetHolds(snapshot string) (map[string]time.Time, error) {
	return s.store.GetHolds(snapshot)
}

func (s *Service) OpenCleanup() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.cleanups[id] = s.store.OpenCleanupHandle()
	s.mu.Unlock()

	return id
}

func (s *Service) CloseCleanup(id string) error {
	s.mu.Lock()
	handle := s.cleanups[id]
	delete(s.cleanups, id)
	s.mu.Unlock()

	if handle == nil {
		return &zerrors.BadHoldCleanupHandle{}
	}
	return handle.Close()
}

func (s *Service) Send(to, from string, features []string, w io.Writer) error {
	return s.store.Send(to, from, features, w)
}

func (s *Service) Receive(target string, r io.Reader, origin string, force bool) error {
	return s.store.Receive(target, r, origin, force)
}
