package service

import (
	"io"
	"time"

	"github.com/fulldump/snapdb/core"
)

type Servicer interface {
	CreateDataset(name, kind string, props map[string]any) error
	ListDatasets() []*core.DatasetInfo
	GetDataset(name string) (*core.DatasetInfo, error)
	DestroyDataset(name string) error
	Exists(name string) bool
	Clone(name, origin string, props map[string]any) error
	Rollback(name string) (string, error)
	WriteData(name, key string, value []byte) error
	ReadData(name, key string) ([]byte, error)

	Snapshot(names []string, props map[string]any) error
	DestroySnapshots(names []string, deferDestroy bool) error
	ListSnapshots(dataset string) ([]*core.SnapshotInfo, error)
	SpaceBetween(first, last string) (uint64, error)
	SendSpace(to, from string) (uint64, error)

	Bookmark(marks map[string]string) error
	GetBookmarks(dataset string, props []string) (map[string]map[string]any, error)
	DestroyBookmarks(names []string) error

	Hold(holds map[string]string, cleanup string) ([]string, error)
	Release(releases map[string][]string) ([]string, error)
	GetHolds(snapshot string) (map[string]time.Time, error)
	OpenCleanup() string
	CloseCleanup(id string) error

	Send(to, from string, features []string, w io.Writer) error
	Receive(target string, r io.Reader, origin string, force bool) error
}
