// Package zerrors defines the typed errors returned by the snapshot core.
// Batch operations wrap per item failures in an aggregate error so callers
// can inspect each one.
package zerrors

import (
	"fmt"
	"syscall"
)

type NameInvalid struct {
	Name string
}

func (e *NameInvalid) Error() string {
	if e.Name == "" {
		return "invalid name"
	}
	return fmt.Sprintf("invalid name '%s'", e.Name)
}

type NameTooLong struct {
	Name string
}

func (e *NameTooLong) Error() string {
	if e.Name == "" {
		return "name too long"
	}
	return fmt.Sprintf("name '%s' is too long", e.Name)
}

type DatasetNotFound struct {
	Name string
}

func (e *DatasetNotFound) Error() string {
	return fmt.Sprintf("dataset '%s' not found", e.Name)
}

type DatasetExists struct {
	Name string
}

func (e *DatasetExists) Error() string {
	return fmt.Sprintf("dataset '%s' already exists", e.Name)
}

type DatasetBusy struct {
	Name string
}

func (e *DatasetBusy) Error() string {
	return fmt.Sprintf("dataset '%s' is busy", e.Name)
}

type DatasetTypeInvalid struct {
	Kind string
}

func (e *DatasetTypeInvalid) Error() string {
	return fmt.Sprintf("invalid dataset type '%s'", e.Kind)
}

type FilesystemNotFound struct {
	Name string
}

func (e *FilesystemNotFound) Error() string {
	return fmt.Sprintf("filesystem '%s' not found", e.Name)
}

type FilesystemExists struct {
	Name string
}

func (e *FilesystemExists) Error() string {
	return fmt.Sprintf("filesystem '%s' already exists", e.Name)
}

type ParentNotFound struct {
	Name string
}

func (e *ParentNotFound) Error() string {
	return fmt.Sprintf("parent of '%s' not found", e.Name)
}

type WrongParent struct {
	Name string
}

func (e *WrongParent) Error() string {
	return fmt.Sprintf("parent of '%s' has the wrong type", e.Name)
}

type PropertyInvalid struct {
	Name     string
	Property string
}

func (e *PropertyInvalid) Error() string {
	return fmt.Sprintf("invalid property '%s' for '%s'", e.Property, e.Name)
}

type PoolNotFound struct {
	Pool string
}

func (e *PoolNotFound) Error() string {
	return fmt.Sprintf("pool '%s' not found", e.Pool)
}

type PoolsDiffer struct {
	Name string
}

func (e *PoolsDiffer) Error() string {
	return "source and target belong to different pools"
}

type ReadOnlyPool struct {
	Pool string
}

func (e *ReadOnlyPool) Error() string {
	return fmt.Sprintf("pool '%s' is read-only", e.Pool)
}

type FeatureNotSupported struct {
	Pool    string
	Feature string
}

func (e *FeatureNotSupported) Error() string {
	return fmt.Sprintf("feature '%s' is not supported on pool '%s'", e.Feature, e.Pool)
}

type SnapshotNotFound struct {
	Name string
}

func (e *SnapshotNotFound) Error() string {
	return fmt.Sprintf("snapshot '%s' not found", e.Name)
}

type SnapshotExists struct {
	Name string
}

func (e *SnapshotExists) Error() string {
	return fmt.Sprintf("snapshot '%s' already exists", e.Name)
}

type SnapshotNameInvalid struct {
	Name string
}

func (e *SnapshotNameInvalid) Error() string {
	return fmt.Sprintf("'%s' is not a valid snapshot name", e.Name)
}

type SnapshotMismatch struct {
	Name string
}

func (e *SnapshotMismatch) Error() string {
	return fmt.Sprintf("snapshot '%s' is not in the expected lineage position", e.Name)
}

type SnapshotIsCloned struct {
	Name string
}

func (e *SnapshotIsCloned) Error() string {
	return fmt.Sprintf("snapshot '%s' has dependent clones", e.Name)
}

type SnapshotIsHeld struct {
	Name string
}

func (e *SnapshotIsHeld) Error() string {
	return fmt.Sprintf("snapshot '%s' is held", e.Name)
}

type DuplicateSnapshots struct {
	Name string
}

func (e *DuplicateSnapshots) Error() string {
	return fmt.Sprintf("snapshot '%s' requested more than once", e.Name)
}

type BookmarkExists struct {
	Name string
}

func (e *BookmarkExists) Error() string {
	return fmt.Sprintf("bookmark '%s' already exists", e.Name)
}

type BookmarkMismatch struct {
	Name string
}

func (e *BookmarkMismatch) Error() string {
	return fmt.Sprintf("bookmark source '%s' is not a snapshot of the bookmark dataset", e.Name)
}

type HoldExists struct {
	Name string
	Tag  string
}

func (e *HoldExists) Error() string {
	return fmt.Sprintf("hold '%s' already exists on '%s'", e.Tag, e.Name)
}

type BadHoldCleanupHandle struct{}

func (e *BadHoldCleanupHandle) Error() string {
	return "invalid hold cleanup handle"
}

type StreamMismatch struct {
	Name string
}

func (e *StreamMismatch) Error() string {
	return fmt.Sprintf("stream does not match destination '%s'", e.Name)
}

type BadStream struct {
	Reason string
}

func (e *BadStream) Error() string {
	if e.Reason == "" {
		return "malformed replication stream"
	}
	return "malformed replication stream: " + e.Reason
}

type UnknownStreamFeature struct {
	Feature string
}

func (e *UnknownStreamFeature) Error() string {
	return fmt.Sprintf("unknown stream feature '%s'", e.Feature)
}

type DestinationModified struct {
	Name string
}

func (e *DestinationModified) Error() string {
	return fmt.Sprintf("destination '%s' has been modified since the last snapshot", e.Name)
}

type StreamIOError struct {
	Errno syscall.Errno
}

func (e *StreamIOError) Error() string {
	return fmt.Sprintf("stream I/O error: %s", e.Errno.Error())
}
