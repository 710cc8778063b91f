package zerrors

import (
	"strings"
)

func joinErrors(head string, errs []error) string {
	b := strings.Builder{}
	b.WriteString(head)
	for i, err := range errs {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// SnapshotFailure aggregates the errors of an atomic snapshot batch.
type SnapshotFailure struct {
	Errors []error
}

func (e *SnapshotFailure) Error() string {
	return joinErrors("snapshot creation failed", e.Errors)
}

func (e *SnapshotFailure) Unwrap() []error { return e.Errors }

type SnapshotDestructionFailure struct {
	Errors []error
}

func (e *SnapshotDestructionFailure) Error() string {
	return joinErrors("snapshot destruction failed", e.Errors)
}

func (e *SnapshotDestructionFailure) Unwrap() []error { return e.Errors }

type BookmarkFailure struct {
	Errors []error
}

func (e *BookmarkFailure) Error() string {
	return joinErrors("bookmark creation failed", e.Errors)
}

func (e *BookmarkFailure) Unwrap() []error { return e.Errors }

type BookmarkDestructionFailure struct {
	Errors []error
}

func (e *BookmarkDestructionFailure) Error() string {
	return joinErrors("bookmark destruction failed", e.Errors)
}

func (e *BookmarkDestructionFailure) Unwrap() []error { return e.Errors }

type HoldFailure struct {
	Errors []error
}

func (e *HoldFailure) Error() string {
	return joinErrors("hold creation failed", e.Errors)
}

func (e *HoldFailure) Unwrap() []error { return e.Errors }

type HoldReleaseFailure struct {
	Errors []error
}

func (e *HoldReleaseFailure) Error() string {
	return joinErrors("hold release failed", e.Errors)
}

func (e *HoldReleaseFailure) Unwrap() []error { return e.Errors }
