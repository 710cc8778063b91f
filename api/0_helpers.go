package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/snapdb/zerrors"
)

// errorKind gives each error a stable machine readable name.
func errorKind(err error) string {
	switch err.(type) {
	case *zerrors.NameInvalid:
		return "NameInvalid"
	case *zerrors.NameTooLong:
		return "NameTooLong"
	case *zerrors.DatasetNotFound:
		return "DatasetNotFound"
	case *zerrors.DatasetExists:
		return "DatasetExists"
	case *zerrors.DatasetBusy:
		return "DatasetBusy"
	case *zerrors.DatasetTypeInvalid:
		return "DatasetTypeInvalid"
	case *zerrors.FilesystemNotFound:
		return "FilesystemNotFound"
	case *zerrors.FilesystemExists:
		return "FilesystemExists"
	case *zerrors.ParentNotFound:
		return "ParentNotFound"
	case *zerrors.WrongParent:
		return "WrongParent"
	case *zerrors.PropertyInvalid:
		return "PropertyInvalid"
	case *zerrors.PoolNotFound:
		return "PoolNotFound"
	case *zerrors.PoolsDiffer:
		return "PoolsDiffer"
	case *zerrors.ReadOnlyPool:
		return "ReadOnlyPool"
	case *zerrors.FeatureNotSupported:
		return "FeatureNotSupported"
	case *zerrors.SnapshotNotFound:
		return "SnapshotNotFound"
	case *zerrors.SnapshotExists:
		return "SnapshotExists"
	case *zerrors.SnapshotNameInvalid:
		return "SnapshotNameInvalid"
	case *zerrors.SnapshotMismatch:
		return "SnapshotMismatch"
	case *zerrors.SnapshotIsCloned:
		return "SnapshotIsCloned"
	case *zerrors.SnapshotIsHeld:
		return "SnapshotIsHeld"
	case *zerrors.DuplicateSnapshots:
		return "DuplicateSnapshots"
	case *zerrors.BookmarkExists:
		return "BookmarkExists"
	case *zerrors.BookmarkMismatch:
		return "BookmarkMismatch"
	case *zerrors.HoldExists:
		return "HoldExists"
	case *zerrors.BadHoldCleanupHandle:
		return "BadHoldCleanupHandle"
	case *zerrors.StreamMismatch:
		return "StreamMismatch"
	case *zerrors.BadStream:
		return "BadStream"
	case *zerrors.UnknownStreamFeature:
		return "UnknownStreamFeature"
	case *zerrors.DestinationModified:
		return "DestinationModified"
	case *zerrors.StreamIOError:
		return "StreamIOError"
	case *zerrors.SnapshotFailure:
		return "SnapshotFailure"
	case *zerrors.SnapshotDestructionFailure:
		return "SnapshotDestructionFailure"
	case *zerrors.BookmarkFailure:
		return "BookmarkFailure"
	case *zerrors.BookmarkDestructionFailure:
		return "BookmarkDestructionFailure"
	case *zerrors.HoldFailure:
		return "HoldFailure"
	case *zerrors.HoldReleaseFailure:
		return "HoldReleaseFailure"
	}
	return "Internal"
}

func errorStatus(err error) int {
	switch e := err.(type) {
	case *zerrors.NameInvalid, *zerrors.NameTooLong, *zerrors.DatasetTypeInvalid,
		*zerrors.PropertyInvalid, *zerrors.SnapshotNameInvalid, *zerrors.DuplicateSnapshots,
		*zerrors.BookmarkMismatch, *zerrors.WrongParent, *zerrors.BadStream,
		*zerrors.UnknownStreamFeature, *zerrors.BadHoldCleanupHandle:
		return http.StatusBadRequest

	case *zerrors.DatasetNotFound, *zerrors.FilesystemNotFound, *zerrors.ParentNotFound,
		*zerrors.PoolNotFound, *zerrors.SnapshotNotFound:
		return http.StatusNotFound

	case *zerrors.DatasetExists, *zerrors.FilesystemExists, *zerrors.DatasetBusy,
		*zerrors.SnapshotExists, *zerrors.SnapshotMismatch, *zerrors.SnapshotIsCloned,
		*zerrors.SnapshotIsHeld, *zerrors.BookmarkExists, *zerrors.HoldExists,
		*zerrors.StreamMismatch, *zerrors.DestinationModified, *zerrors.PoolsDiffer:
		return http.StatusConflict

	case *zerrors.ReadOnlyPool, *zerrors.FeatureNotSupported:
		return http.StatusForbidden

	case *zerrors.StreamIOError:
		return http.StatusBadGateway

	case interface{ Unwrap() []error }:
		inner := e.Unwrap()
		if len(inner) > 0 {
			return errorStatus(inner[0])
		}
	}
	return http.StatusInternalServerError
}

type errorItem struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PrettyErrorInterceptor renders any handler error as a JSON body with a
// stable kind, a message and the per item errors of batch failures.
func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		if err == box.ErrResourceNotFound {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"kind":    "ResourceNotFound",
					"message": fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()),
				},
			})
			return
		}

		if err == box.ErrMethodNotAllowed {
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"kind":    "MethodNotAllowed",
					"message": fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method),
				},
			})
			return
		}

		if _, ok := err.(*json.SyntaxError); ok {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"kind":    "MalformedJson",
					"message": err.Error(),
				},
			})
			return
		}

		body := map[string]interface{}{
			"kind":    errorKind(err),
			"message": err.Error(),
		}
		if batch, ok := err.(interface{ Unwrap() []error }); ok {
			items := []errorItem{}
			for _, inner := range batch.Unwrap() {
				items = append(items, errorItem{
					Kind:    errorKind(inner),
					Message: inner.Error(),
				})
			}
			body["errors"] = items
		}

		w.WriteHeader(errorStatus(err))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": body,
		})
	}
}
