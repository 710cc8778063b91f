package apiv1

import (
	"context"
	"net/http"
)

type createSnapshotsRequest struct {
	Snapshots []string       `json:"snapshots"`
	Props     map[string]any `json:"props"`
}

// createSnapshots takes all the requested snapshots atomically. Either every
// snapshot is created on the same transaction or none is.
func createSnapshots(ctx context.Context, w http.ResponseWriter, input *createSnapshotsRequest) error {

	err := GetServicer(ctx).Snapshot(input.Snapshots, input.Props)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusCreated)
	return nil
}
