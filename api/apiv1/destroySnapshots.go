package apiv1

import (
	"context"
)

type destroySnapshotsRequest struct {
	Snapshots []string `json:"snapshots"`
	Defer     bool     `json:"defer"`
}

func destroySnapshots(ctx context.Context, input *destroySnapshotsRequest) error {
	return GetServicer(ctx).DestroySnapshots(input.Snapshots, input.Defer)
}
