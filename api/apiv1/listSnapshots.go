package apiv1

import (
	"context"

	"github.com/fulldump/snapdb/core"
)

type listSnapshotsRequest struct {
	Dataset string `json:"dataset"`
}

func listSnapshots(ctx context.Context, input *listSnapshotsRequest) ([]*core.SnapshotInfo, error) {
	return GetServicer(ctx).ListSnapshots(input.Dataset)
}
