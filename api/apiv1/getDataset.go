package apiv1

import (
	"context"

	"github.com/fulldump/snapdb/core"
)

type getDatasetRequest struct {
	Name string `json:"name"`
}

func getDataset(ctx context.Context, input *getDatasetRequest) (*core.DatasetInfo, error) {
	return GetServicer(ctx).GetDataset(input.Name)
}
