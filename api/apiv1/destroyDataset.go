package apiv1

import (
	"context"
)

type destroyDatasetRequest struct {
	Name string `json:"name"`
}

func destroyDataset(ctx context.Context, input *destroyDatasetRequest) error {
	return GetServicer(ctx).DestroyDataset(input.Name)
}
