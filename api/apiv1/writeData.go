package apiv1

import (
	"context"
)

type writeDataRequest struct {
	Dataset string `json:"dataset"`
	Key     string `json:"key"`
	Value   []byte `json:"value"` // base64, null removes the key
}

func writeData(ctx context.Context, input *writeDataRequest) error {
	return GetServicer(ctx).WriteData(input.Dataset, input.Key, input.Value)
}
