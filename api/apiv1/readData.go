package apiv1

import (
	"context"
)

type readDataRequest struct {
	Dataset string `json:"dataset"`
	Key     string `json:"key"`
}

type readDataResponse struct {
	Dataset string `json:"dataset"`
	Key     string `json:"key"`
	Value   []byte `json:"value"`
}

func readData(ctx context.Context, input *readDataRequest) (*readDataResponse, error) {

	value, err := GetServicer(ctx).ReadData(input.Dataset, input.Key)
	if err != nil {
		return nil, err
	}

	return &readDataResponse{
		Dataset: input.Dataset,
		Key:     input.Key,
		Value:   value,
	}, nil
}
