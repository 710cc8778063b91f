package apiv1

import (
	"context"
)

type existsRequest struct {
	Name string `json:"name"`
}

type existsResponse struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

func exists(ctx context.Context, input *existsRequest) *existsResponse {
	return &existsResponse{
		Name:   input.Name,
		Exists: GetServicer(ctx).Exists(input.Name),
	}
}
