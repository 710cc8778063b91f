package apiv1

import (
	"context"
)

type rangeSpaceRequest struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type spaceResponse struct {
	Space uint64 `json:"space"`
}

// rangeSpace estimates the space consumed between two snapshots of the same
// dataset.
func rangeSpace(ctx context.Context, input *rangeSpaceRequest) (*spaceResponse, error) {

	space, err := GetServicer(ctx).SpaceBetween(input.First, input.Last)
	if err != nil {
		return nil, err
	}

	return &spaceResponse{Space: space}, nil
}
