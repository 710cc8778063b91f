package apiv1

import (
	"context"
)

type sendSpaceRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
}

// sendSpace estimates the exact size in bytes of the stream that send would
// produce for the same arguments.
func sendSpace(ctx context.Context, input *sendSpaceRequest) (*spaceResponse, error) {

	space, err := GetServicer(ctx).SendSpace(input.To, input.From)
	if err != nil {
		return nil, err
	}

	return &spaceResponse{Space: space}, nil
}
