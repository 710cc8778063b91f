package apiv1

import (
	"context"
)

type releaseHoldsRequest struct {
	// Releases maps each snapshot to the tags to release from it.
	Releases map[string][]string `json:"releases"`
}

func releaseHolds(ctx context.Context, input *releaseHoldsRequest) (*missingResponse, error) {

	missing, err := GetServicer(ctx).Release(input.Releases)
	if err != nil {
		return nil, err
	}

	return &missingResponse{Missing: missing}, nil
}
