package apiv1

import (
	"context"
)

type rollbackRequest struct {
	Name string `json:"name"`
}

type rollbackResponse struct {
	Target string `json:"target"`
}

func rollback(ctx context.Context, input *rollbackRequest) (*rollbackResponse, error) {

	target, err := GetServicer(ctx).Rollback(input.Name)
	if err != nil {
		return nil, err
	}

	return &rollbackResponse{Target: target}, nil
}
