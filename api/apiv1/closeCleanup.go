package apiv1

import (
	"context"
)

type closeCleanupRequest struct {
	Id string `json:"id"`
}

// closeCleanup releases every hold acquired through the handle and discards
// it. Closing the same handle twice is an error.
func closeCleanup(ctx context.Context, input *closeCleanupRequest) error {
	return GetServicer(ctx).CloseCleanup(input.Id)
}
