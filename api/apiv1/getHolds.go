package apiv1

import (
	"context"
	"time"
)

type getHoldsRequest struct {
	Snapshot string `json:"snapshot"`
}

func getHolds(ctx context.Context, input *getHoldsRequest) (map[string]time.Time, error) {
	return GetServicer(ctx).GetHolds(input.Snapshot)
}
