package apiv1

import (
	"context"
)

type getBookmarksRequest struct {
	Dataset string   `json:"dataset"`
	Props   []string `json:"props"`
}

func getBookmarks(ctx context.Context, input *getBookmarksRequest) (map[string]map[string]any, error) {
	return GetServicer(ctx).GetBookmarks(input.Dataset, input.Props)
}
