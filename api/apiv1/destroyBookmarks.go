package apiv1

import (
	"context"
)

type destroyBookmarksRequest struct {
	Bookmarks []string `json:"bookmarks"`
}

func destroyBookmarks(ctx context.Context, input *destroyBookmarksRequest) error {
	return GetServicer(ctx).DestroyBookmarks(input.Bookmarks)
}
