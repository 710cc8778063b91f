package apiv1

import (
	"context"
	"net/http"
)

type createBookmarksRequest struct {
	// Bookmarks maps each new bookmark to its source snapshot or bookmark.
	Bookmarks map[string]string `json:"bookmarks"`
}

func createBookmarks(ctx context.Context, w http.ResponseWriter, input *createBookmarksRequest) error {

	err := GetServicer(ctx).Bookmark(input.Bookmarks)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusCreated)
	return nil
}
