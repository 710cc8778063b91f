package apiv1

import (
	"github.com/fulldump/box"
)

// BuildV1 mounts the v1 resources. Dataset, snapshot and bookmark names
// contain '/' so everything is addressed through request bodies instead of
// url parameters.
func BuildV1(v1 *box.R) *box.R {

	v1.Resource("/datasets").
		WithActions(
			box.Get(listDatasets),
			box.Post(createDataset),
			box.ActionPost(findDatasets),
			box.ActionPost(getDataset),
			box.ActionPost(exists),
			box.ActionPost(clone),
			box.ActionPost(rollback),
			box.ActionPost(destroyDataset),
			box.ActionPost(writeData),
			box.ActionPost(readData),
		)

	v1.Resource("/snapshots").
		WithActions(
			box.Post(createSnapshots),
			box.ActionPost(listSnapshots),
			box.ActionPost(destroySnapshots),
			box.ActionPost(rangeSpace),
			box.ActionPost(sendSpace),
		)

	v1.Resource("/bookmarks").
		WithActions(
			box.Post(createBookmarks),
			box.ActionPost(getBookmarks),
			box.ActionPost(destroyBookmarks),
		)

	v1.Resource("/holds").
		WithActions(
			box.Post(createHolds),
			box.ActionPost(releaseHolds),
			box.ActionPost(getHolds),
		)

	v1.Resource("/cleanups").
		WithActions(
			box.Post(openCleanup),
			box.ActionPost(closeCleanup),
		)

	v1.Resource("/streams").
		WithActions(
			box.ActionPost(send),
			box.ActionPost(receive),
		)

	return v1
}
