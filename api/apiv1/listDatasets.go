package apiv1

import (
	"context"

	"github.com/fulldump/snapdb/core"
)

func listDatasets(ctx context.Context) []*core.DatasetInfo {
	return GetServicer(ctx).ListDatasets()
}
