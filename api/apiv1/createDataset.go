package apiv1

import (
	"context"
	"net/http"

	"github.com/fulldump/snapdb/core"
	"github.com/fulldump/snapdb/pool"
)

type createDatasetRequest struct {
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Props map[string]any `json:"props"`
}

func createDataset(ctx context.Context, w http.ResponseWriter, input *createDatasetRequest) (*core.DatasetInfo, error) {

	s := GetServicer(ctx)

	if input.Kind == "" {
		input.Kind = pool.KindFilesystem
	}

	err := s.CreateDataset(input.Name, input.Kind, input.Props)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return s.GetDataset(input.Name)
}
