package apiv1

import (
	"context"
	"net/http"

	"github.com/fulldump/snapdb/core"
)

type cloneRequest struct {
	Name   string         `json:"name"`
	Origin string         `json:"origin"`
	Props  map[string]any `json:"props"`
}

func clone(ctx context.Context, w http.ResponseWriter, input *cloneRequest) (*core.DatasetInfo, error) {

	s := GetServicer(ctx)

	err := s.Clone(input.Name, input.Origin, input.Props)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return s.GetDataset(input.Name)
}
