package apiv1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SierraSoftworks/connor"
)

type findDatasetsRequest struct {
	Filter map[string]interface{} `json:"filter"`
	Skip   int64                  `json:"skip"`
	Limit  int64                  `json:"limit"`
}

// findDatasets streams the matching datasets as NDJSON.
func findDatasets(ctx context.Context, w http.ResponseWriter, input *findDatasetsRequest) error {

	s := GetServicer(ctx)

	if input.Limit == 0 {
		input.Limit = 100
	}

	hasFilter := len(input.Filter) > 0

	jsonWriter := json.NewEncoder(w)

	skip := input.Skip
	limit := input.Limit
	for _, info := range s.ListDatasets() {

		if limit == 0 {
			break
		}

		if hasFilter {
			data := map[string]interface{}{}
			payload, _ := json.Marshal(info)
			json.Unmarshal(payload, &data)

			match, err := connor.Match(input.Filter, data)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}
			if !match {
				continue
			}
		}

		if skip > 0 {
			skip--
			continue
		}

		limit--
		jsonWriter.Encode(info)
	}

	return nil
}
