package apiv1

import (
	"context"
	"encoding/json"
	"net/http"
)

type sendRequest struct {
	To       string   `json:"to"`
	From     string   `json:"from"`
	Features []string `json:"features"`
}

// send writes the binary replication stream for a snapshot (or the live view
// of a dataset) straight into the response body.
func send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	input := &sendRequest{}
	err := json.NewDecoder(r.Body).Decode(input)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return err
	}

	s := GetServicer(ctx)

	w.Header().Set("Content-Type", "application/octet-stream")
	return s.Send(input.To, input.From, input.Features, w)
}
