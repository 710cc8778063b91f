package apiv1

import (
	"context"
	"net/http"
)

// receive applies a replication stream posted as the raw request body. The
// target snapshot, the optional clone origin and the force flag travel as
// query parameters because the body is the stream itself.
func receive(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)

	query := r.URL.Query()
	target := query.Get("target")
	origin := query.Get("origin")
	force := query.Get("force") == "true"

	err := s.Receive(target, r.Body, origin, force)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusCreated)
	return nil
}
