package apiv1

import (
	"context"
	"net/http"
)

type cleanupResponse struct {
	Id string `json:"id"`
}

func openCleanup(ctx context.Context, w http.ResponseWriter) *cleanupResponse {

	id := GetServicer(ctx).OpenCleanup()

	w.WriteHeader(http.StatusCreated)
	return &cleanupResponse{Id: id}
}
