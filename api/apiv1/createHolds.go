package apiv1

import (
	"context"
	"net/http"
)

type createHoldsRequest struct {
	// Holds maps each snapshot to the tag to hold it with.
	Holds map[string]string `json:"holds"`
	// Cleanup optionally names a cleanup handle that will release the holds
	// when closed.
	Cleanup string `json:"cleanup"`
}

type missingResponse struct {
	Missing []string `json:"missing"`
}

func createHolds(ctx context.Context, w http.ResponseWriter, input *createHoldsRequest) (*missingResponse, error) {

	missing, err := GetServicer(ctx).Hold(input.Holds, input.Cleanup)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return &missingResponse{Missing: missing}, nil
}
