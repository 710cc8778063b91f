package apiv1

import (
	"context"

	"github.com/fulldump/snapdb/service"
)

const ContextServicerKey = "2f6f0a52-62af-11ee-8f55-3b9e4c8dd10a"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}
