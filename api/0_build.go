package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/snapdb/api/apiv1"
	"github.com/fulldump/snapdb/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	apiv1.BuildV1(v1)
	v1.WithInterceptors(
		injectServicer(s),
	)

	b.Resource("/version").
		WithActions(
			box.Get(func() string {
				return version
			}).WithName("version"),
		)

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(apiv1.SetServicer(ctx, s))
		}
	}
}
