package api

import (
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/fulldump/snapdb/core"
	"github.com/fulldump/snapdb/pool"
	"github.com/fulldump/snapdb/service"
)

func TestAcceptance(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		catalog := pool.NewMemory()
		for _, name := range []string{"tank", "misc"} {
			catalog.AddPool(name)
			for _, feature := range []string{"bookmarks", "large_blocks", "embedded_data"} {
				catalog.AddFeature(name, feature)
				catalog.EnableFeature(name, feature)
			}
		}

		s := service.NewService(core.NewStore(catalog))

		b := Build(s, "test")
		b.WithInterceptors(
			RecoverFromPanic,
			PrettyErrorInterceptor,
		)

		api := apitest.NewWithHandler(b)

		service.Acceptance(a, func(method, path string) *apitest.Request {
			return api.Request(method, "/v1"+path)
		})

	})
}
