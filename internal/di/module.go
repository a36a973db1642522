package di

import (
	"go.uber.org/fx"

	"github.com/grocerline/basketd/internal/adapter/catalog"
	"github.com/grocerline/basketd/internal/app"
	"github.com/grocerline/basketd/internal/config"
	"github.com/grocerline/basketd/internal/logger"
	"github.com/grocerline/basketd/internal/server/http/handlers"
	"github.com/grocerline/basketd/internal/server/http/router"
	"github.com/grocerline/basketd/internal/storage/postgres"
	"github.com/grocerline/basketd/internal/usecase"
	"github.com/grocerline/basketd/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		catalog.Module,
		usecase.Module,
		fx.Provide(
			func(client catalog.Client) usecase.CatalogFetcher { return client },
			func(facade *app.GroceryFacade) handlers.GroceryFacade { return facade },
			func(retrier *worker.SyncRetrier) handlers.RetryStateSource { return retrier },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
