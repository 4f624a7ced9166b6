package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/config"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/database"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/bootstrap/logging"
	cacheinfra "github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/cache"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/classifier"
	sqliterepo "github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/uow"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewReviewRepository,
			fx.As(new(ports.ReviewRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideClassifier,
			fx.As(new(ports.Classifier)),
		),
	),
	fx.Provide(review.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideClassifier(cfg config.Config) *classifier.OpenAIClassifier {
	return classifier.NewOpenAIClassifier(cfg.OpenAI)
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
