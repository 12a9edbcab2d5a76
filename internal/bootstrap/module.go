package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"surveydq/internal/bootstrap/config"
	"surveydq/internal/bootstrap/database"
	"surveydq/internal/bootstrap/logging"
	"surveydq/internal/errs"
	sqliterepo "surveydq/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "surveydq/internal/infrastructure/persistence/sqlite/uow"
	"surveydq/internal/ports"
	dqusecase "surveydq/internal/usecase/dq"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewIssueRepository,
			fx.As(new(ports.IssueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRecordSource,
			fx.As(new(ports.RecordSource)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRunLog,
			fx.As(new(ports.RunLog)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideDQConfig),
	fx.Provide(dqusecase.NewService),
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

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideDQConfig(cfg config.Config) (dqusecase.Config, error) {
	loc, err := time.LoadLocation(cfg.DQ.Timezone)
	if err != nil {
		return dqusecase.Config{}, errs.Wrapf(err, "load timezone %q", cfg.DQ.Timezone)
	}

	return dqusecase.Config{
		Window:         time.Duration(cfg.DQ.TimeWindowHours) * time.Hour,
		MinDuration:    time.Duration(cfg.DQ.MinDurationMinutes) * time.Minute,
		MaxDelay:       time.Duration(cfg.DQ.MaxDelayDays) * 24 * time.Hour,
		Location:       loc,
		Limit:          cfg.DQ.Limit,
		ResolveMissing: cfg.DQ.ResolveMissing,
		ReportDir:      cfg.DQ.ReportDir,
	}, nil
}
