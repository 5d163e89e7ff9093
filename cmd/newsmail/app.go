package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/api"
	"github.com/sungwon/newsmail/internal/config"
	"github.com/sungwon/newsmail/internal/dispatch"
	"github.com/sungwon/newsmail/internal/mailer"
	"github.com/sungwon/newsmail/internal/provider"
	"github.com/sungwon/newsmail/internal/render"
	"github.com/sungwon/newsmail/internal/scheduler"
	"github.com/sungwon/newsmail/internal/step"
	"github.com/sungwon/newsmail/internal/storage"
)

// app holds the wired service components.
type app struct {
	provider    provider.Provider
	registry    *provider.Registry
	composer    *mailer.Composer
	dispatcher  *dispatch.Dispatcher
	checkpoints step.Store
	db          *storage.DB
	redis       *goredis.Client
	job         *scheduler.Job
	scheduler   *scheduler.Scheduler
	ready       map[string]api.Pinger
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{ready: make(map[string]api.Pinger)}

	p, err := provider.NewProvider(ctx, provider.ProviderConfig{
		Type:            cfg.Provider.Type,
		Host:            cfg.Provider.Host,
		Port:            cfg.Provider.Port,
		Username:        cfg.Provider.Username,
		Password:        cfg.Provider.Password,
		TLSMode:         cfg.Provider.TLSMode,
		Endpoint:        cfg.Provider.Endpoint,
		Region:          cfg.Provider.Region,
		AccessKeyID:     cfg.Provider.AccessKeyID,
		SecretAccessKey: cfg.Provider.SecretAccessKey,
		Timeout:         cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	a.provider = p
	a.registry = provider.NewRegistry()
	a.registry.Register(p)

	r, err := render.New(cfg.Mail.RenderMode)
	if err != nil {
		return nil, err
	}
	a.composer, err = mailer.New(r, mailer.Config{
		NewsFrom:    cfg.Mail.NewsFrom,
		WelcomeFrom: cfg.Mail.WelcomeFrom,
		BrandName:   cfg.Mail.BrandName,
	})
	if err != nil {
		return nil, err
	}
	a.dispatcher = dispatch.New(p, a.composer, log)

	if cfg.Redis.Addr != "" {
		a.redis = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rs := step.NewRedisStore(a.redis, cfg.Redis.CheckpointTTL)
		a.checkpoints = rs
		a.ready["redis"] = rs
	} else {
		log.Warn().Dur("ttl", cfg.Redis.CheckpointTTL).Msg("redis not configured, step checkpoints are kept in memory")
		a.checkpoints = step.NewMemoryStore(cfg.Redis.CheckpointTTL)
	}

	if cfg.Database.URL != "" {
		db, err := storage.NewDB(ctx, cfg.Database.URL, cfg.Database.PoolMin, cfg.Database.PoolMax, cfg.Database.ConnectTimeout)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			a.close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.db = db
		a.ready["database"] = db
	}

	schedCfg := scheduler.Config{
		Spec:       cfg.Schedule.Spec,
		Timezone:   cfg.Schedule.Timezone,
		DateLayout: cfg.Schedule.DateLayout,
	}
	if a.db != nil {
		a.job, err = scheduler.NewJob(a.db.Queries(), a.dispatcher, a.checkpoints, schedCfg, log)
		if err != nil {
			a.close()
			return nil, err
		}
		if cfg.Schedule.Enabled {
			a.scheduler, err = scheduler.New(a.job, schedCfg, log)
			if err != nil {
				a.close()
				return nil, err
			}
		}
	} else if cfg.Schedule.Enabled {
		log.Warn().Msg("database not configured, scheduled news summaries are disabled")
	}

	return a, nil
}

func (a *app) apiDeps(cfg *config.Config, log zerolog.Logger) api.Deps {
	return api.Deps{
		Dispatcher:  a.dispatcher,
		Welcome:     a.composer,
		Provider:    a.provider,
		Providers:   a.registry,
		Checkpoints: a.checkpoints,
		Ready:       a.ready,
		APIKeyHash:  cfg.API.APIKeyHash,
		Logger:      log,
	}
}

// close releases the database pool and the redis client. Safe to call twice.
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.redis != nil {
		a.redis.Close()
		a.redis = nil
	}
}
