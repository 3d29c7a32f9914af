package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Ozymandias089/devlog-api/internal/auth/password"
	"github.com/Ozymandias089/devlog-api/internal/auth/token"
	"github.com/Ozymandias089/devlog-api/internal/auth/tokenstore"
	"github.com/Ozymandias089/devlog-api/internal/config"
	redisx "github.com/Ozymandias089/devlog-api/internal/infra/cache/redis"
	"github.com/Ozymandias089/devlog-api/internal/infra/database/postgres"
	"github.com/Ozymandias089/devlog-api/internal/infra/mail"
	"github.com/Ozymandias089/devlog-api/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	cache  *redisx.Cache
	repo   *postgres.PGRepo
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	tokenLog := log.New(base.Writer(), base.Prefix()+"[token] ", base.Flags())
	mailLog := log.New(base.Writer(), base.Prefix()+"[mail] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Auth primitives
	hasher := password.NewDefault()
	codec, err := token.NewCodec(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AccessTTL(), cfg.RefreshTTL(), cfg.ResetTTL())
	if err != nil {
		return nil, fmt.Errorf("failed init token codec: %w", err)
	}
	tokens := token.NewService(tokenLog, codec, tokenstore.New(rc), cfg.StoreTimeout())

	mailer := mail.NewLogMailer(mailLog)

	base.Println("init Server")
	rep := web.Repos{Members: pgRepo, Posts: pgRepo}
	auth := web.AuthDeps{Hasher: hasher, Tokens: tokens}
	server := web.New(serverLog, cfg, pgRepo, rc, rep, auth, mailer)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		cache:  rc,
		repo:   pgRepo,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return nil
}
