package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Ozymandias089/devlog-api/internal/config"
	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/v1/health"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/v1/member"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/v1/post"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, db, cache health.Pinger, repos Repos, auth AuthDeps, mailer domain.Mailer) *Server {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	memberLog := log.New(logger.Writer(), logger.Prefix()+"[member] ", logger.Flags())
	postLog := log.New(logger.Writer(), logger.Prefix()+"[post] ", logger.Flags())

	healthHandler := &health.Handler{Log: healthLog, DB: db, Cache: cache}

	signupHandler := &member.HandlerSignup{Log: memberLog, Members: repos.Members, Hasher: auth.Hasher, Tokens: auth.Tokens}
	loginHandler := &member.HandlerLogin{Log: memberLog, Members: repos.Members, Hasher: auth.Hasher, Tokens: auth.Tokens}
	refreshHandler := &member.HandlerRefresh{Log: memberLog, Members: repos.Members, Tokens: auth.Tokens}
	logoutHandler := &member.HandlerLogout{Log: memberLog, Tokens: auth.Tokens}
	checkEmailHandler := &member.HandlerCheckEmail{Log: memberLog, Members: repos.Members}
	accountHandler := &member.HandlerAccount{Log: memberLog, Members: repos.Members, Tokens: auth.Tokens}
	passwordHandler := &member.HandlerPassword{Log: memberLog}
	resetHandler := &member.HandlerReset{
		Log: memberLog, Members: repos.Members, Hasher: auth.Hasher,
		Tokens: auth.Tokens, Mailer: mailer, ResetURL: cfg.FrontendResetURL,
	}

	postHandler := &post.Handler{Log: postLog, Posts: repos.Posts}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routerDeps{
			health:     healthHandler,
			signup:     signupHandler,
			login:      loginHandler,
			refresh:    refreshHandler,
			logout:     logoutHandler,
			checkEmail: checkEmailHandler,
			account:    accountHandler,
			password:   passwordHandler,
			reset:      resetHandler,
			posts:      postHandler,
			tokens:     auth.Tokens,
			public:     cfg.PublicPaths(),
			log:        logger,
		}),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
