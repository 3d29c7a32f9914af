package web

import (
	"log"
	"net/http"

	_ "github.com/Ozymandias089/devlog-api/internal/docs"
	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/v1/health"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/v1/member"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/v1/post"
	httpSwagger "github.com/swaggo/http-swagger"
)

type routerDeps struct {
	health     *health.Handler
	signup     *member.HandlerSignup
	login      *member.HandlerLogin
	refresh    *member.HandlerRefresh
	logout     *member.HandlerLogout
	checkEmail *member.HandlerCheckEmail
	account    *member.HandlerAccount
	password   *member.HandlerPassword
	reset      *member.HandlerReset
	posts      *post.Handler
	tokens     domain.TokenService
	public     []string
	log        *log.Logger
}

func newRouter(d routerDeps) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/healthz", d.health.Liveness)
	mux.HandleFunc("GET /api/readyz", d.health.Readiness)

	// members: публичные
	mux.HandleFunc("POST /api/members/signup", limitBody(1<<20, d.signup.Signup))
	mux.HandleFunc("POST /api/members/login", limitBody(1<<20, d.login.Login))
	mux.HandleFunc("GET /api/members/check-email", d.checkEmail.CheckEmail)
	mux.HandleFunc("POST /api/members/refresh", limitBody(1<<20, d.refresh.Refresh))
	mux.HandleFunc("POST /api/members/password/validate", limitBody(1<<20, d.password.ValidatePassword))
	mux.HandleFunc("POST /api/members/password-reset/request", limitBody(1<<20, d.reset.Request))
	mux.HandleFunc("GET /api/members/password-reset/verify", d.reset.Verify)
	mux.HandleFunc("POST /api/members/password-reset/confirm", limitBody(1<<20, d.reset.Confirm))

	// members: под авторизацией
	mux.Handle("POST /api/members/logout", mw.RequireAuth(http.HandlerFunc(d.logout.Logout)))
	mux.Handle("DELETE /api/members/me", mw.RequireAuth(http.HandlerFunc(d.account.Unregister)))
	mux.Handle("PATCH /api/members/me/username", mw.RequireAuth(http.HandlerFunc(d.account.UpdateUsername)))
	mux.Handle("POST /api/members/password-reset/issue", mw.RequireAuth(http.HandlerFunc(d.reset.Issue)))

	// posts
	mux.Handle("POST /api/posts", mw.RequireAuth(limitBody(4<<20, d.posts.Create)))
	mux.HandleFunc("GET /api/posts", d.posts.List)
	mux.HandleFunc("GET /api/posts/{slug}", d.posts.GetOne)
	mux.Handle("PATCH /api/posts/{slug}", mw.RequireAuth(limitBody(4<<20, d.posts.Update)))
	mux.Handle("DELETE /api/posts/{slug}", mw.RequireAuth(http.HandlerFunc(d.posts.Delete)))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	authMW := mw.OptionalAuth(mw.AuthDeps{Tokens: d.tokens}, d.public, mux)
	return mw.WithRequestID(mw.Logging(d.log)(authMW))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
