package mw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// fakeTokens — TokenService, у которого настраивается только ValidateAccess
type fakeTokens struct {
	claims domain.TokenClaims
	err    error
	calls  int
}

func (f *fakeTokens) IssueSession(context.Context, domain.MemberID, domain.Role) (domain.SessionTokens, error) {
	panic("not used")
}

func (f *fakeTokens) ValidateAccess(_ context.Context, _ domain.Token) (domain.TokenClaims, error) {
	f.calls++
	return f.claims, f.err
}

func (f *fakeTokens) ValidateRefresh(context.Context, domain.Token) (domain.MemberID, error) {
	panic("not used")
}

func (f *fakeTokens) RevokeSession(context.Context, domain.MemberID, domain.Token) error {
	panic("not used")
}

func (f *fakeTokens) IssuePasswordResetToken(context.Context, domain.MemberID) (domain.Token, error) {
	panic("not used")
}

func (f *fakeTokens) ValidatePasswordReset(context.Context, domain.Token) (domain.TokenClaims, error) {
	panic("not used")
}

func (f *fakeTokens) ConsumePasswordReset(context.Context, domain.MemberID) error {
	panic("not used")
}

// identityProbe запоминает identity из контекста запроса
func identityProbe(got *domain.Identity, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *ok = domain.IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestOptionalAuthPublicPathBypass(t *testing.T) {
	tokens := &fakeTokens{err: domain.ErrTokenInvalid}
	var id domain.Identity
	var ok bool
	h := OptionalAuth(AuthDeps{Tokens: tokens}, []string{"/api/members/login"}, identityProbe(&id, &ok))

	req := httptest.NewRequest(http.MethodPost, "/api/members/login", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ok)
	assert.Zero(t, tokens.calls, "public path must not touch the token service")
}

func TestOptionalAuthPrefixMatch(t *testing.T) {
	tokens := &fakeTokens{}
	var id domain.Identity
	var ok bool
	h := OptionalAuth(AuthDeps{Tokens: tokens}, []string{"/swagger/"}, identityProbe(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Zero(t, tokens.calls)
}

func TestOptionalAuthNoHeader(t *testing.T) {
	tokens := &fakeTokens{}
	var id domain.Identity
	var ok bool
	h := OptionalAuth(AuthDeps{Tokens: tokens}, nil, identityProbe(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ok)
	assert.Zero(t, tokens.calls)
}

func TestOptionalAuthValidToken(t *testing.T) {
	sub := uuid.New()
	tokens := &fakeTokens{claims: domain.TokenClaims{
		Kind: domain.KindAccess, Subject: sub, Role: domain.RoleUser,
	}}
	var id domain.Identity
	var ok bool
	h := OptionalAuth(AuthDeps{Tokens: tokens}, nil, identityProbe(&id, &ok))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, ok)
	assert.Equal(t, sub, id.Subject)
	assert.Equal(t, domain.RoleUser, id.Role)
	assert.Equal(t, domain.Token("good-token"), id.RawToken)
}

func TestOptionalAuthInvalidTokenIsAnonymous(t *testing.T) {
	for _, err := range []error{domain.ErrTokenInvalid, domain.ErrTokenStoreUnavailable} {
		tokens := &fakeTokens{err: err}
		var id domain.Identity
		var ok bool
		h := OptionalAuth(AuthDeps{Tokens: tokens}, nil, identityProbe(&id, &ok))

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		// запрос проходит, но анонимно
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, ok)
	}
}

func TestRequireAuthWithoutIdentity(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/members/logout", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":1001`)
}

func TestRequireAuthChain(t *testing.T) {
	sub := uuid.New()
	tokens := &fakeTokens{claims: domain.TokenClaims{
		Kind: domain.KindAccess, Subject: sub, Role: domain.RoleUser,
	}}
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	h := OptionalAuth(AuthDeps{Tokens: tokens}, nil, RequireAuth(inner))

	req := httptest.NewRequest(http.MethodPost, "/api/members/logout", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wrong role", func(t *testing.T) {
		h := RequireRole(domain.RoleAdmin, inner)
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		ctx := domain.WithIdentity(req.Context(), domain.Identity{Subject: uuid.New(), Role: domain.RoleUser})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("matching role", func(t *testing.T) {
		h := RequireRole(domain.RoleAdmin, inner)
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		ctx := domain.WithIdentity(req.Context(), domain.Identity{Subject: uuid.New(), Role: domain.RoleAdmin})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		h := RequireRole(domain.RoleAdmin, inner)
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", extractBearer("Bearer abc"))
	assert.Equal(t, "abc", extractBearer("bearer abc"))
	assert.Equal(t, "", extractBearer("Basic abc"))
	assert.Equal(t, "", extractBearer(""))
	assert.Equal(t, "", extractBearer("Bearer"))
}
