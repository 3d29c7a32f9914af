package token

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// fakeStore — TokenStore в памяти с инъекцией отказа хранилища
type fakeStore struct {
	mu        sync.Mutex
	refresh   map[domain.MemberID]domain.Token
	reset     map[domain.MemberID]domain.Token
	blacklist map[domain.Token]struct{}
	failing   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		refresh:   make(map[domain.MemberID]domain.Token),
		reset:     make(map[domain.MemberID]domain.Token),
		blacklist: make(map[domain.Token]struct{}),
	}
}

func (f *fakeStore) err() error {
	if f.failing {
		return domain.ErrTokenStoreUnavailable
	}
	return nil
}

func (f *fakeStore) PutRefresh(_ context.Context, sub domain.MemberID, t domain.Token, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	f.refresh[sub] = t
	return nil
}

func (f *fakeStore) GetRefresh(_ context.Context, sub domain.MemberID) (domain.Token, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return "", false, err
	}
	t, ok := f.refresh[sub]
	return t, ok, nil
}

func (f *fakeStore) DeleteRefresh(_ context.Context, sub domain.MemberID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	delete(f.refresh, sub)
	return nil
}

func (f *fakeStore) PutReset(_ context.Context, sub domain.MemberID, t domain.Token, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	f.reset[sub] = t
	return nil
}

func (f *fakeStore) GetReset(_ context.Context, sub domain.MemberID) (domain.Token, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return "", false, err
	}
	t, ok := f.reset[sub]
	return t, ok, nil
}

func (f *fakeStore) BlacklistAccess(_ context.Context, raw domain.Token, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	f.blacklist[raw] = struct{}{}
	return nil
}

func (f *fakeStore) IsBlacklisted(_ context.Context, raw domain.Token) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err(); err != nil {
		return false, err
	}
	_, ok := f.blacklist[raw]
	return ok, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	codec := newTestCodec(t, 15*time.Minute)
	store := newFakeStore()
	logger := log.New(io.Discard, "", 0)
	return NewService(logger, codec, store, time.Second), store
}

func TestIssueAndValidateSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	pair, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	cl, err := svc.ValidateAccess(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, sub, cl.Subject)
	assert.Equal(t, domain.RoleUser, cl.Role)

	got, err := svc.ValidateRefresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
}

func TestRefreshIsNotAccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssueSession(ctx, uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(ctx, pair.Refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.ValidateRefresh(ctx, pair.Access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRefreshSupersede(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	first, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)
	second, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)

	// жив только последний refresh
	_, err = svc.ValidateRefresh(ctx, first.Refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	got, err := svc.ValidateRefresh(ctx, second.Refresh)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
}

func TestRevokeSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	pair, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(ctx, sub, pair.Access))

	_, err = svc.ValidateAccess(ctx, pair.Access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	_, err = svc.ValidateRefresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	// идемпотентность
	require.NoError(t, svc.RevokeSession(ctx, sub, pair.Access))
}

func TestRevokedAccessNeverResurrects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	old, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeSession(ctx, sub, old.Access))

	// повторный логин не оживляет отозванный access
	fresh, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(ctx, old.Access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	_, err = svc.ValidateAccess(ctx, fresh.Access)
	assert.NoError(t, err)
}

func TestRevokeWithGarbageAccess(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	_, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)

	// кривой access не блэклистится, но refresh всё равно сброшен
	require.NoError(t, svc.RevokeSession(ctx, sub, "garbage"))
	assert.Empty(t, store.blacklist)
	assert.Empty(t, store.refresh)
}

func TestValidateAccessFailsClosed(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssueSession(ctx, uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	store.failing = true
	_, err = svc.ValidateAccess(ctx, pair.Access)
	assert.ErrorIs(t, err, domain.ErrTokenStoreUnavailable)
}

func TestValidateRefreshFailsClosed(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	pair, err := svc.IssueSession(ctx, uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	store.failing = true
	_, err = svc.ValidateRefresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, domain.ErrTokenStoreUnavailable)
}

func TestPasswordResetLifecycle(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	_, err := svc.IssueSession(ctx, sub, domain.RoleUser)
	require.NoError(t, err)

	reset, err := svc.IssuePasswordResetToken(ctx, sub)
	require.NoError(t, err)

	cl, err := svc.ValidatePasswordReset(ctx, reset)
	require.NoError(t, err)
	assert.Equal(t, sub, cl.Subject)

	// reset-токен не годится как access
	_, err = svc.ValidateAccess(ctx, reset)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	require.NoError(t, svc.ConsumePasswordReset(ctx, sub))

	// сбрасывается только refresh-сессия; запись PRT живёт до TTL
	assert.Empty(t, store.refresh)
	assert.Contains(t, store.reset, sub)
	_, err = svc.ValidatePasswordReset(ctx, reset)
	assert.NoError(t, err)
}

func TestPasswordResetSupersede(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sub := uuid.New()

	first, err := svc.IssuePasswordResetToken(ctx, sub)
	require.NoError(t, err)
	second, err := svc.IssuePasswordResetToken(ctx, sub)
	require.NoError(t, err)

	_, err = svc.ValidatePasswordReset(ctx, first)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	_, err = svc.ValidatePasswordReset(ctx, second)
	assert.NoError(t, err)
}
