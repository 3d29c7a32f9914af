package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// fakeKV — карта вместо Redis; TTL не моделируем, только наличие ключей
type fakeKV struct {
	data map[string]string
	err  error
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string]string)} }

func (f *fakeKV) SetString(_ context.Context, key, val string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = val
	return nil
}

func (f *fakeKV) GetString(_ context.Context, key string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeKV) Exists(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.data[key]
	return ok, nil
}

func TestRefreshKeyFamily(t *testing.T) {
	kv := newFakeKV()
	s := New(kv)
	ctx := context.Background()
	sub := uuid.New()

	require.NoError(t, s.PutRefresh(ctx, sub, "tok-1", time.Hour))
	assert.Contains(t, kv.data, "RT:"+sub.String())

	got, ok, err := s.GetRefresh(ctx, sub)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Token("tok-1"), got)

	require.NoError(t, s.DeleteRefresh(ctx, sub))
	_, ok, err = s.GetRefresh(ctx, sub)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetKeyFamily(t *testing.T) {
	kv := newFakeKV()
	s := New(kv)
	ctx := context.Background()
	sub := uuid.New()

	require.NoError(t, s.PutReset(ctx, sub, "reset-1", 30*time.Minute))
	assert.Contains(t, kv.data, "PRT:"+sub.String())

	got, ok, err := s.GetReset(ctx, sub)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Token("reset-1"), got)

	// повторный запрос письма перезаписывает предыдущий токен
	require.NoError(t, s.PutReset(ctx, sub, "reset-2", 30*time.Minute))
	got, ok, err = s.GetReset(ctx, sub)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Token("reset-2"), got)
}

func TestAbsentKeyIsNotAnError(t *testing.T) {
	s := New(newFakeKV())
	ctx := context.Background()

	_, ok, err := s.GetRefresh(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	revoked, err := s.IsBlacklisted(ctx, "unknown-token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklist(t *testing.T) {
	kv := newFakeKV()
	s := New(kv)
	ctx := context.Background()

	require.NoError(t, s.BlacklistAccess(ctx, "raw-token", time.Minute))
	assert.Contains(t, kv.data, "BL:raw-token")

	revoked, err := s.IsBlacklisted(ctx, "raw-token")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestBlacklistSkipsExpired(t *testing.T) {
	kv := newFakeKV()
	s := New(kv)
	ctx := context.Background()

	require.NoError(t, s.BlacklistAccess(ctx, "stale", 0))
	require.NoError(t, s.BlacklistAccess(ctx, "stale", -time.Minute))
	assert.Empty(t, kv.data)
}

func TestKVErrorsWrapUnavailable(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	s := New(kv)
	ctx := context.Background()
	sub := uuid.New()

	assert.ErrorIs(t, s.PutRefresh(ctx, sub, "t", time.Hour), domain.ErrTokenStoreUnavailable)
	_, _, err := s.GetRefresh(ctx, sub)
	assert.ErrorIs(t, err, domain.ErrTokenStoreUnavailable)
	assert.ErrorIs(t, s.DeleteRefresh(ctx, sub), domain.ErrTokenStoreUnavailable)
	assert.ErrorIs(t, s.BlacklistAccess(ctx, "t", time.Hour), domain.ErrTokenStoreUnavailable)
	_, err = s.IsBlacklisted(ctx, "t")
	assert.ErrorIs(t, err, domain.ErrTokenStoreUnavailable)
}
