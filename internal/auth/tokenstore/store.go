package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// KV — минимальный интерфейс, который нам нужен от Redis.
// Absent-ключ — не ошибка: GetString возвращает ok=false.
// SetString требует ttl > 0: бессрочных записей в этом хранилище нет.
type KV interface {
	SetString(ctx context.Context, key, val string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Store — адаптер хранилища токенов поверх KV.
// Владеет всеми тремя семействами ключей (RT:/PRT:/BL:); сервис токенов
// ничего не кеширует в памяти процесса.
type Store struct {
	kv KV
}

// Ensure: Store implements domain.TokenStore
var _ domain.TokenStore = (*Store)(nil)

func New(kv KV) *Store { return &Store{kv: kv} }

// wrap: любая ошибка KV наружу — недоступность хранилища
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrTokenStoreUnavailable, err)
}

func (s *Store) PutRefresh(ctx context.Context, sub domain.MemberID, t domain.Token, ttl time.Duration) error {
	if err := s.kv.SetString(ctx, domain.KeyRefreshToken(sub), string(t), ttl); err != nil {
		return wrap("put refresh", err)
	}
	return nil
}

func (s *Store) GetRefresh(ctx context.Context, sub domain.MemberID) (domain.Token, bool, error) {
	v, ok, err := s.kv.GetString(ctx, domain.KeyRefreshToken(sub))
	if err != nil {
		return "", false, wrap("get refresh", err)
	}
	return domain.Token(v), ok, nil
}

func (s *Store) DeleteRefresh(ctx context.Context, sub domain.MemberID) error {
	if err := s.kv.Del(ctx, domain.KeyRefreshToken(sub)); err != nil {
		return wrap("delete refresh", err)
	}
	return nil
}

func (s *Store) PutReset(ctx context.Context, sub domain.MemberID, t domain.Token, ttl time.Duration) error {
	if err := s.kv.SetString(ctx, domain.KeyResetToken(sub), string(t), ttl); err != nil {
		return wrap("put reset", err)
	}
	return nil
}

func (s *Store) GetReset(ctx context.Context, sub domain.MemberID) (domain.Token, bool, error) {
	v, ok, err := s.kv.GetString(ctx, domain.KeyResetToken(sub))
	if err != nil {
		return "", false, wrap("get reset", err)
	}
	return domain.Token(v), ok, nil
}

// BlacklistAccess: TTL — ровно остаток жизни токена, так что рост ключей
// самоограничен. Записи с ttl<=0 не сохраняем. Ключ — сырой access-токен;
// следим за лимитом длины ключей выбранного Redis (JWS ~ сотни байт, ок).
func (s *Store) BlacklistAccess(ctx context.Context, raw domain.Token, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.kv.SetString(ctx, domain.KeyBlacklist(raw), "revoked", ttl); err != nil {
		return wrap("blacklist", err)
	}
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, raw domain.Token) (bool, error) {
	ok, err := s.kv.Exists(ctx, domain.KeyBlacklist(raw))
	if err != nil {
		return false, wrap("blacklist check", err)
	}
	return ok, nil
}
