package token

import (
	"context"
	"log"
	"time"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// Service — единственное место, где кодек сочетается с хранилищем.
// Состояния в процессе нет: всё в Redis, инстансы взаимозаменяемы.
type Service struct {
	log          *log.Logger
	codec        domain.TokenCodec
	store        domain.TokenStore
	storeTimeout time.Duration
}

// Ensure: Service implements domain.TokenService
var _ domain.TokenService = (*Service)(nil)

func NewService(logger *log.Logger, codec domain.TokenCodec, store domain.TokenStore, storeTimeout time.Duration) *Service {
	if storeTimeout <= 0 {
		storeTimeout = 3 * time.Second
	}
	return &Service{log: logger, codec: codec, store: store, storeTimeout: storeTimeout}
}

// Все обращения к хранилищу — с коротким таймаутом; таймаут = недоступность.
func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// IssueSession выпускает пару access+refresh и перезаписывает RT:<sub>.
// Одна живая refresh-запись на субъект: повторный логин молча вытесняет
// предыдущую (last-writer-wins, см. DESIGN.md).
func (s *Service) IssueSession(ctx context.Context, sub domain.MemberID, role domain.Role) (domain.SessionTokens, error) {
	access, _, err := s.codec.IssueAccess(sub, role)
	if err != nil {
		s.log.Printf("issue access failed sub=%s: %v", sub, err)
		return domain.SessionTokens{}, err
	}
	refresh, rcl, err := s.codec.IssueRefresh(sub)
	if err != nil {
		s.log.Printf("issue refresh failed sub=%s: %v", sub, err)
		return domain.SessionTokens{}, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.PutRefresh(sctx, sub, refresh, time.Until(rcl.ExpiresAt)); err != nil {
		s.log.Printf("put refresh failed sub=%s: %v", sub, err)
		return domain.SessionTokens{}, err
	}
	return domain.SessionTokens{Access: access, Refresh: refresh}, nil
}

// ValidateAccess — единственный предикат авторизации для middleware:
// токен структурно валиден И не в блэклисте И это именно access.
func (s *Service) ValidateAccess(ctx context.Context, raw domain.Token) (domain.TokenClaims, error) {
	cl, err := s.codec.Parse(raw)
	if err != nil {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	if cl.Kind != domain.KindAccess {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	revoked, err := s.store.IsBlacklisted(sctx, raw)
	if err != nil {
		// fail closed: недоступное хранилище не пропускает токен
		s.log.Printf("blacklist check failed sub=%s: %v", cl.Subject, err)
		return domain.TokenClaims{}, err
	}
	if revoked {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	return cl, nil
}

// ValidateRefresh: refresh принят только если совпадает с сохранённой копией —
// старый токен отвергается сразу после перезаписи, даже если сам ещё не истёк.
func (s *Service) ValidateRefresh(ctx context.Context, raw domain.Token) (domain.MemberID, error) {
	cl, err := s.codec.Parse(raw)
	if err != nil || cl.Kind != domain.KindRefresh {
		return domain.MemberID{}, domain.ErrTokenInvalid
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	stored, ok, err := s.store.GetRefresh(sctx, cl.Subject)
	if err != nil {
		s.log.Printf("get refresh failed sub=%s: %v", cl.Subject, err)
		return domain.MemberID{}, err
	}
	if !ok || stored != raw {
		// отсутствие записи наружу не отличается от кривого токена
		return domain.MemberID{}, domain.ErrTokenInvalid
	}
	return cl.Subject, nil
}

// RevokeSession: удаляет RT и кладёт access в блэклист на остаток его жизни.
// Идемпотентна: повторный вызов не меняет итоговое состояние, просроченный
// access в блэклист не попадает (запись с ttl<=0 бессмысленна).
func (s *Service) RevokeSession(ctx context.Context, sub domain.MemberID, rawAccess domain.Token) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.DeleteRefresh(sctx, sub); err != nil {
		s.log.Printf("delete refresh failed sub=%s: %v", sub, err)
		return err
	}

	cl, err := s.codec.Parse(rawAccess)
	if err != nil || cl.Kind != domain.KindAccess {
		// уже истёк или мусор — блэклистить нечего
		return nil
	}
	ttl := time.Until(cl.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	bctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.BlacklistAccess(bctx, rawAccess, ttl); err != nil {
		s.log.Printf("blacklist failed sub=%s: %v", sub, err)
		return err
	}
	s.log.Printf("session revoked sub=%s (blacklist ttl=%s)", sub, ttl)
	return nil
}

// IssuePasswordResetToken перезаписывает PRT:<sub> — живым остаётся
// только последний выданный reset-токен.
func (s *Service) IssuePasswordResetToken(ctx context.Context, sub domain.MemberID) (domain.Token, error) {
	t, cl, err := s.codec.IssuePasswordReset(sub)
	if err != nil {
		s.log.Printf("issue reset failed sub=%s: %v", sub, err)
		return "", err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.PutReset(sctx, sub, t, time.Until(cl.ExpiresAt)); err != nil {
		s.log.Printf("put reset failed sub=%s: %v", sub, err)
		return "", err
	}
	return t, nil
}

// ValidatePasswordReset: подпись/срок, claim type=password_reset и точное
// совпадение с копией в хранилище — вытесненный токен отвергается.
func (s *Service) ValidatePasswordReset(ctx context.Context, raw domain.Token) (domain.TokenClaims, error) {
	cl, err := s.codec.Parse(raw)
	if err != nil || cl.Kind != domain.KindPasswordReset {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	stored, ok, err := s.store.GetReset(sctx, cl.Subject)
	if err != nil {
		s.log.Printf("get reset failed sub=%s: %v", cl.Subject, err)
		return domain.TokenClaims{}, err
	}
	if !ok || stored != raw {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	return cl, nil
}

// ConsumePasswordReset — после успешной смены пароля сбрасываем RT: все
// устройства идут на повторный логин. Запись PRT не трогаем, она истечёт по TTL.
func (s *Service) ConsumePasswordReset(ctx context.Context, sub domain.MemberID) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.DeleteRefresh(sctx, sub); err != nil {
		s.log.Printf("delete refresh on reset failed sub=%s: %v", sub, err)
		return err
	}
	return nil
}
