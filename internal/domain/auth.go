package domain

import (
	"context"
	"time"
)

// Токены: три вида на одном формате (HS256 JWS).
// Вид токена — закрытый вариант, чтобы reset-токен нельзя было
// случайно принять за access (см. claim "type" в кодеке).

type Token string

type TokenKind string

const (
	KindAccess        TokenKind = "access"
	KindRefresh       TokenKind = "refresh"
	KindPasswordReset TokenKind = "password_reset"
)

type TokenClaims struct {
	Kind      TokenKind
	Subject   MemberID
	Role      Role // заполнен только для access-токенов
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Пара токенов сессии
type SessionTokens struct {
	Access  Token `json:"accessToken"`
	Refresh Token `json:"refreshToken"`
}

// Хеширование паролей
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

// Кодек: чистая подпись/разбор, без побочных эффектов.
// Parse сворачивает любую причину отказа (подпись, формат, exp) в ErrTokenInvalid.
type TokenCodec interface {
	IssueAccess(sub MemberID, role Role) (Token, TokenClaims, error)
	IssueRefresh(sub MemberID) (Token, TokenClaims, error)
	IssuePasswordReset(sub MemberID) (Token, TokenClaims, error)
	Parse(raw Token) (TokenClaims, error)
}

// Хранилище токенов (Redis). Ключи: RT:<uuid>, PRT:<uuid>, BL:<raw>.
// Отсутствие записи — нормальный исход (ok=false), не ошибка.
type TokenStore interface {
	PutRefresh(ctx context.Context, sub MemberID, t Token, ttl time.Duration) error
	GetRefresh(ctx context.Context, sub MemberID) (Token, bool, error)
	DeleteRefresh(ctx context.Context, sub MemberID) error

	// Запись PRT явно не удаляется, её срок ограничен TTL.
	PutReset(ctx context.Context, sub MemberID, t Token, ttl time.Duration) error
	GetReset(ctx context.Context, sub MemberID) (Token, bool, error)

	BlacklistAccess(ctx context.Context, raw Token, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, raw Token) (bool, error)
}

// Сервис токенов — единственное место, где кодек сочетается с хранилищем.
type TokenService interface {
	IssueSession(ctx context.Context, sub MemberID, role Role) (SessionTokens, error)
	ValidateAccess(ctx context.Context, raw Token) (TokenClaims, error)
	// ValidateRefresh проверяет refresh-токен против сохранённой копии и
	// возвращает субъект; роль в refresh-токене не хранится, новую пару
	// выпускает use-case через IssueSession (ротация перезаписывает RT).
	ValidateRefresh(ctx context.Context, raw Token) (MemberID, error)
	RevokeSession(ctx context.Context, sub MemberID, rawAccess Token) error

	IssuePasswordResetToken(ctx context.Context, sub MemberID) (Token, error)
	ValidatePasswordReset(ctx context.Context, raw Token) (TokenClaims, error)
	ConsumePasswordReset(ctx context.Context, sub MemberID) error
}
