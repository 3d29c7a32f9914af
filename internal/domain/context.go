package domain

import "context"

// Ключ для хранения аутентифицированного участника в контексте HTTP-запроса
type ctxKey int

const memberCtxKey ctxKey = 1

// Identity — то, что middleware кладёт в контекст после валидации токена.
// RawToken нужен дальше по цепочке (logout/unregister кладут его в блэклист).
type Identity struct {
	Subject  MemberID
	Role     Role
	RawToken Token
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, memberCtxKey, id)
}

func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(memberCtxKey).(Identity)
	return id, ok
}
