package domain

import "context"

// Доставка писем — внешний коллаборатор; здесь только граница.
// Реализация в internal/infra/mail (лог-вариант для dev/тестов).
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}
