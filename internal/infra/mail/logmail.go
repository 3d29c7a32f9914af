package mail

import (
	"context"
	"log"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// LogMailer пишет письмо в лог вместо отправки — для dev-окружения
// и тестов. Боевая доставка подключается той же границей domain.Mailer.
type LogMailer struct {
	logger *log.Logger
}

var _ domain.Mailer = (*LogMailer)(nil)

func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, resetURL string) error {
	m.logger.Printf("password reset mail to=%s url=%s", email, resetURL)
	return nil
}
