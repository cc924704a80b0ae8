// Package mail delivers the transactional emails of HireHub.
package mail

import (
	"context"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

type Mailer interface {
	SendResetPassword(ctx context.Context, to string, data domain.ResetPasswordMailData) error
}

// New returns an SMTP mailer, or a LogMailer when no SMTP host is configured.
func New(cfg *config.Config, logger *logrus.Logger) (Mailer, error) {
	if cfg.Email.SMTP.Host == "" {
		logger.Warn("EMAIL_SMTP_HOST is empty, emails are written to the log")
		return NewLogMailer(logger), nil
	}
	return NewSMTPMailer(cfg)
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *logrus.Logger
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendResetPassword(ctx context.Context, to string, data domain.ResetPasswordMailData) error {
	m.logger.WithFields(logrus.Fields{
		"to":         to,
		"otp":        data.OTP,
		"expiration": data.Expiration,
	}).Info("reset password email")
	return nil
}
