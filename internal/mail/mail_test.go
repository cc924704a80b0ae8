package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestResetPasswordMsg(t *testing.T) {
	data := domain.ResetPasswordMailData{Name: "Sam", OTP: "482913", Expiration: 15}

	msg, err := newResetPasswordMsg("HireHub <no-reply@hirehub.com>", "sam@example.com", data)
	require.NoError(t, err)

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"sam@example.com"}, recipients)
	assert.Equal(t, []string{resetPasswordSubject}, msg.GetGenHeader(gomail.HeaderSubject))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "482913")
}

func TestResetPasswordMsgRejectsBadAddress(t *testing.T) {
	_, err := newResetPasswordMsg("no-reply@hirehub.com", "not an email", domain.ResetPasswordMailData{})
	assert.Error(t, err)
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := &config.Config{}

	m, err := New(cfg, logger)
	require.NoError(t, err)
	require.IsType(t, &LogMailer{}, m)

	require.NoError(t, m.SendResetPassword(context.Background(), "sam@example.com", domain.ResetPasswordMailData{OTP: "123456", Expiration: 15}))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "sam@example.com", entry.Data["to"])
	assert.Equal(t, "123456", entry.Data["otp"])
}

func TestNewSMTPMailer(t *testing.T) {
	cfg := &config.Config{}
	cfg.Email.From = "HireHub <no-reply@hirehub.com>"
	cfg.Email.SMTP.Host = "smtp.example.com"
	cfg.Email.SMTP.Port = 587
	cfg.Email.SMTP.Username = "user"
	cfg.Email.SMTP.Password = "pass"
	cfg.Email.SMTP.DialTimeout = 5

	m, err := New(cfg, logrus.New())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)
}
