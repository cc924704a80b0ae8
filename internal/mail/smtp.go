package mail

import (
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const resetPasswordSubject = "HireHub - Reset your password"

type SMTPMailer struct {
	client *gomail.Client
	from   string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Email.SMTP.Port),
		gomail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout) * time.Second),
	}
	if cfg.Email.SMTP.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Email.SMTP.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Email.SMTP.Username),
			gomail.WithPassword(cfg.Email.SMTP.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Email.SMTP.Host, opts...)
	if err != nil {
		return nil, err
	}

	return &SMTPMailer{client: client, from: cfg.Email.From}, nil
}

func (m *SMTPMailer) SendResetPassword(ctx context.Context, to string, data domain.ResetPasswordMailData) error {
	msg, err := newResetPasswordMsg(m.from, to, data)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}

func newResetPasswordMsg(from, to string, data domain.ResetPasswordMailData) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(resetPasswordSubject)

	tmpl := templates.Lookup("reset_password_otp_email.html")
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, err
	}

	return msg, nil
}
