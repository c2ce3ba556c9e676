package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/aussiebroadwan/voxauth/pkg/retryx"
)

// SMTPConfig describes the relay used by SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender delivers codes through an authenticated SMTP relay. Port 465
// uses implicit TLS; any other port requires STARTTLS.
type SMTPSender struct {
	cfg  SMTPConfig
	opts []mail.Option
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mailer: smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mailer: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{cfg: cfg, opts: opts}, nil
}

// NewMessage builds the verification message for to. Address errors are
// permanent: resending cannot fix them.
func (s *SMTPSender) NewMessage(to, code string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, retryx.Permanent(fmt.Errorf("%w: from: %w", ErrDelivery, err))
	}
	if err := m.To(to); err != nil {
		return nil, retryx.Permanent(fmt.Errorf("%w: to: %w", ErrDelivery, err))
	}
	m.Subject(Subject)
	m.SetBodyString(mail.TypeTextPlain, Body(code))
	return m, nil
}

func (s *SMTPSender) SendOTP(ctx context.Context, to, code string) error {
	m, err := s.NewMessage(to, code)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("%w: client: %w", ErrDelivery, err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}
