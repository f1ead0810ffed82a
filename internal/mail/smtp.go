package mail

import (
	"context"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/eleven-am/hiretrack/internal/logger"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS is one of "mandatory", "opportunistic", "none" or "ssl".
	TLS string
}

// SMTPSender delivers through an SMTP relay, dialing per message.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	var opts []gomail.Option
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}

	switch strings.ToLower(cfg.TLS) {
	case "ssl":
		opts = append(opts, gomail.WithSSL())
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	case "mandatory":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (Result, error) {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return Result{}, deliveryError(err, msg.To)
	}
	if err := m.To(msg.To); err != nil {
		return Result{}, deliveryError(err, msg.To)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	m.SetMessageID()

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return Result{}, deliveryError(err, msg.To)
	}

	var id string
	if ids := m.GetGenHeader(gomail.HeaderMessageID); len(ids) > 0 {
		id = ids[0]
	}
	logger.Mail().WithFields(logger.Fields{"to": msg.To, "message_id": id}).Debug("email sent")
	return Result{MessageID: id}, nil
}
