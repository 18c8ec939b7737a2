package email

import (
	"context"
	"crypto/tls"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

const idleTimeout = 30 * time.Second

type Message struct {
	To      string
	Subject string
	Body    string
}

type Service interface {
	Send(ctx context.Context, msg Message) error
}

// NewService returns an SMTP sender, or a sender that only logs when no
// SMTP host is configured. Start must run for the SMTP sender to deliver.
func NewService(cfg config.SMTPConfig, log *logger.Logger) *SMTPService {
	var dialer *gomail.Dialer
	if cfg.Host != "" {
		dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Host}
	}
	return &SMTPService{
		dialer: dialer,
		from:   cfg.From,
		queue:  make(chan *gomail.Message, 64),
		logger: log,
	}
}

// SMTPService queues messages and delivers them from a single goroutine
// that keeps the SMTP connection open while mail keeps arriving.
type SMTPService struct {
	dialer *gomail.Dialer
	from   string
	queue  chan *gomail.Message
	logger *logger.Logger
}

func (s *SMTPService) Send(ctx context.Context, msg Message) error {
	m := s.build(msg)
	if s.dialer == nil {
		s.logger.Info("Email delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
		return nil
	}

	select {
	case s.queue <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPService) build(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}

// Start delivers queued mail until ctx is done.
func (s *SMTPService) Start(ctx context.Context) {
	if s.dialer == nil {
		return
	}

	var (
		sender gomail.SendCloser
		err    error
	)
	closeSender := func() {
		if sender != nil {
			if err := sender.Close(); err != nil {
				s.logger.Error(err, "Failed to close SMTP connection")
			}
			sender = nil
		}
	}
	defer closeSender()

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-s.queue:
			if sender == nil {
				if sender, err = s.dialer.Dial(); err != nil {
					s.logger.Error(err, "Failed to connect to SMTP server")
					sender = nil
					continue
				}
			}
			if err := gomail.Send(sender, m); err != nil {
				s.logger.Error(err, "Failed to send email", "to", m.GetHeader("To"))
			}
		case <-time.After(idleTimeout):
			closeSender()
		}
	}
}
