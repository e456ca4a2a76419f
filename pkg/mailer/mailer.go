package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/fundraiser-awards-backend/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// ErrDeliveryUnknown is returned when Send stopped waiting before the SMTP
// exchange finished. The message may still be delivered.
var ErrDeliveryUnknown = errors.New("mailer: delivery outcome unknown")

// Message is one outbound e-mail
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends e-mail
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by the configuration
func New(cfg config.MailConfig) Mailer {
	if cfg.Mock {
		return NewMockMailer()
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer delivers e-mail through an SMTP relay
type SMTPMailer struct {
	send    func(msg *gomail.Message) error
	from    string
	timeout time.Duration
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		send: func(msg *gomail.Message) error {
			return dialer.DialAndSend(msg)
		},
		from:    cfg.From,
		timeout: cfg.Timeout,
	}
}

// Send delivers msg. gomail has no context support, so the call gives up
// waiting when ctx is done or the configured timeout passes and returns
// ErrDeliveryUnknown. The SMTP exchange itself finishes in the background
// and its late outcome is logged.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mailer: empty recipient")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- m.send(gm)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		go logLateOutcome(msg, done)
		return fmt.Errorf("%w: send to %s: %v", ErrDeliveryUnknown, msg.To, ctx.Err())
	}
}

func logLateOutcome(msg Message, done <-chan error) {
	log := logrus.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject})
	if err := <-done; err != nil {
		log.WithError(err).Warn("Mailer: Timed out send failed")
		return
	}
	log.Warn("Mailer: Timed out send was delivered")
}

// MockMailer records messages instead of sending them
type MockMailer struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewMockMailer creates a new MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records msg, or returns the configured failure
func (m *MockMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// FailWith makes subsequent sends return err. Pass nil to recover.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Messages returns a copy of the recorded messages
func (m *MockMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
