package provider

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// SMTP implements the Provider interface by relaying messages to an SMTP
// submission server (e.g. smtp.gmail.com) with optional SASL PLAIN auth.
// Each Send opens its own connection, so concurrent sends never share state.
type SMTP struct {
	addr      string
	host      string
	username  string
	password  string
	tlsMode   string
	timeout   time.Duration
	tlsConfig *tls.Config
}

// NewSMTP creates an SMTP provider from a validated config.
func NewSMTP(cfg ProviderConfig) *SMTP {
	return &SMTP{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		tlsMode:  cfg.TLSMode,
		timeout:  cfg.Timeout,
		tlsConfig: &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
}

func (s *SMTP) GetName() string { return "smtp" }

// Send delivers msg over a fresh SMTP session.
func (s *SMTP) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}

	m := *msg
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	data, err := BuildMIME(&m, time.Now())
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}

	from, err := envelopeAddress(m.From)
	if err != nil {
		return nil, fmt.Errorf("smtp: invalid sender %q: %w", m.From, err)
	}

	c, err := s.connect()
	if err != nil {
		return nil, fmt.Errorf("smtp: connect %s: %w", s.addr, err)
	}
	defer c.Close()

	if s.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return nil, ClassifySMTPError(s.GetName(), "auth", err)
		}
	}

	if err := c.Mail(from, nil); err != nil {
		return nil, ClassifySMTPError(s.GetName(), "mail from", err)
	}
	for _, rcpt := range m.To {
		to, err := envelopeAddress(rcpt)
		if err != nil {
			return nil, fmt.Errorf("smtp: invalid recipient %q: %w", rcpt, err)
		}
		if err := c.Rcpt(to, nil); err != nil {
			return nil, ClassifySMTPError(s.GetName(), "rcpt to "+to, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return nil, ClassifySMTPError(s.GetName(), "data", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("smtp: write data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, ClassifySMTPError(s.GetName(), "close data", err)
	}

	// The message is accepted once DATA completes; a failed QUIT is not a delivery failure.
	_ = c.Quit()

	return &DeliveryResult{
		ProviderMessageID: m.ID,
		Status:            StatusSent,
		Timestamp:         time.Now(),
		Metadata:          map[string]string{"relay": s.addr},
	}, nil
}

// HealthCheck opens and closes a session with the relay.
func (s *SMTP) HealthCheck(_ context.Context) error {
	c, err := s.connect()
	if err != nil {
		return fmt.Errorf("smtp: health check connect %s: %w", s.addr, err)
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return fmt.Errorf("smtp: health check noop: %w", err)
	}
	return c.Quit()
}

func (s *SMTP) connect() (*gosmtp.Client, error) {
	var (
		c   *gosmtp.Client
		err error
	)
	switch s.tlsMode {
	case TLSModeImplicit:
		c, err = gosmtp.DialTLS(s.addr, s.tlsConfig)
	case TLSModeNone:
		c, err = gosmtp.Dial(s.addr)
	default:
		c, err = gosmtp.DialStartTLS(s.addr, s.tlsConfig)
	}
	if err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		c.CommandTimeout = s.timeout
		c.SubmissionTimeout = s.timeout
	}
	return c, nil
}

// envelopeAddress extracts the bare address from a header-style value
// such as `"Signalist News" <news@signalist.app>`.
func envelopeAddress(v string) (string, error) {
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return "", err
	}
	return addr.Address, nil
}
