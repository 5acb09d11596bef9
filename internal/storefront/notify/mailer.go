package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"smm-market/internal/storefront/data"
	"smm-market/pkg/logging"
)

var ErrNotConfigured = errors.New("mail is not configured")

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port > 0 && c.From != ""
}

// Fingerprint covers everything a dialer is built from.
func (c SMTPConfig) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.Host + "\x00" + strconv.Itoa(c.Port) + "\x00" + c.Username + "\x00" + c.Password))
	return hex.EncodeToString(sum[:])
}

type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type DialerFactory func(cfg SMTPConfig) Sender

func NewGomailDialer(cfg SMTPConfig) Sender {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

// senderCache keeps the last built sender and rebuilds it only when the
// SMTP fingerprint changes.
type senderCache struct {
	mux         sync.Mutex
	fingerprint string
	sender      Sender
	factory     DialerFactory
}

func (c *senderCache) get(cfg SMTPConfig) Sender {
	fingerprint := cfg.Fingerprint()
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.sender == nil || c.fingerprint != fingerprint {
		c.sender = c.factory(cfg)
		c.fingerprint = fingerprint
	}
	return c.sender
}

type settings struct {
	smtp      SMTPConfig
	recipient string
}

type Mailer struct {
	mux      sync.RWMutex
	settings settings
	cache    *senderCache
	logger   *logging.ZapLogger
}

func NewMailer(cfg SMTPConfig, recipient string, factory DialerFactory, logger *logging.ZapLogger) *Mailer {
	if factory == nil {
		factory = NewGomailDialer
	}
	return &Mailer{
		settings: settings{smtp: cfg, recipient: recipient},
		cache:    &senderCache{factory: factory},
		logger:   logger,
	}
}

// Configure swaps SMTP settings at runtime. The dialer is rebuilt on the next
// send if the credentials differ.
func (m *Mailer) Configure(cfg SMTPConfig, recipient string) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.settings = settings{smtp: cfg, recipient: recipient}
}

func (m *Mailer) current() settings {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.settings
}

func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	s := m.current()
	if !s.smtp.Enabled() || s.recipient == "" {
		return ErrNotConfigured
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.smtp.From)
	msg.SetHeader("To", s.recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.cache.get(s.smtp).DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.logger.DebugCtx(ctx, "mail sent", zap.String("subject", subject))
	return nil
}

// OrderFinished reports a terminal order to the configured recipient.
// Failures are only logged.
func (m *Mailer) OrderFinished(ctx context.Context, order data.Order) {
	subject := fmt.Sprintf("Order %s is %s", order.ID, order.Status)
	body := fmt.Sprintf(
		"Order: %s\nService: %s (%s)\nQuantity: %d\nProvider order: %s\nProvider status: %s\nProvider charge: %s\n",
		order.ID,
		order.ServiceName,
		order.ServiceID,
		order.Quantity,
		order.ExternalOrderID,
		order.ProviderStatus,
		order.ProviderCharge.String(),
	)
	err := m.Send(ctx, subject, body)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotConfigured):
	default:
		m.logger.WarnCtx(ctx, "failed to notify about finished order", zap.String("orderID", order.ID), zap.Error(err))
	}
}
