// Package whatsapp sends member notifications over WhatsApp through Twilio.
// The client owns an explicit connection state; Send fails fast unless the
// state is READY.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/metrics"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// ConnectionState is the lifecycle of the channel
type ConnectionState string

const (
	StateDisconnected ConnectionState = "DISCONNECTED"
	StateConnecting   ConnectionState = "CONNECTING"
	StateReady        ConnectionState = "READY"
	StateAuthFailed   ConnectionState = "AUTH_FAILED"
)

// Config holds the Twilio account and WhatsApp sender
type Config struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Status is a snapshot of the channel
type Status struct {
	State     ConnectionState `json:"state"`
	Ready     bool            `json:"ready"`
	Since     *time.Time      `json:"since,omitempty"`
	LastError string          `json:"last_error,omitempty"`
}

type messagingAPI interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
	FetchAccount(sid string) (*openapi.ApiV2010Account, error)
}

type logStore interface {
	Create(ctx context.Context, entry *models.WhatsappLog) error
}

// Client is the WhatsApp channel
type Client struct {
	api        messagingAPI
	accountSID string
	from       string
	logs       logStore

	mu        sync.RWMutex
	state     ConnectionState
	since     *time.Time
	lastError string
}

// New creates a client for cfg. Call Connect before sending.
func New(cfg Config, logs logStore) *Client {
	var api messagingAPI
	if cfg.AccountSID != "" {
		api = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}).Api
	}
	return newClient(api, cfg.AccountSID, cfg.From, logs)
}

func newClient(api messagingAPI, accountSID, from string, logs logStore) *Client {
	return &Client{
		api:        api,
		accountSID: accountSID,
		from:       withPrefix(from),
		logs:       logs,
		state:      StateDisconnected,
	}
}

// Connect verifies the credentials by fetching the account. A missing
// configuration leaves the channel DISCONNECTED without error.
func (c *Client) Connect(ctx context.Context) error {
	if c.api == nil {
		logger.Log.Warn("WhatsApp disabled: TWILIO_ACCOUNT_SID not set")
		c.setState(StateDisconnected, "")
		return nil
	}

	c.setState(StateConnecting, "")

	type result struct {
		account *openapi.ApiV2010Account
		err     error
	}
	done := make(chan result, 1)
	go func() {
		account, err := c.api.FetchAccount(c.accountSID)
		done <- result{account, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		c.setState(StateDisconnected, ctx.Err().Error())
		return ctx.Err()
	}

	if res.err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(res.err, &restErr) && (restErr.Status == http.StatusUnauthorized || restErr.Status == http.StatusForbidden) {
			c.setState(StateAuthFailed, restErr.Message)
		} else {
			c.setState(StateDisconnected, res.err.Error())
		}
		logger.Log.Error("WhatsApp connection failed", zap.Error(res.err))
		return res.err
	}

	if res.account != nil && res.account.Status != nil && *res.account.Status != "active" {
		msg := fmt.Sprintf("account status %s", *res.account.Status)
		c.setState(StateAuthFailed, msg)
		return errors.New(msg)
	}

	c.setState(StateReady, "")
	logger.Log.Info("WhatsApp client is ready")
	return nil
}

// Disconnect marks the channel as not ready
func (c *Client) Disconnect() {
	c.setState(StateDisconnected, "")
}

// Status returns the current state
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		State:     c.state,
		Ready:     c.state == StateReady,
		Since:     c.since,
		LastError: c.lastError,
	}
}

// Send delivers msg. It returns domain.ErrChatOptOut for members without
// opt-in and domain.ErrChannelNotReady unless the state is READY. Every
// attempt past the opt-in check is recorded in whatsapp_logs.
func (c *Client) Send(ctx context.Context, msg domain.ChatMessage) error {
	if !msg.OptedIn {
		return domain.ErrChatOptOut
	}

	to, err := FormatPhone(msg.Phone)
	if err != nil {
		c.record(ctx, msg, msg.Phone, "", err)
		return err
	}

	if !c.Status().Ready {
		c.record(ctx, msg, to, "", domain.ErrChannelNotReady)
		return domain.ErrChannelNotReady
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(msg.Body)

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Status == http.StatusUnauthorized {
			c.setState(StateAuthFailed, restErr.Message)
		}
		c.record(ctx, msg, to, "", err)
		return err
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	c.record(ctx, msg, to, sid, nil)

	logger.Log.Info("WhatsApp sent",
		zap.Uint("socio_id", msg.MemberID),
		zap.String("to", logger.MaskPhone(to)))
	return nil
}

func (c *Client) record(ctx context.Context, msg domain.ChatMessage, to, sid string, sendErr error) {
	entry := &models.WhatsappLog{
		Telefono: to,
		Mensaje:  msg.Body,
		Status:   models.DeliverySent,
		Sid:      sid,
	}
	if msg.MemberID != 0 {
		id := msg.MemberID
		entry.SocioID = &id
	}
	if sendErr != nil {
		entry.Status = models.DeliveryFailed
		entry.ErrorMessage = sendErr.Error()
		logger.Log.Warn("WhatsApp send failed",
			zap.Uint("socio_id", msg.MemberID),
			zap.String("to", logger.MaskPhone(to)),
			zap.Error(sendErr))
	}

	if c.logs == nil {
		return
	}
	if err := c.logs.Create(ctx, entry); err != nil {
		logger.Log.Error("Failed to write whatsapp log", zap.Error(err))
	}
}

func (c *Client) setState(state ConnectionState, lastError string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != state {
		now := time.Now()
		c.since = &now
	}
	c.state = state
	c.lastError = lastError

	if state == StateReady {
		metrics.ChatChannelReady.Set(1)
	} else {
		metrics.ChatChannelReady.Set(0)
	}
}

// FormatPhone turns a stored phone into a Twilio WhatsApp address.
// Ten-digit Colombian mobiles starting with 3 get the 57 country code.
func FormatPhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return "", domain.Invalidf("Número de teléfono inválido")
	case len(digits) == 10 && strings.HasPrefix(digits, "3"):
		digits = "57" + digits
	case len(digits) < 8:
		return "", domain.Invalidf("Número de teléfono inválido: %s", phone)
	}
	return "whatsapp:+" + digits, nil
}

func withPrefix(from string) string {
	from = strings.TrimSpace(from)
	if from == "" || strings.HasPrefix(from, "whatsapp:") {
		return from
	}
	if !strings.HasPrefix(from, "+") {
		from = "+" + from
	}
	return "whatsapp:" + from
}
