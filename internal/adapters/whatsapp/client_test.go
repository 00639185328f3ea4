package whatsapp

import (
	"context"
	"errors"
	"testing"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	accountErr    error
	accountStatus string
	sendErr       error
	sent          []*openapi.CreateMessageParams
}

func (f *fakeAPI) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.sent = append(f.sent, params)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func (f *fakeAPI) FetchAccount(sid string) (*openapi.ApiV2010Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	status := f.accountStatus
	if status == "" {
		status = "active"
	}
	return &openapi.ApiV2010Account{Sid: &sid, Status: &status}, nil
}

type memoryLogs struct {
	entries []models.WhatsappLog
}

func (m *memoryLogs) Create(_ context.Context, entry *models.WhatsappLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func readyClient(t *testing.T, api *fakeAPI, logs *memoryLogs) *Client {
	t.Helper()
	c := newClient(api, "AC123", "+14155238886", logs)
	require.NoError(t, c.Connect(context.Background()))
	return c
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3001234567", "whatsapp:+573001234567", false},
		{"300 123 4567", "whatsapp:+573001234567", false},
		{"+57 300-123-4567", "whatsapp:+573001234567", false},
		{"573001234567", "whatsapp:+573001234567", false},
		{"6041234567", "whatsapp:+6041234567", false},
		{"", "", true},
		{"12", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatPhone(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnect_States(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		c := readyClient(t, &fakeAPI{}, nil)
		st := c.Status()
		assert.Equal(t, StateReady, st.State)
		assert.True(t, st.Ready)
		assert.NotNil(t, st.Since)
	})

	t.Run("auth failed", func(t *testing.T) {
		api := &fakeAPI{accountErr: &twclient.TwilioRestError{Status: 401, Message: "Authenticate"}}
		c := newClient(api, "AC123", "+1", nil)
		assert.Error(t, c.Connect(context.Background()))
		assert.Equal(t, StateAuthFailed, c.Status().State)
		assert.Equal(t, "Authenticate", c.Status().LastError)
	})

	t.Run("suspended account", func(t *testing.T) {
		c := newClient(&fakeAPI{accountStatus: "suspended"}, "AC123", "+1", nil)
		assert.Error(t, c.Connect(context.Background()))
		assert.Equal(t, StateAuthFailed, c.Status().State)
	})

	t.Run("network error", func(t *testing.T) {
		c := newClient(&fakeAPI{accountErr: errors.New("dial tcp: timeout")}, "AC123", "+1", nil)
		assert.Error(t, c.Connect(context.Background()))
		assert.Equal(t, StateDisconnected, c.Status().State)
	})

	t.Run("not configured", func(t *testing.T) {
		c := New(Config{}, nil)
		assert.NoError(t, c.Connect(context.Background()))
		assert.False(t, c.Status().Ready)
	})
}

func TestSend_Success(t *testing.T) {
	api := &fakeAPI{}
	logs := &memoryLogs{}
	c := readyClient(t, api, logs)

	err := c.Send(context.Background(), domain.ChatMessage{MemberID: 4, Phone: "3001234567", Body: "Hola", OptedIn: true})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "whatsapp:+573001234567", *api.sent[0].To)
	assert.Equal(t, "whatsapp:+14155238886", *api.sent[0].From)
	assert.Equal(t, "Hola", *api.sent[0].Body)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.DeliverySent, logs.entries[0].Status)
	assert.Equal(t, "SM123", logs.entries[0].Sid)
	require.NotNil(t, logs.entries[0].SocioID)
	assert.Equal(t, uint(4), *logs.entries[0].SocioID)
}

func TestSend_OptOutIsNotLogged(t *testing.T) {
	api := &fakeAPI{}
	logs := &memoryLogs{}
	c := readyClient(t, api, logs)

	err := c.Send(context.Background(), domain.ChatMessage{MemberID: 4, Phone: "3001234567", Body: "Hola"})
	assert.ErrorIs(t, err, domain.ErrChatOptOut)
	assert.Empty(t, api.sent)
	assert.Empty(t, logs.entries)
}

func TestSend_NotReadyFailsFast(t *testing.T) {
	api := &fakeAPI{}
	logs := &memoryLogs{}
	c := newClient(api, "AC123", "+1", logs)

	err := c.Send(context.Background(), domain.ChatMessage{MemberID: 4, Phone: "3001234567", Body: "Hola", OptedIn: true})
	assert.ErrorIs(t, err, domain.ErrChannelNotReady)
	assert.Empty(t, api.sent)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.DeliveryFailed, logs.entries[0].Status)
}

func TestSend_ProviderErrorLogged(t *testing.T) {
	api := &fakeAPI{sendErr: &twclient.TwilioRestError{Status: 400, Message: "Invalid To"}}
	logs := &memoryLogs{}
	c := readyClient(t, api, logs)

	err := c.Send(context.Background(), domain.ChatMessage{MemberID: 4, Phone: "3001234567", Body: "Hola", OptedIn: true})
	assert.Error(t, err)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.DeliveryFailed, logs.entries[0].Status)
	assert.NotEmpty(t, logs.entries[0].ErrorMessage)
	assert.Equal(t, StateReady, c.Status().State)
}
