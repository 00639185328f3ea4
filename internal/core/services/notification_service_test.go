package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"
	"natillera-miahorro/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []domain.EmailMessage
}

func (m *captureMailer) Send(_ context.Context, msg domain.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type captureChat struct {
	mu   sync.Mutex
	sent []domain.ChatMessage
	err  error
}

func (c *captureChat) Send(_ context.Context, msg domain.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.err
}

func newTestNotifier(mailer Mailer, chat ChatSender) *NotificationService {
	return NewNotificationService(mailer, chat, &testutil.StubRenderer{}, NotificationConfig{
		Workers:     2,
		QueueSize:   16,
		TaskTimeout: time.Second,
		OrgName:     "Natillera Prueba",
	})
}

func notifiedMember() models.Member {
	return models.Member{
		ID:              1,
		Documento:       "111",
		Nombre1:         "Ana",
		Apellido1:       "Restrepo",
		Correo:          "ana@example.com",
		Telefono:        "3001234567",
		WhatsappEnabled: true,
	}
}

func TestNotificationService_WeeklyPaymentSendsReceiptAndChat(t *testing.T) {
	mailer := &captureMailer{}
	chat := &captureChat{}
	svc := newTestNotifier(mailer, chat)
	svc.Start()

	svc.WeeklyPaymentRecorded(notifiedMember(), models.WeeklyPayment{ID: 9, Semana: 4, Valor: money(20000), Estado: domain.PaymentPaid})
	svc.Stop()

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Semana 4")
	assert.Contains(t, msg.HTML, "Ana Restrepo")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "recibo_semana_4_111.pdf", msg.Attachments[0].Filename)

	require.Len(t, chat.sent, 1)
	assert.True(t, chat.sent[0].OptedIn)
	assert.Contains(t, chat.sent[0].Body, "semana 4")
}

func TestNotificationService_PayoffAttachesCertificate(t *testing.T) {
	mailer := &captureMailer{}
	svc := newTestNotifier(mailer, &captureChat{})
	svc.Start()

	loan := models.Loan{ID: 3, Codigo: "PRE-0003", MontoTotal: money(1000)}
	installment := models.LoanInstallment{ID: 8, PrestamoID: 3, MontoPago: money(400), FechaPago: time.Now()}
	balance := ledger.Balance{Total: money(1000), Paid: money(1000)}

	svc.InstallmentRecorded(notifiedMember(), loan, installment, balance, true)
	svc.InstallmentRecorded(notifiedMember(), loan, installment, ledger.Balance{Total: money(1000), Paid: money(600)}, false)
	svc.Stop()

	require.Len(t, mailer.sent, 2)
	var attachmentCounts []int
	for _, m := range mailer.sent {
		attachmentCounts = append(attachmentCounts, len(m.Attachments))
	}
	assert.ElementsMatch(t, []int{1, 2}, attachmentCounts)
}

func TestNotificationService_SkipsMissingContact(t *testing.T) {
	mailer := &captureMailer{}
	chat := &captureChat{}
	svc := newTestNotifier(mailer, chat)
	svc.Start()

	member := notifiedMember()
	member.Correo = ""
	member.Telefono = ""
	svc.LoanCreated(member, models.Loan{Codigo: "PRE-0001", Monto: money(1000), MontoTotal: money(1000)})
	svc.Stop()

	assert.Empty(t, mailer.sent)
	assert.Empty(t, chat.sent)
}

func TestNotificationService_FailuresDoNotStopWorkers(t *testing.T) {
	chat := &captureChat{err: errors.New("boom")}
	svc := newTestNotifier(&captureMailer{}, chat)
	svc.Start()

	assert.True(t, svc.Enqueue("test.panic", func(context.Context) error { panic("bad template") }))
	svc.RaffleWon(notifiedMember(), models.Raffle{Nombre: "Rifa"}, "07")
	svc.Stop()

	assert.Len(t, chat.sent, 1)
}

func TestNotificationService_EnqueueAfterStopIsDropped(t *testing.T) {
	svc := newTestNotifier(&captureMailer{}, nil)
	svc.Start()
	svc.Stop()

	assert.False(t, svc.Enqueue("late", func(context.Context) error { return nil }))
}

func TestNotificationService_FullQueueDrops(t *testing.T) {
	svc := NewNotificationService(&captureMailer{}, nil, &testutil.StubRenderer{}, NotificationConfig{Workers: 1, QueueSize: 1})

	assert.True(t, svc.Enqueue("first", func(context.Context) error { return nil }))
	assert.False(t, svc.Enqueue("second", func(context.Context) error { return nil }))

	svc.Start()
	svc.Stop()
}
