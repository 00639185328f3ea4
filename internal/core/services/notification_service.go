package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is one unit of outbound work
type Task struct {
	ID   string
	Kind string
	Run  func(ctx context.Context) error
}

// NotificationConfig sizes the outbound queue
type NotificationConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
	OrgName     string
}

// NotificationService queues email and chat deliveries and runs them on a
// fixed pool of workers. Enqueue never blocks; a full queue drops the task.
type NotificationService struct {
	mailer   Mailer
	chat     ChatSender
	renderer ReceiptRenderer
	cfg      NotificationConfig

	tasks   chan Task
	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewNotificationService creates a new notification service
func NewNotificationService(mailer Mailer, chat ChatSender, renderer ReceiptRenderer, cfg NotificationConfig) *NotificationService {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 60 * time.Second
	}
	if cfg.OrgName == "" {
		cfg.OrgName = "Natillera MiAhorro"
	}
	return &NotificationService{
		mailer:   mailer,
		chat:     chat,
		renderer: renderer,
		cfg:      cfg,
		tasks:    make(chan Task, cfg.QueueSize),
	}
}

// Start launches the workers
func (s *NotificationService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	logger.Log.Info("Notification workers started", zap.Int("workers", s.cfg.Workers))
}

// Stop refuses new tasks and waits until queued ones have run
func (s *NotificationService) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	started := s.started
	s.mu.Unlock()

	if !started {
		return
	}
	s.wg.Wait()
	logger.Log.Info("Notification workers stopped")
}

// Enqueue submits a task and reports whether it was accepted
func (s *NotificationService) Enqueue(kind string, run func(ctx context.Context) error) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		metrics.NotificationsDropped.Inc()
		logger.Log.Warn("Notification dropped after shutdown", zap.String("kind", kind))
		return false
	}

	task := Task{ID: uuid.NewString(), Kind: kind, Run: run}
	select {
	case s.tasks <- task:
		return true
	default:
		metrics.NotificationsDropped.Inc()
		logger.Log.Warn("Notification queue full, task dropped", zap.String("kind", kind), zap.String("task_id", task.ID))
		return false
	}
}

func (s *NotificationService) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		s.execute(task)
	}
}

// execute runs one task under its own timeout; panics and errors stay here
func (s *NotificationService) execute(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsTotal.WithLabelValues(task.Kind, "panic").Inc()
			logger.Log.Error("Notification task panicked",
				zap.String("kind", task.Kind),
				zap.String("task_id", task.ID),
				zap.Any("panic", r),
			)
		}
	}()

	err := task.Run(ctx)
	switch {
	case err == nil:
		metrics.NotificationsTotal.WithLabelValues(task.Kind, "sent").Inc()
	case errors.Is(err, domain.ErrChatOptOut):
		metrics.NotificationsTotal.WithLabelValues(task.Kind, "skipped").Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues(task.Kind, "failed").Inc()
		logger.Log.Error("Notification task failed",
			zap.String("kind", task.Kind),
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
	}
}

// ============================================================
// Notifier
// ============================================================

// WeeklyPaymentRecorded emails the receipt and sends a chat confirmation
func (s *NotificationService) WeeklyPaymentRecorded(member models.Member, payment models.WeeklyPayment) {
	if member.Correo == "" {
		logger.Log.Debug("Weekly receipt email skipped, member has no email", zap.Uint("socio_id", member.ID))
	} else {
		s.Enqueue("email.weekly_payment", func(ctx context.Context) error {
			pdf, err := s.renderer.WeeklyReceipt(&member, &payment)
			if err != nil {
				return fmt.Errorf("render weekly receipt: %w", err)
			}
			html, err := renderEmail(weeklyPaymentTemplate, emailData{
				Org:    s.cfg.OrgName,
				Member: member.ShortName(),
				Week:   payment.Semana,
				Amount: ledger.FormatCOP(payment.Valor),
				Date:   formatDate(payment.FechaPago),
				Method: payment.FormaPago,
			})
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, domain.EmailMessage{
				To:      member.Correo,
				Subject: fmt.Sprintf("✓ Confirmación de Pago - Semana %d", payment.Semana),
				HTML:    html,
				Attachments: []domain.Attachment{
					pdfAttachment(WeeklyReceiptFilename(&member, &payment), pdf),
				},
			})
		})
	}

	s.enqueueChat(member, fmt.Sprintf("✅ %s: registramos tu pago de la semana %d por %s. ¡Gracias, %s!",
		s.cfg.OrgName, payment.Semana, ledger.FormatCOP(payment.Valor), member.Nombre1))
}

// InstallmentRecorded emails the installment receipt, plus the paz y salvo
// certificate when this installment paid the loan off
func (s *NotificationService) InstallmentRecorded(member models.Member, loan models.Loan, installment models.LoanInstallment, balance ledger.Balance, paidOff bool) {
	if member.Correo == "" {
		logger.Log.Debug("Installment email skipped, member has no email", zap.Uint("socio_id", member.ID))
	} else {
		s.Enqueue("email.installment", func(ctx context.Context) error {
			receipt, err := s.renderer.InstallmentReceipt(&member, &loan, &installment, balance)
			if err != nil {
				return fmt.Errorf("render installment receipt: %w", err)
			}
			attachments := []domain.Attachment{
				pdfAttachment(InstallmentReceiptFilename(&loan, &installment), receipt),
			}

			subject := "✓ Confirmación de Abono - " + ledger.FormatCOP(installment.MontoPago)
			if paidOff {
				subject = "🎉 Préstamo Completado - Confirmación de Pago Final"
				cert, err := s.renderer.Certificate(&member, &loan, balance.Paid)
				if err != nil {
					return fmt.Errorf("render certificate: %w", err)
				}
				attachments = append(attachments, pdfAttachment(CertificateFilename(&member, &loan), cert))
			}

			html, err := renderEmail(installmentTemplate, emailData{
				Org:         s.cfg.OrgName,
				Member:      member.ShortName(),
				LoanCode:    loan.Codigo,
				Amount:      ledger.FormatCOP(installment.MontoPago),
				Date:        installment.FechaPago.Format("02/01/2006"),
				Method:      installment.FormaPago,
				Total:       ledger.FormatCOP(loan.MontoTotal),
				Paid:        ledger.FormatCOP(balance.Paid),
				Outstanding: ledger.FormatCOP(balance.DisplayOutstanding()),
				PaidOff:     paidOff,
			})
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, domain.EmailMessage{
				To:          member.Correo,
				Subject:     subject,
				HTML:        html,
				Attachments: attachments,
			})
		})
	}

	text := fmt.Sprintf("💰 %s: recibimos tu abono de %s al préstamo %s. Saldo pendiente: %s.",
		s.cfg.OrgName, ledger.FormatCOP(installment.MontoPago), loan.Codigo, ledger.FormatCOP(balance.DisplayOutstanding()))
	if paidOff {
		text = fmt.Sprintf("🎉 %s: ¡completaste el pago del préstamo %s! Te enviamos tu paz y salvo al correo.",
			s.cfg.OrgName, loan.Codigo)
	}
	s.enqueueChat(member, text)
}

// LoanCreated sends the security alert for a new loan
func (s *NotificationService) LoanCreated(member models.Member, loan models.Loan) {
	if member.Correo == "" {
		logger.Log.Debug("Loan alert skipped, member has no email", zap.Uint("socio_id", member.ID))
	} else {
		s.Enqueue("email.loan_created", func(ctx context.Context) error {
			html, err := renderEmail(loanCreatedTemplate, emailData{
				Org:      s.cfg.OrgName,
				Member:   member.ShortName(),
				LoanCode: loan.Codigo,
				Amount:   ledger.FormatCOP(loan.Monto),
				Total:    ledger.FormatCOP(loan.MontoTotal),
				Rate:     loan.TasaInteres.String(),
				Months:   loan.PlazoMeses,
				Date:     loan.FechaAprobacion.Format("02/01/2006"),
				DueDate:  loan.FechaVencimiento.Format("02/01/2006"),
			})
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, domain.EmailMessage{
				To:      member.Correo,
				Subject: "🔔 Nuevo Préstamo Registrado - Natillera MiAhorro",
				HTML:    html,
			})
		})
	}

	s.enqueueChat(member, fmt.Sprintf("🔔 %s: se registró el préstamo %s a tu nombre por %s. Si no lo solicitaste, comunícate con la administración.",
		s.cfg.OrgName, loan.Codigo, ledger.FormatCOP(loan.Monto)))
}

// RaffleWon congratulates the holder of the winning number
func (s *NotificationService) RaffleWon(member models.Member, raffle models.Raffle, numero string) {
	if member.Correo == "" {
		logger.Log.Debug("Winner email skipped, member has no email", zap.Uint("socio_id", member.ID))
	} else {
		s.Enqueue("email.raffle_winner", func(ctx context.Context) error {
			html, err := renderEmail(raffleWinnerTemplate, emailData{
				Org:    s.cfg.OrgName,
				Member: member.ShortName(),
				Raffle: raffle.Nombre,
				Number: numero,
				Date:   formatDate(raffle.FechaEvento),
			})
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, domain.EmailMessage{
				To:      member.Correo,
				Subject: "🏆 ¡FELICITACIONES! Ganaste la Rifa - Natillera MiAhorro",
				HTML:    html,
			})
		})
	}

	s.enqueueChat(member, fmt.Sprintf("🏆 ¡Felicitaciones %s! Tu número %s ganó la rifa \"%s\" de %s.",
		member.Nombre1, numero, raffle.Nombre, s.cfg.OrgName))
}

func (s *NotificationService) enqueueChat(member models.Member, body string) {
	if s.chat == nil || member.Telefono == "" {
		return
	}
	msg := domain.ChatMessage{
		MemberID: member.ID,
		Phone:    member.Telefono,
		Body:     body,
		OptedIn:  member.WhatsappEnabled,
	}
	s.Enqueue("whatsapp", func(ctx context.Context) error {
		return s.chat.Send(ctx, msg)
	})
}

func pdfAttachment(name string, content []byte) domain.Attachment {
	return domain.Attachment{Filename: name, ContentType: "application/pdf", Content: content}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

// WeeklyReceiptFilename names the weekly receipt download
func WeeklyReceiptFilename(member *models.Member, payment *models.WeeklyPayment) string {
	return fmt.Sprintf("recibo_semana_%d_%s.pdf", payment.Semana, member.Documento)
}

// InstallmentReceiptFilename names the installment receipt download
func InstallmentReceiptFilename(loan *models.Loan, installment *models.LoanInstallment) string {
	return fmt.Sprintf("recibo_prestamo_%d_abono_%d.pdf", loan.ID, installment.ID)
}

// CertificateFilename names the paz y salvo attachment
func CertificateFilename(member *models.Member, loan *models.Loan) string {
	return fmt.Sprintf("paz_y_salvo_%s_%s.pdf", loan.Codigo, member.Documento)
}
