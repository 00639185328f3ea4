package services

import (
	"context"
	"time"

	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService runs the scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	memberRepo  repositories.MemberRepository
	loanService *LoanService
	timeout     time.Duration
}

// CronSchedule holds the standard five-field specs for each job
type CronSchedule struct {
	DailyReport  string
	OverdueSweep string
}

// NewCronService registers the daily report and overdue sweep jobs
func NewCronService(memberRepo repositories.MemberRepository, loanService *LoanService, schedule CronSchedule) (*CronService, error) {
	s := &CronService{
		cron:        cron.New(),
		memberRepo:  memberRepo,
		loanService: loanService,
		timeout:     2 * time.Minute,
	}

	if _, err := s.cron.AddFunc(schedule.DailyReport, s.DailyReport); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(schedule.OverdueSweep, s.OverdueSweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the scheduler
func (s *CronService) Start() {
	s.cron.Start()
	logger.Log.Info("CronService started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs and stops the scheduler
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Info("CronService stopped")
}

// DailyReport logs the active member count
func (s *CronService) DailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.memberRepo.CountByStatus(ctx, domain.MemberActive)
	if err != nil {
		logger.Log.Error("Daily report failed", zap.Error(err))
		return
	}
	logger.Log.Info("Daily report", zap.Int64("socios_activos", count))
}

// OverdueSweep marks loans past due with a balance left as VENCIDO
func (s *CronService) OverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	marked, err := s.loanService.MarkOverdue(ctx, domain.StartOfDay(time.Now()))
	if err != nil {
		logger.Log.Error("Overdue sweep failed", zap.Int("marked", marked), zap.Error(err))
		return
	}
	if marked > 0 {
		logger.Log.Info("Loans marked overdue", zap.Int("count", marked))
	}
}
