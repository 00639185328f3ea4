package services

import (
	"context"
	"testing"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronService_RejectsInvalidSchedule(t *testing.T) {
	f := newLoanFixture(t)

	_, err := NewCronService(repositories.NewMemberRepository(f.db), f.svc, CronSchedule{
		DailyReport:  "every morning",
		OverdueSweep: "0 1 * * *",
	})
	assert.Error(t, err)
}

func TestCronService_OverdueSweepMarksPastDueLoans(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 1000, 0)
	require.NoError(t, f.db.Model(&models.Loan{}).Where("id = ?", loan.ID).
		Update("fecha_vencimiento", time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local)).Error)

	svc, err := NewCronService(repositories.NewMemberRepository(f.db), f.svc, CronSchedule{
		DailyReport:  "0 7 * * *",
		OverdueSweep: "0 1 * * *",
	})
	require.NoError(t, err)

	svc.DailyReport()
	svc.OverdueSweep()

	stored, err := f.svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanOverdue, stored.Estado)

	svc.Start()
	svc.Stop()
}
