package services

import (
	"context"
	"math/rand/v2"
	"testing"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"
	"natillera-miahorro/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRaffleService(db *gorm.DB, notifier Notifier) *RaffleService {
	return NewRaffleService(db, repositories.NewRaffleRepository(db), repositories.NewMemberRepository(db),
		notifier, money(20), rand.New(rand.NewPCG(1, 2)))
}

func createRaffle(t *testing.T, svc *RaffleService) *models.Raffle {
	t.Helper()

	raffle, err := svc.Create(context.Background(), CreateRaffleInput{Nombre: "Rifa de mayo", FechaEvento: "2026-05-30"})
	require.NoError(t, err)
	return raffle
}

func countByHolder(tickets []models.RaffleTicket) map[string]int {
	out := map[string]int{}
	for _, tk := range tickets {
		out[tk.NombreCliente]++
	}
	return out
}

func TestRaffleService_CreateMakesHundredAvailableTickets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRaffleService(db, &testutil.RecordingNotifier{})

	raffle := createRaffle(t, svc)

	tickets, err := svc.Tickets(context.Background(), raffle.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 100)
	assert.Equal(t, "00", tickets[0].Numero)
	assert.Equal(t, "99", tickets[99].Numero)
	for _, tk := range tickets {
		assert.Equal(t, domain.TicketAvailable, tk.Estado)
		assert.True(t, tk.Precio.Equal(money(20)))
	}

	_, err = svc.Create(context.Background(), CreateRaffleInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(100), testutil.CountRows(t, db, "rifa_numeros"))
}

func TestRaffleService_DistributeSplitsEvenlyWithHouseRemainder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	for _, doc := range []string{"1", "2", "3"} {
		createMember(t, db, doc, "Socio"+doc, "")
	}
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)

	result, err := svc.Distribute(context.Background(), raffle.ID, DistributeInput{Confirmar: true})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Socios)
	assert.Equal(t, 33, result.PorSocio)
	assert.Equal(t, 1, result.Casa)

	tickets, err := svc.Tickets(context.Background(), raffle.ID)
	require.NoError(t, err)
	holders := countByHolder(tickets)
	assert.Equal(t, 33, holders["Socio1 Restrepo"])
	assert.Equal(t, 33, holders["Socio2 Restrepo"])
	assert.Equal(t, 33, holders["Socio3 Restrepo"])
	assert.Equal(t, 1, holders[ledger.HouseHolder])
	for _, tk := range tickets {
		assert.Equal(t, domain.TicketReserved, tk.Estado)
	}
}

func TestRaffleService_DistributeGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	_, err := svc.Distribute(ctx, raffle.ID, DistributeInput{})
	assert.ErrorIs(t, err, domain.ErrDistributionUnconfirmed)

	_, err = svc.Distribute(ctx, raffle.ID, DistributeInput{Confirmar: true})
	assert.ErrorIs(t, err, domain.ErrNoEligibleRecipients)

	_, err = svc.Distribute(ctx, 999, DistributeInput{Confirmar: true})
	assert.ErrorIs(t, err, domain.ErrRaffleNotFound)

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)
	for _, tk := range tickets {
		assert.Equal(t, domain.TicketAvailable, tk.Estado)
		assert.Empty(t, tk.NombreCliente)
	}
}

func TestRaffleService_DistributeProtectsPaidTickets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	createMember(t, db, "1", "Ana", "")
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)
	_, err = svc.UpdateTicket(ctx, tickets[7].ID, UpdateTicketInput{NombreCliente: "Vecino", Estado: "pagado"})
	require.NoError(t, err)

	_, err = svc.Distribute(ctx, raffle.ID, DistributeInput{Confirmar: true})
	assert.ErrorIs(t, err, domain.ErrPaidTicketsPresent)

	result, err := svc.Distribute(ctx, raffle.ID, DistributeInput{Confirmar: true, IncluirPagados: true})
	require.NoError(t, err)
	assert.Equal(t, 100, result.PorSocio)
	assert.Equal(t, 0, result.Casa)
}

func TestRaffleService_RedistributeReassignsEveryTicket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	createMember(t, db, "1", "Ana", "3001111111")
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	// A single member gets every number back unchanged on the second run
	for i := 0; i < 2; i++ {
		result, err := svc.Distribute(ctx, raffle.ID, DistributeInput{Confirmar: true})
		require.NoError(t, err, "distribution %d", i+1)
		assert.Equal(t, 100, result.PorSocio)
	}

	createMember(t, db, "2", "Beto", "3002222222")
	createMember(t, db, "3", "Caro", "3003333333")
	result, err := svc.Distribute(ctx, raffle.ID, DistributeInput{Confirmar: true})
	require.NoError(t, err)
	assert.Equal(t, 33, result.PorSocio)
	assert.Equal(t, 1, result.Casa)

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 100)
	holders := countByHolder(tickets)
	assert.Equal(t, 33, holders["Ana Restrepo"])
	assert.Equal(t, 33, holders["Beto Restrepo"])
	assert.Equal(t, 33, holders["Caro Restrepo"])
	assert.Equal(t, 1, holders[ledger.HouseHolder])
	for _, tk := range tickets {
		assert.Equal(t, domain.TicketReserved, tk.Estado)
		if tk.NombreCliente == ledger.HouseHolder {
			assert.Empty(t, tk.TelefonoCliente)
		} else {
			assert.NotEmpty(t, tk.TelefonoCliente)
		}
	}
}

func TestRaffleService_DistributeRequiresFullTicketSet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	createMember(t, db, "1", "Ana", "")
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	require.NoError(t, db.Where("rifa_id = ? AND numero = ?", raffle.ID, "42").Delete(&models.RaffleTicket{}).Error)

	_, err := svc.Distribute(ctx, raffle.ID, DistributeInput{Confirmar: true})
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)
	for _, tk := range tickets {
		assert.Equal(t, domain.TicketAvailable, tk.Estado)
	}
}

func TestRaffleService_UpdateTicketValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)

	_, err = svc.UpdateTicket(ctx, tickets[0].ID, UpdateTicketInput{Estado: "VENDIDO"})
	assert.ErrorIs(t, err, domain.ErrInvalidTicketStatus)

	_, err = svc.UpdateTicket(ctx, tickets[0].ID, UpdateTicketInput{TelefonoCliente: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateTicket(ctx, 9999, UpdateTicketInput{})
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestRaffleService_TicketsByDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ana := createMember(t, db, "111", "Ana", "3001234567")
	svc := newRaffleService(db, &testutil.RecordingNotifier{})
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)
	_, err = svc.UpdateTicket(ctx, tickets[3].ID, UpdateTicketInput{TelefonoCliente: ana.Telefono})
	require.NoError(t, err)
	_, err = svc.UpdateTicket(ctx, tickets[42].ID, UpdateTicketInput{NombreCliente: ana.FullName()})
	require.NoError(t, err)

	result, err := svc.TicketsByDocument(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "Ana Restrepo", result.Socio)
	require.Len(t, result.Tickets, 2)
	assert.Equal(t, "03", result.Tickets[0].Numero)
	assert.Equal(t, "42", result.Tickets[1].Numero)
	assert.Equal(t, "Rifa de mayo", result.Tickets[0].RifaNombre)

	_, err = svc.TicketsByDocument(ctx, "000")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestRaffleService_SetWinnerNotifiesMatchingMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ana := createMember(t, db, "111", "Ana", "3001234567")
	notifier := &testutil.RecordingNotifier{}
	svc := newRaffleService(db, notifier)
	raffle := createRaffle(t, svc)
	ctx := context.Background()

	tickets, err := svc.Tickets(ctx, raffle.ID)
	require.NoError(t, err)
	_, err = svc.UpdateTicket(ctx, tickets[7].ID, UpdateTicketInput{NombreCliente: "Ana", TelefonoCliente: ana.Telefono})
	require.NoError(t, err)

	updated, err := svc.SetWinner(ctx, raffle.ID, "7")
	require.NoError(t, err)
	require.NotNil(t, updated.NumeroGanador)
	assert.Equal(t, "07", *updated.NumeroGanador)

	require.Len(t, notifier.Winners, 1)
	assert.Equal(t, ana.ID, notifier.Winners[0].Member.ID)
	assert.Equal(t, "07", notifier.Winners[0].Numero)

	// A holder outside the club is not an error
	_, err = svc.SetWinner(ctx, raffle.ID, "08")
	require.NoError(t, err)
	assert.Len(t, notifier.Winners, 1)

	_, err = svc.SetWinner(ctx, raffle.ID, "100")
	assert.ErrorIs(t, err, domain.ErrInvalidTicketNumber)
}
