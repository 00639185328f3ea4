package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/metrics"
	"natillera-miahorro/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RaffleService handles raffles and their 100 numbers
type RaffleService struct {
	db          *gorm.DB
	raffleRepo  *repositories.RaffleRepository
	memberRepo  repositories.MemberRepository
	notifier    Notifier
	ticketPrice decimal.Decimal
	rng         *rand.Rand
}

// NewRaffleService creates a new raffle service. A nil rng shuffles with
// the global source.
func NewRaffleService(
	db *gorm.DB,
	raffleRepo *repositories.RaffleRepository,
	memberRepo repositories.MemberRepository,
	notifier Notifier,
	ticketPrice decimal.Decimal,
	rng *rand.Rand,
) *RaffleService {
	return &RaffleService{
		db:          db,
		raffleRepo:  raffleRepo,
		memberRepo:  memberRepo,
		notifier:    notifier,
		ticketPrice: ledger.Round(ticketPrice),
		rng:         rng,
	}
}

// CreateRaffleInput describes a new raffle
type CreateRaffleInput struct {
	Nombre      string `json:"nombre" validate:"required,max=120"`
	Descripcion string `json:"descripcion" validate:"max=2000"`
	FechaEvento string `json:"fecha_evento"`
	Frecuencia  string `json:"frecuencia" validate:"max=30"`
}

// UpdateTicketInput sets the holder of one number
type UpdateTicketInput struct {
	NombreCliente   string `json:"nombre_cliente" validate:"max=120"`
	TelefonoCliente string `json:"telefono_cliente" validate:"phone"`
	Estado          string `json:"estado"`
}

// DistributeInput must be explicitly confirmed
type DistributeInput struct {
	Confirmar      bool `json:"confirmar"`
	IncluirPagados bool `json:"incluir_pagados"`
}

// DistributionResult summarizes a completed distribution
type DistributionResult struct {
	Socios       int                 `json:"socios"`
	PorSocio     int                 `json:"por_socio"`
	Casa         int                 `json:"casa"`
	Asignaciones []ledger.Assignment `json:"-"`
}

// MemberTickets is a member with the numbers they hold
type MemberTickets struct {
	Socio   string                `json:"socio"`
	Tickets []models.MemberTicket `json:"tickets"`
}

// Create stores a raffle with its 100 DISPONIBLE numbers in one transaction
func (s *RaffleService) Create(ctx context.Context, in CreateRaffleInput) (*models.Raffle, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fecha, err := parseDate("fecha_evento", in.FechaEvento)
	if err != nil {
		return nil, err
	}

	raffle := &models.Raffle{
		Nombre:      in.Nombre,
		Descripcion: strings.TrimSpace(in.Descripcion),
		FechaEvento: fecha,
		Frecuencia:  strings.TrimSpace(in.Frecuencia),
	}

	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.raffleRepo.WithTx(tx)
		if err := repo.Create(ctx, raffle); err != nil {
			return err
		}

		tickets := make([]models.RaffleTicket, 0, ledger.TicketCount)
		for _, numero := range ledger.TicketNumbers() {
			tickets = append(tickets, models.RaffleTicket{
				RifaID: raffle.ID,
				Numero: numero,
				Precio: s.ticketPrice,
				Estado: domain.TicketAvailable,
			})
		}
		return repo.CreateTickets(ctx, tickets)
	})
	if err != nil {
		return nil, err
	}
	return raffle, nil
}

// List lists raffles, latest draw first
func (s *RaffleService) List(ctx context.Context) ([]models.Raffle, error) {
	raffles, err := s.raffleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if raffles == nil {
		raffles = []models.Raffle{}
	}
	return raffles, nil
}

// Tickets lists a raffle's numbers in order
func (s *RaffleService) Tickets(ctx context.Context, rifaID uint) ([]models.RaffleTicket, error) {
	if _, err := s.raffle(ctx, rifaID); err != nil {
		return nil, err
	}
	return s.raffleRepo.ListTickets(ctx, rifaID)
}

// UpdateTicket changes the holder or estado of a number
func (s *RaffleService) UpdateTicket(ctx context.Context, id uint, in UpdateTicketInput) (*models.RaffleTicket, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	estado := strings.ToUpper(strings.TrimSpace(in.Estado))
	if estado != "" && !domain.IsValidTicketStatus(estado) {
		return nil, domain.ErrInvalidTicketStatus
	}

	ticket, err := s.raffleRepo.GetTicket(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	ticket.NombreCliente = strings.TrimSpace(in.NombreCliente)
	ticket.TelefonoCliente = strings.TrimSpace(in.TelefonoCliente)
	if estado != "" {
		ticket.Estado = estado
	}
	if err := s.raffleRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Distribute deals all 100 numbers among the active members, replacing every
// previous holder. It needs explicit confirmation and refuses to overwrite
// PAGADO numbers unless asked to.
func (s *RaffleService) Distribute(ctx context.Context, rifaID uint, in DistributeInput) (*DistributionResult, error) {
	if !in.Confirmar {
		return nil, domain.ErrDistributionUnconfirmed
	}
	if _, err := s.raffle(ctx, rifaID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]ledger.Recipient, 0, len(members))
	for i := range members {
		recipients = append(recipients, ledger.Recipient{
			MemberID: members[i].ID,
			Name:     members[i].FullName(),
			Phone:    members[i].Telefono,
		})
	}

	assignments, err := ledger.Distribute(recipients, s.rng)
	if err != nil {
		return nil, err
	}

	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.raffleRepo.WithTx(tx)

		total, err := repo.CountTickets(ctx, rifaID, "")
		if err != nil {
			return err
		}
		if total != ledger.TicketCount {
			return domain.Wrapf(domain.ErrTicketNotFound, "La rifa tiene %d números, se esperaban %d", total, ledger.TicketCount)
		}

		if !in.IncluirPagados {
			paid, err := repo.CountTickets(ctx, rifaID, domain.TicketPaid)
			if err != nil {
				return err
			}
			if paid > 0 {
				return domain.ErrPaidTicketsPresent
			}
		}

		for _, a := range assignments {
			if err := repo.AssignTicket(ctx, rifaID, a.Number, a.HolderName, a.HolderPhone, a.Status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RaffleDistributions.Inc()
	perMember := ledger.TicketCount / len(recipients)
	result := &DistributionResult{
		Socios:       len(recipients),
		PorSocio:     perMember,
		Casa:         ledger.TicketCount - perMember*len(recipients),
		Asignaciones: assignments,
	}

	logger.Log.Info("Raffle numbers distributed",
		zap.Uint("rifa_id", rifaID),
		zap.Int("socios", result.Socios),
		zap.Int("por_socio", result.PorSocio),
		zap.Int("casa", result.Casa))

	return result, nil
}

// TicketsByDocument finds the numbers held by the member with documento,
// matched by phone or full name.
func (s *RaffleService) TicketsByDocument(ctx context.Context, documento string) (*MemberTickets, error) {
	member, err := s.memberRepo.GetByDocumento(ctx, strings.TrimSpace(documento))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	tickets, err := s.raffleRepo.TicketsForHolder(ctx, member.Telefono, member.FullName())
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []models.MemberTicket{}
	}
	return &MemberTickets{Socio: member.FullName(), Tickets: tickets}, nil
}

// SetWinner records the winning number and notifies the holder when the
// ticket's phone belongs to a member. A holder outside the club is fine.
func (s *RaffleService) SetWinner(ctx context.Context, rifaID uint, numero string) (*models.Raffle, error) {
	numero, err := ledger.NormalizeTicketNumber(numero)
	if err != nil {
		return nil, err
	}

	raffle, err := s.raffle(ctx, rifaID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.raffleRepo.GetTicketByNumber(ctx, rifaID, numero)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	if err := s.raffleRepo.SetWinner(ctx, rifaID, numero); err != nil {
		return nil, err
	}
	raffle.NumeroGanador = &numero

	phone := strings.TrimSpace(ticket.TelefonoCliente)
	if phone == "" {
		return raffle, nil
	}
	member, err := s.memberRepo.FindByPhone(ctx, phone)
	if err != nil {
		if !repositories.IsNotFound(err) {
			logger.Log.Warn("Winner lookup failed",
				zap.Uint("rifa_id", rifaID),
				zap.String("numero", numero),
				zap.Error(err))
		}
		return raffle, nil
	}

	s.notifier.RaffleWon(*member, *raffle, numero)
	return raffle, nil
}

func (s *RaffleService) raffle(ctx context.Context, id uint) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrRaffleNotFound
		}
		return nil, err
	}
	return raffle, nil
}
