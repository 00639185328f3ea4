package ledger

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"natillera-miahorro/internal/core/domain"
)

const (
	// TicketCount is the number of tickets every raffle has
	TicketCount = 100
	// HouseHolder holds the tickets left over after an even split
	HouseHolder = "La Natillera"
)

// Recipient is an active member eligible for tickets
type Recipient struct {
	MemberID uint
	Name     string
	Phone    string
}

// Assignment is the new holder of one ticket number. MemberID is nil for
// tickets kept by the house.
type Assignment struct {
	Number      string
	MemberID    *uint
	HolderName  string
	HolderPhone string
	Status      string
}

// TicketNumbers returns "00".."99" in order
func TicketNumbers() []string {
	numbers := make([]string, TicketCount)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("%02d", i)
	}
	return numbers
}

// NormalizeTicketNumber turns "7", "07" or " 07 " into "07"
func NormalizeTicketNumber(s string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n >= TicketCount {
		return "", domain.ErrInvalidTicketNumber
	}
	return fmt.Sprintf("%02d", n), nil
}

// Shuffle permutes numbers in place with Fisher–Yates. A nil rng uses the
// package-level source.
func Shuffle(numbers []string, rng *rand.Rand) {
	for i := len(numbers) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		numbers[i], numbers[j] = numbers[j], numbers[i]
	}
}

// Distribute deals the 100 shuffled numbers round-robin so every recipient
// gets floor(100/N); the remaining 100 mod N go to HouseHolder. All
// assignments are RESERVADO.
func Distribute(recipients []Recipient, rng *rand.Rand) ([]Assignment, error) {
	if len(recipients) == 0 {
		return nil, domain.ErrNoEligibleRecipients
	}

	numbers := TicketNumbers()
	Shuffle(numbers, rng)

	n := len(recipients)
	perMember := TicketCount / n
	dealt := perMember * n

	out := make([]Assignment, 0, TicketCount)
	for i, number := range numbers {
		if i < dealt {
			r := recipients[i%n]
			id := r.MemberID
			out = append(out, Assignment{
				Number:      number,
				MemberID:    &id,
				HolderName:  r.Name,
				HolderPhone: r.Phone,
				Status:      domain.TicketReserved,
			})
			continue
		}
		out = append(out, Assignment{
			Number:     number,
			HolderName: HouseHolder,
			Status:     domain.TicketReserved,
		})
	}
	return out, nil
}
