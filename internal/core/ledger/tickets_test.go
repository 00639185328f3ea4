package ledger

import (
	"math/rand/v2"
	"sort"
	"testing"

	"natillera-miahorro/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipients(n int) []Recipient {
	out := make([]Recipient, n)
	for i := range out {
		out[i] = Recipient{MemberID: uint(i + 1), Name: "Socio", Phone: "300000000"}
	}
	return out
}

func TestTicketNumbers(t *testing.T) {
	numbers := TicketNumbers()
	require.Len(t, numbers, TicketCount)
	assert.Equal(t, "00", numbers[0])
	assert.Equal(t, "07", numbers[7])
	assert.Equal(t, "99", numbers[99])
}

func TestNormalizeTicketNumber(t *testing.T) {
	for in, want := range map[string]string{"7": "07", "07": "07", " 42 ": "42", "0": "00", "99": "99"} {
		got, err := NormalizeTicketNumber(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"100", "-1", "x", ""} {
		_, err := NormalizeTicketNumber(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidTicketNumber, bad)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	numbers := TicketNumbers()
	Shuffle(numbers, rand.New(rand.NewPCG(1, 2)))

	sorted := append([]string(nil), numbers...)
	sort.Strings(sorted)
	assert.Equal(t, TicketNumbers(), sorted)
	assert.NotEqual(t, TicketNumbers(), numbers)
}

func TestDistribute(t *testing.T) {
	for _, n := range []int{1, 3, 7, 33, 100, 101} {
		assignments, err := Distribute(recipients(n), rand.New(rand.NewPCG(uint64(n), 9)))
		require.NoError(t, err)
		require.Len(t, assignments, TicketCount)

		perMember := map[uint]int{}
		house := 0
		seen := map[string]bool{}
		for _, a := range assignments {
			assert.False(t, seen[a.Number], "number %s assigned twice", a.Number)
			seen[a.Number] = true
			assert.Equal(t, domain.TicketReserved, a.Status)
			if a.MemberID == nil {
				assert.Equal(t, HouseHolder, a.HolderName)
				house++
				continue
			}
			perMember[*a.MemberID]++
		}

		assert.Equal(t, TicketCount%n, house, "n=%d", n)
		for id := 1; id <= n && TicketCount/n > 0; id++ {
			assert.Equal(t, TicketCount/n, perMember[uint(id)], "n=%d member=%d", n, id)
		}
	}
}

func TestDistributeWithoutRecipients(t *testing.T) {
	assignments, err := Distribute(nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoEligibleRecipients)
	assert.Nil(t, assignments)
}

func TestValidateWeek(t *testing.T) {
	assert.NoError(t, ValidateWeek(1))
	assert.NoError(t, ValidateWeek(52))
	assert.ErrorIs(t, ValidateWeek(0), domain.ErrWeekOutOfRange)
	assert.ErrorIs(t, ValidateWeek(53), domain.ErrWeekOutOfRange)

	weeks := ScheduleWeeks()
	require.Len(t, weeks, WeeksPerYear)
	assert.Equal(t, 1, weeks[0])
	assert.Equal(t, 52, weeks[51])
}
