package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveShowdownUncontestedPot(t *testing.T) {
	seats := newTestSeats(2)
	seats[1].SetStatus(StatusFolded)
	ring := NewSeatRing(seats)
	h := &Hand{
		ID:                 "hand-1",
		State:              StateShowdown,
		DealerButtonSeatID: seats[0].ID,
		Contributions:      map[string]int64{seats[0].ID: 100, seats[1].ID: 100},
	}

	events, err := ResolveShowdown(h, ring)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, h.Status)

	payload := events[1].Payload.(HandCompletedPayload)
	require.Len(t, payload.Awards, 1)
	require.Equal(t, seats[0].ID, payload.Awards[0].SeatID)
	require.EqualValues(t, 200, payload.Awards[0].Amount)
}

func TestResolveShowdownSplitsSidePots(t *testing.T) {
	seats := newTestSeats(3)
	ring := NewSeatRing(seats)
	// a all-in for 50 with the worst hand; b and c both covered at 200 with
	// b holding the best hand of the three.
	h := &Hand{
		ID:                 "hand-1",
		State:              StateShowdown,
		DealerButtonSeatID: seats[0].ID,
		Contributions: map[string]int64{
			seats[0].ID: 50,
			seats[1].ID: 200,
			seats[2].ID: 200,
		},
	}
	seats[0].Cards = []string{"2h", "3c"}
	seats[1].Cards = []string{"Ah", "Kh"}
	seats[2].Cards = []string{"2c", "7d"}
	h.CommunityCards = []string{"Qh", "Jh", "Th", "4d", "5s"} // gives b a royal flush

	events, err := ResolveShowdown(h, ring)
	require.NoError(t, err)

	payload := events[1].Payload.(HandCompletedPayload)
	total := int64(0)
	for _, a := range payload.Awards {
		total += a.Amount
	}
	require.EqualValues(t, 450, total)

	// b's royal flush wins both the main pot (150) and the side pot (300).
	bTotal := int64(0)
	for _, a := range payload.Awards {
		if a.SeatID == seats[1].ID {
			bTotal += a.Amount
		}
	}
	require.EqualValues(t, 450, bTotal)
}

func TestSplitWithOddChipGoesToFirstWinnerFromButton(t *testing.T) {
	seats := newTestSeats(3)
	ring := NewSeatRing(seats)
	winners := []Evaluation{{SeatID: seats[1].ID}, {SeatID: seats[2].ID}}

	awards := splitWithOddChip(0, 101, winners, ring, seats[0].ID)
	require.Len(t, awards, 2)

	amounts := map[string]int64{}
	for _, a := range awards {
		amounts[a.SeatID] = a.Amount
	}
	// seats[1] is first clockwise from the button among the winners.
	require.EqualValues(t, 51, amounts[seats[1].ID])
	require.EqualValues(t, 50, amounts[seats[2].ID])
}
