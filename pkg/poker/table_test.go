package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableJoinEnforcesSeatCapAndBuyIn(t *testing.T) {
	tbl := NewTable("table-1", 10, 20, 2, 2)
	var existing []*Seat

	s1, err := tbl.Join("seat-a", "alice", 500, existing)
	require.NoError(t, err)
	existing = append(existing, s1)

	s2, err := tbl.Join("seat-b", "bob", 500, existing)
	require.NoError(t, err)
	existing = append(existing, s2)

	_, err = tbl.Join("seat-c", "carol", 500, existing)
	require.Error(t, err, "table full")

	_, err = tbl.Join("seat-d", "dave", 0, nil)
	require.Error(t, err, "non-positive buy-in")
}

func TestTableLeaveBlocksMidHand(t *testing.T) {
	tbl := NewTable("table-1", 10, 20, 2, 9)
	seat, err := tbl.Join("seat-a", "alice", 500, nil)
	require.NoError(t, err)

	seat.SetStatus(StatusActive)
	err = tbl.Leave(seat)
	require.Error(t, err)

	seat.SetStatus(StatusFolded)
	err = tbl.Leave(seat)
	require.NoError(t, err)
}

func TestStartHandAdvancesButtonAndResetsSeats(t *testing.T) {
	tbl := NewTable("table-1", 10, 20, 2, 9)
	var seats []*Seat
	for i := 0; i < 3; i++ {
		s, err := tbl.Join(seatID(i), seatID(i), 500, seats)
		require.NoError(t, err)
		seats = append(seats, s)
	}
	seats[0].Cards = []string{"2h"} // leftover from a previous, already-settled hand

	_, _, err := tbl.StartHand("hand-1", seats)
	require.NoError(t, err)
	require.Equal(t, seats[0].ID, tbl.DealerButtonSeatID, "button starts on the first seat")
	require.Empty(t, seats[0].Cards, "ResetForNewHand clears stale hole cards")

	_, _, err = tbl.StartHand("hand-2", seats)
	require.NoError(t, err)
	require.Equal(t, seats[1].ID, tbl.DealerButtonSeatID, "button advances clockwise")
}

func TestStartHandRequiresTwoEligibleSeats(t *testing.T) {
	tbl := NewTable("table-1", 10, 20, 2, 9)
	seat, err := tbl.Join("seat-a", "alice", 500, nil)
	require.NoError(t, err)

	_, _, err = tbl.StartHand("hand-1", []*Seat{seat})
	require.Error(t, err)
}
