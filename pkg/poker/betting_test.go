package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newHeadsUpRound(t *testing.T) (*Hand, *SeatRing, []*Seat) {
	t.Helper()
	seats := newTestSeats(2)
	ring := NewSeatRing(seats)
	h, _, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)
	require.NoError(t, InitPreflopRound(h, ring))
	return h, ring, seats
}

func TestApplyActionFold(t *testing.T) {
	h, ring, seats := newHeadsUpRound(t)
	_, err := ApplyAction(h, ring, seats[0], ActionFold, 0)
	require.NoError(t, err)
	require.True(t, seats[0].IsFolded())
	require.True(t, RoundClosed(h, ring))
}

func TestApplyActionCheckCallsUpToMaxBet(t *testing.T) {
	h, ring, seats := newHeadsUpRound(t)
	// seats[0] is small blind (10), seats[1] is big blind (20) heads-up.
	_, err := ApplyAction(h, ring, seats[0], ActionCheck, 0)
	require.NoError(t, err)
	require.EqualValues(t, 20, seats[0].CurrentBet, "check-or-call posts the difference to the big blind")
}

func TestApplyActionRaiseBelowMinimumRejected(t *testing.T) {
	h, ring, seats := newHeadsUpRound(t)
	_, err := ApplyAction(h, ring, seats[0], ActionRaise, 25) // increment of 5 < big blind 20
	require.Error(t, err)
}

func TestApplyActionRaiseReopensRound(t *testing.T) {
	h, ring, seats := newHeadsUpRound(t)
	_, err := ApplyAction(h, ring, seats[0], ActionRaise, 60) // raise-to 60, increment 40
	require.NoError(t, err)
	require.EqualValues(t, 40, h.LastRaiseIncrement)
	require.EqualValues(t, 1, h.BetCount)
	require.False(t, RoundClosed(h, ring), "seats[1] hasn't matched the raise yet")
}

func TestApplyActionShortAllInDoesNotReopen(t *testing.T) {
	seats := newTestSeats(3)
	seats[0].BuyIn = 30 // button/first-to-act 3-handed, short stack
	ring := NewSeatRing(seats)
	h, _, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)
	require.NoError(t, InitPreflopRound(h, ring))
	require.Equal(t, seats[0].ID, h.AssignedSeatID, "3-handed the button acts first preflop")

	// seats[0] shoves short for less than a full raise; the raise increment
	// (10) is below the minimum (20) but the seat is all-in, so it stands
	// without reopening action for callers.
	_, err = ApplyAction(h, ring, seats[0], ActionRaise, 30)
	require.NoError(t, err)
	require.True(t, seats[0].Status() == StatusAllIn)
	require.EqualValues(t, 20, h.LastRaiseIncrement, "short all-in raise does not lower the reopen threshold")
}

func TestRoundClosedRequiresEveryActiveSeatToAct(t *testing.T) {
	h, ring, seats := newHeadsUpRound(t)
	require.False(t, RoundClosed(h, ring))
	_, err := ApplyAction(h, ring, seats[0], ActionCheck, 0)
	require.NoError(t, err)
	require.False(t, RoundClosed(h, ring), "big blind still owed a decision")
	_, err = ApplyAction(h, ring, seats[1], ActionCheck, 0)
	require.NoError(t, err)
	require.True(t, RoundClosed(h, ring))
}
