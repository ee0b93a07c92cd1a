package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// dealHoleCards deals two cards to each in-hand seat in turn, draining
// codes in order, mirroring how the scanner/dealer feed DealCard one card
// at a time.
func dealHoleCards(t *testing.T, h *Hand, ring *SeatRing, codes []string) {
	t.Helper()
	for _, code := range codes {
		_, err := h.DealCard(ring, code)
		require.NoError(t, err)
	}
}

func TestNewHandPostsBlindsHeadsUp(t *testing.T) {
	seats := newTestSeats(2)
	ring := NewSeatRing(seats)
	h, events, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)
	require.Equal(t, StateDealHoleCards, h.State)
	require.EqualValues(t, 990, seats[0].BuyIn)
	require.EqualValues(t, 980, seats[1].BuyIn)
	require.Len(t, events, 3) // HAND_STARTED + 2x BET_POSTED

	require.Equal(t, EventHandStarted, events[0].Kind)
	payload := events[0].Payload.(HandStartedPayload)
	require.Equal(t, seats[0].ID, payload.SmallBlindSeatID)
	require.Equal(t, seats[1].ID, payload.BigBlindSeatID)
}

func TestHandToShowdownHeadsUp(t *testing.T) {
	seats := newTestSeats(2)
	ring := NewSeatRing(seats)
	h, _, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)

	dealHoleCards(t, h, ring, []string{"2h", "7c", "9d", "Ks"})
	require.Equal(t, StateBetting, h.State)
	require.Len(t, seats[0].Cards, 2)
	require.Len(t, seats[1].Cards, 2)

	// Preflop: both check/call, round closes and the flop opens.
	_, err = h.Action(ring, seats[0].ID, ActionCheck, 0)
	require.NoError(t, err)
	_, err = h.Action(ring, seats[1].ID, ActionCheck, 0)
	require.NoError(t, err)
	require.Equal(t, StateDealFlop, h.State)

	dealHoleCards(t, h, ring, []string{"3h", "4h", "5h"})
	require.Equal(t, StateBetting, h.State)
	first := h.AssignedSeatID
	_, err = h.Action(ring, first, ActionCheck, 0)
	require.NoError(t, err)
	other := otherSeat(seats, first)
	_, err = h.Action(ring, other, ActionCheck, 0)
	require.NoError(t, err)
	require.Equal(t, StateDealTurn, h.State)

	dealHoleCards(t, h, ring, []string{"6h"})
	first = h.AssignedSeatID
	_, err = h.Action(ring, first, ActionCheck, 0)
	require.NoError(t, err)
	other = otherSeat(seats, first)
	_, err = h.Action(ring, other, ActionCheck, 0)
	require.NoError(t, err)
	require.Equal(t, StateDealRiver, h.State)

	events, err := h.DealCard(ring, "Tc")
	require.NoError(t, err)
	require.Equal(t, StateBetting, h.State)
	require.NotEmpty(t, events)

	first = h.AssignedSeatID
	events, err = h.Action(ring, first, ActionCheck, 0)
	require.NoError(t, err)
	other = otherSeat(seats, first)
	events2, err := h.Action(ring, other, ActionCheck, 0)
	require.NoError(t, err)
	events = append(events, events2...)

	require.Equal(t, StatusCompleted, h.Status)
	foundShowdown := false
	for _, ev := range events {
		if ev.Kind == EventShowdown {
			foundShowdown = true
		}
	}
	require.True(t, foundShowdown)
}

func TestHandRunoutAfterPreflopAllIn(t *testing.T) {
	seats := newTestSeats(2)
	seats[0].BuyIn = 100
	seats[1].BuyIn = 100
	ring := NewSeatRing(seats)
	h, _, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)

	dealHoleCards(t, h, ring, []string{"2h", "7c", "9d", "Ks"})
	require.Equal(t, StateBetting, h.State)

	// seats[0] (small blind, first-to-act heads-up) shoves the rest of its
	// stack; seats[1] calls all-in too, leaving nobody who can act.
	_, err = h.Action(ring, seats[0].ID, ActionRaise, 100)
	require.NoError(t, err)
	_, err = h.Action(ring, seats[1].ID, ActionCheck, 0)
	require.NoError(t, err)

	require.True(t, seats[0].Status() == StatusAllIn)
	require.True(t, seats[1].Status() == StatusAllIn)
	require.Equal(t, StateDealFlop, h.State)

	// The runout deals straight through to showdown without ever reopening
	// betting, since fewer than two seats can act.
	_, err = h.DealCard(ring, "3h")
	require.NoError(t, err)
	_, err = h.DealCard(ring, "4h")
	require.NoError(t, err)
	_, err = h.DealCard(ring, "5h")
	require.NoError(t, err)
	require.Equal(t, StateDealTurn, h.State)

	_, err = h.DealCard(ring, "6h")
	require.NoError(t, err)
	require.Equal(t, StateDealRiver, h.State)

	events, err := h.DealCard(ring, "Tc")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, h.Status)

	foundShowdown := false
	for _, ev := range events {
		if ev.Kind == EventShowdown {
			foundShowdown = true
		}
	}
	require.True(t, foundShowdown, "runout deals to a fifth community card and resolves showdown without betting")
}

// TestPostflopActionSkipsAllInSeatBetweenActiveSeats reproduces a
// short-stacked blind shoving preflop three-handed: once the flop opens,
// the seat to act must be the next seat that can still act, not the
// all-in seat sitting between the button and it.
func TestPostflopActionSkipsAllInSeatBetweenActiveSeats(t *testing.T) {
	seats := newTestSeats(3)
	seats[0].BuyIn = 1000 // button, first to act preflop three-handed
	seats[1].BuyIn = 15   // small blind, short stack
	seats[2].BuyIn = 1000 // big blind
	ring := NewSeatRing(seats)
	h, _, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)

	dealHoleCards(t, h, ring, []string{"2h", "7c", "9d", "Ks", "Qc", "Jd"})
	require.Equal(t, StateBetting, h.State)
	require.Equal(t, seats[0].ID, h.AssignedSeatID, "button acts first preflop three-handed")

	_, err = h.Action(ring, seats[0].ID, ActionCheck, 0) // calls the big blind
	require.NoError(t, err)

	_, err = h.Action(ring, seats[1].ID, ActionCheck, 0) // short stack calls all-in for less
	require.NoError(t, err)
	require.Equal(t, StatusAllIn, seats[1].Status())
	require.Equal(t, seats[2].ID, h.AssignedSeatID, "turn skips straight to the big blind")

	_, err = h.Action(ring, seats[2].ID, ActionCheck, 0)
	require.NoError(t, err)
	require.Equal(t, StateDealFlop, h.State)

	_, err = h.DealCard(ring, "3h")
	require.NoError(t, err)
	_, err = h.DealCard(ring, "4h")
	require.NoError(t, err)
	_, err = h.DealCard(ring, "5h")
	require.NoError(t, err)
	require.Equal(t, StateBetting, h.State)
	require.Equal(t, seats[2].ID, h.AssignedSeatID,
		"postflop action must skip the all-in small blind and land on the big blind")
}

func TestActionRejectsOutOfTurn(t *testing.T) {
	seats := newTestSeats(2)
	ring := NewSeatRing(seats)
	h, _, err := NewHand("hand-1", "table-1", ring, seats[0].ID, 10, 20)
	require.NoError(t, err)
	dealHoleCards(t, h, ring, []string{"2h", "7c", "9d", "Ks"})

	wrongActor := otherSeat(seats, h.AssignedSeatID)
	_, err = h.Action(ring, wrongActor, ActionCheck, 0)
	require.Error(t, err)
}

func otherSeat(seats []*Seat, exclude string) string {
	for _, s := range seats {
		if s.ID != exclude {
			return s.ID
		}
	}
	return ""
}
