package poker

// currentRoundMaxBet is the highest currentBet among all seats this street,
// the target every active seat must match for the round to close.
func currentRoundMaxBet(seats *SeatRing) int64 {
	var max int64
	for _, s := range seats.Seats() {
		if s.CurrentBet > max {
			max = s.CurrentBet
		}
	}
	return max
}

// InitPreflopRound opens the first betting round of a hand. The blinds are
// already posted (NewHand posts them before any card is dealt), so
// currentRoundMaxBet is implicitly the big blind; the minimum legal raise
// increment starts at one big blind, and action starts on the seat after
// the big blind (or the button itself, heads-up).
func InitPreflopRound(h *Hand, seats *SeatRing) error {
	_, _, first, err := seats.BlindPositions(h.DealerButtonSeatID)
	if err != nil {
		return err
	}
	h.LastRaiseIncrement = h.BigBlind
	h.BetCount = 0
	h.RequiredBetCount = len(seats.ActiveSeats())
	h.AssignedSeatID = first.ID
	return nil
}

// InitPostflopRound opens a flop/turn/river betting round: no bet yet this
// street, minimum raise resets to one big blind, and action starts on the
// first active seat clockwise from the button.
func InitPostflopRound(h *Hand, seats *SeatRing) error {
	h.LastRaiseIncrement = h.BigBlind
	h.BetCount = 0
	h.RequiredBetCount = len(seats.ActiveSeats())
	if first, ok := seats.PostflopFirstActor(h.DealerButtonSeatID); ok {
		h.AssignedSeatID = first.ID
	}
	return nil
}

// ApplyAction applies one FOLD/CHECK/RAISE decision to the betting round in
// progress. CHECK doubles as call: if the actor faces a bet,
// the engine posts the difference automatically rather than requiring a
// separate CALL command. amount is only consulted for RAISE, where it names
// the seat's new total bet for the street (the raise-to amount), not the
// incremental chips added.
func ApplyAction(h *Hand, seats *SeatRing, actor *Seat, kind ActionKind, amount int64) ([]Event, error) {
	maxBet := currentRoundMaxBet(seats)

	switch kind {
	case ActionFold:
		actor.SetStatus(StatusFolded)
		actor.LastAction = string(ActionFold)
		h.BetCount++
		return []Event{{Kind: EventPlayerAction, Payload: PlayerActionPayload{SeatID: actor.ID, Action: string(ActionFold)}}}, nil

	case ActionCheck:
		toCall := maxBet - actor.CurrentBet
		if toCall < 0 {
			toCall = 0
		}
		posted, wentAllIn := actor.PostChips(toCall)
		actor.LastAction = string(ActionCheck)
		h.BetCount++
		return []Event{{Kind: EventPlayerAction, Payload: PlayerActionPayload{
			SeatID: actor.ID, Action: string(ActionCheck), Amount: posted, AllIn: wentAllIn,
		}}}, nil

	case ActionRaise:
		if amount <= maxBet {
			return nil, preconditionErr("InvalidRaise", "raise-to %d must exceed current bet %d", amount, maxBet)
		}
		increment := amount - maxBet
		postAmt := amount - actor.CurrentBet
		if postAmt <= 0 {
			return nil, preconditionErr("InvalidRaise", "raise-to %d is not above seat's own current bet %d", amount, actor.CurrentBet)
		}

		posted, wentAllIn := actor.PostChips(postAmt)

		// The TDA short-all-in exception: an all-in raise for less than the
		// minimum increment still stands as a bet, but does not reopen
		// betting for seats that already acted this round at the previous
		// max. A full raise below the minimum increment is simply illegal.
		if !wentAllIn && increment < h.LastRaiseIncrement {
			return nil, preconditionErr("InvalidRaise", "raise increment %d below minimum %d", increment, h.LastRaiseIncrement)
		}

		reopens := wentAllIn == false || increment >= h.LastRaiseIncrement
		actor.LastAction = string(ActionRaise)
		if reopens {
			h.LastRaiseIncrement = increment
			h.BetCount = 1
			h.RequiredBetCount = len(seats.ActiveSeats())
		} else {
			h.BetCount++
		}

		return []Event{{Kind: EventPlayerAction, Payload: PlayerActionPayload{
			SeatID: actor.ID, Action: string(ActionRaise), Amount: posted, AllIn: wentAllIn,
		}}}, nil

	default:
		return nil, validationErr("InvalidInput", "unknown action %q", kind)
	}
}

// RoundClosed is the betting round termination predicate: the round ends
// the instant at most one seat remains in the hand, or every
// seat still able to act has matched the current round's max bet and at
// least requiredBetCount decisions have been made since the round (or its
// last reopening raise) began.
func RoundClosed(h *Hand, seats *SeatRing) bool {
	if len(seats.InHandSeats()) <= 1 {
		return true
	}
	canAct := seats.ActiveSeats()
	if len(canAct) == 0 {
		return true
	}
	maxBet := currentRoundMaxBet(seats)
	for _, s := range canAct {
		if s.CurrentBet != maxBet {
			return false
		}
	}
	return h.BetCount >= h.RequiredBetCount
}
