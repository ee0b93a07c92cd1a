package poker

// ResolveShowdown settles a hand once it reaches SHOWDOWN: it evaluates
// every contesting seat's best five-card hand, awards each pot
// layer to its eligible winners, breaks ties by splitting the layer evenly
// with the odd chip going to the first eligible winner clockwise from the
// button, and marks any seat left with zero chips as eliminated.
func ResolveShowdown(h *Hand, seats *SeatRing) ([]Event, error) {
	if h.State != StateShowdown {
		return nil, preconditionErr("WrongState", "showdown invalid in state %s", h.State)
	}

	inHand := seats.InHandSeats()
	pots := h.computePots(seats)

	var evals []Evaluation
	if len(inHand) > 1 {
		for _, s := range inHand {
			cards := append(append([]string{}, s.Cards...), h.CommunityCards...)
			eval, err := Solve(cards)
			if err != nil {
				return nil, err
			}
			eval.SeatID = s.ID
			evals = append(evals, eval)
		}
	}

	var awards []PotAward
	for _, pot := range pots {
		if pot.Amount == 0 {
			continue
		}
		if len(inHand) == 1 {
			awards = append(awards, PotAward{SeatID: inHand[0].ID, PotIndex: pot.Index, Amount: pot.Amount})
			continue
		}
		awards = append(awards, awardPot(pot, evals, seats, h.DealerButtonSeatID)...)
	}

	awardsBySeat := make(map[string]int64)
	for _, a := range awards {
		awardsBySeat[a.SeatID] += a.Amount
	}
	var eliminated []string
	for _, s := range seats.Seats() {
		s.BuyIn += awardsBySeat[s.ID]
		if s.BuyIn == 0 && s.Status() != StatusEliminated && (s.IsFolded() || s.InHand()) {
			s.SetStatus(StatusEliminated)
			eliminated = append(eliminated, s.ID)
		}
	}

	h.Status = StatusCompleted

	events := []Event{
		{Kind: EventShowdown, Payload: ShowdownPayload{Evaluations: evals, Awards: awards}},
		{Kind: EventHandCompleted, Payload: HandCompletedPayload{Awards: awards, EliminatedSeatID: eliminated}},
	}
	return events, nil
}

// awardPot splits one pot layer among its eligible winners, found by
// restricting evals to the layer's Eligible set and taking the best hand(s)
// among them.
func awardPot(pot SidePot, evals []Evaluation, seats *SeatRing, buttonSeatID string) []PotAward {
	var contenders []Evaluation
	for _, e := range evals {
		if pot.Eligible[e.SeatID] {
			contenders = append(contenders, e)
		}
	}
	if len(contenders) == 0 {
		return nil
	}
	winners := Winners(contenders)
	return splitWithOddChip(pot.Index, pot.Amount, winners, seats, buttonSeatID)
}

// splitWithOddChip divides amount evenly among winners, handing any
// remainder one chip at a time to winners in seat order starting clockwise
// from the button.
func splitWithOddChip(potIndex int, amount int64, winners []Evaluation, seats *SeatRing, buttonSeatID string) []PotAward {
	n := int64(len(winners))
	if n == 0 {
		return nil
	}
	share := amount / n
	remainder := amount % n

	shares := make(map[string]int64, len(winners))
	for _, w := range winners {
		shares[w.SeatID] = share
	}

	if remainder > 0 {
		for _, s := range ringOrderFromButton(seats, buttonSeatID) {
			if remainder == 0 {
				break
			}
			if _, ok := shares[s.ID]; !ok {
				continue
			}
			shares[s.ID]++
			remainder--
		}
	}

	awards := make([]PotAward, 0, len(shares))
	for seatID, amt := range shares {
		if amt == 0 {
			continue
		}
		awards = append(awards, PotAward{SeatID: seatID, PotIndex: potIndex, Amount: amt})
	}
	return awards
}

// ringOrderFromButton returns every seat in ring order starting with the
// seat immediately clockwise of the button.
func ringOrderFromButton(seats *SeatRing, buttonSeatID string) []*Seat {
	all := seats.Seats()
	n := len(all)
	if n == 0 {
		return nil
	}
	start := 0
	for i, s := range all {
		if s.ID == buttonSeatID {
			start = i
			break
		}
	}
	out := make([]*Seat, 0, n)
	for step := 1; step <= n; step++ {
		out = append(out, all[(start+step)%n])
	}
	return out
}
