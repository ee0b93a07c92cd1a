package poker

import "sort"

// SeatRing is the ordered circular list of seats by SeatNumber. It is a
// pure, stateless view over a snapshot of seats: it never mutates the
// seats it's given.
type SeatRing struct {
	seats []*Seat // sorted by SeatNumber ascending
}

// NewSeatRing builds a ring from an unordered seat slice.
func NewSeatRing(seats []*Seat) *SeatRing {
	ordered := make([]*Seat, len(seats))
	copy(ordered, seats)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SeatNumber < ordered[j].SeatNumber })
	return &SeatRing{seats: ordered}
}

func (r *SeatRing) indexOf(seatID string) int {
	for i, s := range r.seats {
		if s.ID == seatID {
			return i
		}
	}
	return -1
}

// NextActive returns the next seat clockwise from fromSeatID whose status
// is active or all-in. An all-in seat is skipped for action
// purposes by the betting controller but is still a valid stopping point
// here, since it remains eligible for pots and for receiving hole cards.
// If no seat other than the start qualifies, NextActive returns the start
// seat itself and ok=false, signalling a "collapsed" ring.
func (r *SeatRing) NextActive(fromSeatID string) (seat *Seat, ok bool) {
	n := len(r.seats)
	if n == 0 {
		return nil, false
	}
	start := r.indexOf(fromSeatID)
	if start == -1 {
		start = 0
	}
	for step := 1; step <= n; step++ {
		idx := (start + step) % n
		if r.seats[idx].InHand() {
			return r.seats[idx], idx != start
		}
	}
	return r.seats[start], false
}

// NextToAct returns the next seat clockwise from fromSeatID that can
// currently act (status active; all-in and folded seats are skipped, since
// neither has a decision left to make this hand). If no seat other than the
// start can act, NextToAct returns the start seat itself and ok=false.
func (r *SeatRing) NextToAct(fromSeatID string) (seat *Seat, ok bool) {
	n := len(r.seats)
	if n == 0 {
		return nil, false
	}
	start := r.indexOf(fromSeatID)
	if start == -1 {
		start = 0
	}
	for step := 1; step <= n; step++ {
		idx := (start + step) % n
		if r.seats[idx].CanAct() {
			return r.seats[idx], idx != start
		}
	}
	return r.seats[start], false
}

// FirstActiveFrom returns the first seat at or after fromSeatID (by ring
// position, wrapping) whose status is active or all-in; the starting seat
// itself counts.
func (r *SeatRing) FirstActiveFrom(fromSeatID string) (*Seat, bool) {
	n := len(r.seats)
	if n == 0 {
		return nil, false
	}
	start := r.indexOf(fromSeatID)
	if start == -1 {
		start = 0
	}
	for step := 0; step < n; step++ {
		idx := (start + step) % n
		if r.seats[idx].InHand() {
			return r.seats[idx], true
		}
	}
	return nil, false
}

// Seats returns the ring's seats in ring order.
func (r *SeatRing) Seats() []*Seat {
	out := make([]*Seat, len(r.seats))
	copy(out, r.seats)
	return out
}

// ActiveSeats returns only the seats that can currently act (status active).
func (r *SeatRing) ActiveSeats() []*Seat {
	var out []*Seat
	for _, s := range r.seats {
		if s.CanAct() {
			out = append(out, s)
		}
	}
	return out
}

// InHandSeats returns seats still contesting the pot: not folded, not
// eliminated (active or all-in).
func (r *SeatRing) InHandSeats() []*Seat {
	var out []*Seat
	for _, s := range r.seats {
		if s.InHand() {
			out = append(out, s)
		}
	}
	return out
}

// BlindPositions computes small-blind, big-blind and first-preflop-actor
// seats for an n-seat ring with dealer button d. Heads-up (n=2) is the
// special case: the dealer posts the small blind and acts first preflop.
func (r *SeatRing) BlindPositions(buttonSeatID string) (smallBlind, bigBlind, firstActor *Seat, err error) {
	active := r.InHandSeats()
	n := len(active)
	if n < 2 {
		return nil, nil, nil, preconditionErr("NoActiveGame", "need at least 2 active seats to post blinds, have %d", n)
	}

	ring := NewSeatRing(active)
	buttonIdx := ring.indexOf(buttonSeatID)
	if buttonIdx == -1 {
		buttonIdx = 0
	}

	if n == 2 {
		sb := ring.seats[buttonIdx]
		bb := ring.seats[(buttonIdx+1)%n]
		return sb, bb, sb, nil
	}

	sb := ring.seats[(buttonIdx+1)%n]
	bb := ring.seats[(buttonIdx+2)%n]
	first := ring.seats[(buttonIdx+3)%n]
	return sb, bb, first, nil
}

// PostflopFirstActor returns the first seat clockwise from the dealer
// button that can act: the small blind if still active, otherwise the next
// seat able to act. All-in and folded seats are skipped, since the round
// has nothing to ask them.
func (r *SeatRing) PostflopFirstActor(buttonSeatID string) (*Seat, bool) {
	return r.NextToAct(buttonSeatID)
}

// NextButton returns the next non-eliminated seat clockwise from the
// previous dealer button, for advancing the button at START_GAME.
// Eliminated seats are skipped; folded/all-in seats from the prior
// (now-completed) hand are eligible, since elimination is the only status
// checked.
func (r *SeatRing) NextButton(previousButtonSeatID string) (*Seat, bool) {
	n := len(r.seats)
	if n == 0 {
		return nil, false
	}
	start := r.indexOf(previousButtonSeatID)
	if start == -1 {
		start = -1 // so step=1 lands on index 0 for the very first hand
	}
	for step := 1; step <= n; step++ {
		idx := (start + step + n) % n
		if !r.seats[idx].IsEliminated() {
			return r.seats[idx], true
		}
	}
	return nil, false
}
