package poker

import "time"

// Table is the persistent aggregate root a hand is played on: its stakes,
// its seat ring's dealer button, and enough bookkeeping to bootstrap the
// next hand once the current one completes.
type Table struct {
	ID                 string
	SmallBlind         int64
	BigBlind           int64
	MinPlayers         int
	MaxPlayers         int
	DealerButtonSeatID string
	CreatedAt          time.Time
}

// NewTable creates a table with no dealer button assigned yet; the first
// START_GAME picks one via NextButton.
func NewTable(id string, smallBlind, bigBlind int64, minPlayers, maxPlayers int) *Table {
	return &Table{
		ID:         id,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
	}
}

// Join seats a new player at the first free seat number, enforcing the
// table's seat cap.
func (t *Table) Join(seatID, playerID string, buyIn int64, existing []*Seat) (*Seat, error) {
	if len(existing) >= t.MaxPlayers {
		return nil, preconditionErr("TableFull", "table %s has %d/%d seats filled", t.ID, len(existing), t.MaxPlayers)
	}
	if buyIn <= 0 {
		return nil, validationErr("InvalidInput", "buy-in must be positive, got %d", buyIn)
	}
	taken := make(map[int]bool, len(existing))
	for _, s := range existing {
		if s.PlayerID == playerID && !s.IsEliminated() {
			return nil, preconditionErr("AlreadySeated", "player %s already has a seat", playerID)
		}
		taken[s.SeatNumber] = true
	}
	seatNumber := 0
	for taken[seatNumber] {
		seatNumber++
	}
	return NewSeat(seatID, t.ID, playerID, seatNumber, buyIn), nil
}

// Leave checks whether a seated player may leave a live hand: a seat still
// contesting it (active or all-in) must fold first; a folded or eliminated
// seat can leave outright. The Command Router skips this check when no
// hand is in progress, so between hands any seat can leave.
func (t *Table) Leave(seat *Seat) error {
	if seat.TableID != t.ID {
		return fatalErr("seat %s does not belong to table %s", seat.ID, t.ID)
	}
	if seat.Status() == StatusActive || seat.Status() == StatusAllIn {
		return preconditionErr("InHand", "seat %s must fold before leaving mid-hand", seat.ID)
	}
	return nil
}

// StartHand bootstraps the next hand: it advances the dealer button to the
// next seat that hasn't busted, resets every non-eliminated seat for a new
// deal, and hands off to NewHand for blind posting.
func (t *Table) StartHand(handID string, seats []*Seat) (*Hand, []Event, error) {
	ring := NewSeatRing(seats)

	var eligible []*Seat
	for _, s := range ring.Seats() {
		if !s.IsEliminated() {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) < 2 {
		return nil, nil, preconditionErr("NoActiveGame", "need at least 2 non-eliminated seats, have %d", len(eligible))
	}

	button, ok := ring.NextButton(t.DealerButtonSeatID)
	if !ok {
		return nil, nil, fatalErr("no eligible seat found for dealer button on table %s", t.ID)
	}
	t.DealerButtonSeatID = button.ID

	for _, s := range eligible {
		s.ResetForNewHand()
	}

	return NewHand(handID, t.ID, NewSeatRing(eligible), t.DealerButtonSeatID, t.SmallBlind, t.BigBlind)
}
