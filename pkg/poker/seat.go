package poker

import (
	"fmt"
	"time"

	"github.com/greenfelt/pokerengine/pkg/statemachine"
)

// SeatStateFn is a seat state function, following the Rob Pike "state
// functions are the states" pattern.
type SeatStateFn = statemachine.StateFn[Seat]

// Seat is the per-table seat entity. ID and TableID are opaque identifiers,
// never an owning pointer across the Hand/Seat boundary; relationships are
// resolved by indexed lookup instead.
type Seat struct {
	ID       string
	TableID  string
	PlayerID string

	SeatNumber int
	BuyIn      int64
	CurrentBet int64
	Cards      []string // ordered card codes, 0-2 while hole cards are held
	LastAction string

	joinedAt time.Time

	status       string // authoritative status, kept in sync by stateMachine's StateEntered callback
	stateMachine *statemachine.StateMachine[Seat]
}

// NewSeat creates a seat in the active state with the given buy-in.
func NewSeat(id, tableID, playerID string, seatNumber int, buyIn int64) *Seat {
	s := &Seat{
		ID:         id,
		TableID:    tableID,
		PlayerID:   playerID,
		SeatNumber: seatNumber,
		BuyIn:      buyIn,
		Cards:      make([]string, 0, 2),
		joinedAt:   time.Now(),
		status:     StatusActive,
	}
	s.stateMachine = statemachine.NewStateMachine(s, seatStateActive)
	return s
}

// Seat state functions. Each one is idempotent: calling SetStatus with the
// state the seat is already in re-enters cleanly.

func seatStateActive(entity *Seat, callback func(string, statemachine.StateEvent)) SeatStateFn {
	if callback != nil {
		callback("active", statemachine.StateEntered)
	}
	return seatStateActive
}

func seatStateFolded(entity *Seat, callback func(string, statemachine.StateEvent)) SeatStateFn {
	if callback != nil {
		callback("folded", statemachine.StateEntered)
	}
	return seatStateFolded
}

func seatStateAllIn(entity *Seat, callback func(string, statemachine.StateEvent)) SeatStateFn {
	if callback != nil {
		callback("all-in", statemachine.StateEntered)
	}
	return seatStateAllIn
}

func seatStateEliminated(entity *Seat, callback func(string, statemachine.StateEvent)) SeatStateFn {
	entity.BuyIn = 0
	entity.Cards = nil
	if callback != nil {
		callback("eliminated", statemachine.StateEntered)
	}
	return seatStateEliminated
}

// Status names a seat can hold.
const (
	StatusActive     = "active"
	StatusFolded     = "folded"
	StatusAllIn      = "all-in"
	StatusEliminated = "eliminated"
)

func (s *Seat) ensureStateMachine() {
	if s.stateMachine == nil {
		panic(fmt.Sprintf("seat %s: state machine not initialized", s.ID))
	}
}

// SetStatus transitions the seat to the named status. The state function's
// StateEntered callback is what actually updates s.status; SetStatus only
// picks which state function to dispatch into.
func (s *Seat) SetStatus(status string) {
	s.ensureStateMachine()
	var fn SeatStateFn
	switch status {
	case StatusActive:
		fn = seatStateActive
	case StatusFolded:
		fn = seatStateFolded
	case StatusAllIn:
		fn = seatStateAllIn
	case StatusEliminated:
		fn = seatStateEliminated
	default:
		return
	}
	s.stateMachine.SetState(fn, func(stateName string, event statemachine.StateEvent) {
		if event == statemachine.StateEntered {
			s.status = stateName
		}
	})
}

// Status returns the seat's current status string.
func (s *Seat) Status() string {
	if s.stateMachine == nil {
		return StatusActive
	}
	return s.status
}

// IsFolded reports whether the seat has folded this hand.
func (s *Seat) IsFolded() bool { return s.Status() == StatusFolded }

// IsEliminated reports whether the seat is out of chips and out of hands.
func (s *Seat) IsEliminated() bool { return s.Status() == StatusEliminated }

// CanAct reports whether the seat can currently take a betting action:
// holding cards, not folded, not all-in, not eliminated.
func (s *Seat) CanAct() bool { return s.Status() == StatusActive }

// InHand reports whether the seat is still a contender for the pot: active
// or all-in, but not folded and not eliminated. An all-in seat is still
// dealt cards and still eligible for the pot even though it cannot act
// further; CanAct, not InHand, gates whose turn it is.
func (s *Seat) InHand() bool {
	switch s.Status() {
	case StatusActive, StatusAllIn:
		return true
	default:
		return false
	}
}

// ResetForNewHand clears per-hand state while preserving table-level
// identity (seat number, buy-in carries over from last hand's payout).
func (s *Seat) ResetForNewHand() {
	s.Cards = make([]string, 0, 2)
	s.CurrentBet = 0
	s.LastAction = ""
	s.SetStatus(StatusActive)
}

// PostChips moves up to `amount` chips from BuyIn into CurrentBet, capping
// at the seat's remaining stack and returning the amount actually posted
// plus whether the seat went all-in doing so. Used for blinds, calls, and
// raises alike.
func (s *Seat) PostChips(amount int64) (posted int64, wentAllIn bool) {
	if amount <= 0 {
		return 0, false
	}
	if amount >= s.BuyIn {
		posted = s.BuyIn
		s.CurrentBet += posted
		s.BuyIn = 0
		s.SetStatus(StatusAllIn)
		return posted, true
	}
	s.BuyIn -= amount
	s.CurrentBet += amount
	return amount, false
}
