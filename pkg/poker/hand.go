package poker

import "time"

// State is the hand's enum-valued state.
type State string

const (
	StateDealHoleCards State = "DEAL_HOLE_CARDS"
	StateBetting       State = "BETTING"
	StateDealFlop      State = "DEAL_FLOP"
	StateDealTurn      State = "DEAL_TURN"
	StateDealRiver     State = "DEAL_RIVER"
	StateShowdown      State = "SHOWDOWN"
	StateResetTable    State = "RESET_TABLE"
)

// Status is the hand lifecycle status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActiveH   Status = "active"
	StatusCompleted Status = "completed"
)

// ActionKind is a player action submitted during BETTING.
type ActionKind string

const (
	ActionFold  ActionKind = "FOLD"
	ActionCheck ActionKind = "CHECK" // check-or-call
	ActionRaise ActionKind = "RAISE"
)

// Hand is the per-hand aggregate: everything needed to drive one deal from
// blinds through showdown.
type Hand struct {
	ID                 string
	TableID            string
	Status             Status
	State              State
	DealerButtonSeatID string
	AssignedSeatID     string
	CommunityCards     []string
	PotTotal           int64
	BetCount           int
	RequiredBetCount   int
	LastRaiseIncrement int64
	TurnStartedAt      time.Time

	// SmallBlind/BigBlind are fixed for the table and carried on the hand
	// so that every round-initialization step has them at hand.
	SmallBlind int64
	BigBlind   int64

	// Contributions is each seat's cumulative chip contribution across the
	// whole hand (every street), the input the pot layering needs for its
	// carry-over rule. CurrentBet on the seat itself only ever holds the
	// current street's contribution.
	Contributions map[string]int64

	registry *DeckRegistry
}

// NewHand bootstraps a hand for START_GAME/RESET_TABLE: creates
// DEAL_HOLE_CARDS state, posts blinds, and sets the assigned seat to the
// small blind (first hole-card recipient). seats must already be reset for
// a new hand (cards cleared, currentBet zero, status active) except for
// elimination, which persists.
func NewHand(id, tableID string, seats *SeatRing, buttonSeatID string, smallBlind, bigBlind int64) (*Hand, []Event, error) {
	sb, bb, _, err := seats.BlindPositions(buttonSeatID)
	if err != nil {
		return nil, nil, err
	}

	h := &Hand{
		ID:                 id,
		TableID:            tableID,
		Status:             StatusActiveH,
		State:              StateDealHoleCards,
		DealerButtonSeatID: buttonSeatID,
		AssignedSeatID:     sb.ID,
		CommunityCards:     nil,
		SmallBlind:         smallBlind,
		BigBlind:           bigBlind,
		Contributions:      make(map[string]int64),
		registry:           NewDeckRegistry(),
	}

	var events []Event
	events = append(events, Event{
		Kind: EventHandStarted,
		Payload: HandStartedPayload{
			DealerButtonSeatID: buttonSeatID,
			SmallBlindSeatID:   sb.ID,
			BigBlindSeatID:     bb.ID,
		},
	})

	// Blinds land on the seats' CurrentBet, same as any other preflop
	// action; closeBettingRound folds CurrentBet into Contributions once the
	// round ends, so they must not be added to Contributions here too.
	sbPosted, _ := sb.PostChips(smallBlind)
	events = append(events, Event{Kind: EventBetPosted, Payload: BetPostedPayload{SeatID: sb.ID, Kind: "SB", Amount: sbPosted}})

	bbPosted, _ := bb.PostChips(bigBlind)
	events = append(events, Event{Kind: EventBetPosted, Payload: BetPostedPayload{SeatID: bb.ID, Kind: "BB", Amount: bbPosted}})

	h.RequiredBetCount = 0
	h.TurnStartedAt = time.Now()

	return h, events, nil
}

// RestoreRegistry rebuilds the deck registry from persisted state (every
// seat's cards plus the community cards) after a hand is reloaded from
// storage. Callers must invoke this once after loading a Hand before
// calling DealCard.
func (h *Hand) RestoreRegistry(seats []*Seat) {
	all := [][]string{h.CommunityCards}
	for _, s := range seats {
		all = append(all, s.Cards)
	}
	h.registry = NewDeckRegistry(all...)
}

func (h *Hand) ensureRegistry() *DeckRegistry {
	if h.registry == nil {
		h.registry = NewDeckRegistry()
	}
	return h.registry
}

// DealCard applies a DEAL_CARD command, valid in any DEAL_* state. It
// returns the events produced; whether the deal completed a street and
// opened a betting round is visible to the caller through h.State.
func (h *Hand) DealCard(seats *SeatRing, code string) ([]Event, error) {
	switch h.State {
	case StateDealHoleCards:
		return h.dealHoleCard(seats, code)
	case StateDealFlop, StateDealTurn, StateDealRiver:
		return h.dealCommunityCard(seats, code)
	default:
		return nil, preconditionErr("WrongState", "DEAL_CARD invalid in state %s", h.State)
	}
}

func (h *Hand) dealHoleCard(seats *SeatRing, code string) ([]Event, error) {
	if err := h.ensureRegistry().Deal(code); err != nil {
		return nil, err
	}

	target := h.AssignedSeatID
	var targetSeat *Seat
	for _, s := range seats.Seats() {
		if s.ID == target {
			targetSeat = s
			break
		}
	}
	if targetSeat == nil {
		return nil, fatalErr("assigned seat %s not found", target)
	}
	targetSeat.Cards = append(targetSeat.Cards, code)

	events := []Event{{Kind: EventCardDealt, Payload: CardDealtPayload{Target: target, Card: code}}}

	// Round-robin one card at a time until every in-hand seat has two.
	for _, s := range seats.InHandSeats() {
		if len(s.Cards) < 2 {
			next, _ := seats.NextActive(h.AssignedSeatID)
			h.AssignedSeatID = next.ID
			return events, nil
		}
	}

	// Every seat has its two hole cards: open the preflop betting round.
	if err := InitPreflopRound(h, seats); err != nil {
		return nil, err
	}
	h.State = StateBetting
	return events, nil
}

func (h *Hand) dealCommunityCard(seats *SeatRing, code string) ([]Event, error) {
	if err := h.ensureRegistry().Deal(code); err != nil {
		return nil, err
	}
	h.CommunityCards = append(h.CommunityCards, code)
	events := []Event{{Kind: EventCardDealt, Payload: CardDealtPayload{Target: "community", Card: code}}}

	complete := false
	switch h.State {
	case StateDealFlop:
		complete = len(h.CommunityCards) == 3
	case StateDealTurn:
		complete = len(h.CommunityCards) == 4
	case StateDealRiver:
		complete = len(h.CommunityCards) == 5
	}
	if !complete {
		return events, nil
	}

	// Runout: an all-in confrontation leaves nobody who can act, so the
	// remaining streets are dealt straight through without ever opening a
	// betting round, until the fifth community card triggers showdown.
	if len(seats.ActiveSeats()) < 2 && len(seats.InHandSeats()) > 1 {
		if len(h.CommunityCards) == 5 {
			h.State = StateShowdown
			showdownEvents, err := ResolveShowdown(h, seats)
			if err != nil {
				return nil, err
			}
			return append(events, showdownEvents...), nil
		}
		h.State = h.nextStreetAfterBetting()
		return events, nil
	}

	if err := InitPostflopRound(h, seats); err != nil {
		return nil, err
	}
	h.State = StateBetting
	return events, nil
}

// nextStreetAfterBetting decides the next state once a betting round
// closes, purely from how many community cards are already down. The
// runout rule (remaining streets dealt automatically once fewer than two
// seats can still act) is enforced by the callers, not here.
func (h *Hand) nextStreetAfterBetting() State {
	switch len(h.CommunityCards) {
	case 0:
		return StateDealFlop
	case 3:
		return StateDealTurn
	case 4:
		return StateDealRiver
	default:
		return StateShowdown
	}
}

// Action applies a player action (FOLD/CHECK/RAISE) during BETTING,
// delegating to the betting round controller and handling round closure:
// merging bets into the pot, resetting round state, and transitioning to
// the next DEAL_* or SHOWDOWN state.
func (h *Hand) Action(seats *SeatRing, actorSeatID string, kind ActionKind, amount int64) ([]Event, error) {
	if h.State != StateBetting {
		return nil, preconditionErr("WrongState", "action invalid outside BETTING (state=%s)", h.State)
	}
	if h.AssignedSeatID != actorSeatID {
		return nil, preconditionErr("NotYourTurn", "seat %s acted out of turn", actorSeatID)
	}

	var actor *Seat
	for _, s := range seats.Seats() {
		if s.ID == actorSeatID {
			actor = s
			break
		}
	}
	if actor == nil {
		return nil, fatalErr("assigned seat %s not found", actorSeatID)
	}
	if !actor.CanAct() {
		return nil, preconditionErr("WrongState", "seat %s is not active", actorSeatID)
	}

	events, err := ApplyAction(h, seats, actor, kind, amount)
	if err != nil {
		return nil, err
	}

	if !RoundClosed(h, seats) {
		next, ok := seats.NextToAct(actorSeatID)
		if ok {
			h.AssignedSeatID = next.ID
		}
		return events, nil
	}

	closeEvents, err := h.closeBettingRound(seats)
	if err != nil {
		return nil, err
	}
	return append(events, closeEvents...), nil
}

// closeBettingRound merges currentBet into cumulative contributions, asks
// the Pot Engine to recompute layers, resets per-round counters, and picks
// the next state.
func (h *Hand) closeBettingRound(seats *SeatRing) ([]Event, error) {
	for _, s := range seats.Seats() {
		h.Contributions[s.ID] += s.CurrentBet
		s.CurrentBet = 0
	}

	pots := h.computePots(seats)
	h.PotTotal = TotalPotAmount(pots)

	inHand := seats.InHandSeats()
	singleActive := len(inHand) <= 1

	street := streetName(h.State, len(h.CommunityCards))
	events := []Event{{
		Kind: EventStreetClosed,
		Payload: StreetClosedPayload{
			Street:   street,
			PotTotal: h.PotTotal,
			SidePots: pots,
		},
	}}

	h.BetCount = 0
	h.RequiredBetCount = 0
	h.LastRaiseIncrement = 0

	if singleActive || len(h.CommunityCards) == 5 {
		h.State = StateShowdown
		showdownEvents, err := ResolveShowdown(h, seats)
		if err != nil {
			return nil, err
		}
		return append(events, showdownEvents...), nil
	}

	h.State = h.nextStreetAfterBetting()

	// Runout: if fewer than two seats can still act, the next DEAL_CARD
	// calls deal straight through to showdown without reopening betting
	// (handled in dealCommunityCard once the street completes).
	if len(seats.ActiveSeats()) < 2 {
		h.RequiredBetCount = 0
		h.BetCount = 0
		return events, nil
	}
	if first, ok := seats.PostflopFirstActor(h.DealerButtonSeatID); ok {
		h.AssignedSeatID = first.ID
	}

	return events, nil
}

func streetName(closingState State, communityLen int) string {
	switch communityLen {
	case 0:
		return "PREFLOP"
	case 3:
		return "FLOP"
	case 4:
		return "TURN"
	default:
		return "RIVER"
	}
}

func (h *Hand) computePots(seats *SeatRing) []SidePot {
	contribs := make([]Contribution, 0, len(seats.Seats()))
	for _, s := range seats.Seats() {
		amount := h.Contributions[s.ID]
		if amount == 0 {
			continue
		}
		contribs = append(contribs, Contribution{
			SeatID:   s.ID,
			Amount:   amount,
			Eligible: !s.IsFolded(),
		})
	}
	return ComputePots(contribs)
}
