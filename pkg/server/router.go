package server

import (
	"context"

	"github.com/greenfelt/pokerengine/pkg/poker"
)

// Role is who issued a command: the physical dealer, a seated player, or
// the barcode scanner daemon.
type Role string

const (
	RoleDealer  Role = "dealer"
	RolePlayer  Role = "player"
	RoleScanner Role = "scanner"
)

// CommandKind names one of the commands the engine accepts.
type CommandKind string

const (
	CmdStartGame  CommandKind = "START_GAME"
	CmdResetTable CommandKind = "RESET_TABLE"
	CmdDealCard   CommandKind = "DEAL_CARD"
	CmdRaise      CommandKind = "RAISE"
	CmdCheck      CommandKind = "CHECK"
	CmdFold       CommandKind = "FOLD"
	CmdJoin       CommandKind = "JOIN"
	CmdLeave      CommandKind = "LEAVE"
)

// Command is one authority-checked instruction submitted to a table.
type Command struct {
	Kind      CommandKind
	TableID   string
	ActorRole Role

	SeatID   string // the seat the command targets or acts on behalf of
	PlayerID string // required for JOIN and for player-issued FOLD/CHECK/RAISE
	BuyIn    int64  // required for JOIN
	Card     string // required for DEAL_CARD
	Amount   int64  // required for RAISE (the raise-to total)
}

// Router is the Command Router: it checks a command's actor role against
// the authority matrix before handing it to the Mutator.
type Router struct {
	mutator *Mutator
}

// NewRouter wires a Router to its Mutator.
func NewRouter(m *Mutator) *Router {
	return &Router{mutator: m}
}

// authority enforces which roles may issue which command kind. A dealer may
// also submit FOLD on behalf of the assigned seat, for a forced fold on
// timeout; every other action command must come from the player occupying
// the named seat.
func authority(cmd Command, st *tableState) error {
	switch cmd.Kind {
	case CmdStartGame, CmdResetTable:
		if cmd.ActorRole != RoleDealer {
			return forbiddenErrRole(cmd.ActorRole, cmd.Kind)
		}
	case CmdDealCard:
		if cmd.ActorRole != RoleDealer && cmd.ActorRole != RoleScanner {
			return forbiddenErrRole(cmd.ActorRole, cmd.Kind)
		}
	case CmdJoin:
		if cmd.ActorRole != RolePlayer && cmd.ActorRole != RoleDealer {
			return forbiddenErrRole(cmd.ActorRole, cmd.Kind)
		}
	case CmdLeave:
		if cmd.ActorRole != RolePlayer && cmd.ActorRole != RoleDealer {
			return forbiddenErrRole(cmd.ActorRole, cmd.Kind)
		}
	case CmdFold:
		if cmd.ActorRole == RolePlayer || cmd.ActorRole == RoleDealer {
			break
		}
		return forbiddenErrRole(cmd.ActorRole, cmd.Kind)
	case CmdCheck, CmdRaise:
		if cmd.ActorRole != RolePlayer {
			return forbiddenErrRole(cmd.ActorRole, cmd.Kind)
		}
	default:
		return validationErrUnknownCommand(cmd.Kind)
	}
	if cmd.ActorRole == RolePlayer && (cmd.Kind == CmdFold || cmd.Kind == CmdCheck || cmd.Kind == CmdRaise) {
		for _, s := range st.seats {
			if s.ID == cmd.SeatID && s.PlayerID == cmd.PlayerID {
				return nil
			}
		}
		return poker.ForbiddenError("player %q does not occupy seat %s", cmd.PlayerID, cmd.SeatID)
	}
	return nil
}

// Dispatch authority-checks and applies one command, returning the events
// it produced.
func (r *Router) Dispatch(ctx context.Context, cmd Command) ([]poker.Event, error) {
	return r.mutator.Execute(ctx, cmd.TableID, func(st *tableState) ([]poker.Event, error) {
		if err := authority(cmd, st); err != nil {
			return nil, err
		}

		switch cmd.Kind {
		case CmdStartGame, CmdResetTable:
			return r.startGame(st)
		case CmdJoin:
			return r.join(st, cmd)
		case CmdLeave:
			return r.leave(st, cmd)
		case CmdDealCard:
			return r.dealCard(st, cmd)
		case CmdFold:
			return r.action(st, cmd.SeatID, poker.ActionFold, 0)
		case CmdCheck:
			return r.action(st, cmd.SeatID, poker.ActionCheck, 0)
		case CmdRaise:
			return r.action(st, cmd.SeatID, poker.ActionRaise, cmd.Amount)
		default:
			return nil, validationErrUnknownCommand(cmd.Kind)
		}
	})
}

func (r *Router) startGame(st *tableState) ([]poker.Event, error) {
	if st.hand != nil && st.hand.Status != poker.StatusCompleted {
		return nil, preconditionErrHandInProgress()
	}
	hand, events, err := st.table.StartHand(NewID(), st.seats)
	if err != nil {
		return nil, err
	}
	if st.hand != nil {
		st.replacedHandID = st.hand.ID
	}
	st.hand = hand
	return events, nil
}

func (r *Router) join(st *tableState, cmd Command) ([]poker.Event, error) {
	seat, err := st.table.Join(NewID(), cmd.PlayerID, cmd.BuyIn, st.seats)
	if err != nil {
		return nil, err
	}
	st.seats = append(st.seats, seat)
	return nil, nil
}

func (r *Router) leave(st *tableState, cmd Command) ([]poker.Event, error) {
	var target *poker.Seat
	remaining := st.seats[:0]
	for _, s := range st.seats {
		if s.ID == cmd.SeatID {
			target = s
			continue
		}
		remaining = append(remaining, s)
	}
	if target == nil {
		return nil, seatNotFoundErr(cmd.SeatID)
	}
	handLive := st.hand != nil && st.hand.Status != poker.StatusCompleted
	if handLive {
		if err := st.table.Leave(target); err != nil {
			return nil, err
		}
	}
	st.seats = remaining
	st.removedSeatIDs = append(st.removedSeatIDs, target.ID)
	return nil, nil
}

func (r *Router) dealCard(st *tableState, cmd Command) ([]poker.Event, error) {
	if st.hand == nil {
		return nil, preconditionErrNoHand()
	}
	ring := poker.NewSeatRing(st.seats)
	return st.hand.DealCard(ring, cmd.Card)
}

func (r *Router) action(st *tableState, seatID string, kind poker.ActionKind, amount int64) ([]poker.Event, error) {
	if st.hand == nil {
		return nil, preconditionErrNoHand()
	}
	ring := poker.NewSeatRing(st.seats)
	return st.hand.Action(ring, seatID, kind, amount)
}
