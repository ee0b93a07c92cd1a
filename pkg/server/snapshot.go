package server

import (
	"context"

	"github.com/greenfelt/pokerengine/pkg/poker"
	"github.com/greenfelt/pokerengine/pkg/server/internal/store"
)

// SeatView is one seat's presentation-redacted view in a Snapshot.
type SeatView struct {
	SeatID     string
	PlayerID   string
	SeatNumber int
	BuyIn      int64
	CurrentBet int64
	Status     string
	Cards      []string // redacted to poker.FaceDown unless visible to viewer
}

// Snapshot is the read model a client polls or receives after an event:
// table stakes, every seat's redacted view, and the table's current hand
// (in progress or most recently completed) if any.
type Snapshot struct {
	TableID            string
	SmallBlind         int64
	BigBlind           int64
	DealerButtonSeatID string
	Seats              []SeatView

	HandID         string
	HandStatus     string
	HandState      string
	AssignedSeatID string
	CommunityCards []string
	PotTotal       int64
}

// Snapshot builds the redacted read model for tableID as seen by
// viewerSeatID (empty for a spectator). Every seat's hole cards are
// replaced with poker.FaceDown sentinels unless the viewer owns the seat or
// the hand has reached SHOWDOWN.
func (m *Mutator) Snapshot(ctx context.Context, tableID, viewerSeatID string) (*Snapshot, error) {
	var snap Snapshot
	err := m.store.View(ctx, func(tx *store.Tx) error {
		tbl, err := tx.LoadTable(ctx, tableID)
		if err != nil {
			return err
		}
		seats, err := tx.LoadSeats(ctx, tableID)
		if err != nil {
			return err
		}
		hand, err := tx.LoadHand(ctx, tableID)
		if err == store.ErrNoRows {
			hand = nil
		} else if err != nil {
			return err
		}

		snap.TableID = tbl.ID
		snap.SmallBlind = tbl.SmallBlind
		snap.BigBlind = tbl.BigBlind
		snap.DealerButtonSeatID = tbl.DealerButtonSeatID

		showdownVisible := hand != nil && hand.State == poker.StateShowdown
		for _, s := range seats {
			view := SeatView{
				SeatID:     s.ID,
				PlayerID:   s.PlayerID,
				SeatNumber: s.SeatNumber,
				BuyIn:      s.BuyIn,
				CurrentBet: s.CurrentBet,
				Status:     s.Status(),
			}
			if s.ID == viewerSeatID || showdownVisible {
				view.Cards = s.Cards
			} else {
				view.Cards = redactCards(s.Cards)
			}
			snap.Seats = append(snap.Seats, view)
		}

		if hand != nil {
			snap.HandID = hand.ID
			snap.HandStatus = string(hand.Status)
			snap.HandState = string(hand.State)
			snap.AssignedSeatID = hand.AssignedSeatID
			snap.CommunityCards = hand.CommunityCards
			snap.PotTotal = hand.PotTotal
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func redactCards(cards []string) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i := range cards {
		out[i] = poker.FaceDown
	}
	return out
}
