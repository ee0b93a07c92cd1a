// Package store is the SQLite persistence layer for Table/Seat/Hand row
// families, one table per aggregate rather than a single denormalized row.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/greenfelt/pokerengine/pkg/poker"
)

// Store wraps a SQLite connection pool and owns schema creation.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// The engine is single-writer-per-table by design, but sqlite itself
	// still only allows one writer connection at a time.
	db.SetMaxOpenConns(1)
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			small_blind INTEGER NOT NULL,
			big_blind INTEGER NOT NULL,
			min_players INTEGER NOT NULL,
			max_players INTEGER NOT NULL,
			dealer_button_seat_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS seats (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			seat_number INTEGER NOT NULL,
			buy_in INTEGER NOT NULL,
			current_bet INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			cards TEXT NOT NULL DEFAULT '[]',
			last_action TEXT NOT NULL DEFAULT '',
			joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_seats_table ON seats(table_id)`,
		`CREATE TABLE IF NOT EXISTS hands (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			status TEXT NOT NULL,
			state TEXT NOT NULL,
			dealer_button_seat_id TEXT NOT NULL,
			assigned_seat_id TEXT NOT NULL DEFAULT '',
			community_cards TEXT NOT NULL DEFAULT '[]',
			pot_total INTEGER NOT NULL DEFAULT 0,
			bet_count INTEGER NOT NULL DEFAULT 0,
			required_bet_count INTEGER NOT NULL DEFAULT 0,
			last_raise_increment INTEGER NOT NULL DEFAULT 0,
			small_blind INTEGER NOT NULL,
			big_blind INTEGER NOT NULL,
			contributions TEXT NOT NULL DEFAULT '{}',
			turn_started_at TIMESTAMP,
			FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hands_table ON hands(table_id)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a single BEGIN IMMEDIATE transaction, giving the caller the write
// lock for the duration of one table command: the single-writer invariant
// enforced at the storage layer in addition to the in-process per-table
// mutex the mutator holds. database/sql's Tx type always issues a plain
// BEGIN, so Tx is built on a checked-out *sql.Conn instead, with BEGIN
// IMMEDIATE / COMMIT / ROLLBACK issued explicitly.
type Tx struct {
	conn *sql.Conn
}

// WithImmediate runs fn inside a BEGIN IMMEDIATE transaction: commits on a
// nil return, rolls back otherwise. A table already locked by a concurrent
// writer surfaces here as a "database is locked" error, which the mutator
// classifies as a ConflictError for its bounded retry loop.
func (s *Store) WithImmediate(ctx context.Context, fn func(*Tx) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return err
	}
	if err := fn(&Tx{conn: conn}); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	return nil
}

// View runs fn on a pooled connection outside any transaction, for
// snapshot queries that don't need the BEGIN IMMEDIATE write lock.
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(&Tx{conn: conn})
}

// LoadTable reads a table row. Returns sql.ErrNoRows if absent.
func (t *Tx) LoadTable(ctx context.Context, tableID string) (*poker.Table, error) {
	row := t.conn.QueryRowContext(ctx, `
		SELECT id, small_blind, big_blind, min_players, max_players, dealer_button_seat_id
		FROM tables WHERE id = ?`, tableID)
	var tbl poker.Table
	if err := row.Scan(&tbl.ID, &tbl.SmallBlind, &tbl.BigBlind, &tbl.MinPlayers, &tbl.MaxPlayers, &tbl.DealerButtonSeatID); err != nil {
		return nil, err
	}
	return &tbl, nil
}

// SaveTable upserts a table row.
func (t *Tx) SaveTable(ctx context.Context, tbl *poker.Table) error {
	_, err := t.conn.ExecContext(ctx, `
		INSERT INTO tables (id, small_blind, big_blind, min_players, max_players, dealer_button_seat_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET dealer_button_seat_id = excluded.dealer_button_seat_id`,
		tbl.ID, tbl.SmallBlind, tbl.BigBlind, tbl.MinPlayers, tbl.MaxPlayers, tbl.DealerButtonSeatID)
	return err
}

// LoadSeats reads every seat at a table, in seat-number order.
func (t *Tx) LoadSeats(ctx context.Context, tableID string) ([]*poker.Seat, error) {
	rows, err := t.conn.QueryContext(ctx, `
		SELECT id, player_id, seat_number, buy_in, current_bet, status, cards, last_action
		FROM seats WHERE table_id = ? ORDER BY seat_number`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*poker.Seat
	for rows.Next() {
		var (
			id, playerID, status, lastAction, cardsJSON string
			seatNumber                                  int
			buyIn, currentBet                           int64
		)
		if err := rows.Scan(&id, &playerID, &seatNumber, &buyIn, &currentBet, &status, &cardsJSON, &lastAction); err != nil {
			return nil, err
		}
		seat := poker.NewSeat(id, tableID, playerID, seatNumber, buyIn)
		seat.CurrentBet = currentBet
		seat.LastAction = lastAction
		var cards []string
		if err := json.Unmarshal([]byte(cardsJSON), &cards); err != nil {
			return nil, fmt.Errorf("store: decode seat %s cards: %w", id, err)
		}
		seat.Cards = cards
		seat.SetStatus(status)
		out = append(out, seat)
	}
	return out, rows.Err()
}

// SaveSeat upserts one seat row.
func (t *Tx) SaveSeat(ctx context.Context, seat *poker.Seat) error {
	cardsJSON, err := json.Marshal(seat.Cards)
	if err != nil {
		return err
	}
	_, err = t.conn.ExecContext(ctx, `
		INSERT INTO seats (id, table_id, player_id, seat_number, buy_in, current_bet, status, cards, last_action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			buy_in = excluded.buy_in,
			current_bet = excluded.current_bet,
			status = excluded.status,
			cards = excluded.cards,
			last_action = excluded.last_action`,
		seat.ID, seat.TableID, seat.PlayerID, seat.SeatNumber, seat.BuyIn, seat.CurrentBet,
		seat.Status(), string(cardsJSON), seat.LastAction)
	return err
}

// DeleteSeat removes a seat row (the LEAVE command).
func (t *Tx) DeleteSeat(ctx context.Context, seatID string) error {
	_, err := t.conn.ExecContext(ctx, `DELETE FROM seats WHERE id = ?`, seatID)
	return err
}

// LoadHand reads the table's (at most one) hand row: the hand in progress,
// or the last completed hand until the next one replaces it. Returns
// sql.ErrNoRows if the table has never started a hand.
func (t *Tx) LoadHand(ctx context.Context, tableID string) (*poker.Hand, error) {
	row := t.conn.QueryRowContext(ctx, `
		SELECT id, status, state, dealer_button_seat_id, assigned_seat_id, community_cards,
		       pot_total, bet_count, required_bet_count, last_raise_increment,
		       small_blind, big_blind, contributions
		FROM hands WHERE table_id = ?`, tableID)

	var (
		h                                poker.Hand
		communityJSON, contributionsJSON string
	)
	if err := row.Scan(&h.ID, &h.Status, &h.State, &h.DealerButtonSeatID, &h.AssignedSeatID, &communityJSON,
		&h.PotTotal, &h.BetCount, &h.RequiredBetCount, &h.LastRaiseIncrement,
		&h.SmallBlind, &h.BigBlind, &contributionsJSON); err != nil {
		return nil, err
	}
	h.TableID = tableID
	if err := json.Unmarshal([]byte(communityJSON), &h.CommunityCards); err != nil {
		return nil, fmt.Errorf("store: decode hand %s community cards: %w", h.ID, err)
	}
	if err := json.Unmarshal([]byte(contributionsJSON), &h.Contributions); err != nil {
		return nil, fmt.Errorf("store: decode hand %s contributions: %w", h.ID, err)
	}
	if h.Contributions == nil {
		h.Contributions = make(map[string]int64)
	}
	return &h, nil
}

// SaveHand upserts the single in-progress hand row for a table.
func (t *Tx) SaveHand(ctx context.Context, h *poker.Hand) error {
	communityJSON, err := json.Marshal(h.CommunityCards)
	if err != nil {
		return err
	}
	contributionsJSON, err := json.Marshal(h.Contributions)
	if err != nil {
		return err
	}
	_, err = t.conn.ExecContext(ctx, `
		INSERT INTO hands (id, table_id, status, state, dealer_button_seat_id, assigned_seat_id,
			community_cards, pot_total, bet_count, required_bet_count, last_raise_increment,
			small_blind, big_blind, contributions, turn_started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			state = excluded.state,
			assigned_seat_id = excluded.assigned_seat_id,
			community_cards = excluded.community_cards,
			pot_total = excluded.pot_total,
			bet_count = excluded.bet_count,
			required_bet_count = excluded.required_bet_count,
			last_raise_increment = excluded.last_raise_increment,
			contributions = excluded.contributions,
			turn_started_at = excluded.turn_started_at`,
		h.ID, h.TableID, h.Status, h.State, h.DealerButtonSeatID, h.AssignedSeatID,
		string(communityJSON), h.PotTotal, h.BetCount, h.RequiredBetCount, h.LastRaiseIncrement,
		h.SmallBlind, h.BigBlind, string(contributionsJSON), h.TurnStartedAt)
	return err
}

// DeleteHand removes one hand row by id. The mutator calls this for the
// previous hand once a new one supersedes it (START_GAME/RESET_TABLE), not
// when the hand completes: a completed hand's row stays in place, still
// readable at SHOWDOWN, until the next hand replaces it.
func (t *Tx) DeleteHand(ctx context.Context, handID string) error {
	_, err := t.conn.ExecContext(ctx, `DELETE FROM hands WHERE id = ?`, handID)
	return err
}

// ErrNoRows re-exports sql.ErrNoRows so callers outside this package don't
// need to import database/sql just to compare against it.
var ErrNoRows = sql.ErrNoRows
