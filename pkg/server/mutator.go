// Package server is the Table Mutator, Command Router and Scan Intake
// built on top of the pure pkg/poker engine: a per-table map+mutex, event
// dispatch to subscribers, and sqlite persistence. The websocket broadcast
// adapter lives in internal/eventbridge.
package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/greenfelt/pokerengine/pkg/poker"
	"github.com/greenfelt/pokerengine/pkg/server/internal/store"
)

const maxConflictRetries = 5

// Mutator is the Table Mutator: it serializes every command against a
// single table behind an in-process mutex per table id, wraps
// each command in a BEGIN IMMEDIATE transaction, and retries a bounded
// number of times on storage-level lock contention before surfacing Busy.
type Mutator struct {
	store *store.Store
	log   slog.Logger

	mu     sync.Mutex
	tables map[string]*sync.Mutex

	subscribers   map[string][]func([]poker.Event)
	subscribersMu sync.RWMutex
}

// NewMutator wires a Mutator to its store and logger.
func NewMutator(st *store.Store, log slog.Logger) *Mutator {
	return &Mutator{
		store:       st,
		log:         log,
		tables:      make(map[string]*sync.Mutex),
		subscribers: make(map[string][]func([]poker.Event)),
	}
}

func (m *Mutator) lockFor(tableID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.tables[tableID]
	if !ok {
		l = &sync.Mutex{}
		m.tables[tableID] = l
	}
	return l
}

// Subscribe registers a callback invoked, in commit order, with every
// batch of events a command against tableID produces. Used by
// internal/eventbridge to fan events out to websocket clients.
func (m *Mutator) Subscribe(tableID string, fn func([]poker.Event)) {
	m.subscribersMu.Lock()
	defer m.subscribersMu.Unlock()
	m.subscribers[tableID] = append(m.subscribers[tableID], fn)
}

func (m *Mutator) publish(tableID string, events []poker.Event) {
	if len(events) == 0 {
		return
	}
	m.subscribersMu.RLock()
	subs := append([]func([]poker.Event){}, m.subscribers[tableID]...)
	m.subscribersMu.RUnlock()
	for _, fn := range subs {
		fn(events)
	}
}

// tableState is everything a command needs loaded from storage before it
// can run: the table row, its seats, and its most recent hand (nil only
// before the table's first hand is ever started). A completed hand stays
// here, and in storage, until the next START_GAME/RESET_TABLE replaces it.
type tableState struct {
	table *poker.Table
	seats []*poker.Seat
	hand  *poker.Hand

	removedSeatIDs []string
	replacedHandID string // previous hand's id, set when a new hand supersedes it
}

// mutation is one command's pure logic: given the loaded state, apply the
// command and return the events produced. It may mutate table/seats/hand
// in place; the Mutator persists whatever it finds afterward.
type mutation func(st *tableState) ([]poker.Event, error)

// Execute loads a table's state, runs fn against it inside a transaction,
// persists the result and commits, then publishes the produced events, all
// serialized per table id so only one command ever touches a table at a
// time. A storage lock-busy condition is retried up to maxConflictRetries
// times with a short backoff before surfacing as a ConflictError.
func (m *Mutator) Execute(ctx context.Context, tableID string, fn mutation) ([]poker.Event, error) {
	lock := m.lockFor(tableID)
	lock.Lock()
	defer lock.Unlock()

	var events []poker.Event
	var attempt int
	for {
		attempt++
		err := m.store.WithImmediate(ctx, func(tx *store.Tx) error {
			st, err := m.load(ctx, tx, tableID)
			if err != nil {
				return err
			}

			events, err = fn(st)
			if err != nil {
				return err
			}

			return m.persist(ctx, tx, st)
		})
		if err == nil {
			break
		}
		if !isConflict(err) {
			return nil, err
		}
		if attempt >= maxConflictRetries {
			return nil, poker.ConflictError("table %s still busy after %d attempts: %v", tableID, attempt, err)
		}
		time.Sleep(time.Duration(attempt) * 5 * time.Millisecond)
	}

	m.publish(tableID, events)
	return events, nil
}

// CreateTable bootstraps a new table row. Table creation sits outside the
// command authority matrix (a table is provisioned by whatever operator
// surface runs in front of this engine, not by a player- or
// dealer-issued command), so it writes directly rather than going through
// Execute.
func (m *Mutator) CreateTable(ctx context.Context, tbl *poker.Table) error {
	return m.store.WithImmediate(ctx, func(tx *store.Tx) error {
		return tx.SaveTable(ctx, tbl)
	})
}

func (m *Mutator) load(ctx context.Context, tx *store.Tx, tableID string) (*tableState, error) {
	table, err := tx.LoadTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	seats, err := tx.LoadSeats(ctx, tableID)
	if err != nil {
		return nil, err
	}
	hand, err := tx.LoadHand(ctx, tableID)
	if err == store.ErrNoRows {
		hand = nil
	} else if err != nil {
		return nil, err
	}
	if hand != nil {
		hand.RestoreRegistry(seats)
	}
	return &tableState{table: table, seats: seats, hand: hand}, nil
}

func (m *Mutator) persist(ctx context.Context, tx *store.Tx, st *tableState) error {
	if err := tx.SaveTable(ctx, st.table); err != nil {
		return err
	}
	for _, seatID := range st.removedSeatIDs {
		if err := tx.DeleteSeat(ctx, seatID); err != nil {
			return err
		}
	}
	for _, s := range st.seats {
		if err := tx.SaveSeat(ctx, s); err != nil {
			return err
		}
	}
	if st.replacedHandID != "" {
		if err := tx.DeleteHand(ctx, st.replacedHandID); err != nil {
			return err
		}
	}
	if st.hand == nil {
		return nil
	}
	return tx.SaveHand(ctx, st.hand)
}

// isConflict reports whether err is worth retrying: either the engine
// itself classified it as a ConflictError, or the sqlite driver reports the
// table's row is locked by another writer (should not normally happen
// under the in-process per-table mutex, but a second process sharing the
// same database file can still race here).
func isConflict(err error) bool {
	if e, ok := poker.As(err); ok {
		return e.Class == poker.ClassConflict
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// NewID generates an opaque entity id.
func NewID() string {
	return uuid.NewString()
}
