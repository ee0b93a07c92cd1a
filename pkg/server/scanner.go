package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/decred/slog"
	"golang.org/x/sync/semaphore"

	"github.com/greenfelt/pokerengine/pkg/poker"
)

// Scan is one {serial, barcode, ts} message off the scan queue.
type Scan struct {
	Serial  string
	Barcode string
	TsSec   int64
}

// Intake is the Scan Intake: a bounded worker pool that drains a per-table
// FIFO queue of scans, decodes each barcode, and submits it to the Router
// as a DEAL_CARD command. A fixed number of permits is shared across every
// table, acquired before a decode and released after, while a dedicated
// goroutine per table preserves FIFO ordering within that table.
type Intake struct {
	router *Router
	log    slog.Logger
	sem    *semaphore.Weighted

	devicesMu sync.RWMutex
	devices   map[string]string // serial -> bound tableID

	queuesMu sync.Mutex
	queues   map[string]chan Scan

	seenMu sync.Mutex
	seen   map[string]map[string]struct{} // tableID -> dedup key -> presence
}

// NewIntake builds an Intake with workers decode permits shared across
// every table's queue.
func NewIntake(router *Router, log slog.Logger, workers int64) *Intake {
	if workers < 1 {
		workers = 1
	}
	return &Intake{
		router:  router,
		log:     log,
		sem:     semaphore.NewWeighted(workers),
		devices: make(map[string]string),
		queues:  make(map[string]chan Scan),
		seen:    make(map[string]map[string]struct{}),
	}
}

// OnEvents is a Mutator.Subscribe callback: HAND_STARTED clears tableID's
// dedup window, since the dedup key only needs to survive at-least-once
// redelivery within the scanner daemon's throttle window, not across
// hands.
func (in *Intake) OnEvents(tableID string, events []poker.Event) {
	for _, ev := range events {
		if ev.Kind == poker.EventHandStarted {
			in.seenMu.Lock()
			delete(in.seen, tableID)
			in.seenMu.Unlock()
			return
		}
	}
}

// BindDevice registers serial as a scanner bound to tableID. A scan is only
// accepted from a serial with an existing table binding.
func (in *Intake) BindDevice(serial, tableID string) {
	in.devicesMu.Lock()
	defer in.devicesMu.Unlock()
	in.devices[serial] = tableID
}

// Submit enqueues scan for processing and returns once it is queued, not
// once it is applied; the queue is the engine's only asynchronous boundary.
// Duplicate deliveries within the same dedup key are dropped here rather
// than left to reach DealCard, though CardAlreadyDealt makes that safe too.
func (in *Intake) Submit(ctx context.Context, scan Scan) error {
	in.devicesMu.RLock()
	tableID, bound := in.devices[scan.Serial]
	in.devicesMu.RUnlock()
	if !bound {
		return poker.ValidationError("UnknownDevice", "no table bound to scanner serial %q", scan.Serial)
	}

	key := fmt.Sprintf("%s|%d", scan.Barcode, scan.TsSec)
	in.seenMu.Lock()
	table, ok := in.seen[tableID]
	if !ok {
		table = make(map[string]struct{})
		in.seen[tableID] = table
	}
	_, dup := table[key]
	if !dup {
		table[key] = struct{}{}
	}
	in.seenMu.Unlock()
	if dup {
		in.log.Debugf("scanner: dropping duplicate scan table=%s key=%s", tableID, key)
		return nil
	}

	queue := in.queueFor(tableID)
	select {
	case queue <- scan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (in *Intake) queueFor(tableID string) chan Scan {
	in.queuesMu.Lock()
	defer in.queuesMu.Unlock()
	if q, ok := in.queues[tableID]; ok {
		return q
	}
	q := make(chan Scan, 64)
	in.queues[tableID] = q
	go in.drain(tableID, q)
	return q
}

// drain applies tableID's scans one at a time, in arrival order, for the
// life of the Intake. The single goroutine per table is what guarantees
// FIFO order; sem only bounds how many tables may be mid-decode at once.
func (in *Intake) drain(tableID string, queue chan Scan) {
	ctx := context.Background()
	for scan := range queue {
		if err := in.sem.Acquire(ctx, 1); err != nil {
			continue
		}
		if err := in.process(ctx, tableID, scan); err != nil {
			in.log.Warnf("scanner: table %s barcode %s: %v", tableID, scan.Barcode, err)
		}
		in.sem.Release(1)
	}
}

func (in *Intake) process(ctx context.Context, tableID string, scan Scan) error {
	card, err := poker.DecodeBarcode(scan.Barcode)
	if err != nil {
		return err
	}
	_, err = in.router.Dispatch(ctx, Command{
		Kind:      CmdDealCard,
		TableID:   tableID,
		ActorRole: RoleScanner,
		Card:      card,
	})
	if e, ok := poker.As(err); ok && e.Kind == "CardAlreadyDealt" {
		return nil
	}
	return err
}
