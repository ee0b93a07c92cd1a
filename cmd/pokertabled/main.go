// Command pokertabled runs one table engine instance behind a minimal HTTP
// command-intake surface: POST /commands for dealer/player/scanner
// commands, POST /scans for the barcode scan queue, GET /tables/{id}/state
// for a redacted snapshot, and GET /tables/{id}/events for the websocket
// event feed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/greenfelt/pokerengine/internal/logging"
	"github.com/greenfelt/pokerengine/pkg/poker"
	"github.com/greenfelt/pokerengine/pkg/server"
	"github.com/greenfelt/pokerengine/pkg/server/internal/eventbridge"
	"github.com/greenfelt/pokerengine/pkg/server/internal/store"
)

func main() {
	var (
		dbPath        string
		host          string
		port          int
		debugLevel    string
		scanWorkers   int64
		tableID       string
		smallBlind    int64
		bigBlind      int64
		minPlayers    int
		maxPlayers    int
		scannerSerial string
	)
	flag.StringVar(&dbPath, "db", "", "path to SQLite database file (created if missing)")
	flag.StringVar(&host, "host", "127.0.0.1", "host to listen on")
	flag.IntVar(&port, "port", 8080, "port to listen on")
	flag.StringVar(&debugLevel, "debuglevel", "info", "logging level: trace, debug, info, warn, error")
	flag.Int64Var(&scanWorkers, "scanworkers", 4, "concurrent scan-decode permits shared across tables")
	flag.StringVar(&tableID, "tableid", "table-1", "id of the table bootstrapped at startup")
	flag.Int64Var(&smallBlind, "smallblind", 1, "small blind size")
	flag.Int64Var(&bigBlind, "bigblind", 2, "big blind size")
	flag.IntVar(&minPlayers, "minplayers", 2, "minimum seats to start a hand")
	flag.IntVar(&maxPlayers, "maxplayers", 9, "maximum seats at the table")
	flag.StringVar(&scannerSerial, "scannerserial", "scanner-1", "device serial bound to the bootstrapped table")
	flag.Parse()

	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "pokertabled.sqlite")
	}

	backend, err := logging.NewBackend(logging.Config{DebugLevel: debugLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	log := backend.Logger("pokertabled")

	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	mutator := server.NewMutator(st, backend.Logger("mutator"))
	router := server.NewRouter(mutator)
	hub := eventbridge.NewHub(backend.Logger("eventbridge"))
	intake := server.NewIntake(router, backend.Logger("scanner"), scanWorkers)

	ctx := context.Background()
	tbl := poker.NewTable(tableID, smallBlind, bigBlind, minPlayers, maxPlayers)
	if err := mutator.CreateTable(ctx, tbl); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create table %s: %v\n", tableID, err)
		os.Exit(1)
	}
	mutator.Subscribe(tableID, func(events []poker.Event) { hub.OnEvents(tableID, events) })
	mutator.Subscribe(tableID, func(events []poker.Event) { intake.OnEvents(tableID, events) })
	intake.BindDevice(scannerSerial, tableID)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /commands", commandHandler(router))
	mux.HandleFunc("POST /scans", scanHandler(intake))
	mux.HandleFunc("GET /tables/{id}/state", stateHandler(mutator))
	mux.HandleFunc("GET /tables/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeTable(r.PathValue("id"), w, r)
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Infof("listening on %s (table %s bootstrapped)", addr, tableID)
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "http serve error: %v\n", err)
		os.Exit(1)
	}
}

func commandHandler(router *server.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd server.Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			writeErr(w, poker.ValidationError("InvalidInput", "malformed command body: %v", err))
			return
		}
		events, err := router.Dispatch(r.Context(), cmd)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func scanHandler(intake *server.Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var scan server.Scan
		if err := json.NewDecoder(r.Body).Decode(&scan); err != nil {
			writeErr(w, poker.ValidationError("InvalidInput", "malformed scan body: %v", err))
			return
		}
		if err := intake.Submit(r.Context(), scan); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func stateHandler(mutator *server.Mutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := r.PathValue("id")
		viewerSeatID := r.URL.Query().Get("seat")
		snap, err := mutator.Snapshot(r.Context(), tableID, viewerSeatID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "Internal"
	if e, ok := poker.As(err); ok {
		kind = e.Kind
		status = httpStatus(e)
	}
	writeJSON(w, status, map[string]string{"error": kind, "message": err.Error()})
}

func httpStatus(e *poker.Error) int {
	switch e.Class {
	case poker.ClassValidation:
		return http.StatusBadRequest
	case poker.ClassForbidden:
		return http.StatusForbidden
	case poker.ClassPrecondition:
		return http.StatusConflict
	case poker.ClassConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
