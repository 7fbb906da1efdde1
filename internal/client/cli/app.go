// Package cli is the interactive shell over the session manager and the
// derivation engine: login, restore, and a handful of read commands that
// print live derived values.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/client/config"
	"github.com/antonk9218/skdesk/internal/client/gamedata"
	"github.com/antonk9218/skdesk/internal/client/session"
	"github.com/antonk9218/skdesk/internal/client/storage"
	"github.com/antonk9218/skdesk/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the client core together and drives the REPL.
type App struct {
	config  *config.Config
	log     logging.Logger
	session *session.Manager
	engine  *gamedata.Engine
	db      *sql.DB
	reader  *bufio.Reader
}

// NewApp opens durable storage and constructs the session manager and the
// derivation engine over the given remote clients.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, auth api.AuthClient, game api.GameClient) (*App, error) {
	kv, db, err := storage.Open(ctx, "file:"+cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	sm := session.NewManager(cfg, auth, game, kv, session.WithLogger(log))
	engine := gamedata.NewEngine(cfg, sm, game, gamedata.WithEngineLogger(log))

	return &App{
		config:  cfg,
		log:     log,
		session: sm,
		engine:  engine,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores any persisted session, starts the logical clock and enters
// the REPL. Blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.engine.Start()

	if a.session.Restore(ctx) {
		fmt.Printf("Welcome back, %s\n", a.session.UserID())
		a.engine.Fetch(ctx, false)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.statusLine, scanner)
}

// Close stops the clock and releases storage. Safe to call repeatedly.
func (a *App) Close() {
	a.engine.Stop()
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsLoggedIn()
}

// statusLine renders the prompt segment: login state and the active role.
func (a *App) statusLine() string {
	if !a.session.IsLoggedIn() {
		return "logged out"
	}
	if uid := a.session.DefaultUID(); uid != "" {
		return "uid " + uid
	}
	return "logged in"
}
