package gamedata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/client/config"
	"github.com/antonk9218/skdesk/internal/client/session"
	"github.com/antonk9218/skdesk/internal/common"
	"github.com/antonk9218/skdesk/internal/logging"
)

// User-facing condition messages set by Fetch. The engine never throws at
// the UI; it folds failures into these fields.
const (
	msgNotLoggedIn    = "not logged in"
	msgNoRoles        = "no bound game role"
	msgSessionExpired = "session expired, please log in again"
	msgStaleData      = "network unavailable, showing cached data"
	msgFetchFailed    = "failed to fetch game data"
)

type cachedSnapshot struct {
	data      *api.Snapshot
	fetchedAt time.Time
}

// Engine owns the single in-memory raw snapshot and every derived accessor
// computed from it. Fetch folds failures into ErrorMsg/Warning instead of
// returning them, so a UI loop can poll state without error plumbing;
// Prime is the strict variant used during login.
type Engine struct {
	cfg     *config.Config
	log     logging.Logger
	session *session.Manager
	game    api.GameClient
	clock   *Clock
	bonus   *bonusCache
	nowFn   func() time.Time

	mu        sync.Mutex
	snap      *api.Snapshot
	fetchedAt int64
	cache     *cachedSnapshot
	errMsg    string
	warning   string
}

// EngineOption customizes a new Engine.
type EngineOption func(*Engine)

// WithEngineLogger replaces the default no-op logger.
func WithEngineLogger(l logging.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithEngineClock substitutes the logical clock. Tests pass a frozen one.
func WithEngineClock(c *Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithEngineNow overrides the wall-clock source used for cache aging.
func WithEngineNow(now func() time.Time) EngineOption {
	return func(e *Engine) { e.nowFn = now }
}

// NewEngine wires the derivation engine to an established session manager
// and registers itself as the manager's snapshot primer.
func NewEngine(cfg *config.Config, sm *session.Manager, game api.GameClient, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     cfg,
		log:     logging.NewNoopLogger(),
		session: sm,
		game:    game,
		clock:   NewClock(),
		bonus:   newBonusCache(64),
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	sm.SetPrimer(e)
	return e
}

// Start begins the logical clock driving the derived accessors.
func (e *Engine) Start() { e.clock.Start() }

// Stop halts the logical clock. Safe to call repeatedly.
func (e *Engine) Stop() { e.clock.Stop() }

// Clock exposes the logical clock for callers that render countdowns.
func (e *Engine) Clock() *Clock { return e.clock }

// Fetch populates the in-memory snapshot. Without force, a cached snapshot
// younger than SnapshotCacheTTL is adopted with no remote call. Failures
// land in ErrorMsg/Warning per the fallback policy: an auth failure logs
// the session out, a network failure with a previous snapshot keeps
// serving it, anything else surfaces a generic message.
func (e *Engine) Fetch(ctx context.Context, force bool) {
	if !force {
		e.mu.Lock()
		if e.cache != nil && e.nowFn().Sub(e.cache.fetchedAt) < e.cfg.SnapshotCacheTTL {
			e.snap = e.cache.data
			e.errMsg = ""
			e.warning = ""
			e.mu.Unlock()
			e.log.Debug(ctx, "serving cached snapshot")
			return
		}
		e.mu.Unlock()
	}

	if !e.session.IsLoggedIn() {
		e.setCondition(msgNotLoggedIn, "")
		return
	}

	uid, err := e.resolveUID(ctx)
	if err != nil {
		e.log.Warn(ctx, "role resolution failed", "error", err)
		e.setCondition(msgNoRoles, "")
		return
	}

	snap, err := e.fetchRemote(ctx, uid)
	if err != nil {
		e.foldFetchError(ctx, err)
		return
	}
	e.adopt(snap)
}

// Refresh is Fetch with the cache bypassed.
func (e *Engine) Refresh(ctx context.Context) {
	e.Fetch(ctx, true)
}

// Prime implements session.SnapshotPrimer: the strict first fetch run
// inside login, where a failure must surface to the caller instead of
// being folded into the condition fields.
func (e *Engine) Prime(ctx context.Context) error {
	uid, err := e.resolveUID(ctx)
	if err != nil {
		return err
	}
	snap, err := e.fetchRemote(ctx, uid)
	if err != nil {
		return err
	}
	e.adopt(snap)
	return nil
}

// Reset returns the engine to its "no data yet" state: the snapshot, the
// cache and any condition are dropped. Called on logout so a later Fetch
// cannot resurrect the previous account's data from the cache.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap = nil
	e.fetchedAt = 0
	e.cache = nil
	e.errMsg = ""
	e.warning = ""
}

// dropData discards the snapshot and the cache but leaves the condition
// fields alone.
func (e *Engine) dropData() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap = nil
	e.fetchedAt = 0
	e.cache = nil
}

func (e *Engine) resolveUID(ctx context.Context) (string, error) {
	roles := e.session.Roles()
	if len(roles) == 0 {
		var err error
		roles, err = e.session.BindingRoles(ctx, false)
		if err != nil {
			return "", err
		}
	}
	role, ok := api.DefaultRole(roles)
	if !ok {
		return "", common.ErrNoBindingRoles
	}
	return role.UID, nil
}

func (e *Engine) fetchRemote(ctx context.Context, uid string) (*api.Snapshot, error) {
	creds := e.session.Credentials()
	snap, err := e.game.PlayerSnapshot(ctx, creds.Cred, creds.SignToken, uid)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", uid, err)
	}
	return snap, nil
}

// adopt installs a freshly fetched snapshot, refreshes the cache, clears
// conditions and pushes the compact projection into the session so it
// rides along with the next persisted blob.
func (e *Engine) adopt(snap *api.Snapshot) {
	now := e.nowFn()
	e.mu.Lock()
	e.snap = snap
	e.fetchedAt = now.Unix()
	e.cache = &cachedSnapshot{data: snap, fetchedAt: now}
	e.errMsg = ""
	e.warning = ""
	e.mu.Unlock()

	e.session.SetCompactStatus(snap.Compact())
}

func (e *Engine) foldFetchError(ctx context.Context, err error) {
	switch {
	case common.IsAuthError(err):
		e.log.Warn(ctx, "snapshot fetch rejected, session expired", "error", err)
		e.session.Logout(ctx)
		e.dropData()
		e.setCondition(msgSessionExpired, "")
	case common.IsNetworkError(err) && e.Snapshot() != nil:
		e.log.Warn(ctx, "snapshot fetch unreachable, serving stale data", "error", err)
		e.setCondition("", msgStaleData)
	default:
		e.log.Error(ctx, "snapshot fetch failed", "error", err)
		e.setCondition(msgFetchFailed, "")
	}
}

func (e *Engine) setCondition(errMsg, warning string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errMsg = errMsg
	e.warning = warning
}

// Snapshot returns the current raw snapshot, nil before the first
// successful fetch.
func (e *Engine) Snapshot() *api.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// ErrorMsg returns the current hard failure condition, empty when healthy.
func (e *Engine) ErrorMsg() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// Warning returns the current soft condition (stale data notice).
func (e *Engine) Warning() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warning
}

// FetchedAt returns the unix second of the last successful fetch, 0 before
// the first one.
func (e *Engine) FetchedAt() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetchedAt
}

// Derived accessors. Each one recomputes from the raw snapshot at the
// current logical second; none of them touch the network.

func (e *Engine) building() *api.Building {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap == nil {
		return nil
	}
	return e.snap.Building
}

// AP projects the stamina gauge to the current logical second.
func (e *Engine) AP() GaugeState {
	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()
	if snap == nil || snap.Status == nil {
		return DeriveAP(nil, e.clock.Now())
	}
	return DeriveAP(snap.Status.AP, e.clock.Now())
}

// Labor projects the drone pool to the current logical second.
func (e *Engine) Labor() GaugeState {
	b := e.building()
	if b == nil {
		return DeriveLabor(nil, e.clock.Now())
	}
	return DeriveLabor(b.Labor, e.clock.Now())
}

// Manufactures projects every production line.
func (e *Engine) Manufactures() StationSummary {
	b := e.building()
	if b == nil {
		return DeriveManufactures(nil, e.bonus, e.clock.Now())
	}
	return DeriveManufactures(b.Manufactures, e.bonus, e.clock.Now())
}

// Tradings projects every order desk.
func (e *Engine) Tradings() StationSummary {
	b := e.building()
	if b == nil {
		return DeriveTradings(nil, e.bonus, e.clock.Now())
	}
	return DeriveTradings(b.Tradings, e.bonus, e.clock.Now())
}

// Recruits classifies the hire slots at the current logical second.
func (e *Engine) Recruits() RecruitSummary {
	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()
	if snap == nil {
		return DeriveRecruits(nil, e.clock.Now())
	}
	return DeriveRecruits(snap.Recruit, e.clock.Now())
}

// Dorms reports the rest census.
func (e *Engine) Dorms() DormSummary {
	b := e.building()
	if b == nil {
		return DeriveDorms(nil)
	}
	return DeriveDorms(b.Dormitories)
}

// TrainingRoom projects the training countdown.
func (e *Engine) TrainingRoom() TrainingState {
	e.mu.Lock()
	snap := e.snap
	fetched := e.fetchedAt
	e.mu.Unlock()
	if snap == nil || snap.Building == nil {
		return DeriveTraining(nil, e.clock.Now(), fetched)
	}
	return DeriveTraining(snap.Building.Training, e.clock.Now(), fetched)
}

// Meeting reports the clue census.
func (e *Engine) Meeting() MeetingSummary {
	b := e.building()
	if b == nil {
		return DeriveMeeting(nil)
	}
	return DeriveMeeting(b.Meeting)
}

// HireOffice projects the HR refresh countdown.
func (e *Engine) HireOffice() HireState {
	b := e.building()
	if b == nil {
		return DeriveHire(nil, e.clock.Now())
	}
	return DeriveHire(b.Hire, e.clock.Now())
}

// Tired reports how many operators need rest.
func (e *Engine) Tired() int {
	return TiredCount(e.building())
}

// Routine reports daily/weekly task progress.
func (e *Engine) Routine() RoutineSummary {
	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()
	if snap == nil {
		return DeriveRoutine(nil)
	}
	return DeriveRoutine(snap.Routine)
}

// CampaignReward reports the weekly annihilation progress.
func (e *Engine) CampaignReward() Progress {
	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()
	if snap == nil {
		return DeriveCampaign(nil)
	}
	return DeriveCampaign(snap.Campaign)
}

// TowerRewards reports both tower reward tracks.
func (e *Engine) TowerRewards() TowerSummary {
	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()
	if snap == nil {
		return DeriveTower(nil)
	}
	return DeriveTower(snap.Tower)
}
