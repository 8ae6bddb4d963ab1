// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wardrobelabs/ensemble/internal/cache"
	"github.com/wardrobelabs/ensemble/internal/metrics"
	"github.com/wardrobelabs/ensemble/internal/validation"
)

// Providers bundles the external collaborators the engine consumes. All of
// them are read-only within a request; the engine captures snapshots at
// request entry.
type Providers struct {
	// Index is the per-user denormalized item view.
	Index CandidateIndex

	// RuleSets supplies the current published rule set.
	RuleSets RuleSetProvider

	// Profiles supplies user profiles.
	Profiles ProfileProvider

	// History supplies recently worn item ids for novelty scoring.
	// Optional; absence means zero novelty penalty.
	History WearHistoryProvider

	// Clock supplies time; defaults to the system clock.
	Clock Clock
}

// Engine assembles outfit bundles. It is safe for concurrent use once
// providers, components, and constraints are registered.
type Engine struct {
	config *Config
	logger zerolog.Logger

	providers Providers

	regMu       sync.RWMutex
	components  []ScoreComponent
	constraints []HardConstraint

	// Shortlist cache. Keys embed per-user and global generation counters
	// so invalidation is O(1).
	shortlists *cache.LRU
	genMu      sync.Mutex
	userGen    map[string]uint64
	globalGen  atomic.Uint64

	inflight atomic.Int64

	breaker *indexBreaker
}

// NewEngine creates a new assembly engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:  cfg,
		logger:  logger.With().Str("component", "outfit").Logger(),
		userGen: make(map[string]uint64),
	}
	if cfg.Cache.Enabled {
		e.shortlists = cache.NewLRU(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	if cfg.Breaker.Enabled {
		e.breaker = newIndexBreaker(cfg.Breaker)
	}
	return e, nil
}

// SetProviders wires the external collaborators. Must be called before
// serving requests.
func (e *Engine) SetProviders(p Providers) {
	if p.Clock == nil {
		p.Clock = SystemClock{}
	}
	e.providers = p
}

// RegisterComponent adds a soft score component. Must complete before
// serving requests.
func (e *Engine) RegisterComponent(c ScoreComponent) {
	e.regMu.Lock()
	defer e.regMu.Unlock()

	e.components = append(e.components, c)
	e.logger.Info().Str("scoring_component", c.Name()).Msg("registered score component")
}

// RegisterConstraint adds a hard constraint. Must complete before serving
// requests.
func (e *Engine) RegisterConstraint(hc HardConstraint) {
	e.regMu.Lock()
	defer e.regMu.Unlock()

	e.constraints = append(e.constraints, hc)
	e.logger.Info().Str("constraint", hc.Name()).Msg("registered hard constraint")
}

// GenerateRequest asks for a whole-outfit bundle.
type GenerateRequest struct {
	// UserID identifies the wardrobe owner.
	UserID string `validate:"required"`

	// Context is the occasion context.
	Context Context

	// AllowCatalog permits at most one catalog item in the bundle.
	AllowCatalog bool

	// Deadline caps the request; zero derives one from the configured
	// generate budget.
	Deadline time.Time

	// RequestID is an optional trace identifier.
	RequestID string
}

// Generate assembles the best bundle for the request.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*Bundle, error) {
	start := time.Now()
	if err := e.admit(); err != nil {
		metrics.RequestsTotal.WithLabelValues("generate", "busy").Inc()
		return nil, err
	}
	defer e.release()

	st, cancel, eng := e.newRequestState(ctx, req.UserID, &req.Context, req.AllowCatalog, req.RequestID, req.Deadline, e.config.Budgets.Generate, "generate")
	defer cancel()
	if eng != nil {
		metrics.RequestsTotal.WithLabelValues("generate", eng.Kind.String()).Inc()
		return nil, eng
	}

	bundle, genErr := e.generate(st)
	e.observe("generate", start, genErr)
	if genErr != nil {
		return nil, genErr
	}
	return bundle, nil
}

// generate runs template selection and beam search for a prepared request.
func (e *Engine) generate(st *requestState) (*Bundle, *Error) {
	target := st.reqCtx.Dressiness(st.profile)
	tpl := st.rules.SelectTemplate(st.reqCtx.Occasion, target, st.profile)
	if tpl == nil {
		return nil, &Error{
			Kind:           KindNoTemplate,
			RulesetVersion: st.rules.Version,
			msg:            fmt.Sprintf("no template for occasion %q at dressiness %d", st.reqCtx.Occasion, target),
		}
	}
	st.logger.Debug().Str("template", tpl.ID).Int("dressiness", target).Msg("template selected")

	terminal, searchErr := e.search(st, tpl)
	if searchErr != nil {
		return nil, searchErr
	}
	return e.finalizeBundle(st, tpl, terminal), nil
}

// finalizeBundle turns a terminal search state into an output bundle.
func (e *Engine) finalizeBundle(st *requestState, tpl *Template, terminal *scoredState) *Bundle {
	slots := make([]BundleSlot, 0, terminal.state.Len())
	for _, slot := range terminal.state.Slots() {
		it := terminal.state.Get(slot)
		slots = append(slots, BundleSlot{Slot: slot, ItemID: it.ID, Owner: it.Owner})
	}

	return &Bundle{
		ID:              uuid.NewString(),
		Slots:           slots,
		Score:           terminal.score,
		ComponentScores: terminal.details,
		Explanations:    terminal.explanations,
		RulesetVersion:  st.rules.Version,
		TemplateID:      tpl.ID,
		Context:         *st.reqCtx,
		TieBreak:        terminal.state.TieBreakKey(),
		Partial:         terminal.partial,
		GeneratedAt:     st.now,
	}
}

// ExplainResult carries per-slot and per-component explanations for a bundle.
type ExplainResult struct {
	// Components maps component names to their score and explanation.
	Components map[string]ComponentScore `json:"components"`

	// Slots maps each slot to a short description of its item.
	Slots map[Slot]string `json:"slots"`

	// Score is the recomputed aggregate.
	Score float64 `json:"score"`

	// RulesetVersion is the rule set used for the explanation.
	RulesetVersion string `json:"ruleset_version"`
}

// Explain recomputes per-slot and per-component explanations for a bundle
// under the current rule set.
func (e *Engine) Explain(ctx context.Context, userID string, bundle *Bundle) (*ExplainResult, error) {
	if bundle == nil || len(bundle.Slots) == 0 {
		return nil, newError(KindInvalidInput, "bundle is empty")
	}

	st, cancel, eng := e.newRequestState(ctx, userID, explainContext(bundle), false, "", time.Time{}, e.config.Budgets.Generate, "explain")
	defer cancel()
	if eng != nil {
		return nil, eng
	}

	state, eng := e.reconstructState(st, bundle)
	if eng != nil {
		return nil, eng
	}

	score, details, _ := e.scoreState(st, state)
	slots := make(map[Slot]string, state.Len())
	for _, slot := range state.Slots() {
		it := state.Get(slot)
		slots[slot] = fmt.Sprintf("%s %s (formality %d, %s)", it.Role, it.ID, it.Formality, it.Owner)
	}

	return &ExplainResult{
		Components:     details,
		Slots:          slots,
		Score:          score,
		RulesetVersion: st.rules.Version,
	}, nil
}

// explainContext returns the context the bundle was generated under, so the
// explanation scores the same inputs. Bundles from older payloads carry no
// context; those fall back to a neutral one.
func explainContext(bundle *Bundle) *Context {
	if bundle.Context.Occasion != "" {
		c := bundle.Context
		return &c
	}
	return &Context{Occasion: "casual_day", TargetDressiness: 3, TemperatureBand: BandMild}
}

// reconstructState resolves a bundle's item ids against the index and
// rebuilds a terminal state.
func (e *Engine) reconstructState(st *requestState, bundle *Bundle) (*BundleState, *Error) {
	tpl := st.rules.SelectTemplate(st.reqCtx.Occasion, st.reqCtx.Dressiness(st.profile), st.profile)
	state := NewBundleState(tpl)
	for _, bs := range bundle.Slots {
		it, err := e.getItem(st, bs.ItemID)
		if err != nil {
			return nil, err
		}
		state = state.Commit(it)
	}
	return state, nil
}

// InvalidateUser drops cached shortlists for one user. Driven by item
// add/update/remove events.
func (e *Engine) InvalidateUser(userID string) {
	e.genMu.Lock()
	e.userGen[userID]++
	e.genMu.Unlock()
	e.logger.Debug().Str("user_id", userID).Msg("shortlist cache invalidated for user")
}

// InvalidateAll drops every cached shortlist. Driven by rule-set publishes.
func (e *Engine) InvalidateAll() {
	e.globalGen.Add(1)
	e.logger.Debug().Msg("shortlist cache invalidated")
}

// Inflight returns the number of requests currently being served.
func (e *Engine) Inflight() int64 {
	return e.inflight.Load()
}

// GetConfig returns a copy of the engine configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// admit reserves an inflight slot, rejecting with BUSY at the bound.
func (e *Engine) admit() *Error {
	if n := e.inflight.Add(1); n > int64(e.config.MaxInflight) {
		e.inflight.Add(-1)
		return newError(KindBusy, "inflight requests exceed %d", e.config.MaxInflight)
	}
	metrics.InflightRequests.Set(float64(e.inflight.Load()))
	return nil
}

func (e *Engine) release() {
	e.inflight.Add(-1)
	metrics.InflightRequests.Set(float64(e.inflight.Load()))
}

// observe records request metrics.
func (e *Engine) observe(op string, start time.Time, err *Error) {
	outcome := "ok"
	if err != nil {
		outcome = err.Kind.String()
	}
	metrics.RequestsTotal.WithLabelValues(op, outcome).Inc()
	metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// requestState is the per-request snapshot plus request-scoped caches.
type requestState struct {
	ctx          context.Context
	userID       string
	reqCtx       *Context
	allowCatalog bool
	profile      *Profile
	rules        *RuleSet
	recentWorn   []string
	now          time.Time
	logger       zerolog.Logger

	// groupCache memoizes co-ord group lookups within the request.
	groupMu    sync.Mutex
	groupCache map[string][]*Item

	// itemCache memoizes item lookups within the request.
	itemMu    sync.Mutex
	itemCache map[string]*Item

	weights map[string]float64
}

// newRequestState validates inputs and captures the request snapshot.
// The returned cancel func must always be called.
func (e *Engine) newRequestState(ctx context.Context, userID string, reqCtx *Context, allowCatalog bool, requestID string, deadline time.Time, budget time.Duration, op string) (*requestState, context.CancelFunc, *Error) {
	cancel := func() {}

	if e.providers.Index == nil || e.providers.RuleSets == nil || e.providers.Profiles == nil {
		return nil, cancel, newError(KindInternal, "providers not set")
	}
	if userID == "" {
		return nil, cancel, newError(KindInvalidInput, "user id is empty")
	}
	if err := validation.ValidateStruct(reqCtx); err != nil {
		return nil, cancel, wrapError(KindInvalidInput, err, "context failed validation")
	}
	if _, ok := ValidBands[reqCtx.TemperatureBand]; !ok {
		return nil, cancel, newError(KindInvalidInput, "unknown temperature band %q", reqCtx.TemperatureBand)
	}

	rules := e.providers.RuleSets.Current()
	if rules == nil {
		return nil, cancel, newError(KindInternal, "rule set provider returned nil")
	}

	// The budget lives on the injected clock's timeline. The remaining
	// duration is applied to the context as a timeout, so a fake clock in
	// tests shifts deadlines along with every timestamp it produces.
	now := e.providers.Clock.Now()
	if deadline.IsZero() {
		deadline = now.Add(budget)
	}
	ctx, cancel = context.WithTimeout(ctx, deadline.Sub(now))

	profile, err := e.providers.Profiles.Snapshot(ctx, userID)
	if err != nil {
		return nil, cancel, wrapError(fetchKind(err), err, "profile snapshot for %s", userID)
	}
	if err := validation.ValidateStruct(profile); err != nil {
		return nil, cancel, wrapError(KindInvalidInput, err, "profile failed validation")
	}

	var recent []string
	if e.providers.History != nil && rules.NoveltyWindow > 0 {
		recent, err = e.providers.History.Recent(ctx, userID, rules.NoveltyWindow)
		if err != nil {
			// Recovered locally: empty history means zero novelty penalty.
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("wear history unavailable")
			recent = nil
		}
	}

	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := e.logger.With().
		Str("request_id", requestID).
		Str("user_id", userID).
		Str("op", op).
		Str("ruleset", rules.Version).
		Logger()

	st := &requestState{
		ctx:          ctx,
		userID:       userID,
		reqCtx:       reqCtx,
		allowCatalog: allowCatalog,
		profile:      profile,
		rules:        rules,
		recentWorn:   recent,
		now:          now,
		logger:       logger,
		groupCache:   make(map[string][]*Item),
		itemCache:    make(map[string]*Item),
	}
	st.weights = rules.NormalizedWeights(e.componentNames())
	return st, cancel, nil
}

func (e *Engine) componentNames() []string {
	e.regMu.RLock()
	defer e.regMu.RUnlock()

	names := make([]string, len(e.components))
	for i, c := range e.components {
		names[i] = c.Name()
	}
	return names
}

func (e *Engine) getComponents() []ScoreComponent {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return e.components
}

func (e *Engine) getConstraints() []HardConstraint {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return e.constraints
}

// getGroup resolves a co-ord group through the request-scoped cache.
func (e *Engine) getGroup(st *requestState, groupID string) ([]*Item, *Error) {
	st.groupMu.Lock()
	if members, ok := st.groupCache[groupID]; ok {
		st.groupMu.Unlock()
		return members, nil
	}
	st.groupMu.Unlock()

	members, err := e.searchGroup(st, groupID)
	if err != nil {
		return nil, err
	}

	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	st.groupMu.Lock()
	st.groupCache[groupID] = members
	st.groupMu.Unlock()
	return members, nil
}

func (e *Engine) searchGroup(st *requestState, groupID string) ([]*Item, *Error) {
	members, err := e.providers.Index.Group(st.ctx, st.userID, groupID)
	if err != nil {
		return nil, wrapError(fetchKind(err), err, "group lookup %s", groupID)
	}
	return members, nil
}

// getItem resolves one item through the request-scoped cache.
func (e *Engine) getItem(st *requestState, itemID string) (*Item, *Error) {
	st.itemMu.Lock()
	if it, ok := st.itemCache[itemID]; ok {
		st.itemMu.Unlock()
		return it, nil
	}
	st.itemMu.Unlock()

	it, err := e.providers.Index.Get(st.ctx, st.userID, itemID)
	if err != nil {
		return nil, wrapError(fetchKind(err), err, "item lookup %s", itemID)
	}

	st.itemMu.Lock()
	st.itemCache[itemID] = it
	st.itemMu.Unlock()
	return it, nil
}
