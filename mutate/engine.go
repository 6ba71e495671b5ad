package mutate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hazyhaar/iwa/audit"
	"github.com/hazyhaar/iwa/idgen"
	"github.com/hazyhaar/iwa/internal/dom"
	"github.com/hazyhaar/iwa/overlay"
	"github.com/hazyhaar/iwa/palette"
)

// Engine applies deterministic, seed-controlled mutations to HTML.
//
// Stateless per call except for the bounded plan cache and the read-only
// palette; safe for many concurrent Mutate invocations. Mutate performs no
// network or disk I/O of its own (a configured audit sink does its I/O on
// the caller's context).
type Engine struct {
	projectID string
	cfg       PhaseConfig
	palette   *palette.Palette
	cache     *planCache
	sink      audit.Sink
	delivery  OverlayDelivery
	logger    *slog.Logger
	newID     idgen.Generator
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPalette sets the project's template catalog directly.
func WithPalette(p *palette.Palette) Option {
	return func(e *Engine) { e.palette = p }
}

// WithPaletteStore resolves the project's palette from a store at
// construction time. A missing palette is non-fatal: the engine falls
// back to its deterministic generator.
func WithPaletteStore(s palette.Store) Option {
	return func(e *Engine) {
		p, err := s.Load(e.projectID)
		if err != nil {
			if errors.Is(err, palette.ErrNotFound) {
				e.logger.Debug("mutate: no palette, using fallback generator",
					"project", e.projectID)
			} else {
				e.logger.Warn("mutate: palette load failed, using fallback generator",
					"project", e.projectID, "error", err)
			}
			return
		}
		e.palette = p
	}
}

// WithAuditSink enables audit recording; one record per Mutate call.
func WithAuditSink(s audit.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithOverlayDelivery selects script embedding (default) or
// adapter-managed overlay injection.
func WithOverlayDelivery(d OverlayDelivery) Option {
	return func(e *Engine) { e.delivery = d }
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator sets the generator for audit record ids.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine for one project. The configuration and palette
// are fixed for the engine's lifetime.
func New(projectID string, cfg PhaseConfig, opts ...Option) *Engine {
	cfg.applyDefaults()
	e := &Engine{
		projectID: projectID,
		cfg:       cfg,
		logger:    slog.Default(),
		newID:     idgen.Prefixed("aud_", idgen.Default),
		now:       time.Now,
	}
	e.cache = newPlanCache(cfg.InstructionCacheSize)
	for _, o := range opts {
		o(e)
	}
	return e
}

// ProjectID returns the engine's project.
func (e *Engine) ProjectID() string { return e.projectID }

// Config returns a copy of the engine's phase configuration.
func (e *Engine) Config() PhaseConfig { return e.cfg }

// Mutate applies the project's seed-controlled mutations to one page.
//
// A pure function of its inputs plus the engine's cache/palette state:
// identical (html, url, seed) yield identical output. Unparseable input
// passes through unmutated; selector misses are skipped silently. The
// returned plan is shared with the cache and must be treated read-only.
func (e *Engine) Mutate(ctx context.Context, htmlSrc, rawURL string, seed int) (*Result, error) {
	if !e.cfg.AnyEnabled() || htmlSrc == "" {
		return &Result{HTML: htmlSrc}, nil
	}

	bucket := e.cfg.seedBucket(seed)
	cacheKey := fmt.Sprintf("%s:%d:%s", e.projectID, bucket, rawURL)

	planStart := e.now()
	plan, source := e.resolvePlan(bucket, cacheKey, htmlSrc, rawURL, seed)
	planDur := e.now().Sub(planStart)

	mutStart := e.now()
	doc, err := dom.ParseString(htmlSrc)
	if err != nil {
		e.logger.Warn("mutate: unparseable response, passing through",
			"url", rawURL, "error", err)
		return &Result{HTML: htmlSrc, Plan: plan, Source: source}, nil
	}

	d1Nodes, d3Nodes := e.applyPlan(doc, plan, rawURL, seed)
	if e.delivery == DeliveryScript {
		e.attachOverlayScript(doc, plan)
	}
	out := doc.Render()
	mutDur := e.now().Sub(mutStart)

	res := &Result{HTML: out, Plan: plan, Source: source}
	if e.sink != nil {
		res.AuditID = e.record(ctx, rec{
			url: rawURL, seed: seed, cacheKey: cacheKey,
			before: htmlSrc, after: out, plan: plan, source: source,
			planDur: planDur, mutDur: mutDur,
			d1Nodes: d1Nodes, d3Nodes: d3Nodes,
		})
	}
	return res, nil
}

// PreviewPlan resolves the plan for (url, seed) without touching the
// cache or applying anything. Used by tooling to inspect what a seed
// would do to a page.
func (e *Engine) PreviewPlan(rawURL string, seed int) *Plan {
	plan, _ := e.generatePlan(urlPathOf(rawURL), rawURL, seed)
	return plan
}

// resolvePlan looks the plan up by exact key, then by similarity within
// the partition, and generates on a miss. Concurrent misses for the same
// key may both generate; generation is deterministic so last write wins.
func (e *Engine) resolvePlan(bucket int, cacheKey, htmlSrc, rawURL string, seed int) (*Plan, PlanSource) {
	if plan, ok := e.cache.get(bucket, cacheKey); ok {
		return plan, SourceCache
	}

	tokens := normalizeTokens(htmlSrc)
	if plan, ok := e.cache.similar(bucket, tokens, e.cfg.HTMLSimilarityThreshold); ok {
		// Store under the new key too, so the next request is exact.
		e.cache.put(bucket, cacheKey, plan, tokens)
		return plan, SourceSimilar
	}

	plan, source := e.generatePlan(urlPathOf(rawURL), rawURL, seed)
	e.cache.put(bucket, cacheKey, plan, tokens)
	return plan, source
}

// attachOverlayScript embeds the client runtime carrying the plan's
// overlay configs. At most one script per page; the runtime itself guards
// against double installation.
func (e *Engine) attachOverlayScript(doc *dom.Document, plan *Plan) {
	if !e.cfg.EnableD4 || len(plan.D4) == 0 {
		return
	}
	body := doc.Body()
	if body == nil {
		return
	}
	js := overlay.Script(plan.D4, e.cfg.D4MinAction)
	body.AppendChild(dom.ScriptNode(js, "data-iwa-runtime", overlay.RuntimeVersion))
}

type rec struct {
	url, cacheKey  string
	seed           int
	before, after  string
	plan           *Plan
	source         PlanSource
	planDur        time.Duration
	mutDur         time.Duration
	d1Nodes        int
	d3Nodes        int
}

// record builds the audit record and hands it to the sink. Sink failures
// are logged and skipped; they never block the mutated response.
func (e *Engine) record(ctx context.Context, r rec) string {
	planJSON, err := json.Marshal(r.plan)
	if err != nil {
		planJSON = nil
	}
	a := &audit.Record{
		ID:                 e.newID(),
		ProjectID:          e.projectID,
		URL:                r.url,
		Seed:               r.seed,
		HTMLBefore:         r.before,
		HTMLAfter:          r.after,
		Plan:               planJSON,
		PlanSource:         string(r.source),
		PlanDurationMS:     float64(r.planDur.Microseconds()) / 1000,
		MutationDurationMS: float64(r.mutDur.Microseconds()) / 1000,
		CacheKey:           r.cacheKey,
		DeltaBytes:         len(r.after) - len(r.before),
		PhasesEnabled:      e.cfg.phases(),
		Metrics: map[string]int{
			"d1_instructions": len(r.plan.D1),
			"d3_instructions": len(r.plan.D3),
			"d4_overlays":     len(r.plan.D4),
			"d1_nodes":        r.d1Nodes,
			"d3_nodes":        r.d3Nodes,
		},
		CreatedAt: e.now(),
	}
	if err := e.sink.Write(ctx, a); err != nil {
		e.logger.Error("mutate: audit sink write failed", "id", a.ID, "error", err)
	}
	return a.ID
}

func urlPathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
