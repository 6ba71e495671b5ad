// Package browserroute mutates pages inside a live browser session.
// A Session hijacks same-origin document responses on a Rod page and
// rewrites them through the mutation engine before the renderer sees
// them. Overlay variants are not embedded in the page; the session
// counts agent actions and injects each overlay once its action
// threshold is crossed, at most once per session.
package browserroute

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/iwa/mutate"
	"github.com/hazyhaar/iwa/overlay"
)

// Session binds a mutation engine to one browser page. All documents
// loaded from the configured origin host are mutated with the same
// seed, so navigation within a session stays coherent.
type Session struct {
	engine *mutate.Engine
	seed   int
	host   string
	logger *slog.Logger

	mu       sync.Mutex
	actions  int
	pending  []overlay.Config
	fired    []bool
	lastPlan *mutate.Plan

	router *rod.HijackRouter
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session for one origin host. The engine should
// be constructed with mutate.DeliveryAdapter so overlay scripts are
// left to the session instead of being embedded in the document.
func NewSession(engine *mutate.Engine, originHost string, seed int, opts ...Option) *Session {
	s := &Session{
		engine: engine,
		seed:   seed,
		host:   strings.ToLower(originHost),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach installs the hijack router on the page and starts serving it.
// Call Detach when the session ends.
func (s *Session) Attach(page *rod.Page) error {
	if s.router != nil {
		return fmt.Errorf("browserroute: session already attached")
	}
	router := page.HijackRequests()
	err := router.Add("*", "", func(ctx *rod.Hijack) {
		s.handle(ctx)
	})
	if err != nil {
		return fmt.Errorf("browserroute: install hijack: %w", err)
	}
	s.router = router
	go router.Run()
	return nil
}

// Detach stops the hijack router.
func (s *Session) Detach() error {
	if s.router == nil {
		return nil
	}
	err := s.router.Stop()
	s.router = nil
	return err
}

func (s *Session) handle(ctx *rod.Hijack) {
	if ctx.Request.Type() != proto.NetworkResourceTypeDocument || !s.sameOrigin(ctx.Request.URL()) {
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}

	if err := ctx.LoadResponse(http.DefaultClient, true); err != nil {
		s.logger.Warn("browserroute: load response failed",
			"url", ctx.Request.URL().String(), "error", err)
		return
	}

	contentType := ctx.Response.Headers().Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return
	}

	body := ctx.Response.Body()
	res, err := s.engine.Mutate(context.Background(), body, ctx.Request.URL().String(), s.seed)
	if err != nil {
		s.logger.Warn("browserroute: mutation failed, serving original",
			"url", ctx.Request.URL().String(), "error", err)
		return
	}

	s.setPlan(res.Plan)

	ctx.Response.SetBody(res.HTML)
	s.logger.Debug("browserroute: document mutated",
		"url", ctx.Request.URL().String(),
		"source", res.Source,
		"overlays", s.Pending())
}

// setPlan replaces the session's overlay state with the new document's
// plan. A nil plan (passthrough, for example an empty body) clears it.
func (s *Session) setPlan(p *mutate.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlan = p
	if p == nil {
		s.pending = nil
		s.fired = nil
		return
	}
	s.pending = append([]overlay.Config(nil), p.D4...)
	s.fired = make([]bool, len(s.pending))
}

// Pending reports how many overlays have not fired yet this document.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.pending {
		if !s.fired[i] {
			n++
		}
	}
	return n
}

func (s *Session) sameOrigin(u *url.URL) bool {
	return strings.ToLower(u.Hostname()) == s.host ||
		strings.ToLower(u.Host) == s.host
}

// AfterAction records one completed agent action and injects any
// overlay whose trigger threshold has been crossed. Each overlay is
// injected at most once.
func (s *Session) AfterAction(page *rod.Page) error {
	s.mu.Lock()
	s.actions++
	due := dueOverlays(s.pending, s.fired, s.actions)
	s.mu.Unlock()

	for _, cfg := range due {
		if _, err := page.Eval(overlay.InjectJS(cfg)); err != nil {
			return fmt.Errorf("browserroute: inject overlay: %w", err)
		}
		s.logger.Debug("browserroute: overlay injected",
			"type", cfg.OverlayType, "after", s.actions)
	}
	return nil
}

// Actions reports the number of actions recorded so far.
func (s *Session) Actions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions
}

// Plan returns the plan applied to the most recent document, or nil.
func (s *Session) Plan() *mutate.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPlan
}

// dueOverlays marks and returns overlays whose TriggerAfter is at or
// below count and that have not fired yet. Caller holds the lock.
func dueOverlays(pending []overlay.Config, fired []bool, count int) []overlay.Config {
	var due []overlay.Config
	for i, cfg := range pending {
		if fired[i] || cfg.TriggerAfter > count {
			continue
		}
		fired[i] = true
		due = append(due, cfg)
	}
	return due
}
