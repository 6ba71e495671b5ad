package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/iwa/mutate"
	"github.com/hazyhaar/iwa/overlay"
)

// MutatedHeader is set on responses the proxy rewrote.
const MutatedHeader = "X-Iwa-Mutated"

// Service proxies all traffic to one origin, rewriting opted-in HTML
// responses through the engine. Upstream failures surface as standard
// gateway errors; they never originate inside the engine.
type Service struct {
	cfg    Config
	origin *url.URL
	client *http.Client
	engine *mutate.Engine
	logger *slog.Logger
}

// New creates the proxy service. The engine must belong to cfg.ProjectID.
func New(cfg Config, engine *mutate.Engine, logger *slog.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	origin, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("proxy: parse origin: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		origin: origin,
		client: &http.Client{
			Timeout: cfg.UpstreamTimeout,
			// Redirects pass through to the client untouched.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		engine: engine,
		logger: logger,
	}, nil
}

// Router builds the chi router: middleware stack, the runtime asset in
// client-runtime mode, and the catch-all forwarder.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(AccessLog(s.logger))
	if s.cfg.Mode == ModeClientRuntime {
		r.Get("/iwa/runtime.js", s.handleRuntimeAsset)
	}
	r.HandleFunc("/*", s.handleProxy)
	return r
}

func (s *Service) handleProxy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.forward(r)
	if err != nil {
		s.logger.Error("proxy: upstream request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)

	seed, seedOK := requestSeed(r)
	switch {
	case s.cfg.Mode == ModeMutate && seedOK && mutable(r, resp):
		s.serveMutated(w, r, resp, seed)
	case s.cfg.Mode == ModeClientRuntime && seedOK && mutable(r, resp):
		s.serveClientRuntime(w, r, resp, seed)
	default:
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body)
	}
}

// forward replays the request against the origin, stripping hop-by-hop
// headers and forcing an identity encoding so mutated bytes never need
// re-compression.
func (s *Service) forward(r *http.Request) (*http.Response, error) {
	upstream := *r.URL
	upstream.Scheme = s.origin.Scheme
	upstream.Host = s.origin.Host

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream.String(), r.Body)
	if err != nil {
		return nil, err
	}
	copyHeaders(req.Header, r.Header)
	req.Header.Set("Accept-Encoding", "identity")
	req.Host = s.origin.Host
	return s.client.Do(req)
}

// serveMutated rewrites the HTML body through the engine.
func (s *Service) serveMutated(w http.ResponseWriter, r *http.Request, resp *http.Response, seed int) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.logger.Error("proxy: read upstream body failed", "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	res, err := s.engine.Mutate(r.Context(), string(body), pageURL(r), seed)
	if err != nil || res == nil {
		// Mutation never takes the page down; serve the original bytes.
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(resp.StatusCode)
		w.Write(body)
		return
	}

	out := []byte(res.HTML)
	w.Header().Set(MutatedHeader, "1")
	w.Header().Del("Content-Encoding")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(resp.StatusCode)
	w.Write(out)
}

// serveClientRuntime leaves the origin HTML alone except for a config
// script (seed, enabled phases, site key, resolved overlay configs) and
// the runtime asset tag; mutation happens client-side.
func (s *Service) serveClientRuntime(w http.ResponseWriter, r *http.Request, resp *http.Response, seed int) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.logger.Error("proxy: read upstream body failed", "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	out := injectClientRuntime(string(body), s.clientConfigJS(pageURL(r), seed))
	w.Header().Del("Content-Encoding")
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, out)
}

func (s *Service) handleRuntimeAsset(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, overlay.RuntimeJS(s.engine.Config().D4MinAction))
}

// mutable implements the mutation gate: HTML responses to non-HEAD
// requests with a real status, unless the request disables it.
func mutable(r *http.Request, resp *http.Response) bool {
	if r.Method == http.MethodHead {
		return false
	}
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotModified {
		return false
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return false
	}
	switch r.URL.Query().Get("iwa_dynamic") {
	case "0", "false":
		return false
	}
	return true
}

// requestSeed extracts the opt-in seed. Absence disables mutation.
func requestSeed(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("seed")
	if raw == "" {
		return 0, false
	}
	seed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return seed, true
}

// pageURL is the URL handed to the engine: the origin-side address with
// the proxy control parameters removed, so the same page shares one cache
// entry across seeds of the same bucket.
func pageURL(r *http.Request) string {
	u := *r.URL
	q := u.Query()
	q.Del("seed")
	q.Del("iwa_dynamic")
	u.RawQuery = q.Encode()
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return u.String()
}
