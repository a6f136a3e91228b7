// Package bridge provides an engine that renders the player document in a
// browser page and talks to it over a websocket.
//
// The page is served over HTTP with a small bridge script injected. The script
// evaluates scripts on request and reports navigations, which the engine hands
// to the registered navigation handler before answering with a decision.
// Script callbacks and navigation handlers run on the connection's reader
// goroutine and must not wait for other script results.
package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/osa030/ytplayer/internal/domain/engine"
	"github.com/osa030/ytplayer/internal/infra/assets"
)

// Errors
var (
	ErrNoPage        = errors.New("no page connected")
	ErrClosed        = errors.New("engine closed")
	ErrScriptTimeout = errors.New("script timed out")
)

// blankDocument is served until a document is loaded.
const blankDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Config holds engine configuration.
type Config struct {
	ScriptTimeout time.Duration // Zero waits forever
}

type pendingScript struct {
	pageID   string
	callback func(result any, err error)
	timer    *time.Timer
}

// Engine implements engine.Engine on top of a browser page.
type Engine struct {
	cfg      Config
	upgrader websocket.Upgrader
	router   *router

	mu      sync.Mutex
	doc     string
	baseURL string
	page    *page
	pending map[string]*pendingScript
	handler engine.NavigationHandler
	closed  bool
}

// New creates a new engine.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:     cfg,
		router:  newRouter(),
		doc:     blankDocument,
		pending: make(map[string]*pendingScript),
	}
	e.router.handle(typeResult, e.handleResult)
	e.router.handle(typeNavigate, e.handleNavigate)
	return e
}

// Mount registers the page routes on r.
func (e *Engine) Mount(r chi.Router) {
	r.Get("/", e.serveDocument)
	r.Get("/ws", e.serveWebSocket)
}

// Handler returns a router serving only the page routes.
func (e *Engine) Handler() http.Handler {
	r := chi.NewRouter()
	e.Mount(r)
	return r
}

// SetNavigationHandler implements engine.Engine.
func (e *Engine) SetNavigationHandler(handler engine.NavigationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

// LoadDocument implements engine.Engine. A connected page is told to reload;
// otherwise the document is served on the next page request.
func (e *Engine) LoadDocument(doc, baseURL string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.doc = doc
	e.baseURL = baseURL
	p := e.page
	e.mu.Unlock()

	if p == nil {
		zlog.Debug().Msg("bridge: document stored, no page connected")
		return nil
	}
	zlog.Debug().Msgf("bridge: reloading page: page=%s", p.id)
	return p.send(typeReload, nil)
}

// RunScript implements engine.ScriptRunner. The callback runs exactly once.
func (e *Engine) RunScript(source string, callback func(result any, err error)) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		callback(nil, ErrClosed)
		return
	}
	p := e.page
	if p == nil {
		e.mu.Unlock()
		callback(nil, ErrNoPage)
		return
	}

	id := uuid.NewString()
	ps := &pendingScript{pageID: p.id, callback: callback}
	if e.cfg.ScriptTimeout > 0 {
		ps.timer = time.AfterFunc(e.cfg.ScriptTimeout, func() {
			e.resolve(id, nil, errors.Wrapf(ErrScriptTimeout, "after %s", e.cfg.ScriptTimeout))
		})
	}
	e.pending[id] = ps
	e.mu.Unlock()

	if err := p.send(typeEval, evalPayload{ID: id, Source: source}); err != nil {
		e.resolve(id, nil, err)
	}
}

// resolve completes a pending script. Only the first call for an id wins.
func (e *Engine) resolve(id string, result any, err error) {
	e.mu.Lock()
	ps, ok := e.pending[id]
	if ok {
		delete(e.pending, id)
	}
	e.mu.Unlock()

	if !ok {
		return
	}
	if ps.timer != nil {
		ps.timer.Stop()
	}
	ps.callback(result, err)
}

// failPending completes the pending scripts sent to pageID with err.
// An empty pageID matches every page.
func (e *Engine) failPending(pageID string, err error) {
	e.mu.Lock()
	ids := make([]string, 0, len(e.pending))
	for id, ps := range e.pending {
		if pageID == "" || ps.pageID == pageID {
			ids = append(ids, id)
		}
	}
	e.mu.Unlock()

	for _, id := range ids {
		e.resolve(id, nil, err)
	}
}

// Connected reports whether a page is connected.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page != nil
}

// Close disconnects the page and fails all pending scripts.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	p := e.page
	e.page = nil
	e.mu.Unlock()

	e.failPending("", ErrClosed)
	if p != nil {
		p.close()
	}
}

func (e *Engine) serveDocument(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	doc, baseURL := e.doc, e.baseURL
	e.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(Inject(doc, baseURL))); err != nil {
		zlog.Debug().Msgf("bridge: failed to write document: %v", err)
	}
}

func (e *Engine) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Warn().Msgf("bridge: websocket upgrade failed: %v", err)
		return
	}
	p := &page{id: uuid.NewString(), conn: conn}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		p.close()
		return
	}
	prev := e.page
	e.page = p
	e.mu.Unlock()

	if prev != nil {
		zlog.Info().Msgf("bridge: page replaced: old=%s new=%s", prev.id, p.id)
		prev.close()
	}
	zlog.Info().Msgf("bridge: page connected: page=%s remote=%s", p.id, r.RemoteAddr)

	err = e.router.serve(r.Context(), p)

	e.mu.Lock()
	current := e.page == p
	if current {
		e.page = nil
	}
	e.mu.Unlock()

	if current {
		zlog.Info().Msgf("bridge: page disconnected: page=%s reason=%v", p.id, err)
	}
	e.failPending(p.id, errors.Wrapf(ErrNoPage, "page %s went away", p.id))
	_ = conn.Close()
}

func (e *Engine) handleResult(ctx context.Context, p *page, payload json.RawMessage) {
	var res resultPayload
	if err := json.Unmarshal(payload, &res); err != nil {
		zlog.Warn().Msgf("bridge: malformed %s message: page=%s err=%v", messageType(ctx), p.id, err)
		return
	}

	if res.Error != nil {
		e.resolve(res.ID, nil, &engine.ScriptError{Code: res.Error.Code, Message: res.Error.Message})
		return
	}

	var value any
	if len(res.Value) > 0 {
		if err := json.Unmarshal(res.Value, &value); err != nil {
			e.resolve(res.ID, nil, errors.Wrap(err, "failed to decode script result"))
			return
		}
	}
	e.resolve(res.ID, value, nil)
}

func (e *Engine) handleNavigate(ctx context.Context, p *page, payload json.RawMessage) {
	var nav navigatePayload
	if err := json.Unmarshal(payload, &nav); err != nil {
		zlog.Warn().Msgf("bridge: malformed %s message: page=%s err=%v", messageType(ctx), p.id, err)
		return
	}

	var once sync.Once
	decide := func(policy engine.NavigationPolicy) {
		once.Do(func() {
			zlog.Debug().Msgf("bridge: navigation decided: url=%s policy=%s", nav.URL, policy)
			err := p.send(typeDecision, decisionPayload{ID: nav.ID, Allow: policy == engine.NavigationAllow})
			if err != nil {
				zlog.Warn().Msgf("bridge: failed to send decision: page=%s err=%v", p.id, err)
			}
		})
	}

	target, err := url.Parse(nav.URL)
	if err != nil {
		zlog.Warn().Msgf("bridge: cancelling unparseable navigation: url=%q err=%v", nav.URL, err)
		decide(engine.NavigationCancel)
		return
	}

	e.mu.Lock()
	handler := e.handler
	e.mu.Unlock()

	if handler == nil {
		decide(engine.NavigationAllow)
		return
	}
	handler(target, decide)
}

// Inject adds the base element and the bridge script to the head of doc.
// The base element is omitted for an empty or about:blank base URL.
func Inject(doc, baseURL string) string {
	var b strings.Builder
	if baseURL != "" && baseURL != "about:blank" {
		b.WriteString(`<base href="`)
		b.WriteString(html.EscapeString(baseURL))
		b.WriteString(`">`)
	}
	b.WriteString("<script>")
	b.Write(assets.BridgeScript())
	b.WriteString("</script>")
	snippet := b.String()

	at := headContentStart(doc)
	if at < 0 {
		return snippet + doc
	}
	return doc[:at] + snippet + doc[at:]
}

// headContentStart returns the offset just after the opening head tag, or -1.
func headContentStart(doc string) int {
	lower := strings.ToLower(doc)
	from := 0
	for {
		i := strings.Index(lower[from:], "<head")
		if i < 0 {
			return -1
		}
		i += from
		next := i + len("<head")
		// Skip <header> and similar.
		if next < len(lower) && (lower[next] == '>' || lower[next] == ' ' || lower[next] == '\t' || lower[next] == '\n' || lower[next] == '\r') {
			end := strings.IndexByte(lower[next:], '>')
			if end < 0 {
				return -1
			}
			return next + end + 1
		}
		from = next
	}
}
