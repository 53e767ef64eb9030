package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
)

type fakeBackend struct {
	router *mux.Router
	server *httptest.Server
	hits   map[string]*int32
	mu     sync.Mutex
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{router: mux.NewRouter(), hits: map[string]*int32{}}
	fb.server = httptest.NewServer(fb.router)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	fb.mu.Lock()
	counter := new(int32)
	fb.hits[method+" "+path] = counter
	fb.mu.Unlock()
	fb.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(counter, 1)
		h(w, r)
	}).Methods(method)
}

func (fb *fakeBackend) count(method, path string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	c, ok := fb.hits[method+" "+path]
	if !ok {
		return 0
	}
	return int(atomic.LoadInt32(c))
}

func (fb *fakeBackend) client() *Client {
	return &Client{BaseURL: fb.server.URL, HTTPClient: fb.server.Client()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []Kind
}

func (n *recordingNotifier) Notify(kind Kind, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) seen() []Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Kind(nil), n.kinds...)
}

type scriptedPrompter struct {
	answers []bool
	asked   int
}

func (p *scriptedPrompter) ConfirmRetry(string) bool {
	p.asked++
	if len(p.answers) == 0 {
		return false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}
