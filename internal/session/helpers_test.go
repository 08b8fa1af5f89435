package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/stockpulse/internal/scoring"
)

// fakeService is an httptest-backed scoring service with scripted responses.
type fakeService struct {
	mu        sync.Mutex
	health    http.HandlerFunc
	rateLimit []http.HandlerFunc // consumed in order; the last one repeats
	analyze   http.HandlerFunc

	healthHits    atomic.Int32
	rateLimitHits atomic.Int32
	analyzeHits   atomic.Int32

	server *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		health:    jsonHandler(http.StatusOK, `{"status":"healthy","api_key_configured":true}`),
		rateLimit: []http.HandlerFunc{jsonHandler(http.StatusOK, `{"is_limited":false}`)},
		analyze:   jsonHandler(http.StatusOK, `{"recommendation":"BUY","confidence":80}`),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	var h http.HandlerFunc
	switch r.URL.Path {
	case "/health":
		f.healthHits.Add(1)
		h = f.health
	case "/rate-limit":
		n := int(f.rateLimitHits.Add(1))
		idx := n - 1
		if idx >= len(f.rateLimit) {
			idx = len(f.rateLimit) - 1
		}
		h = f.rateLimit[idx]
	case "/analyze":
		f.analyzeHits.Add(1)
		h = f.analyze
	default:
		h = http.NotFound
	}
	f.mu.Unlock()
	h(w, r)
}

func (f *fakeService) setHealth(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = h
}

func (f *fakeService) setRateLimit(hs ...http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateLimit = hs
}

func (f *fakeService) setAnalyze(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyze = h
}

func (f *fakeService) client(t *testing.T) *scoring.Client {
	t.Helper()
	c, err := scoring.NewClient(f.server.URL)
	require.NoError(t, err)
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// deadURL returns the address of a server that has already shut down.
func deadURL() string {
	s := httptest.NewServer(http.NotFoundHandler())
	u := s.URL
	s.Close()
	return u
}
