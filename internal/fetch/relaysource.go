package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/relay"
)

// circuitBreaker tracks consecutive failures to skip a flaky relay.
type circuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	openUntil   time.Time
	threshold   int           // consecutive failures to trip
	window      time.Duration // failures must occur within this window
	cooldown    time.Duration // how long the circuit stays open
}

func newCircuitBreaker(threshold int, window, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
	}
}

func (cb *circuitBreaker) isOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return time.Now().Before(cb.openUntil)
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	now := time.Now()
	// A failure after the cooldown elapsed starts a fresh count instead
	// of re-tripping on the stale one.
	if !cb.openUntil.IsZero() && now.After(cb.openUntil) {
		cb.failures = 0
		cb.openUntil = time.Time{}
	}
	if now.Sub(cb.lastFailure) > cb.window {
		cb.failures = 0
	}
	cb.failures++
	cb.lastFailure = now
	if cb.failures >= cb.threshold {
		cb.openUntil = now.Add(cb.cooldown)
		zap.L().Warn("fetch: relay circuit breaker opened",
			zap.Int("failures", cb.failures),
			zap.Duration("cooldown", cb.cooldown),
		)
	}
}

// recordSuccess closes the circuit and drops the failure count.
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.openUntil = time.Time{}
}

// RelaySource wraps a reader-relay client as a fetch Source with a circuit
// breaker: 3 consecutive failures within 30s opens the circuit for 60s,
// causing immediate fallback to the next source.
type RelaySource struct {
	client  relay.Client
	breaker *circuitBreaker
}

// NewRelaySource creates a RelaySource from a relay client.
func NewRelaySource(client relay.Client) *RelaySource {
	return &RelaySource{
		client:  client,
		breaker: newCircuitBreaker(3, 30*time.Second, 60*time.Second),
	}
}

func (r *RelaySource) Name() string { return "relay" }

// Supports returns true unless the circuit breaker is open.
func (r *RelaySource) Supports(_ string) bool {
	return !r.breaker.isOpen()
}

// Fetch retrieves a URL through the relay and validates the response.
func (r *RelaySource) Fetch(ctx context.Context, targetURL string) (*model.Page, error) {
	if r.breaker.isOpen() {
		return nil, eris.New("relay: circuit breaker open")
	}

	res, err := r.client.Read(ctx, targetURL)
	if err != nil {
		r.breaker.recordFailure()
		return nil, err
	}

	if len(res.HTML) < MinContentLen {
		r.breaker.recordFailure()
		return nil, eris.New("relay: response too short")
	}

	r.breaker.recordSuccess()
	return &model.Page{
		URL:        targetURL,
		HTML:       res.HTML,
		StatusCode: res.StatusCode,
		Source:     r.Name(),
	}, nil
}
