package circuit_breaker

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/eleven-am/flowrun/internal/domain"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type breakerTrigger string

const (
	triggerTrip  breakerTrigger = "trip"
	triggerProbe breakerTrigger = "probe"
	triggerReset breakerTrigger = "reset"
)

type Metrics struct {
	State              State     `json:"state"`
	ConsecutiveFailure int       `json:"consecutive_failure"`
	RequestsAllowed    int64     `json:"requests_allowed"`
	RequestsRejected   int64     `json:"requests_rejected"`
	LastStateChange    time.Time `json:"last_state_change"`
}

// Breaker stops calls to a failing dependency. It opens after FailureThreshold
// consecutive failures, lets a single probe through once Cooldown has passed,
// and closes again when that probe succeeds.
type Breaker struct {
	name   string
	config domain.BreakerConfig
	logger *slog.Logger
	now    func() time.Time

	mu                 sync.Mutex
	fsm                *stateless.StateMachine
	consecutiveFailure int
	openedAt           time.Time
	probing            bool
	lastStateChange    time.Time
	allowed            int64
	rejected           int64
}

func NewBreaker(name string, config domain.BreakerConfig, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}

	b := &Breaker{
		name:   name,
		config: config,
		logger: logger.With("component", "circuit-breaker", "name", name),
		now:    time.Now,
	}
	b.lastStateChange = b.now()

	fsm := stateless.NewStateMachine(StateClosed)
	fsm.Configure(StateClosed).
		Permit(triggerTrip, StateOpen)
	fsm.Configure(StateOpen).
		Permit(triggerProbe, StateHalfOpen)
	fsm.Configure(StateHalfOpen).
		Permit(triggerReset, StateClosed).
		Permit(triggerTrip, StateOpen)
	b.fsm = fsm

	return b
}

// fire must be called with mu held.
func (b *Breaker) fire(trigger breakerTrigger) {
	from := b.state()
	if err := b.fsm.Fire(trigger); err != nil {
		return
	}
	to := b.state()

	b.lastStateChange = b.now()
	if to == StateOpen {
		b.openedAt = b.lastStateChange
	}
	b.logger.Info("circuit breaker state change",
		"from", string(from),
		"to", string(to),
		"consecutive_failures", b.consecutiveFailure)
}

func (b *Breaker) state() State {
	return b.fsm.MustState().(State)
}

// Allow reports whether a call may proceed. Every allowed call must be followed
// by exactly one Record.
func (b *Breaker) Allow() error {
	if b.config.FailureThreshold <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state() == StateOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		b.fire(triggerProbe)
	}

	switch b.state() {
	case StateClosed:
		b.allowed++
		return nil
	case StateHalfOpen:
		if !b.probing {
			b.probing = true
			b.allowed++
			return nil
		}
	}

	b.rejected++
	return ErrCircuitOpen
}

// Record reports the outcome of a call admitted by Allow.
func (b *Breaker) Record(success bool) {
	if b.config.FailureThreshold <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	halfOpen := b.state() == StateHalfOpen
	b.probing = false

	if success {
		b.consecutiveFailure = 0
		if halfOpen {
			b.fire(triggerReset)
		}
		return
	}

	b.consecutiveFailure++
	if halfOpen || b.consecutiveFailure >= b.config.FailureThreshold {
		b.fire(triggerTrip)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state()
}

func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Metrics{
		State:              b.state(),
		ConsecutiveFailure: b.consecutiveFailure,
		RequestsAllowed:    b.allowed,
		RequestsRejected:   b.rejected,
		LastStateChange:    b.lastStateChange,
	}
}

// Set hands out one breaker per key, created on first use.
type Set struct {
	config domain.BreakerConfig
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewSet(config domain.BreakerConfig, logger *slog.Logger) *Set {
	return &Set{
		config:   config,
		logger:   logger,
		breakers: make(map[string]*Breaker),
	}
}

func (s *Set) Get(key string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[key]
	if !ok {
		b = NewBreaker(key, s.config, s.logger)
		s.breakers[key] = b
	}
	return b
}

func (s *Set) Metrics() map[string]Metrics {
	s.mu.Lock()
	breakers := make(map[string]*Breaker, len(s.breakers))
	for k, b := range s.breakers {
		breakers[k] = b
	}
	s.mu.Unlock()

	out := make(map[string]Metrics, len(breakers))
	for k, b := range breakers {
		out[k] = b.Metrics()
	}
	return out
}
