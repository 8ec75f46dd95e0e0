package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/prcache/internal/logger"
)

// ticker delivers periodic ticks.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every interval.
type TickerFactory func(interval time.Duration) ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(interval time.Duration) ticker {
	return timeTicker{t: time.NewTicker(interval)}
}

// PeriodicScheduler runs an action on a fixed interval.
//
// The action runs on the loop goroutine, so ticks never overlap. Errors
// returned by the action are logged and the loop keeps going.
type PeriodicScheduler struct {
	action    func() error
	log       *logger.Logger
	newTicker TickerFactory

	mu       sync.Mutex
	interval time.Duration
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
}

// NewPeriodicScheduler creates a stopped scheduler.
func NewPeriodicScheduler(interval time.Duration, action func() error, log *logger.Logger) *PeriodicScheduler {
	if log == nil {
		log = logger.Default()
	}
	return &PeriodicScheduler{
		action:    action,
		log:       log.Named("scheduler"),
		newTicker: newTimeTicker,
		interval:  interval,
	}
}

// Start begins ticking. It does nothing if already running or if the
// interval is not positive.
func (s *PeriodicScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	if s.interval <= 0 {
		s.log.Warn("interval %s is not positive, periodic refresh disabled", s.interval)
		return
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	t := s.newTicker(s.interval)
	go s.run(t, s.stopCh, s.done)
	s.log.Debug("started with interval %s", s.interval)
}

// Stop halts ticking and waits for the loop to exit, including an action
// already in progress. It must not be called from the action.
func (s *PeriodicScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Debug("stopped")
}

// SetInterval changes the tick interval. A running scheduler is restarted
// with the new interval.
func (s *PeriodicScheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	if s.interval == interval {
		s.mu.Unlock()
		return
	}
	s.interval = interval
	running := s.running
	s.mu.Unlock()

	if running {
		s.Stop()
		s.Start()
	}
}

// Interval returns the tick interval.
func (s *PeriodicScheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running returns true if the loop is active.
func (s *PeriodicScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close stops the scheduler and releases its timer.
func (s *PeriodicScheduler) Close() {
	s.Stop()
}

// run is the tick loop.
func (s *PeriodicScheduler) run(t ticker, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-t.C():
			if err := s.action(); err != nil {
				s.log.Warn("periodic action failed: %v", err)
			}
		}
	}
}
