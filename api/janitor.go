/*
janitor.go - Background eviction of idle editing sessions

PURPOSE:
  Periodically evicts cached sessions that have been idle past a cutoff.
  Sessions hold a full period working set in memory; without eviction a
  long-running server accumulates one per employee that ever connected.

DESIGN:
  - Runs a background goroutine with configurable sweep interval
  - Evicts sessions untouched for longer than MaxIdle
  - Never evicts sessions with unsaved changes

USAGE:
  janitor := NewSessionJanitor(handler, log)
  janitor.Start()
  // ... later
  janitor.Stop()

SEE ALSO:
  - handlers.go: Session cache and evictIdleSessions
*/
package api

import (
	"sync"
	"time"

	"github.com/warp/timesheet-engine/logging"
)

// SessionJanitor sweeps the handler's session cache in the background.
type SessionJanitor struct {
	Handler       *Handler
	SweepInterval time.Duration
	MaxIdle       time.Duration

	log    *logging.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSessionJanitor creates a janitor with default intervals.
func NewSessionJanitor(h *Handler, log *logging.Logger) *SessionJanitor {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionJanitor{
		Handler:       h,
		SweepInterval: 10 * time.Minute,
		MaxIdle:       time.Hour,
		log:           log.WithComponent(logging.ComponentSession),
		stop:          make(chan struct{}),
	}
}

// Start begins the background sweep.
func (j *SessionJanitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.ticker = time.NewTicker(j.SweepInterval)
	j.wg.Add(1)
	go j.run()
	j.log.Info("session janitor started", "sweep_interval", j.SweepInterval.String())
}

// Stop halts the sweep and waits for the goroutine to exit.
func (j *SessionJanitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.ticker != nil {
		j.ticker.Stop()
		close(j.stop)
		j.wg.Wait()
		j.log.Info("session janitor stopped")
	}
}

func (j *SessionJanitor) run() {
	defer j.wg.Done()
	for {
		select {
		case <-j.ticker.C:
			if n := j.Handler.evictIdleSessions(j.MaxIdle); n > 0 {
				j.log.Info("evicted idle sessions", logging.FieldCount, n)
			}
		case <-j.stop:
			return
		}
	}
}
