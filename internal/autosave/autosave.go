// Package autosave runs the periodic durability sweep: on a cron schedule
// it flushes the journey store so every confirmed mutation reaches disk
// even if the process later dies uncleanly.
package autosave

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Flusher is the store-side contract of the sweep
type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// Sweeper triggers flushes on a cron schedule
type Sweeper struct {
	flusher  Flusher
	schedule cron.Schedule

	mu      sync.Mutex
	lastRun time.Time
	runs    int

	stopChan chan struct{}
	stopOnce sync.Once
}

// ParseSchedule parses a standard five-field cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// New creates a sweeper for the given cron expression
func New(flusher Flusher, expr string) (*Sweeper, error) {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing autosave schedule %q: %w", expr, err)
	}
	return &Sweeper{
		flusher:  flusher,
		schedule: sched,
		stopChan: make(chan struct{}),
	}, nil
}

// NextRun returns the next scheduled sweep time
func (s *Sweeper) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.lastRun
	if last.IsZero() {
		last = time.Now()
	}
	return s.schedule.Next(last)
}

// Runs returns how many sweeps have completed
func (s *Sweeper) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Start runs the sweep loop until Stop or context cancellation
func (s *Sweeper) Start(ctx context.Context) {
	for {
		now := time.Now()
		next := s.schedule.Next(now)

		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(next.Sub(now)):
			s.sweep(ctx)
		}
	}
}

// Stop ends the sweep loop
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.flusher.Flush(ctx)
	if err != nil {
		log.Printf("autosave: flush failed: %v", err)
		return
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.runs++
	s.mu.Unlock()

	log.Printf("autosave: flushed %d journeys", count)
}
