package mutator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voyagehq/journeyd/internal/domain"
)

// Store is the persistence boundary the runner mutates through
type Store interface {
	GetJourney(ctx context.Context, id string) (domain.Journey, error)
	SaveJourney(ctx context.Context, j domain.Journey) (domain.Journey, error)
}

// Runner executes commands with a single writer per journey. Commands for
// the same journey run strictly in submission order; commands for
// different journeys run independently. The read-modify-append sequence of
// one command never interleaves with another on the same journey.
type Runner struct {
	store   Store
	applier Applier
	timeout time.Duration

	mu     sync.Mutex
	queues map[string]chan *job
}

type job struct {
	ctx     context.Context
	cmd     Command
	claimed atomic.Bool
	done    chan jobResult
}

type jobResult struct {
	journey domain.Journey
	err     error
}

// NewRunner creates a runner. A zero timeout disables the bounded wait.
func NewRunner(store Store, matcher AgentMatcher, timeout time.Duration) *Runner {
	return &Runner{
		store:   store,
		applier: Applier{Matcher: matcher},
		timeout: timeout,
		queues:  make(map[string]chan *job),
	}
}

// Execute queues cmd behind any in-flight mutation on the same journey and
// waits for its result. If the command cannot start before the runner's
// timeout it is abandoned unexecuted and ErrMutationTimeout is returned;
// the journey log is unchanged in that case.
func (r *Runner) Execute(ctx context.Context, cmd Command) (domain.Journey, error) {
	jb := &job{ctx: ctx, cmd: cmd, done: make(chan jobResult, 1)}

	var deadline <-chan time.Time
	if r.timeout > 0 {
		timer := time.NewTimer(r.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case r.queueFor(cmd.JourneyID()) <- jb:
	case <-deadline:
		return domain.Journey{}, domain.ErrMutationTimeout
	case <-ctx.Done():
		return domain.Journey{}, ctx.Err()
	}

	select {
	case res := <-jb.done:
		return res.journey, res.err
	case <-deadline:
		// The worker skips jobs it cannot claim, so winning the claim
		// guarantees the command never executed.
		if jb.claimed.CompareAndSwap(false, true) {
			return domain.Journey{}, domain.ErrMutationTimeout
		}
		res := <-jb.done
		return res.journey, res.err
	case <-ctx.Done():
		if jb.claimed.CompareAndSwap(false, true) {
			return domain.Journey{}, ctx.Err()
		}
		res := <-jb.done
		return res.journey, res.err
	}
}

func (r *Runner) queueFor(journeyID string) chan *job {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[journeyID]
	if !ok {
		q = make(chan *job, 64)
		r.queues[journeyID] = q
		go r.work(q)
	}
	return q
}

func (r *Runner) work(q chan *job) {
	for jb := range q {
		if !jb.claimed.CompareAndSwap(false, true) {
			continue // abandoned by a timed-out caller
		}
		jb.done <- r.run(jb.ctx, jb.cmd)
	}
}

func (r *Runner) run(ctx context.Context, cmd Command) jobResult {
	j, err := r.store.GetJourney(ctx, cmd.JourneyID())
	if err != nil {
		return jobResult{err: err}
	}

	res, err := r.applier.Apply(j, cmd)
	if err != nil {
		return jobResult{err: err}
	}

	saved, err := r.store.SaveJourney(ctx, res.Journey)
	if err != nil {
		return jobResult{err: &domain.PersistenceError{Op: "save journey", Err: err}}
	}
	return jobResult{journey: saved}
}
