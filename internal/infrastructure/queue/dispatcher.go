package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const channelBuffer = 256

// ErrPoolStopped is returned by Do once the pool's context has been cancelled.
var ErrPoolStopped = errors.New("worker pool stopped")

type job struct {
	fn   func()
	done chan struct{}
}

// Pool runs CPU-bound jobs (password hashing) on a fixed set of workers so
// that a burst of concurrent logins cannot occupy every core at once.
type Pool struct {
	jobs    chan job
	workers int
	depth   prometheus.Gauge
	log     zerolog.Logger

	stopped chan struct{}
	wg      sync.WaitGroup
}

// NewPool creates a Pool with numWorkers workers. If numWorkers <= 0,
// runtime.NumCPU() is used. depth may be nil; when set it tracks the number
// of queued jobs.
func NewPool(numWorkers int, depth prometheus.Gauge, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		depth:   depth,
		log:     log,
		stopped: make(chan struct{}),
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.stopped)
	}()
	p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Do runs fn on a worker and blocks until it has finished. If ctx ends first
// Do returns ctx.Err(); fn may still run later and must not touch state the
// caller reads after an error.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	select {
	case <-p.stopped:
		return ErrPoolStopped
	default:
	}

	j := job{fn: fn, done: make(chan struct{})}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	case p.jobs <- j:
		p.observeDepth()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	case <-j.done:
		return nil
	}
}

func (p *Pool) observeDepth() {
	if p.depth != nil {
		p.depth.Set(float64(len(p.jobs)))
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			p.observeDepth()
			p.run(id, j)
		}
	}
}

func (p *Pool) run(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("worker job panicked")
		}
	}()
	j.fn()
}
