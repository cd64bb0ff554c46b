// Package worker bounds the number of concurrent media jobs. Requests
// block on Submit until their job has run, so the pool acts as a
// concurrency limiter for ffmpeg/whisper invocations rather than an async
// queue.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of media work executed on a pool worker.
type Job interface {
	ID() string
	Execute(ctx context.Context) error
}

type task struct {
	ctx  context.Context
	job  Job
	done chan error
}

// Dispatcher manages a fixed pool of workers and dispatches jobs to them.
type Dispatcher struct {
	maxWorkers int
	queue      chan task
	quit       chan struct{}
	wg         sync.WaitGroup
	logger     *logrus.Logger
}

// NewDispatcher creates a Dispatcher with maxWorkers workers and a job
// queue of queueSize.
func NewDispatcher(maxWorkers, queueSize int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		queue:      make(chan task, queueSize),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the workers.
func (d *Dispatcher) Run() {
	d.logger.Infof("Dispatcher starting with %d workers", d.maxWorkers)
	for i := 1; i <= d.maxWorkers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for {
		select {
		case t := <-d.queue:
			if err := t.ctx.Err(); err != nil {
				t.done <- err
				continue
			}
			d.logger.Debugf("Worker %d: started job %s", id, t.job.ID())
			err := t.job.Execute(t.ctx)
			if err != nil {
				d.logger.Warnf("Worker %d: job %s failed: %v", id, t.job.ID(), err)
			} else {
				d.logger.Debugf("Worker %d: finished job %s", id, t.job.ID())
			}
			t.done <- err
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues a job and blocks until it has been executed, returning
// the job's error. A full queue fails fast instead of blocking the caller
// behind an unbounded backlog.
func (d *Dispatcher) Submit(ctx context.Context, job Job) error {
	t := task{ctx: ctx, job: job, done: make(chan error, 1)}

	select {
	case d.queue <- t:
	default:
		return fmt.Errorf("job queue full, rejecting job %s", job.ID())
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		// The job may still run; its result is discarded.
		return ctx.Err()
	}
}

// Stop shuts down the workers after their current jobs finish. Tasks
// still queued are failed so their submitters unblock instead of waiting
// on a result that will never come.
func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()

	for {
		select {
		case t := <-d.queue:
			t.done <- fmt.Errorf("dispatcher stopped before job %s ran", t.job.ID())
		default:
			d.logger.Info("Dispatcher: all workers stopped")
			return
		}
	}
}

// FuncJob adapts a closure to the Job interface.
type FuncJob struct {
	JobID string
	Fn    func(ctx context.Context) error
}

func (j FuncJob) ID() string                        { return j.JobID }
func (j FuncJob) Execute(ctx context.Context) error { return j.Fn(ctx) }
