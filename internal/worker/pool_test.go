package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSubmitRunsJob(t *testing.T) {
	d := NewDispatcher(2, 4, testLogger())
	d.Run()
	defer d.Stop()

	ran := false
	err := d.Submit(context.Background(), FuncJob{
		JobID: "job-1",
		Fn: func(ctx context.Context) error {
			ran = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ran {
		t.Error("job did not run before Submit returned")
	}
}

func TestSubmitReturnsJobError(t *testing.T) {
	d := NewDispatcher(1, 1, testLogger())
	d.Run()
	defer d.Stop()

	want := errors.New("boom")
	err := d.Submit(context.Background(), FuncJob{
		JobID: "job-err",
		Fn:    func(ctx context.Context) error { return want },
	})
	if !errors.Is(err, want) {
		t.Errorf("Submit = %v, want %v", err, want)
	}
}

func TestConcurrencyBounded(t *testing.T) {
	const workers = 2
	d := NewDispatcher(workers, 16, testLogger())
	d.Run()
	defer d.Stop()

	var active, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Submit(context.Background(), FuncJob{
				JobID: "job-n",
				Fn: func(ctx context.Context) error {
					n := atomic.AddInt64(&active, 1)
					for {
						p := atomic.LoadInt64(&peak)
						if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					atomic.AddInt64(&active, -1)
					return nil
				},
			})
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt64(&peak); p > workers {
		t.Errorf("peak concurrency = %d, want <= %d", p, workers)
	}
}

func TestSubmitFailsFastWhenQueueFull(t *testing.T) {
	d := NewDispatcher(1, 1, testLogger())
	d.Run()
	defer d.Stop()

	block := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker.
	go d.Submit(context.Background(), FuncJob{
		JobID: "blocker",
		Fn: func(ctx context.Context) error {
			close(started)
			<-block
			return nil
		},
	})
	<-started

	// Fill the queue slot.
	go d.Submit(context.Background(), FuncJob{
		JobID: "queued",
		Fn:    func(ctx context.Context) error { return nil },
	})

	// Give the queued submit a moment to occupy the slot, then overflow.
	deadline := time.After(time.Second)
	for {
		err := d.Submit(context.Background(), FuncJob{
			JobID: "overflow",
			Fn:    func(ctx context.Context) error { return nil },
		})
		if err != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Submit never rejected while the queue was saturated")
		case <-time.After(time.Millisecond):
		}
	}

	close(block)
}

func TestStopFailsQueuedJobs(t *testing.T) {
	// No workers running, so the submitted task can only sit in the
	// queue. Stop must fail it rather than strand the submitter.
	d := NewDispatcher(1, 4, testLogger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Submit(context.Background(), FuncJob{
			JobID: "stranded",
			Fn:    func(ctx context.Context) error { return nil },
		})
	}()

	deadline := time.After(time.Second)
	for len(d.queue) == 0 {
		select {
		case <-deadline:
			t.Fatal("task never reached the queue")
		case <-time.After(time.Millisecond):
		}
	}

	d.Stop()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("queued job should fail when the dispatcher stops")
		}
	case <-time.After(time.Second):
		t.Fatal("submitter still blocked after Stop")
	}
}

func TestSubmitHonorsContext(t *testing.T) {
	d := NewDispatcher(1, 4, testLogger())
	d.Run()
	defer d.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	go d.Submit(context.Background(), FuncJob{
		JobID: "blocker",
		Fn: func(ctx context.Context) error {
			close(started)
			<-block
			return nil
		},
	})
	<-started
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Submit(ctx, FuncJob{
		JobID: "cancelled",
		Fn:    func(ctx context.Context) error { return nil },
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Submit with cancelled ctx = %v, want context.Canceled", err)
	}
}
