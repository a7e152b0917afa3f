package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubTask struct {
	Task
	execute func(ctx context.Context) error
}

func newStubTask(name string, execute func(ctx context.Context) error) *stubTask {
	return &stubTask{
		Task:    NewTask(TaskTypeIngestRetailer, name),
		execute: execute,
	}
}

func (t *stubTask) Execute(ctx context.Context) error {
	return t.execute(ctx)
}

func newTestScheduler(workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func TestSchedulerExecutesAllTasks(t *testing.T) {
	s := newTestScheduler(2)

	var executed int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		task := newStubTask("retailer", func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&executed, 1)
			return nil
		})
		if err := s.EnqueueTask(task); err != nil {
			t.Fatalf("failed to enqueue: %v", err)
		}
	}

	s.Start()
	wg.Wait()
	s.Stop()

	if got := atomic.LoadInt32(&executed); got != 5 {
		t.Errorf("expected 5 executions, got %d", got)
	}
}

func TestSchedulerBoundsConcurrency(t *testing.T) {
	const workers = 2
	s := newTestScheduler(workers)

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		task := newStubTask("retailer", func(ctx context.Context) error {
			defer wg.Done()
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil
		})
		if err := s.EnqueueTask(task); err != nil {
			t.Fatalf("failed to enqueue: %v", err)
		}
	}

	s.Start()
	wg.Wait()
	s.Stop()

	if got := atomic.LoadInt32(&peak); got > workers {
		t.Errorf("expected at most %d concurrent tasks, observed %d", workers, got)
	}
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	s := newTestScheduler(1)

	var wg sync.WaitGroup
	wg.Add(2)

	failing := newStubTask("broken", func(ctx context.Context) error {
		defer wg.Done()
		return errors.New("portal unreachable")
	})
	var succeeded atomic.Bool
	healthy := newStubTask("healthy", func(ctx context.Context) error {
		defer wg.Done()
		succeeded.Store(true)
		return nil
	})

	if err := s.EnqueueTask(failing); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}
	if err := s.EnqueueTask(healthy); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}

	s.Start()
	wg.Wait()
	s.Stop()

	if !succeeded.Load() {
		t.Error("expected the healthy task to run after the failing one")
	}
}

func TestSchedulerEnqueueAfterStopDoesNotPanic(t *testing.T) {
	s := newTestScheduler(1)
	s.Start()
	s.Stop()

	// The queue stays open after Stop; a late enqueue either lands in the
	// buffer or reports the cancelled context, but never panics.
	for i := 0; i < 10; i++ {
		task := newStubTask("late", func(ctx context.Context) error { return nil })
		_ = s.EnqueueTask(task)
	}
}

func TestSchedulerRejectsWhenQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 1),
	}

	blocker := newStubTask("a", func(ctx context.Context) error { return nil })
	if err := s.EnqueueTask(blocker); err != nil {
		t.Fatalf("failed to enqueue first task: %v", err)
	}

	overflow := newStubTask("b", func(ctx context.Context) error { return nil })
	if err := s.EnqueueTask(overflow); err == nil {
		t.Error("expected an error when the queue is full")
	}
}
