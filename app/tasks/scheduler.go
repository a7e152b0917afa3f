package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nshemesh/cartcomb/app/cfg"
)

// A scrape run drives a full browser session plus a catalog replacement, so
// the per-task ceiling is generous.
const taskTimeout = 15 * time.Minute

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs ingestion tasks on a fixed pool of workers. Tasks are
// executed in FIFO order; a failed task is logged and dropped, never
// re-enqueued. Concurrent browser sessions are bounded by the worker count.
type Scheduler struct {
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler() TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		workerCount: cfg.Get().WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels the workers and waits for in-flight tasks. The queue channel
// is left open: closing it would let a racing EnqueueTask panic on a send to
// a closed channel; workers exit via context cancellation instead.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		// Failures stay isolated to this retailer. The next trigger starts
		// fresh; downloads already retried at the HTTP layer.
		slog.Error("Worker task execution failed", "worker_id", workerID,
			"type", string(task.GetType()), "id", task.GetID(),
			"retailer", task.GetRetailerName(), "error", err)
	}
}
