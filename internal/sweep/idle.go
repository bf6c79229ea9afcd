package sweep

import (
	"sync"
)

// Scheduler defers a task to a non-blocking execution slot. There is no
// ordering or fairness guarantee beyond "runs when the worker is otherwise
// idle". Injectable so tests can run tasks synchronously.
type Scheduler interface {
	Schedule(task func())
}

// IdleQueue is the default Scheduler: one background worker draining a task
// queue, standing in for the host's idle callback.
type IdleQueue struct {
	tasks chan func()
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func NewIdleQueue(capacity int) *IdleQueue {
	if capacity <= 0 {
		capacity = 16
	}
	q := &IdleQueue{
		tasks: make(chan func(), capacity),
		stop:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *IdleQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case task := <-q.tasks:
			task()
		case <-q.stop:
			return
		}
	}
}

func (q *IdleQueue) Schedule(task func()) {
	select {
	case q.tasks <- task:
	case <-q.stop:
	}
}

func (q *IdleQueue) Close() {
	q.once.Do(func() {
		close(q.stop)
		q.wg.Wait()
	})
}

// SyncScheduler runs tasks inline. For tests.
type SyncScheduler struct{}

func (SyncScheduler) Schedule(task func()) { task() }
