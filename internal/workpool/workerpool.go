package workpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/channels"
	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/models"
)

// ErrStopped is returned by Submit after Stop has been called.
var ErrStopped = errors.New("worker pool stopped")

const jobTimeout = 30 * time.Second

type WorkerPool struct {
	WorkerCount int
	Channels    *channels.Channels

	mu     sync.RWMutex
	closed bool
}

func New(channels *channels.Channels, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		WorkerCount: workerCount,
		Channels:    channels,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.WorkerCount; i++ {
		go wp.worker(ctx, i)
	}
}

// Submit queues a job. It blocks while the queue is full and gives up when
// ctx is done.
func (wp *WorkerPool) Submit(ctx context.Context, job models.Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrStopped
	}

	wp.Channels.WG.Add(1)
	select {
	case wp.Channels.Jobs <- job:
		return nil
	case <-ctx.Done():
		wp.Channels.WG.Done()
		return ctx.Err()
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	logger.Debug("Worker %d started.", id)
	for job := range wp.Channels.Jobs {
		wp.run(id, job)
	}
	logger.Debug("Worker %d stopped.", id)
}

func (wp *WorkerPool) run(id int, job models.Job) {
	defer wp.Channels.WG.Done()

	opCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	err := job.Run(opCtx)
	if err != nil {
		logger.Error("[%s] Worker %d failed job %s: %v", job.Service, id, job.ID, err)
	} else {
		logger.Debug("[%s] Worker %d completed job %s", job.Service, id, job.ID)
	}

	if job.Done != nil {
		job.Done <- err
	}
}

// Stop closes the queue. Workers exit after draining queued jobs.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return
	}
	wp.closed = true
	close(wp.Channels.Jobs)
}
