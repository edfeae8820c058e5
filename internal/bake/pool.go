package bake

import (
	"context"
	"sync"
)

// RenderJob asks for one variant to be drawn.
type RenderJob struct {
	ID int
}

// RenderResult is what a worker reports back for a job.
type RenderResult struct {
	ID     int
	Placed bool
	Err    error
}

// WorkerPool draws variants on a fixed number of goroutines. Each job owns
// a distinct atlas cell, so workers never touch the same pixels.
type WorkerPool struct {
	jobQueue chan RenderJob
	results  chan RenderResult
	workers  int
	render   func(id int) (bool, error)
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool starts workers goroutines that call render for every job.
func NewWorkerPool(ctx context.Context, workers, queueSize int, render func(id int) (bool, error)) *WorkerPool {
	ctx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		jobQueue: make(chan RenderJob, queueSize),
		results:  make(chan RenderResult, queueSize),
		workers:  workers,
		render:   render,
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start worker goroutines
	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// SubmitJobBlocking submits a job and blocks until it's queued. It reports
// false once the pool has been cancelled.
func (p *WorkerPool) SubmitJobBlocking(job RenderJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Results delivers one RenderResult per processed job. It is closed by Close.
func (p *WorkerPool) Results() <-chan RenderResult {
	return p.results
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		placed, err := p.render(job.ID)
		select {
		case p.results <- RenderResult{ID: job.ID, Placed: placed, Err: err}:
		case <-p.ctx.Done():
			return
		}
	}
}

// Close stops accepting jobs, lets the queue drain and closes Results once
// every worker has exited.
func (p *WorkerPool) Close() {
	close(p.jobQueue)
	go func() {
		p.wg.Wait()
		close(p.results)
		p.cancel()
	}()
}

// Shutdown abandons outstanding work.
func (p *WorkerPool) Shutdown() {
	p.cancel()
}

// QueueLength is the number of submitted jobs no worker has picked up yet.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
