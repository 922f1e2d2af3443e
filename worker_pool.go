// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sitecheck

import (
	"context"
	"sync"
)

// WorkerPool runs submitted jobs on a fixed set of goroutines.
type WorkerPool struct {
	jobs chan func()
	wg   sync.WaitGroup
	ctx  context.Context
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize
// jobs. Workers stop when ctx is done; queued jobs are then dropped.
func NewWorkerPool(ctx context.Context, workers, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	wp := &WorkerPool{
		jobs: make(chan func(), queueSize),
		ctx:  ctx,
	}
	wp.wg.Add(workers)
	for range workers {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			job()
		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues job, blocking while the queue is full. It returns the
// context error once the pool's context is done.
func (wp *WorkerPool) Submit(job func()) error {
	if err := wp.ctx.Err(); err != nil {
		return err
	}
	select {
	case wp.jobs <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Close stops accepting jobs and waits for the workers to finish.
func (wp *WorkerPool) Close() {
	close(wp.jobs)
	wp.wg.Wait()
}
