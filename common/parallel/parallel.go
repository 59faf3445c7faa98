// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"sync"

	"github.com/juju/errors"
)

const chanSize = 1024

// Parallel schedules and runs jobs in parallel. nJobs is the number of jobs and
// nWorkers is the number of goroutines. The first error (by job id) is returned
// after all workers stopped.
func Parallel(nJobs, nWorkers int, worker func(workerId, jobId int) error) error {
	if nWorkers <= 1 {
		for i := 0; i < nJobs; i++ {
			if err := worker(0, i); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	}
	c := make(chan int, chanSize)
	// producer
	go func() {
		defer close(c)
		for i := 0; i < nJobs; i++ {
			c <- i
		}
	}()
	// consumer
	var wg sync.WaitGroup
	errs := make([]error, nJobs)
	for j := 0; j < nWorkers; j++ {
		workerId := j
		wg.Go(func() {
			for jobId := range c {
				errs[jobId] = worker(workerId, jobId)
			}
		})
	}
	wg.Wait()
	// check errors
	for _, err := range errs {
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// For runs worker for each job id in [0, nJobs).
func For(nJobs, nWorkers int, worker func(int)) {
	_ = Parallel(nJobs, nWorkers, func(_, jobId int) error {
		worker(jobId)
		return nil
	})
}
