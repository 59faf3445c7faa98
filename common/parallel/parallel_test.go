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
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	a := lo.Range(10000)
	b := make([]int, len(a))
	workerIds := make([]int, len(a))
	// multiple threads
	err := Parallel(len(a), 4, func(workerId, jobId int) error {
		b[jobId] = a[jobId]
		workerIds[jobId] = workerId
		return nil
	})
	assert.NoError(t, err)
	workersSet := mapset.NewSet(workerIds...)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, 4, workersSet.Cardinality())
	// single thread
	err = Parallel(len(a), 1, func(workerId, jobId int) error {
		b[jobId] = a[jobId]
		workerIds[jobId] = workerId
		return nil
	})
	assert.NoError(t, err)
	workersSet = mapset.NewSet(workerIds...)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, workersSet.Cardinality())
}

func TestParallelError(t *testing.T) {
	for _, workers := range []int{1, 4} {
		err := Parallel(100, workers, func(_, jobId int) error {
			if jobId == 42 {
				return errors.New("job 42 failed")
			}
			return nil
		})
		assert.ErrorContains(t, err, "job 42 failed")
	}
}

func TestFor(t *testing.T) {
	a := lo.Range(10000)
	b := make([]int, len(a))
	For(len(a), 4, func(jobId int) {
		b[jobId] = a[jobId]
	})
	assert.Equal(t, a, b)
}
