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
package split

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/graph"
)

// Random draws the test set and then the validation set uniformly without
// replacement. The remaining edges are train. Results depend only on Seed
// and the number of edges.
type Random struct {
	TestSize       int
	ValidationSize int
	Seed           int64
}

func (s *Random) Split(edges []graph.Edge) (*Split, error) {
	n := len(edges)
	if n == 0 {
		return &Split{}, nil
	}
	if n < s.TestSize {
		return nil, &InsufficientDataError{Subset: SubsetTest, Requested: s.TestSize, Available: n}
	}
	if n-s.TestSize < s.ValidationSize {
		return nil, &InsufficientDataError{Subset: SubsetValidation, Requested: s.ValidationSize, Available: n - s.TestSize}
	}
	rng := base.NewRandomGenerator(s.Seed)
	pool := newAvailable(n)
	result := &Split{}
	result.Test = pool.take(rng.Sample(0, n, s.TestSize))
	result.Validation = pool.take(rng.Sample(0, n, s.ValidationSize, mapset.NewThreadUnsafeSet(result.Test...)))
	result.Train = pool.rest()
	return result, nil
}
