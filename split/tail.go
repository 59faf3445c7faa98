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
	"github.com/gorse-io/reviewgraph/graph"
)

// Tail holds back the newest edges. The Skip newest edges go to train, the
// TestSize edges before them form the test set and the ValidationSize edges
// before the test set form the validation set. All older edges are train.
type Tail struct {
	TestSize       int
	ValidationSize int
	Skip           int
}

func (s *Tail) Split(edges []graph.Edge) (*Split, error) {
	n := len(edges)
	if n == 0 {
		return &Split{}, nil
	}
	skip := min(s.Skip, n)
	if n-skip < s.TestSize {
		return nil, &InsufficientDataError{Subset: SubsetTest, Requested: s.TestSize, Available: n - skip}
	}
	if n-skip-s.TestSize < s.ValidationSize {
		return nil, &InsufficientDataError{Subset: SubsetValidation, Requested: s.ValidationSize, Available: n - skip - s.TestSize}
	}
	testEnd := n - skip
	testBegin := testEnd - s.TestSize
	validationBegin := testBegin - s.ValidationSize
	pool := newAvailable(n)
	return &Split{
		Test:       pool.take(rangeOf(testBegin, testEnd)),
		Validation: pool.take(rangeOf(validationBegin, testBegin)),
		Train:      pool.rest(),
	}, nil
}
