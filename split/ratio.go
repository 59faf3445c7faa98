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

// Ratio puts the oldest TrainRatio of edges into train and the rest into
// validation. No test set is produced.
type Ratio struct {
	TrainRatio float64
}

func (s *Ratio) Split(edges []graph.Edge) (*Split, error) {
	n := len(edges)
	if n == 0 {
		return &Split{}, nil
	}
	cutoff := int(float64(n) * s.TrainRatio)
	return &Split{
		Train:      rangeOf(0, cutoff),
		Validation: rangeOf(cutoff, n),
	}, nil
}
