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
	"slices"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/graph"
	"github.com/samber/lo"
)

// FrequentUser splits the edges of allow-listed users only. The candidates
// for test and validation are the position of each allow-listed user's last
// edge. Test is drawn first and validation is drawn from the candidates left.
// All other edges of allow-listed users are train. Edges of users not in
// Users are excluded from every subset.
type FrequentUser struct {
	Users          mapset.Set[int32]
	TestSize       int
	ValidationSize int
	Seed           int64
}

func (s *FrequentUser) Split(edges []graph.Edge) (*Split, error) {
	n := len(edges)
	if n == 0 {
		return &Split{}, nil
	}
	pool := available{bitset.New(uint(n))}
	last := make(map[int32]int)
	for i, edge := range edges {
		if s.Users.Contains(edge.User) {
			pool.Set(uint(i))
			last[edge.User] = i
		}
	}
	candidates := lo.Values(last)
	slices.Sort(candidates)
	if len(candidates) < s.TestSize {
		return nil, &InsufficientDataError{Subset: SubsetTest, Requested: s.TestSize, Available: len(candidates)}
	}
	if len(candidates)-s.TestSize < s.ValidationSize {
		return nil, &InsufficientDataError{Subset: SubsetValidation, Requested: s.ValidationSize, Available: len(candidates) - s.TestSize}
	}
	rng := base.NewRandomGenerator(s.Seed)
	result := &Split{}
	result.Test = pool.take(base.SampleOf(rng, candidates, s.TestSize))
	result.Validation = pool.take(base.SampleOf(rng, candidates, s.ValidationSize, mapset.NewThreadUnsafeSet(result.Test...)))
	result.Train = pool.rest()
	result.Excluded = n - result.Len()
	return result, nil
}
