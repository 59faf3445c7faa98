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

package base

import (
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
)

// RandomGenerator is the random generator for sampling. Sampling results only
// depend on the seed.
type RandomGenerator struct {
	*rand.Rand
}

// NewRandomGenerator creates a RandomGenerator.
func NewRandomGenerator(seed int64) RandomGenerator {
	return RandomGenerator{rand.New(rand.NewSource(seed))}
}

// Sample n values between low and high, but not in exclude. If fewer than n
// values are available, all available values are returned in ascending order.
func (rng RandomGenerator) Sample(low, high, n int, exclude ...mapset.Set[int]) []int {
	intervalLength := high - low
	excludeSet := mapset.NewThreadUnsafeSet[int]()
	for _, set := range exclude {
		set.Each(func(v int) bool {
			if v >= low && v < high {
				excludeSet.Add(v)
			}
			return false
		})
	}
	sampled := make([]int, 0, n)
	if n >= intervalLength-excludeSet.Cardinality() {
		for i := low; i < high; i++ {
			if !excludeSet.Contains(i) {
				sampled = append(sampled, i)
				excludeSet.Add(i)
			}
		}
	} else if 2*n > intervalLength-excludeSet.Cardinality() {
		// dense sampling: shuffle candidates
		candidates := make([]int, 0, intervalLength-excludeSet.Cardinality())
		for i := low; i < high; i++ {
			if !excludeSet.Contains(i) {
				candidates = append(candidates, i)
			}
		}
		for i := 0; i < n; i++ {
			j := i + rng.Intn(len(candidates)-i)
			candidates[i], candidates[j] = candidates[j], candidates[i]
		}
		sampled = append(sampled, candidates[:n]...)
	} else {
		for len(sampled) < n {
			v := rng.Intn(intervalLength) + low
			if !excludeSet.Contains(v) {
				sampled = append(sampled, v)
				excludeSet.Add(v)
			}
		}
	}
	return sampled
}

// SampleOf n distinct elements of pool, but not in exclude.
func SampleOf[T comparable](rng RandomGenerator, pool []T, n int, exclude ...mapset.Set[T]) []T {
	excludePositions := mapset.NewThreadUnsafeSet[int]()
	for i, v := range pool {
		for _, set := range exclude {
			if set.Contains(v) {
				excludePositions.Add(i)
				break
			}
		}
	}
	positions := rng.Sample(0, len(pool), n, excludePositions)
	sampled := make([]T, len(positions))
	for i, position := range positions {
		sampled[i] = pool[position]
	}
	return sampled
}
