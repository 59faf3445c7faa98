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
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestRandomGenerator_Sample(t *testing.T) {
	excludeSet := mapset.NewSet(0, 1, 2, 3, 4)
	rng := NewRandomGenerator(0)
	for i := 1; i <= 10; i++ {
		sampled := rng.Sample(0, 10, i, excludeSet)
		set := mapset.NewSet(sampled...)
		assert.Equal(t, min(i, 5), len(sampled))
		assert.Equal(t, min(i, 5), set.Cardinality())
		assert.False(t, set.ContainsAny(0, 1, 2, 3, 4))
	}
}

func TestRandomGenerator_SampleSparse(t *testing.T) {
	rng := NewRandomGenerator(1)
	sampled := rng.Sample(100, 100100, 10)
	assert.Len(t, sampled, 10)
	assert.Equal(t, 10, mapset.NewSet(sampled...).Cardinality())
	for _, v := range sampled {
		assert.GreaterOrEqual(t, v, 100)
		assert.Less(t, v, 100100)
	}
}

func TestRandomGenerator_SampleDeterministic(t *testing.T) {
	a := NewRandomGenerator(42).Sample(0, 1000, 100)
	b := NewRandomGenerator(42).Sample(0, 1000, 100)
	c := NewRandomGenerator(43).Sample(0, 1000, 100)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	// dense path
	a = NewRandomGenerator(42).Sample(0, 100, 70)
	b = NewRandomGenerator(42).Sample(0, 100, 70)
	assert.Equal(t, a, b)
	assert.Equal(t, 70, mapset.NewSet(a...).Cardinality())
}

func TestSampleOf(t *testing.T) {
	rng := NewRandomGenerator(0)
	pool := []int32{10, 20, 30, 40, 50}
	sampled := SampleOf(rng, pool, 2, mapset.NewSet[int32](10, 30))
	assert.Len(t, sampled, 2)
	assert.Subset(t, []int32{20, 40, 50}, sampled)
	assert.Empty(t, SampleOf(rng, []int32{}, 3))
}
