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
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/gorse-io/reviewgraph/graph"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEdges(n int) []graph.Edge {
	edges := make([]graph.Edge, n)
	for i := range edges {
		edges[i] = graph.Edge{User: int32(i%7 + 1), Business: int32(i%3 + 1), Rating: float32(i%5 + 1)}
	}
	return edges
}

// assertPartition checks subsets are disjoint and ascending, and returns the
// union.
func assertPartition(t *testing.T, s *Split) mapset.Set[int] {
	union := mapset.NewSet[int]()
	for _, subset := range [][]int{s.Train, s.Validation, s.Test} {
		assert.IsIncreasing(t, subset)
		for _, position := range subset {
			assert.True(t, union.Add(position), "position %d assigned twice", position)
		}
	}
	return union
}

func TestTail(t *testing.T) {
	splitter := &Tail{TestSize: 3, ValidationSize: 5, Skip: 1}
	s, err := splitter.Split(newEdges(20))
	require.NoError(t, err)
	assert.Equal(t, []int{16, 17, 18}, s.Test)
	assert.Equal(t, []int{11, 12, 13, 14, 15}, s.Validation)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 19}, s.Train)
	assert.Equal(t, mapset.NewSet(rangeOf(0, 20)...), assertPartition(t, s))

	// exactly enough
	s, err = splitter.Split(newEdges(9))
	require.NoError(t, err)
	assert.Equal(t, []int{8}, s.Train)
	assert.Len(t, s.Validation, 5)
	assert.Len(t, s.Test, 3)
}

func TestTailSkip(t *testing.T) {
	// nothing held back
	s, err := (&Tail{TestSize: 2, ValidationSize: 3, Skip: 0}).Split(newEdges(10))
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, s.Test)
	assert.Equal(t, []int{5, 6, 7}, s.Validation)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.Train)
	assert.Equal(t, mapset.NewSet(rangeOf(0, 10)...), assertPartition(t, s))

	// every edge held back
	for _, skip := range []int{5, 7} {
		s, err = (&Tail{Skip: skip}).Split(newEdges(5))
		require.NoError(t, err)
		assert.Empty(t, s.Test)
		assert.Empty(t, s.Validation)
		assert.Equal(t, rangeOf(0, 5), s.Train)

		_, err = (&Tail{TestSize: 2, Skip: skip}).Split(newEdges(5))
		var insufficient *InsufficientDataError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, InsufficientDataError{Subset: SubsetTest, Requested: 2, Available: 0}, *insufficient)
	}
}

func TestTailInsufficient(t *testing.T) {
	_, err := (&Tail{TestSize: 3, ValidationSize: 5, Skip: 1}).Split(newEdges(8))
	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, InsufficientDataError{Subset: SubsetValidation, Requested: 5, Available: 4}, *insufficient)

	_, err = (&Tail{TestSize: 3, ValidationSize: 5, Skip: 1}).Split(newEdges(2))
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, SubsetTest, insufficient.Subset)
	assert.Equal(t, 1, insufficient.Available)

	_, err = (&Tail{ValidationSize: 1000}).Split(newEdges(10))
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, InsufficientDataError{Subset: SubsetValidation, Requested: 1000, Available: 10}, *insufficient)
}

func TestRandom(t *testing.T) {
	edges := newEdges(500)
	for seed := int64(0); seed < 5; seed++ {
		splitter := &Random{TestSize: 50, ValidationSize: 100, Seed: seed}
		s, err := splitter.Split(edges)
		require.NoError(t, err)
		assert.Len(t, s.Test, 50)
		assert.Len(t, s.Validation, 100)
		assert.Len(t, s.Train, 350)
		assert.Equal(t, mapset.NewSet(rangeOf(0, 500)...), assertPartition(t, s))
		// reproducible
		again, err := splitter.Split(edges)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
	a, err := (&Random{TestSize: 50, ValidationSize: 100, Seed: 1}).Split(edges)
	require.NoError(t, err)
	b, err := (&Random{TestSize: 50, ValidationSize: 100, Seed: 2}).Split(edges)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test, b.Test)

	// take everything
	s, err := (&Random{TestSize: 4, ValidationSize: 6}).Split(newEdges(10))
	require.NoError(t, err)
	assert.Empty(t, s.Train)
	assert.Equal(t, 10, assertPartition(t, s).Cardinality())
}

func TestRandomInsufficient(t *testing.T) {
	var insufficient *InsufficientDataError
	_, err := (&Random{TestSize: 0, ValidationSize: 1000}).Split(newEdges(10))
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, InsufficientDataError{Subset: SubsetValidation, Requested: 1000, Available: 10}, *insufficient)
	_, err = (&Random{TestSize: 11}).Split(newEdges(10))
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, SubsetTest, insufficient.Subset)
}

func TestFrequentUser(t *testing.T) {
	// users 1..7 round robin over 70 edges
	edges := newEdges(70)
	users := mapset.NewSet[int32](1, 2, 3, 5, 6)
	lastPositions := map[int]int32{63: 1, 64: 2, 65: 3, 67: 5, 68: 6}
	splitter := &FrequentUser{Users: users, TestSize: 2, ValidationSize: 2, Seed: 3}
	s, err := splitter.Split(edges)
	require.NoError(t, err)
	assert.Len(t, s.Test, 2)
	assert.Len(t, s.Validation, 2)
	union := assertPartition(t, s)
	for position := range union.Iter() {
		assert.True(t, users.Contains(edges[position].User))
	}
	for _, position := range append(append([]int{}, s.Test...), s.Validation...) {
		assert.Contains(t, lastPositions, position)
	}
	// union is every edge of allow-listed users
	assert.Equal(t, 50, union.Cardinality())
	assert.Equal(t, 20, s.Excluded)

	again, err := splitter.Split(edges)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestFrequentUserInsufficient(t *testing.T) {
	var insufficient *InsufficientDataError
	splitter := &FrequentUser{Users: mapset.NewSet[int32](1, 2), TestSize: 1, ValidationSize: 2}
	_, err := splitter.Split(newEdges(70))
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, InsufficientDataError{Subset: SubsetValidation, Requested: 2, Available: 1}, *insufficient)

	// allow-listed users without edges bring no candidates
	splitter = &FrequentUser{Users: mapset.NewSet[int32](100), TestSize: 1}
	_, err = splitter.Split(newEdges(70))
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 0, insufficient.Available)
}

func TestRatio(t *testing.T) {
	s, err := (&Ratio{TrainRatio: 0.66}).Split(newEdges(10))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, s.Train)
	assert.Equal(t, []int{6, 7, 8, 9}, s.Validation)
	assert.Empty(t, s.Test)
}

func TestEmpty(t *testing.T) {
	for _, splitter := range []Splitter{
		&Tail{TestSize: 1000, ValidationSize: 10000, Skip: 1},
		&Random{TestSize: 10000, ValidationSize: 10000},
		&FrequentUser{Users: mapset.NewSet[int32](1), TestSize: 100, ValidationSize: 1000},
		&Ratio{TrainRatio: 0.66},
	} {
		s, err := splitter.Split(nil)
		require.NoError(t, err)
		assert.Zero(t, s.Len())
	}
}

func TestNew(t *testing.T) {
	cfg := config.GetDefaultConfig().Split
	splitter, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, &Tail{TestSize: 1000, ValidationSize: 10000, Skip: 1}, splitter)

	cfg.Policy = config.PolicyRandom
	cfg.Seed = 7
	splitter, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, &Random{TestSize: 10000, ValidationSize: 10000, Seed: 7}, splitter)

	cfg.Policy = config.PolicyFrequent
	_, err = New(cfg, nil)
	assert.Error(t, err)
	users := mapset.NewSet[int32](1)
	splitter, err = New(cfg, users)
	require.NoError(t, err)
	assert.Equal(t, &FrequentUser{Users: users, TestSize: 100, ValidationSize: 1000, Seed: 7}, splitter)

	cfg.Policy = config.PolicyRatio
	splitter, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, &Ratio{TrainRatio: 0.66}, splitter)

	cfg.Policy = "unknown"
	_, err = New(cfg, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
}
