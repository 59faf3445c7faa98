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
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/gorse-io/reviewgraph/graph"
	"github.com/juju/errors"
)

const (
	SubsetTrain      = "train"
	SubsetValidation = "validation"
	SubsetTest       = "test"
)

// Split assigns edge positions to subsets. Positions in each subset are
// ascending and subsets are pairwise disjoint. Excluded counts positions that
// belong to no subset.
type Split struct {
	Train      []int
	Validation []int
	Test       []int
	Excluded   int
}

// Len returns the number of positions in all subsets.
func (s *Split) Len() int {
	return len(s.Train) + len(s.Validation) + len(s.Test)
}

// InsufficientDataError is returned when a subset requests more edges than
// are available.
type InsufficientDataError struct {
	Subset    string
	Requested int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s set requests %d edges but only %d available", e.Subset, e.Requested, e.Available)
}

// Splitter partitions edges ordered by review date.
type Splitter interface {
	Split(edges []graph.Edge) (*Split, error)
}

// New creates the splitter selected by cfg.Policy. users is the allow-list of
// user numbers used by the frequent policy.
func New(cfg config.SplitConfig, users mapset.Set[int32]) (Splitter, error) {
	switch cfg.Policy {
	case config.PolicyTail:
		return &Tail{
			TestSize:       cfg.Tail.TestSize,
			ValidationSize: cfg.Tail.ValidationSize,
			Skip:           cfg.Tail.Skip,
		}, nil
	case config.PolicyRandom:
		return &Random{
			TestSize:       cfg.Random.TestSize,
			ValidationSize: cfg.Random.ValidationSize,
			Seed:           cfg.Seed,
		}, nil
	case config.PolicyFrequent:
		if users == nil {
			return nil, errors.New("frequent split requires an allow list")
		}
		return &FrequentUser{
			Users:          users,
			TestSize:       cfg.Frequent.TestSize,
			ValidationSize: cfg.Frequent.ValidationSize,
			Seed:           cfg.Seed,
		}, nil
	case config.PolicyRatio:
		return &Ratio{TrainRatio: cfg.Ratio.TrainRatio}, nil
	default:
		return nil, errors.NotValidf("split policy %q", cfg.Policy)
	}
}

// available is the working set of positions not yet assigned.
type available struct {
	*bitset.BitSet
}

func newAvailable(n int) available {
	b := bitset.New(uint(n))
	b.FlipRange(0, uint(n))
	return available{b}
}

func (a available) take(positions []int) []int {
	for _, position := range positions {
		a.Clear(uint(position))
	}
	slices.Sort(positions)
	return positions
}

func (a available) rest() []int {
	positions := make([]int, 0, a.Count())
	for i, ok := a.NextSet(0); ok; i, ok = a.NextSet(i + 1) {
		positions = append(positions, int(i))
	}
	return positions
}

func rangeOf(begin, end int) []int {
	positions := make([]int, 0, end-begin)
	for i := begin; i < end; i++ {
		positions = append(positions, i)
	}
	return positions
}
