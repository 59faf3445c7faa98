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
package graph

import (
	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/common/parallel"
	"github.com/gorse-io/reviewgraph/dataset"
	"github.com/juju/errors"
)

const batchSize = 4096

// Edge is a review as a weighted link between a user and a business.
type Edge struct {
	User     int32
	Business int32
	Rating   float32
}

// Materialize converts reviews to edges by looking up user and business
// numbers. Edges keep the order of reviews. A review referencing an unknown
// user or business fails the whole conversion with *base.MissingKeyError.
func Materialize(reviews []dataset.Review, users, businesses *base.Index, jobs int) ([]Edge, error) {
	edges := make([]Edge, len(reviews))
	nBatches := (len(reviews) + batchSize - 1) / batchSize
	err := parallel.Parallel(nBatches, jobs, func(_, batch int) error {
		begin := batch * batchSize
		end := min(begin+batchSize, len(reviews))
		for i := begin; i < end; i++ {
			user, err := users.Lookup(reviews[i].UserID)
			if err != nil {
				return annotateIndex(err, "user")
			}
			business, err := businesses.Lookup(reviews[i].BusinessID)
			if err != nil {
				return annotateIndex(err, "business")
			}
			edges[i] = Edge{User: user, Business: business, Rating: reviews[i].Stars}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return edges, nil
}

func annotateIndex(err error, index string) error {
	var missing *base.MissingKeyError
	if errors.As(err, &missing) {
		missing.Index = index
	}
	return err
}

// Select returns edges at positions, in the order of positions.
func Select(edges []Edge, positions []int) []Edge {
	selected := make([]Edge, len(positions))
	for i, position := range positions {
		selected[i] = edges[position]
	}
	return selected
}
