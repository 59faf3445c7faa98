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

package dataset

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/juju/errors"
)

// Filter selects reviews by a boolean expression over `review`, for example
// `review.Stars >= 3 && review.Votes.Useful > 0`.
type Filter struct {
	source  string
	program *vm.Program
}

// NewFilter compiles a filter expression. An empty expression yields a nil
// filter which matches every review.
func NewFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(map[string]any{
		"review": Review{},
	}), expr.AsBool())
	if err != nil {
		return nil, errors.Annotatef(err, "compile filter %q", source)
	}
	return &Filter{source: source, program: program}, nil
}

// Match evaluates the filter on a review.
func (f *Filter) Match(review *Review) (bool, error) {
	if f == nil {
		return true, nil
	}
	result, err := expr.Run(f.program, map[string]any{
		"review": *review,
	})
	if err != nil {
		return false, errors.Annotatef(err, "evaluate filter %q", f.source)
	}
	return result.(bool), nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
