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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	var filter *Filter
	match, err := filter.Match(&Review{})
	require.NoError(t, err)
	assert.True(t, match)

	filter, err = NewFilter("")
	require.NoError(t, err)
	assert.Nil(t, filter)

	filter, err = NewFilter(`review.Stars >= 4 && review.Votes.Useful > 0 && review.BusinessID != "b0"`)
	require.NoError(t, err)
	match, err = filter.Match(&Review{BusinessID: "b1", Stars: 4, Votes: Votes{Useful: 1}})
	require.NoError(t, err)
	assert.True(t, match)
	match, err = filter.Match(&Review{BusinessID: "b1", Stars: 3, Votes: Votes{Useful: 1}})
	require.NoError(t, err)
	assert.False(t, match)
	match, err = filter.Match(&Review{BusinessID: "b0", Stars: 5, Votes: Votes{Useful: 1}})
	require.NoError(t, err)
	assert.False(t, match)

	// not a boolean
	_, err = NewFilter("review.Stars + 1")
	assert.Error(t, err)
	// unknown field
	_, err = NewFilter("review.Rating > 1")
	assert.Error(t, err)
}
