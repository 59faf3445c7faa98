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
)

func TestFreqDict(t *testing.T) {
	dict := NewFreqDict()
	assert.Equal(t, 0, dict.Id("a"))
	assert.Equal(t, 1, dict.Id("b"))
	assert.Equal(t, 1, dict.Id("b"))
	assert.Equal(t, 2, dict.Id("c"))
	assert.Equal(t, 2, dict.Id("c"))
	assert.Equal(t, 2, dict.Id("c"))
	assert.Equal(t, 3, dict.Count())
	assert.Equal(t, 1, dict.Freq(0))
	assert.Equal(t, 2, dict.Freq(1))
	assert.Equal(t, 3, dict.Freq(2))
	assert.Zero(t, dict.Freq(3))
	name, ok := dict.String(1)
	assert.True(t, ok)
	assert.Equal(t, "b", name)
	_, ok = dict.String(3)
	assert.False(t, ok)
	assert.Equal(t, []string{"b", "c"}, dict.AtLeast(2))
	assert.Equal(t, []int{2, 1, 0}, dict.MostFrequent())
}

func TestFrequentUsers(t *testing.T) {
	reviews := []Review{
		{UserID: "u1"}, {UserID: "u2"}, {UserID: "u1"},
		{UserID: "u3"}, {UserID: "u2"}, {UserID: "u1"},
	}
	assert.Equal(t, []string{"u1", "u2"}, FrequentUsers(reviews, 2))
	assert.Equal(t, []string{"u1"}, FrequentUsers(reviews, 3))
	assert.Empty(t, FrequentUsers(reviews, 4))
	assert.Equal(t, []string{"u1", "u2", "u3"}, UserIDs(reviews))
}
