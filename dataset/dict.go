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
	"slices"
)

// FreqDict assigns ids to names in first-seen order and counts occurrences.
type FreqDict struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewFreqDict() *FreqDict {
	return &FreqDict{si: map[string]int{}}
}

func (d *FreqDict) Count() int {
	return len(d.is)
}

// Id returns the id of s and increments its frequency.
func (d *FreqDict) Id(s string) int {
	if y, ok := d.si[s]; ok {
		d.cnt[y]++
		return y
	}
	y := len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 1)
	return y
}

func (d *FreqDict) String(id int) (string, bool) {
	if id < 0 || id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

func (d *FreqDict) Freq(id int) int {
	if id < 0 || id >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}

// AtLeast returns names seen at least n times in first-seen order.
func (d *FreqDict) AtLeast(n int) []string {
	var names []string
	for id, name := range d.is {
		if d.cnt[id] >= n {
			names = append(names, name)
		}
	}
	return names
}

// MostFrequent returns ids ordered by frequency descending. Ties keep
// first-seen order.
func (d *FreqDict) MostFrequent() []int {
	ids := make([]int, len(d.is))
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		return d.cnt[b] - d.cnt[a]
	})
	return ids
}

// FrequentUsers returns users with at least minReviews reviews, in the order
// of their first review.
func FrequentUsers(reviews []Review, minReviews int) []string {
	dict := NewFreqDict()
	for _, review := range reviews {
		dict.Id(review.UserID)
	}
	return dict.AtLeast(minReviews)
}
