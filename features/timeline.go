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
package features

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/base/encoding"
	"github.com/gorse-io/reviewgraph/dataset"
	"github.com/juju/errors"
)

const dateLayout = time.DateOnly

type Point struct {
	Time    time.Time
	Stars   float32
	Average float32
}

// Series is the rating history of a business ordered by date.
type Series struct {
	BusinessID string
	Points     []Point
}

// TrailingAverage returns for each position the mean of the window values
// ending at it. Positions before the first full window average what is
// available.
func TrailingAverage(values []float32, window int) []float32 {
	window = max(window, 1)
	averages := make([]float32, len(values))
	var sum float32
	for i, value := range values {
		sum += value
		if i >= window {
			sum -= values[i-window]
		}
		averages[i] = sum / float32(min(i+1, window))
	}
	return averages
}

// Timeline builds rating series of the top businesses by number of reviews.
// Businesses with the same number of reviews keep the order of their first
// review. top <= 0 keeps every business.
func Timeline(reviews []dataset.Review, top, smoothing int) []Series {
	dict := dataset.NewFreqDict()
	grouped := make([][]dataset.Review, 0)
	for _, review := range reviews {
		id := dict.Id(review.BusinessID)
		if id == len(grouped) {
			grouped = append(grouped, nil)
		}
		grouped[id] = append(grouped[id], review)
	}
	order := dict.MostFrequent()
	if top > 0 && top < len(order) {
		order = order[:top]
	}
	series := make([]Series, 0, len(order))
	for _, id := range order {
		group := grouped[id]
		slices.SortStableFunc(group, func(a, b dataset.Review) int {
			return a.Time.Compare(b.Time)
		})
		stars := make([]float32, len(group))
		for i, review := range group {
			stars[i] = review.Stars
		}
		averages := TrailingAverage(stars, smoothing)
		points := make([]Point, len(group))
		for i, review := range group {
			points[i] = Point{Time: review.Time, Stars: review.Stars, Average: averages[i]}
		}
		name, _ := dict.String(id)
		series = append(series, Series{BusinessID: name, Points: points})
	}
	return series
}

// WriteTimeline writes series as CSV with columns business_id, date, stars
// and average.
func WriteTimeline(w io.Writer, series []Series) error {
	writer := bufio.NewWriter(w)
	if _, err := writer.WriteString("business_id,date,stars,average\n"); err != nil {
		return errors.Trace(err)
	}
	for _, s := range series {
		id := base.Escape(s.BusinessID)
		for _, point := range s.Points {
			line := id + "," + point.Time.Format(dateLayout) + "," +
				encoding.FormatFloat32(point.Stars) + "," + encoding.FormatFloat32(point.Average) + "\n"
			if _, err := writer.WriteString(line); err != nil {
				return errors.Trace(err)
			}
		}
	}
	return errors.Trace(writer.Flush())
}

// WriteRatings writes one "business,date,stars" CSV row per review with the
// business as its number.
func WriteRatings(w io.Writer, reviews []dataset.Review, businesses *base.Index) error {
	writer := bufio.NewWriter(w)
	if _, err := writer.WriteString("business,date,stars\n"); err != nil {
		return errors.Trace(err)
	}
	for _, review := range reviews {
		number, err := businesses.Lookup(review.BusinessID)
		if err != nil {
			return errors.Trace(err)
		}
		line := strconv.Itoa(int(number)) + "," + review.Time.Format(dateLayout) + "," + encoding.FormatFloat32(review.Stars) + "\n"
		if _, err = writer.WriteString(line); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(writer.Flush())
}
