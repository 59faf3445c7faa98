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
	"io"
	"slices"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gorse-io/reviewgraph/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"modernc.org/strutil"
)

type Votes struct {
	Funny  int `json:"funny"`
	Useful int `json:"useful"`
	Cool   int `json:"cool"`
}

// Review is a line of the review file.
type Review struct {
	ReviewID   string    `json:"review_id"`
	UserID     string    `json:"user_id"`
	BusinessID string    `json:"business_id"`
	Stars      float32   `json:"stars"`
	Date       string    `json:"date"`
	Text       string    `json:"text"`
	Votes      Votes     `json:"votes"`
	Time       time.Time `json:"-"`
}

// rawReview accepts votes either nested under "votes" or at the top level.
// Stars shadows Review.Stars to tell a missing rating from zero.
type rawReview struct {
	Review
	Stars  *float32 `json:"stars"`
	Funny  int      `json:"funny"`
	Useful int      `json:"useful"`
	Cool   int      `json:"cool"`
}

// Business is a line of the business file.
type Business struct {
	BusinessID  string  `json:"business_id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Stars       float32 `json:"stars"`
	ReviewCount int     `json:"review_count"`
}

// User is a line of the user file.
type User struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	ReviewCount  int     `json:"review_count"`
	AverageStars float32 `json:"average_stars"`
}

// ReadReviews decodes reviews from r. Reviews without user_id, business_id,
// stars or a parseable date are skipped. If filter is not nil, only matching reviews
// are kept.
func ReadReviews(r io.Reader, name string, filter *Filter) ([]Review, LoadStats, error) {
	var (
		reviews []Review
		pool    = strutil.NewPool()
	)
	stats, err := ReadJSONLines(r, name, func(_ int, raw rawReview) error {
		review := raw.Review
		if err := base.ValidateId(review.UserID); err != nil {
			return &ParseError{Err: errors.Annotate(err, "user_id")}
		}
		if err := base.ValidateId(review.BusinessID); err != nil {
			return &ParseError{Err: errors.Annotate(err, "business_id")}
		}
		if raw.Stars == nil {
			return &ParseError{Err: errors.New("missing stars")}
		}
		review.Stars = *raw.Stars
		timestamp, err := dateparse.ParseIn(review.Date, time.UTC)
		if err != nil {
			return &ParseError{Err: errors.Annotatef(err, "date %q", review.Date)}
		}
		review.Time = timestamp
		if review.Votes == (Votes{}) {
			review.Votes = Votes{Funny: raw.Funny, Useful: raw.Useful, Cool: raw.Cool}
		}
		review.UserID = pool.Align(review.UserID)
		review.BusinessID = pool.Align(review.BusinessID)
		match, err := filter.Match(&review)
		if err != nil {
			return errors.Trace(err)
		}
		if !match {
			return errFiltered
		}
		reviews = append(reviews, review)
		return nil
	})
	if err != nil {
		return nil, stats, errors.Trace(err)
	}
	return reviews, stats, nil
}

// ReadBusinesses decodes businesses from r.
func ReadBusinesses(r io.Reader, name string) ([]Business, LoadStats, error) {
	var businesses []Business
	stats, err := ReadJSONLines(r, name, func(_ int, business Business) error {
		if err := base.ValidateId(business.BusinessID); err != nil {
			return &ParseError{Err: errors.Annotate(err, "business_id")}
		}
		businesses = append(businesses, business)
		return nil
	})
	if err != nil {
		return nil, stats, errors.Trace(err)
	}
	return businesses, stats, nil
}

// ReadUsers decodes users from r.
func ReadUsers(r io.Reader, name string) ([]User, LoadStats, error) {
	var users []User
	stats, err := ReadJSONLines(r, name, func(_ int, user User) error {
		if err := base.ValidateId(user.UserID); err != nil {
			return &ParseError{Err: errors.Annotate(err, "user_id")}
		}
		users = append(users, user)
		return nil
	})
	if err != nil {
		return nil, stats, errors.Trace(err)
	}
	return users, stats, nil
}

func LoadReviews(path string, progress bool, filter *Filter) ([]Review, LoadStats, error) {
	file, err := OpenFile(path, progress)
	if err != nil {
		return nil, LoadStats{}, errors.Trace(err)
	}
	defer file.Close()
	return ReadReviews(file, path, filter)
}

func LoadBusinesses(path string, progress bool) ([]Business, LoadStats, error) {
	file, err := OpenFile(path, progress)
	if err != nil {
		return nil, LoadStats{}, errors.Trace(err)
	}
	defer file.Close()
	return ReadBusinesses(file, path)
}

func LoadUsers(path string, progress bool) ([]User, LoadStats, error) {
	file, err := OpenFile(path, progress)
	if err != nil {
		return nil, LoadStats{}, errors.Trace(err)
	}
	defer file.Close()
	return ReadUsers(file, path)
}

// SortByDate sorts reviews by date ascending. Reviews on the same date keep
// their relative order.
func SortByDate(reviews []Review) {
	slices.SortStableFunc(reviews, func(a, b Review) int {
		return a.Time.Compare(b.Time)
	})
}

// UserIDs returns distinct user IDs of reviews in first-seen order.
func UserIDs(reviews []Review) []string {
	return lo.Uniq(lo.Map(reviews, func(review Review, _ int) string {
		return review.UserID
	}))
}
