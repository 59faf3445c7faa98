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
package pipeline

import (
	"bufio"
	"context"
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/renameio/v2"
	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/base/log"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/gorse-io/reviewgraph/dataset"
	"github.com/gorse-io/reviewgraph/features"
	"github.com/gorse-io/reviewgraph/graph"
	"github.com/gorse-io/reviewgraph/matrix"
	"github.com/gorse-io/reviewgraph/split"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

func (r *Runner) loadReviews() ([]dataset.Review, error) {
	filter, err := dataset.NewFilter(r.Config.Input.Filter)
	if err != nil {
		return nil, errors.Trace(err)
	}
	reviews, stats, err := dataset.LoadReviews(r.Config.Input.ReviewFile, r.Config.Input.Progress, filter)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load reviews", append(stats.Fields(), zap.String("file", r.Config.Input.ReviewFile))...)
	return reviews, nil
}

func (r *Runner) loadIndexes() (users, businesses *base.Index, err error) {
	users, err = base.LoadIndex(r.Config.Output.Path(r.Config.Index.UserIndexFile))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	businesses, err = base.LoadIndex(r.Config.Output.Path(r.Config.Index.BusinessIndexFile))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return users, businesses, nil
}

// BuildIndexes numbers businesses of the business file and users of either
// the review file or the user file, then saves both indexes.
func (r *Runner) BuildIndexes(_ context.Context) error {
	businesses, stats, err := dataset.LoadBusinesses(r.Config.Input.BusinessFile, r.Config.Input.Progress)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("load businesses", stats.Fields()...)
	businessIndex := base.NewIndex()
	for _, business := range businesses {
		businessIndex.Add(business.BusinessID)
	}

	var userIDs []string
	switch r.Config.Index.UserSource {
	case config.UserSourceUser:
		users, stats, err := dataset.LoadUsers(r.Config.Input.UserFile, r.Config.Input.Progress)
		if err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("load users", stats.Fields()...)
		for _, user := range users {
			userIDs = append(userIDs, user.UserID)
		}
	default:
		reviews, err := r.loadReviews()
		if err != nil {
			return errors.Trace(err)
		}
		userIDs = dataset.UserIDs(reviews)
	}
	userIndex := base.NewIndexFrom(userIDs)

	for _, entry := range []struct {
		name  string
		file  string
		index *base.Index
	}{
		{"user_index", r.Config.Index.UserIndexFile, userIndex},
		{"business_index", r.Config.Index.BusinessIndexFile, businessIndex},
	} {
		path := r.Config.Output.Path(entry.file)
		if err = base.SaveIndex(path, entry.index); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("save index", zap.String("file", path), zap.Int32("size", entry.index.Len()))
		r.record(Output{Name: entry.name, Path: path})
	}
	return nil
}

// edges loads reviews and indexes and materializes edges. If sorted, reviews
// are ordered by date first.
func (r *Runner) edges(sorted bool) ([]graph.Edge, *base.Index, error) {
	users, businesses, err := r.loadIndexes()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	reviews, err := r.loadReviews()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if sorted {
		dataset.SortByDate(reviews)
	}
	edges, err := graph.Materialize(reviews, users, businesses, r.Config.Jobs)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return edges, users, nil
}

func (r *Runner) writeEdges(name, file string, edges []graph.Edge) error {
	path := r.Config.Output.Path(file)
	if err := matrix.WriteFile(path, edges, r.Config.Output.Header); err != nil {
		return errors.Trace(err)
	}
	header := matrix.Header{}
	for _, edge := range edges {
		header.Observe(edge)
	}
	r.record(Output{Name: name, Path: path, Header: &header})
	return nil
}

// Graph writes every review as an edge in input order.
func (r *Runner) Graph(_ context.Context) error {
	edges, _, err := r.edges(false)
	if err != nil {
		return errors.Trace(err)
	}
	return r.writeEdges("graph", r.Config.Output.GraphFile, edges)
}

// allowList returns the numbers of allow-listed users. IDs missing from the
// user index are ignored.
func (r *Runner) allowList(users *base.Index) (mapset.Set[int32], error) {
	path := r.Config.Input.AllowListFile
	if path == "" {
		path = r.Config.Output.Path(r.Config.Output.AllowListFile)
	}
	ids, err := dataset.LoadAllowList(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	numbers := mapset.NewThreadUnsafeSetWithSize[int32](len(ids))
	var missing int
	for _, id := range ids {
		if number := users.ToNumber(id); number != base.NotId {
			numbers.Add(number)
		} else {
			missing++
		}
	}
	if missing > 0 {
		log.Logger().Warn("ignore allow-listed users missing from index", zap.Int("missing", missing))
	}
	return numbers, nil
}

// Split partitions edges ordered by date and writes the train, validation
// and test files. Nothing is written if the split fails.
func (r *Runner) Split(_ context.Context) (*split.Split, error) {
	edges, users, err := r.edges(true)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var allowed mapset.Set[int32]
	if r.Config.Split.Policy == config.PolicyFrequent {
		if allowed, err = r.allowList(users); err != nil {
			return nil, errors.Trace(err)
		}
	}
	splitter, err := split.New(r.Config.Split, allowed)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result, err := splitter.Split(edges)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if r.manifest != nil {
		r.manifest.Policy = r.Config.Split.Policy
		if r.Config.Split.Policy == config.PolicyRandom || r.Config.Split.Policy == config.PolicyFrequent {
			seed := r.Config.Split.Seed
			r.manifest.Seed = &seed
		}
	}
	if err = r.writeEdges(split.SubsetTrain, r.Config.Output.TrainFile, graph.Select(edges, result.Train)); err != nil {
		return nil, errors.Trace(err)
	}
	if err = r.writeEdges(split.SubsetValidation, r.Config.Output.ValidationFile, graph.Select(edges, result.Validation)); err != nil {
		return nil, errors.Trace(err)
	}
	if r.Config.Split.Policy != config.PolicyRatio {
		if err = r.writeEdges(split.SubsetTest, r.Config.Output.TestFile, graph.Select(edges, result.Test)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	log.Logger().Info("split edges",
		zap.String("policy", r.Config.Split.Policy),
		zap.Int("train", len(result.Train)),
		zap.Int("validation", len(result.Validation)),
		zap.Int("test", len(result.Test)),
		zap.Int("excluded", result.Excluded))
	return result, nil
}

// Users writes the allow-list of users with enough reviews.
func (r *Runner) Users(_ context.Context) error {
	reviews, err := r.loadReviews()
	if err != nil {
		return errors.Trace(err)
	}
	users := dataset.FrequentUsers(reviews, r.Config.Split.Frequent.MinReviews)
	path := r.Config.Output.Path(r.Config.Output.AllowListFile)
	if err = dataset.SaveAllowList(path, users); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("save allow list", zap.String("file", path), zap.Int("users", len(users)))
	r.record(Output{Name: "allow_list", Path: path})
	return nil
}

// writeFile creates path atomically and passes a buffered writer to write.
func (r *Runner) writeFile(name, path string, write func(w *bufio.Writer) error) error {
	file, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = file.Cleanup()
	}()
	w := bufio.NewWriter(file)
	if err = write(w); err != nil {
		return errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		return errors.Trace(err)
	}
	if err = file.CloseAtomicallyReplace(); err != nil {
		return errors.Trace(err)
	}
	r.record(Output{Name: name, Path: path})
	return nil
}

// Timeline writes the smoothed rating history of the most reviewed
// businesses.
func (r *Runner) Timeline(_ context.Context) error {
	reviews, err := r.loadReviews()
	if err != nil {
		return errors.Trace(err)
	}
	series := features.Timeline(reviews, r.Config.Features.TopBusinesses, r.Config.Features.Smoothing)
	return r.writeFile("timeline", r.Config.Output.Path(r.Config.Features.TimelineFile), func(w *bufio.Writer) error {
		return features.WriteTimeline(w, series)
	})
}

// Export writes business number, date and stars of every review as CSV.
func (r *Runner) Export(_ context.Context) error {
	_, businesses, err := r.loadIndexes()
	if err != nil {
		return errors.Trace(err)
	}
	reviews, err := r.loadReviews()
	if err != nil {
		return errors.Trace(err)
	}
	return r.writeFile("ratings", r.Config.Output.Path(r.Config.Features.RatingsFile), func(w *bufio.Writer) error {
		return features.WriteRatings(w, reviews, businesses)
	})
}

// Vectorize writes tf-idf bag-of-words vectors of review texts and saves the
// vocabulary.
func (r *Runner) Vectorize(_ context.Context) error {
	reviews, err := r.loadReviews()
	if err != nil {
		return errors.Trace(err)
	}
	texts := make([]string, len(reviews))
	for i, review := range reviews {
		texts[i] = review.Text
	}
	tokenizer := features.NewTokenizer(r.Config.Features.MinTokenLength, r.Config.Features.StopWords)
	vectorizer := features.FitVectorizer(texts, r.Config.Features.VocabularySize, tokenizer, r.Config.Jobs)
	log.Logger().Info("fit vocabulary", zap.Int32("words", vectorizer.Vocabulary.Len()))
	vocabularyPath := r.Config.Output.Path(r.Config.Features.VocabularyFile)
	if err = base.SaveIndex(vocabularyPath, vectorizer.Vocabulary); err != nil {
		return errors.Trace(err)
	}
	r.record(Output{Name: "vocabulary", Path: vocabularyPath})
	return r.writeFile("vectors", r.Config.Output.Path(r.Config.Features.VectorsFile), func(w *bufio.Writer) error {
		return features.WriteVectors(w, reviews, vectorizer)
	})
}

// Remap renumbers an interaction file in simple interaction format.
func (r *Runner) Remap(_ context.Context, input, output string) error {
	in, err := dataset.OpenFile(input, r.Config.Input.Progress)
	if err != nil {
		return errors.Trace(err)
	}
	defer in.Close()
	var count int
	err = r.writeFile("remap", output, func(w *bufio.Writer) error {
		var remapErr error
		_, count, remapErr = graph.Remap(in, w)
		return remapErr
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("remap interactions", zap.String("file", output), zap.Int("pairs", count))
	return nil
}

// Header adds a header to existing edge list files.
func (r *Runner) Header(_ context.Context, paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return errors.Trace(err)
		}
		header, err := matrix.AddHeader(path)
		if err != nil {
			return errors.Trace(err)
		}
		r.record(Output{Name: "header", Path: path, Header: &header})
	}
	return nil
}
