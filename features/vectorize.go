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
	"strings"
	"unicode"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/base/encoding"
	"github.com/gorse-io/reviewgraph/common/parallel"
	"github.com/gorse-io/reviewgraph/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Tokenizer splits text into lowercase words of letters and digits.
type Tokenizer struct {
	MinLength int
	StopWords mapset.Set[string]
}

func NewTokenizer(minLength int, stopWords []string) *Tokenizer {
	return &Tokenizer{
		MinLength: minLength,
		StopWords: mapset.NewThreadUnsafeSet(lo.Map(stopWords, func(word string, _ int) string {
			return strings.ToLower(word)
		})...),
	}
}

func (t *Tokenizer) Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return lo.Filter(words, func(word string, _ int) bool {
		return len([]rune(word)) >= t.MinLength && !t.StopWords.Contains(word)
	})
}

// Feature is a non-zero component of a sparse vector. Index is the word
// number in the vocabulary.
type Feature struct {
	Index int32
	Value float32
}

// Vectorizer maps texts to L2 normalized tf-idf bag-of-words vectors.
type Vectorizer struct {
	Tokenizer  *Tokenizer
	Vocabulary *base.Index
	IDF        []float32
}

// FitVectorizer builds a vocabulary of the size words with the highest
// document frequency. size <= 0 keeps every word. Texts are tokenized by jobs
// workers and counted in input order.
func FitVectorizer(texts []string, size int, tokenizer *Tokenizer, jobs int) *Vectorizer {
	documents := make([][]string, len(texts))
	parallel.For(len(texts), jobs, func(i int) {
		documents[i] = lo.Uniq(tokenizer.Tokenize(texts[i]))
	})
	dict := dataset.NewFreqDict()
	for _, words := range documents {
		for _, word := range words {
			dict.Id(word)
		}
	}
	order := dict.MostFrequent()
	if size > 0 && size < len(order) {
		order = order[:size]
	}
	v := &Vectorizer{
		Tokenizer:  tokenizer,
		Vocabulary: base.NewIndex(),
		IDF:        make([]float32, len(order)),
	}
	n := float32(len(texts))
	for i, id := range order {
		word, _ := dict.String(id)
		v.Vocabulary.Add(word)
		// smoothed idf keeps words present in every document non-zero
		v.IDF[i] = math32.Log((1+n)/(1+float32(dict.Freq(id)))) + 1
	}
	return v
}

// Transform returns the features of text ordered by index. Words outside the
// vocabulary are ignored.
func (v *Vectorizer) Transform(text string) []Feature {
	counts := make(map[int32]float32)
	for _, word := range v.Tokenizer.Tokenize(text) {
		if number := v.Vocabulary.ToNumber(word); number != base.NotId {
			counts[number]++
		}
	}
	vector := make([]Feature, 0, len(counts))
	var norm float32
	for number, count := range counts {
		value := count * v.IDF[number-1]
		norm += value * value
		vector = append(vector, Feature{Index: number, Value: value})
	}
	norm = math32.Sqrt(norm)
	for i := range vector {
		vector[i].Value /= norm
	}
	slices.SortFunc(vector, func(a, b Feature) int {
		return int(a.Index - b.Index)
	})
	return vector
}

// WriteVectors writes one line per review in sparse "label index:value ..."
// format with the review stars as label.
func WriteVectors(w io.Writer, reviews []dataset.Review, v *Vectorizer) error {
	writer := bufio.NewWriter(w)
	buf := make([]byte, 0, 256)
	for _, review := range reviews {
		buf = append(buf[:0], encoding.FormatFloat32(review.Stars)...)
		for _, feature := range v.Transform(review.Text) {
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(feature.Index), 10)
			buf = append(buf, ':')
			buf = strconv.AppendFloat(buf, float64(feature.Value), 'g', 6, 32)
		}
		buf = append(buf, '\n')
		if _, err := writer.Write(buf); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(writer.Flush())
}
