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
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/gorse-io/reviewgraph/base/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is a decoded input line: field name to string, number, bool, nested
// object or list.
type Record map[string]any

// ParseError is reported for an input line that could not be decoded. Lines
// failing with ParseError are skipped.
type ParseError struct {
	Name string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadStats summarizes a pass over an input file.
type LoadStats struct {
	Lines    int
	Records  int
	Skipped  int
	Filtered int
}

func (s LoadStats) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("lines", s.Lines),
		zap.Int("records", s.Records),
		zap.Int("skipped", s.Skipped),
		zap.Int("filtered", s.Filtered),
	}
}

// errFiltered is returned by handlers to drop a record silently.
var errFiltered = errors.New("filtered")

// ReadJSONLines decodes every non-blank line of r into a T and passes it to
// handle. Lines that are not a single JSON value of the target type are logged
// and skipped, as are lines for which handle returns a *ParseError. Any other
// error from handle aborts reading.
func ReadJSONLines[T any](r io.Reader, name string, handle func(line int, value T) error) (LoadStats, error) {
	var stats LoadStats
	reader := bufio.NewReader(r)
	var line []byte
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return stats, errors.Trace(err)
		}
		line = append(line, chunk...)
		if isPrefix {
			continue
		}
		stats.Lines++
		text := bytes.TrimSpace(line)
		line = line[:0]
		if len(text) == 0 {
			continue
		}
		err = decodeLine(text, name, stats.Lines, handle)
		var parseError *ParseError
		if err == nil {
			stats.Records++
		} else if errors.Is(err, errFiltered) {
			stats.Filtered++
		} else if errors.As(err, &parseError) {
			stats.Skipped++
			log.Logger().Warn("skip malformed line",
				zap.String("file", name), zap.Int("line", stats.Lines), zap.Error(parseError.Err))
		} else {
			return stats, err
		}
	}
	return stats, nil
}

func decodeLine[T any](text []byte, name string, line int, handle func(int, T) error) error {
	var value T
	if err := json.Unmarshal(text, &value); err != nil {
		return &ParseError{Name: name, Line: line, Err: err}
	}
	if err := handle(line, value); err != nil {
		var parseError *ParseError
		if errors.As(err, &parseError) && parseError.Name == "" {
			parseError.Name, parseError.Line = name, line
		}
		return err
	}
	return nil
}

// ReadRecords decodes line-delimited JSON records from r, preserving order.
func ReadRecords(r io.Reader, name string) ([]Record, LoadStats, error) {
	var records []Record
	stats, err := ReadJSONLines(r, name, func(_ int, record Record) error {
		if record == nil {
			return &ParseError{Err: errors.New("record is not an object")}
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, stats, errors.Trace(err)
	}
	return records, stats, nil
}

// LoadRecords decodes line-delimited JSON records from a file.
func LoadRecords(path string, progress bool) ([]Record, LoadStats, error) {
	file, err := OpenFile(path, progress)
	if err != nil {
		return nil, LoadStats{}, errors.Trace(err)
	}
	defer file.Close()
	return ReadRecords(file, path)
}
