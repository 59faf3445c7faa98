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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/gorse-io/reviewgraph/base"
	"github.com/gorse-io/reviewgraph/base/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Remap reads an interaction file in simple interaction format ("source
// relation target" per line) and writes "source target" pairs with both
// endpoints numbered by one shared index. Lines with fewer than three fields
// are skipped.
func Remap(r io.Reader, w io.Writer) (*base.Index, int, error) {
	index := base.NewIndex()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(w)
	var lineNumber, count int
	buf := make([]byte, 0, 32)
	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			log.Logger().Warn("skip interaction without target", zap.Int("line", lineNumber))
			continue
		}
		source, target := index.Add(fields[0]), index.Add(fields[2])
		buf = strconv.AppendInt(buf[:0], int64(source), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(target), 10)
		buf = append(buf, '\n')
		if _, err := writer.Write(buf); err != nil {
			return nil, count, errors.Trace(err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, count, errors.Trace(err)
	}
	if err := writer.Flush(); err != nil {
		return nil, count, errors.Trace(err)
	}
	return index, count, nil
}
