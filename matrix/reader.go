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
package matrix

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/gorse-io/reviewgraph/common/util"
	"github.com/gorse-io/reviewgraph/graph"
	"github.com/juju/errors"
)

// Read parses an edge list with or without header. Comment lines starting
// with '%' are ignored. The returned header is the declared one if present,
// otherwise it is computed from the edges.
func Read(r io.Reader) (Header, []graph.Edge, error) {
	var (
		edges      []graph.Edge
		declared   *Header
		computed   Header
		expectSize bool
	)
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			if lineNumber == 1 && strings.HasPrefix(line, Banner) {
				declared = &Header{}
				expectSize = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return Header{}, nil, errors.Errorf("line %d: expect 3 fields but got %d", lineNumber, len(fields))
		}
		if expectSize {
			header, err := parseHeader(fields)
			if err != nil {
				return Header{}, nil, errors.Annotatef(err, "line %d", lineNumber)
			}
			*declared = header
			expectSize = false
			continue
		}
		edge, err := parseEdge(fields)
		if err != nil {
			return Header{}, nil, errors.Annotatef(err, "line %d", lineNumber)
		}
		computed.Observe(edge)
		edges = append(edges, edge)
	}
	if err := scanner.Err(); err != nil {
		return Header{}, nil, errors.Trace(err)
	}
	if declared != nil {
		return *declared, edges, nil
	}
	return computed, edges, nil
}

func parseHeader(fields []string) (Header, error) {
	users, err := util.ParseInt[int32](fields[0])
	if err != nil {
		return Header{}, errors.Trace(err)
	}
	businesses, err := util.ParseInt[int32](fields[1])
	if err != nil {
		return Header{}, errors.Trace(err)
	}
	count, err := util.ParseInt[int](fields[2])
	if err != nil {
		return Header{}, errors.Trace(err)
	}
	return Header{Users: users, Businesses: businesses, Count: count}, nil
}

func parseEdge(fields []string) (graph.Edge, error) {
	user, err := util.ParseInt[int32](fields[0])
	if err != nil {
		return graph.Edge{}, errors.Trace(err)
	}
	business, err := util.ParseInt[int32](fields[1])
	if err != nil {
		return graph.Edge{}, errors.Trace(err)
	}
	rating, err := util.ParseFloat[float32](fields[2])
	if err != nil {
		return graph.Edge{}, errors.Trace(err)
	}
	return graph.Edge{User: user, Business: business, Rating: rating}, nil
}

func ReadFile(path string) (Header, []graph.Edge, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, errors.Trace(err)
	}
	defer file.Close()
	header, edges, err := Read(file)
	if err != nil {
		return Header{}, nil, errors.Annotatef(err, "read %s", path)
	}
	return header, edges, nil
}

// AddHeader rewrites an edge list file with a freshly computed header. An
// existing header is replaced.
func AddHeader(path string) (Header, error) {
	_, edges, err := ReadFile(path)
	if err != nil {
		return Header{}, errors.Trace(err)
	}
	w, err := Create(path, true)
	if err != nil {
		return Header{}, errors.Trace(err)
	}
	for _, edge := range edges {
		if err = w.Write(edge); err != nil {
			_ = w.Abort()
			return Header{}, errors.Trace(err)
		}
	}
	if err = w.Commit(); err != nil {
		return Header{}, errors.Trace(err)
	}
	return w.Header(), nil
}
