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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/renameio/v2"
	"github.com/gorse-io/reviewgraph/graph"
	"github.com/juju/errors"
)

const Banner = "%%MatrixMarket matrix coordinate real general"

// Header describes the dimensions of an edge list.
type Header struct {
	Users      int32
	Businesses int32
	Count      int
}

// Observe extends the header by an edge.
func (h *Header) Observe(edge graph.Edge) {
	h.Users = max(h.Users, edge.User)
	h.Businesses = max(h.Businesses, edge.Business)
	h.Count++
}

func (h Header) String() string {
	return fmt.Sprintf("%d %d %d", h.Users, h.Businesses, h.Count)
}

// WriteHeader writes the banner, a generation comment and the size line.
func WriteHeader(w io.Writer, header Header, generated time.Time) error {
	_, err := fmt.Fprintf(w, "%s\n%% Generated %s\n%s\n", Banner, generated.Format(time.ANSIC), header)
	return errors.Trace(err)
}

// AppendEdge appends "<user> <business> <rating>\n" to buf. The rating uses
// the fewest digits that represent it exactly.
func AppendEdge(buf []byte, edge graph.Edge) []byte {
	buf = strconv.AppendInt(buf, int64(edge.User), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(edge.Business), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendFloat(buf, float64(edge.Rating), 'f', -1, 32)
	return append(buf, '\n')
}

// Writer streams edges into a file. Nothing is visible at the destination
// until Commit, which replaces the file atomically. With a header, the body
// is buffered in a temporary file next to the destination while the
// dimensions are tracked.
type Writer struct {
	path    string
	header  bool
	pending *renameio.PendingFile
	body    *os.File
	w       *bufio.Writer
	stats   Header
	buf     []byte
	now     func() time.Time
}

// Create starts writing an edge list to path.
func Create(path string, header bool) (*Writer, error) {
	w := &Writer{path: path, header: header, now: time.Now}
	var err error
	if header {
		w.body, err = os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".body-*")
		if err != nil {
			return nil, errors.Trace(err)
		}
		w.w = bufio.NewWriter(w.body)
	} else {
		w.pending, err = renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
		if err != nil {
			return nil, errors.Trace(err)
		}
		w.w = bufio.NewWriter(w.pending)
	}
	return w, nil
}

func (w *Writer) Write(edge graph.Edge) error {
	w.stats.Observe(edge)
	w.buf = AppendEdge(w.buf[:0], edge)
	_, err := w.w.Write(w.buf)
	return errors.Trace(err)
}

// Header returns the dimensions of edges written so far.
func (w *Writer) Header() Header {
	return w.stats
}

// Commit publishes the file.
func (w *Writer) Commit() error {
	if err := w.w.Flush(); err != nil {
		_ = w.Abort()
		return errors.Trace(err)
	}
	if !w.header {
		err := w.pending.CloseAtomicallyReplace()
		if err != nil {
			_ = w.pending.Cleanup()
		}
		return errors.Trace(err)
	}
	defer w.removeBody()
	if _, err := w.body.Seek(0, io.SeekStart); err != nil {
		return errors.Trace(err)
	}
	pending, err := renameio.NewPendingFile(w.path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()
	out := bufio.NewWriter(pending)
	if err = WriteHeader(out, w.stats, w.now()); err != nil {
		return errors.Trace(err)
	}
	if _, err = io.Copy(out, w.body); err != nil {
		return errors.Trace(err)
	}
	if err = out.Flush(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(pending.CloseAtomicallyReplace())
}

// Abort discards everything written. The destination is left untouched.
func (w *Writer) Abort() error {
	if w.header {
		w.removeBody()
		return nil
	}
	return errors.Trace(w.pending.Cleanup())
}

func (w *Writer) removeBody() {
	_ = w.body.Close()
	_ = os.Remove(w.body.Name())
}

// WriteFile writes edges to path atomically.
func WriteFile(path string, edges []graph.Edge, header bool) error {
	w, err := Create(path, header)
	if err != nil {
		return errors.Trace(err)
	}
	for _, edge := range edges {
		if err = w.Write(edge); err != nil {
			_ = w.Abort()
			return errors.Annotatef(err, "write %s", path)
		}
	}
	return errors.Annotatef(w.Commit(), "write %s", path)
}
