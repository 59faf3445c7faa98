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
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/schollz/progressbar/v3"
)

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if e := r.closers[i](); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// OpenFile opens an input file. Files ending with .gz or .zst are decompressed
// transparently. If progress is true, a progress bar tracks the bytes read
// from the underlying file.
func OpenFile(path string, progress bool) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rc := &readCloser{Reader: file, closers: []func() error{file.Close}}
	if progress {
		stat, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return nil, errors.Trace(err)
		}
		pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "Reading "+filepath.Base(path)))
		// the progress reader closes the file it wraps
		rc.Reader = &pbReader
		rc.closers = []func() error{pbReader.Close}
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		gzipReader, err := gzip.NewReader(rc.Reader)
		if err != nil {
			_ = rc.Close()
			return nil, errors.Annotatef(err, "open gzip file %s", path)
		}
		rc.Reader = gzipReader
		rc.closers = append(rc.closers, gzipReader.Close)
	case strings.HasSuffix(path, ".zst"):
		zstdReader, err := zstd.NewReader(rc.Reader)
		if err != nil {
			_ = rc.Close()
			return nil, errors.Annotatef(err, "open zstd file %s", path)
		}
		rc.Reader = zstdReader
		rc.closers = append(rc.closers, func() error {
			zstdReader.Close()
			return nil
		})
	}
	return rc, nil
}
