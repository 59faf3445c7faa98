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
package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/juju/errors"
)

type POSIX struct {
	dir string
}

func NewPOSIX(dir string) *POSIX {
	return &POSIX{dir: dir}
}

// Put writes the blob to a temporary file and renames it into place.
func (p *POSIX) Put(_ context.Context, name string, r io.Reader, _ int64) error {
	fullPath := filepath.Join(p.dir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return errors.Trace(err)
	}
	file, err := renameio.NewPendingFile(fullPath, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = file.Cleanup()
	}()
	if _, err = io.Copy(file, r); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(file.CloseAtomicallyReplace())
}
