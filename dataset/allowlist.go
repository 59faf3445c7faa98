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
	"io"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/renameio/v2"
	"github.com/juju/errors"
)

// ReadAllowList reads newline-separated user IDs. Blank lines are ignored and
// duplicates are dropped. IDs are returned in file order.
func ReadAllowList(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	seen := mapset.NewThreadUnsafeSet[string]()
	var ids []string
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" && seen.Add(id) {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return ids, nil
}

func LoadAllowList(path string) ([]string, error) {
	file, err := OpenFile(path, false)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	ids, err := ReadAllowList(file)
	if err != nil {
		return nil, errors.Annotatef(err, "read allow list %s", path)
	}
	return ids, nil
}

// SaveAllowList writes one user ID per line. The file is replaced atomically.
func SaveAllowList(path string, ids []string) error {
	file, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = file.Cleanup()
	}()
	w := bufio.NewWriter(file)
	for _, id := range ids {
		if _, err = w.WriteString(id + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	if err = w.Flush(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(file.CloseAtomicallyReplace())
}
