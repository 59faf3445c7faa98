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

package base

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/gorse-io/reviewgraph/base/encoding"
	"github.com/juju/errors"
)

// MarshalIndex marshal index into byte stream.
func MarshalIndex(w io.Writer, index *Index) error {
	return index.Marshal(w)
}

// UnmarshalIndex unmarshal index from byte stream.
func UnmarshalIndex(r io.Reader) (*Index, error) {
	index := &Index{}
	err := index.Unmarshal(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return index, nil
}

// Index manages the map between sparse names and dense numbers. A sparse name is
// a user ID or business ID. Dense numbers start from 1 since 0 is treated as
// "unset" by the graph engines consuming the edge lists.
type Index struct {
	Numbers map[string]int32 // sparse ID -> dense number
	Names   []string         // dense number - 1 -> sparse ID
}

// maxIndexPrealloc bounds the capacity reserved before names are read.
const maxIndexPrealloc = int32(1 << 20)

// NotId represents an ID doesn't exist.
const NotId = int32(0)

// MissingKeyError is returned when a name was never added to an index.
type MissingKeyError struct {
	Index string
	Name  string
}

func (e *MissingKeyError) Error() string {
	if e.Index == "" {
		return fmt.Sprintf("id %q not found in index", e.Name)
	}
	return fmt.Sprintf("id %q not found in %s index", e.Name, e.Index)
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	set := new(Index)
	set.Numbers = make(map[string]int32)
	set.Names = make([]string, 0)
	return set
}

// NewIndexFrom creates an Index from names. Duplicated names keep the number
// of their first occurrence.
func NewIndexFrom(names []string) *Index {
	index := &Index{
		Numbers: make(map[string]int32, len(names)),
		Names:   make([]string, 0, len(names)),
	}
	for _, name := range names {
		index.Add(name)
	}
	return index
}

// Len returns the number of indexed names.
func (idx *Index) Len() int32 {
	if idx == nil {
		return 0
	}
	return int32(len(idx.Names))
}

// Add adds a new name to the indexer and returns its number.
func (idx *Index) Add(name string) int32 {
	if number, exist := idx.Numbers[name]; exist {
		return number
	}
	idx.Names = append(idx.Names, name)
	number := int32(len(idx.Names))
	idx.Numbers[name] = number
	return number
}

// ToNumber converts a sparse ID to a dense number. NotId is returned if the
// name doesn't exist.
func (idx *Index) ToNumber(name string) int32 {
	if number, exist := idx.Numbers[name]; exist {
		return number
	}
	return NotId
}

// Lookup converts a sparse ID to a dense number or fails with MissingKeyError.
func (idx *Index) Lookup(name string) (int32, error) {
	if number, exist := idx.Numbers[name]; exist {
		return number, nil
	}
	return NotId, &MissingKeyError{Name: name}
}

// ToName converts a dense number to a sparse ID.
func (idx *Index) ToName(number int32) (string, bool) {
	if number < 1 || int(number) > len(idx.Names) {
		return "", false
	}
	return idx.Names[number-1], true
}

// GetNames returns all names in current index, ordered by number.
func (idx *Index) GetNames() []string {
	return idx.Names
}

// Marshal index into byte stream.
func (idx *Index) Marshal(w io.Writer) error {
	// write length
	err := binary.Write(w, binary.LittleEndian, int32(len(idx.Names)))
	if err != nil {
		return errors.Trace(err)
	}
	// write names
	for _, s := range idx.Names {
		err = encoding.WriteString(w, s)
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Unmarshal index from byte stream.
func (idx *Index) Unmarshal(r io.Reader) error {
	// read length
	var n int32
	err := binary.Read(r, binary.LittleEndian, &n)
	if err != nil {
		return errors.Trace(err)
	}
	if n < 0 {
		return errors.Errorf("invalid index length %d", n)
	}
	// read names
	// the length prefix is not trusted for pre-allocation
	capacity := min(n, maxIndexPrealloc)
	idx.Names = make([]string, 0, capacity)
	idx.Numbers = make(map[string]int32, capacity)
	for i := 0; i < int(n); i++ {
		name, err := encoding.ReadString(r)
		if err != nil {
			return errors.Trace(err)
		}
		if _, exist := idx.Numbers[name]; exist {
			return errors.Errorf("duplicated name %q in index", name)
		}
		idx.Add(name)
	}
	return nil
}

// SaveIndex writes index to a file. The file is replaced atomically.
func SaveIndex(path string, index *Index) error {
	file, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = file.Cleanup()
	}()
	w := bufio.NewWriter(file)
	if err = index.Marshal(w); err != nil {
		return errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(file.CloseAtomicallyReplace())
}

// LoadIndex reads index from a file.
func LoadIndex(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	index, err := UnmarshalIndex(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Annotatef(err, "load index from %s", path)
	}
	return index, nil
}
