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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllowList(t *testing.T) {
	ids, err := ReadAllowList(strings.NewReader("u1\n\n  u2 \nu1\nu3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids)
}

func TestSaveAllowList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min5.users")
	require.NoError(t, SaveAllowList(path, []string{"a", "b", "c"}))
	ids, err := LoadAllowList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	_, err = LoadAllowList(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
