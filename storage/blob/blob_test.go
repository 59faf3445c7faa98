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
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/reviewgraph/config"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the common contract against a store. read returns the
// content stored under an object key.
func testStore(t *testing.T, store Store, read func(key string) (string, error)) {
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "test_graph", stringReader("1 1 5\n"), 6))
	require.NoError(t, store.Put(ctx, "nested/test_graph_mm", stringReader("2 1 3\n"), -1))

	data, err := read("test_graph")
	require.NoError(t, err)
	assert.Equal(t, "1 1 5\n", data)
	data, err = read("nested/test_graph_mm")
	require.NoError(t, err)
	assert.Equal(t, "2 1 3\n", data)

	// overwrite
	require.NoError(t, store.Put(ctx, "test_graph", stringReader("2 2 2\n"), 6))
	data, err = read("test_graph")
	require.NoError(t, err)
	assert.Equal(t, "2 2 2\n", data)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, config.BlobConfig{})
	require.NoError(t, err)
	assert.Nil(t, store)

	dir := t.TempDir()
	store, err = Open(ctx, config.BlobConfig{Type: config.BlobPOSIX, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, NewPOSIX(dir), store)

	_, err = Open(ctx, config.BlobConfig{Type: "ftp"})
	assert.True(t, errors.Is(err, errors.NotSupported))

	_, err = Open(ctx, config.BlobConfig{Type: config.BlobAzure})
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	local := t.TempDir()
	graph := filepath.Join(local, "graph_mm")
	manifest := filepath.Join(local, "manifest.json")
	require.NoError(t, os.WriteFile(graph, []byte("1 1 5\n"), 0o644))
	require.NoError(t, os.WriteFile(manifest, []byte("{}"), 0o644))

	published := filepath.Join(t.TempDir(), "published")
	require.NoError(t, Publish(ctx, NewPOSIX(published), graph, manifest))
	entries, err := os.ReadDir(published)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{"graph_mm", "manifest.json"}, names)
	data, err := os.ReadFile(filepath.Join(published, "graph_mm"))
	require.NoError(t, err)
	assert.Equal(t, "1 1 5\n", string(data))

	err = Publish(ctx, NewPOSIX(published), filepath.Join(local, "missing"))
	assert.ErrorContains(t, err, "missing")
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "blob/x", objectKey("blob", "x"))
	assert.Equal(t, "blob/nested/x", objectKey("blob/", "nested/x"))
	assert.Equal(t, "x", objectKey("", "x"))
}
