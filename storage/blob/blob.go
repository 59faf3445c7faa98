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
	"path"
	"path/filepath"

	"github.com/gorse-io/reviewgraph/base/log"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Store receives published artifacts.
type Store interface {
	// Put stores the content of r under name, replacing any previous blob.
	// size is -1 if unknown.
	Put(ctx context.Context, name string, r io.Reader, size int64) error
}

// Open creates the store selected by cfg.Type. It returns nil if no store is
// configured.
func Open(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case config.BlobPOSIX:
		return NewPOSIX(cfg.Dir), nil
	case config.BlobS3:
		return NewS3(cfg.S3)
	case config.BlobGCS:
		return NewGCS(ctx, cfg.GCS)
	case config.BlobAzure:
		return NewAzureBlob(cfg.Azure)
	default:
		return nil, errors.NotSupportedf("blob store %q", cfg.Type)
	}
}

// Publish uploads local files to the store under their base names.
func Publish(ctx context.Context, store Store, paths ...string) error {
	for _, p := range paths {
		if err := publish(ctx, store, p); err != nil {
			return errors.Annotatef(err, "publish %s", p)
		}
	}
	return nil
}

func publish(ctx context.Context, store Store, p string) error {
	file, err := os.Open(p)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return errors.Trace(err)
	}
	name := filepath.Base(p)
	if err = store.Put(ctx, name, file, stat.Size()); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("published file", zap.String("name", name), zap.Int64("size", stat.Size()))
	return nil
}

func objectKey(prefix, name string) string {
	return path.Join(prefix, name)
}
