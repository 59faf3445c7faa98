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

	"cloud.google.com/go/storage"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/juju/errors"
	"google.golang.org/api/option"
)

type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS connects to Google Cloud Storage. GCS_EMULATOR_ENDPOINT redirects
// the client to an emulator without authentication.
func NewGCS(ctx context.Context, cfg config.GCSConfig) (*GCS, error) {
	var opts []option.ClientOption
	if endpoint := os.Getenv("GCS_EMULATOR_ENDPOINT"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewGCSWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewGCSWithClient(client *storage.Client, bucket, prefix string) *GCS {
	return &GCS{client: client, bucket: bucket, prefix: prefix}
}

func (g *GCS) Put(ctx context.Context, name string, r io.Reader, _ int64) error {
	w := g.client.Bucket(g.bucket).Object(objectKey(g.prefix, name)).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return errors.Trace(err)
	}
	return errors.Trace(w.Close())
}
