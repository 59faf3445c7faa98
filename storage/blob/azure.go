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
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/juju/errors"
)

type AzureBlob struct {
	client    *azblob.Client
	container string
	prefix    string
}

func NewAzureBlob(cfg config.AzureBlobConfig) (*AzureBlob, error) {
	var (
		client *azblob.Client
		err    error
	)
	if cfg.ConnectionString != "" {
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, errors.Trace(err)
		}
	} else {
		if cfg.AccountName == "" || cfg.AccountKey == "" {
			return nil, errors.New("azure blob requires account_name and account_key or connection_string")
		}
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
		}
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, errors.Trace(err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	return &AzureBlob{
		client:    client,
		container: cfg.Container,
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (a *AzureBlob) Put(ctx context.Context, name string, r io.Reader, _ int64) error {
	_, err := a.client.UploadStream(ctx, a.container, objectKey(a.prefix, name), r, nil)
	return errors.Trace(err)
}
