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
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/gorse-io/reviewgraph/base/log"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/gorse-io/reviewgraph/matrix"
	"github.com/gorse-io/reviewgraph/storage/blob"
	jsoniter "github.com/json-iterator/go"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Output is a file produced by a run.
type Output struct {
	Name   string         `json:"name"`
	Path   string         `json:"path"`
	Header *matrix.Header `json:"header,omitempty"`
}

// Manifest describes a run and its outputs.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Policy     string    `json:"policy,omitempty"`
	Seed       *int64    `json:"seed,omitempty"`
	Outputs    []Output  `json:"outputs"`
}

// Runner executes pipeline stages with a configuration. Each stage is a
// method writing files under the output directory.
type Runner struct {
	Config *config.Config
	Store  blob.Store

	manifest *Manifest
}

func NewRunner(ctx context.Context, cfg *config.Config) (*Runner, error) {
	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Runner{Config: cfg, Store: store}, nil
}

// Run executes stage as command. On success the manifest is written next to
// the outputs, and all files are published if a blob store is configured.
func (r *Runner) Run(ctx context.Context, command string, stage func(context.Context) error) (*Manifest, error) {
	if err := os.MkdirAll(r.Config.Output.Dir, os.ModePerm); err != nil {
		return nil, errors.Trace(err)
	}
	r.manifest = &Manifest{
		RunID:     uuid.New().String(),
		Command:   command,
		StartedAt: time.Now(),
	}
	logger := log.Logger().With(zap.String("command", command), zap.String("run_id", r.manifest.RunID))
	logger.Info("start stage")
	if err := stage(ctx); err != nil {
		return nil, errors.Annotatef(err, "run %s", command)
	}
	r.manifest.FinishedAt = time.Now()
	paths := make([]string, 0, len(r.manifest.Outputs)+1)
	for _, output := range r.manifest.Outputs {
		paths = append(paths, output.Path)
	}
	if r.Config.Output.ManifestFile != "" {
		path := r.Config.Output.Path(r.Config.Output.ManifestFile)
		if err := writeManifest(path, r.manifest); err != nil {
			return nil, errors.Trace(err)
		}
		paths = append(paths, path)
	}
	if r.Store != nil {
		if err := blob.Publish(ctx, r.Store, paths...); err != nil {
			return nil, errors.Trace(err)
		}
	}
	logger.Info("complete stage",
		zap.Int("outputs", len(r.manifest.Outputs)),
		zap.Duration("elapsed", r.manifest.FinishedAt.Sub(r.manifest.StartedAt)))
	return r.manifest, nil
}

func (r *Runner) record(output Output) {
	if r.manifest != nil {
		r.manifest.Outputs = append(r.manifest.Outputs, output)
	}
}

func writeManifest(path string, manifest *Manifest) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(renameio.WriteFile(path, append(data, '\n'), 0o644))
}

// ReadManifest reads a manifest written by Run.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var manifest Manifest
	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Annotatef(err, "decode manifest %s", filepath.Base(path))
	}
	return &manifest, nil
}
