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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/gorse-io/reviewgraph/base/log"
	"github.com/gorse-io/reviewgraph/cmd/version"
	"github.com/gorse-io/reviewgraph/config"
	"github.com/gorse-io/reviewgraph/pipeline"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "reviewgraph",
	Short: "Turn Yelp reviews into graph edge lists for link prediction",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// stage builds a command that runs fn through a pipeline runner.
func stage(use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, r *pipeline.Runner, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		Run: func(cmd *cobra.Command, args []string) {
			name := cmd.Name()
			configPath, _ := cmd.Flags().GetString("config")
			log.Logger().Info("load config", zap.String("config", configPath))
			conf, err := config.LoadConfig(configPath)
			if err != nil {
				log.Logger().Fatal("failed to load config", zap.Error(err))
			}
			if cmd.Flags().Changed("jobs") {
				conf.Jobs, _ = cmd.Flags().GetInt("jobs")
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			runner, err := pipeline.NewRunner(ctx, conf)
			if err != nil {
				log.Logger().Fatal("failed to create runner", zap.Error(err))
			}
			manifest, err := runner.Run(ctx, name, func(ctx context.Context) error {
				return fn(ctx, runner, args)
			})
			if err != nil {
				log.Logger().Fatal("failed to run "+name, zap.Error(err))
			}
			if summary, _ := cmd.Flags().GetBool("summary"); summary {
				if err = printManifest(cmd.OutOrStdout(), manifest); err != nil {
					log.Logger().Fatal("failed to print summary", zap.Error(err))
				}
			}
		},
	}
}

func printManifest(w io.Writer, manifest *pipeline.Manifest) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Path", "Users", "Businesses", "Edges"})
	for _, output := range manifest.Outputs {
		row := []string{output.Name, output.Path, "", "", ""}
		if output.Header != nil {
			row[2] = strconv.Itoa(int(output.Header.Users))
			row[3] = strconv.Itoa(int(output.Header.Businesses))
			row[4] = strconv.Itoa(output.Header.Count)
		}
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().IntP("jobs", "j", 1, "number of working jobs")
	rootCommand.PersistentFlags().Bool("summary", false, "print a table of the produced files")

	rootCommand.AddCommand(
		stage("index", "Build user and business indexes", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				return r.BuildIndexes(ctx)
			}),
		stage("graph", "Write the full review graph", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				return r.Graph(ctx)
			}),
		stage("split", "Split the review graph into train, validation and test sets", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				_, err := r.Split(ctx)
				return err
			}),
		stage("users", "Write the allow-list of frequent users", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				return r.Users(ctx)
			}),
		stage("header FILE...", "Prepend a matrix market header to edge lists", cobra.MinimumNArgs(1),
			func(ctx context.Context, r *pipeline.Runner, args []string) error {
				return r.Header(ctx, args...)
			}),
		stage("remap IN OUT", "Renumber a simple interaction format file", cobra.ExactArgs(2),
			func(ctx context.Context, r *pipeline.Runner, args []string) error {
				return r.Remap(ctx, args[0], args[1])
			}),
		stage("timeline", "Write smoothed rating timelines of popular businesses", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				return r.Timeline(ctx)
			}),
		stage("export", "Write numbered ratings as CSV", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				return r.Export(ctx)
			}),
		stage("vectorize", "Write TF-IDF vectors of review texts", cobra.NoArgs,
			func(ctx context.Context, r *pipeline.Runner, _ []string) error {
				return r.Vectorize(ctx)
			}),
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
