// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
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
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-prcount/internal/counter"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
	"github.com/sirseerhq/sirseer-prcount/internal/metadata"
	"github.com/sirseerhq/sirseer-prcount/internal/output"
)

type countFlags struct {
	strategy  string
	noCache   bool
	pageSize  int
	output    string
	format    string
	stats     bool
	saveStats bool
	statsDir  string
}

func newCountCommand(gf *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var f countFlags

	cmd := &cobra.Command{
		Use:   "count <owner>/<repo>",
		Short: "Count the pull requests of a repository",
		Long: `Count all pull requests (open and closed) of a GitHub repository and print
the result as one NDJSON record.

The repository must be specified in the format: <owner>/<repo>
For example: golang/go, kubernetes/kubernetes

Authentication is read from the environment variable named by github.token_env
(GITHUB_API_KEY by default), which may also be set in a .env file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCount(ctx, gf, &f, args[0], stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Counting strategy: metadata, concurrent, search, graphql (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Do not seed the concurrent scan from the count cache")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Page size for the concurrent scan, 1-100 (default from config)")
	cmd.Flags().StringVar(&f.output, "output", "", "Output file path, appended to (default: stdout)")
	cmd.Flags().StringVar(&f.format, "format", "ndjson", "Output format: ndjson or text")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "Print count metadata (API calls, pages, cache use) to stderr")
	cmd.Flags().BoolVar(&f.saveStats, "save-stats", false, "Save count metadata as JSON under the stats directory")
	cmd.Flags().StringVar(&f.statsDir, "stats-dir", "", "Directory for --save-stats (default from config)")

	return cmd
}

func runCount(ctx context.Context, gf *globalFlags, f *countFlags, repoArg string, stdout, stderr io.Writer) error {
	ref, err := github.ParseRepository(repoArg)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(f.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(gf)
	if err != nil {
		return err
	}
	if f.noCache {
		cfg.Counting.UseCache = false
	}
	if f.pageSize != 0 {
		cfg.Counting.PageSize = f.pageSize
	}

	strategyName := f.strategy
	if strategyName == "" {
		strategyName = cfg.GetStrategy(ref.String())
	}
	strategy, err := counter.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, stderr)
	if err != nil {
		return err
	}

	var writer output.RecordWriter
	if f.output == "" {
		writer, err = output.New(stdout, format)
	} else {
		writer, err = output.Open(f.output, format)
	}
	if err != nil {
		return err
	}
	defer writer.Close()

	res, err := a.Counter.Count(ctx, strategy, ref)
	if err != nil {
		return err
	}

	if err := writer.Write(output.NewCountRecord(ref, string(strategy), res.Count, time.Now())); err != nil {
		return err
	}

	if f.stats && res.Metadata != nil {
		if err := metadata.WriteMetadataToWriter(res.Metadata, stderr); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}
	if f.saveStats && res.Metadata != nil {
		dir := f.statsDir
		if dir == "" {
			dir = cfg.Output.StatsDir
		}
		path, err := metadata.SaveMetadata(res.Metadata, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Count metadata saved to %s\n", path)
	}

	return nil
}
