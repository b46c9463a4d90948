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

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-prcount/internal/app"
	"github.com/sirseerhq/sirseer-prcount/internal/config"
	"github.com/sirseerhq/sirseer-prcount/internal/giterror"
	"github.com/sirseerhq/sirseer-prcount/pkg/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCommand(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return giterror.ExitCode(err)
	}
	return 0
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var gf globalFlags

	rootCmd := &cobra.Command{
		Use:   "prcount",
		Short: "Count pull requests in GitHub repositories",
		Long: `prcount reports the total number of pull requests (open and closed) in a
GitHub repository. Four strategies trade accuracy against API cost:

  metadata    one request; reads the last page number at one item per page
  concurrent  fetches every page concurrently, shortcut by an in-process cache
  search      the search index total (may lag recent changes)
  graphql     pullRequests.totalCount from the GraphQL API`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&gf.configPath, "config", "", "Path to config file (default: .sirseer-prcount.yaml or ~/.sirseer/prcount.yaml)")
	rootCmd.PersistentFlags().StringVar(&gf.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().StringVar(&gf.logFormat, "log-format", "", "Log format: json or console")

	rootCmd.AddCommand(newCountCommand(&gf, stdout, stderr))
	rootCmd.AddCommand(newServeCommand(&gf, stderr))

	return rootCmd
}

// loadConfig loads configuration and applies the global flags on top.
func loadConfig(gf *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(gf.configPath)
	if err != nil {
		return nil, err
	}
	if gf.logLevel != "" {
		cfg.Log.Level = gf.logLevel
	}
	if gf.logFormat != "" {
		cfg.Log.Format = gf.logFormat
	}
	return cfg, nil
}

func buildApp(cfg *config.Config, stderr io.Writer) (*app.App, error) {
	return app.New(cfg, app.Options{LogWriter: stderr})
}
