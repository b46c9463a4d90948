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

// Package config types define the configuration structures used throughout
// sirseer-prcount. These types represent settings that can be loaded from
// YAML configuration files, dotenv files, environment variables, or
// command-line flags.
package config

import (
	"time"

	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

// Config represents the complete configuration for sirseer-prcount.
type Config struct {
	GitHub       GitHubConfig          `yaml:"github"`
	Counting     CountingConfig        `yaml:"counting"`
	Server       ServerConfig          `yaml:"server"`
	Log          LogConfig             `yaml:"log"`
	Output       OutputConfig          `yaml:"output"`
	Repositories map[string]RepoConfig `yaml:"repositories" validate:"dive"`
}

// GitHubConfig contains GitHub endpoints and the name of the environment
// variable holding the token. Pointing the endpoints elsewhere is how GitHub
// Enterprise deployments are configured.
type GitHubConfig struct {
	APIEndpoint     string `yaml:"api_endpoint" validate:"required,url"`
	GraphQLEndpoint string `yaml:"graphql_endpoint" validate:"required,url"`
	TokenEnv        string `yaml:"token_env" validate:"required"`
}

// CountingConfig controls how pull requests are counted.
type CountingConfig struct {
	PageSize           int           `yaml:"page_size" validate:"gte=1"`
	RetryLimit         int           `yaml:"retry_limit" validate:"gte=0,lte=20"`
	MinRequestInterval time.Duration `yaml:"min_request_interval" validate:"gte=0"`
	MaxConcurrency     int           `yaml:"max_concurrency" validate:"gte=1,lte=100"`
	UseCache           bool          `yaml:"use_cache"`
	RequestTimeout     time.Duration `yaml:"request_timeout" validate:"gte=0"`
	DefaultStrategy    string        `yaml:"default_strategy" validate:"oneof=metadata concurrent search graphql"`
}

// ServerConfig holds the HTTP listener settings. CountTimeout bounds one
// whole count, retries and rate-limit waits included; zero disables it.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	CountTimeout    time.Duration `yaml:"count_timeout" validate:"gte=0"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// OutputConfig controls where count metadata is written when requested.
type OutputConfig struct {
	StatsDir string `yaml:"stats_dir"`
}

// RepoConfig contains repository-specific overrides. A repository with a
// very large history can, for example, default to the search strategy.
type RepoConfig struct {
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=metadata concurrent search graphql"`
}

// DefaultConfig returns a Config with the defaults used against public
// GitHub.com.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint:     github.DefaultBaseURL,
			GraphQLEndpoint: github.DefaultGraphQLEndpoint,
			TokenEnv:        github.DefaultTokenEnv,
		},
		Counting: CountingConfig{
			PageSize:           github.MaxPageSize,
			RetryLimit:         github.DefaultRetryLimit,
			MinRequestInterval: 0,
			MaxConcurrency:     10,
			UseCache:           true,
			RequestTimeout:     30 * time.Second,
			DefaultStrategy:    "metadata",
		},
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			CountTimeout:    4 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Output: OutputConfig{
			StatsDir: "~/.sirseer/prcount",
		},
		Repositories: make(map[string]RepoConfig),
	}
}
