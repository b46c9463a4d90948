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

// Package config provides configuration management for sirseer-prcount with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables, including those loaded from dotenv files
//  3. Repository-specific configuration
//  4. Global configuration file
//  5. Built-in defaults
//
// Dotenv files never override variables already present in the process
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. Dotenv files are loaded first:
//   - env/.env.{APP_ENV} (when APP_ENV is set)
//   - .env
//
// If configPath is provided, it loads from that specific file. Otherwise, it
// searches standard locations:
//   - .sirseer-prcount.yaml (current directory)
//   - .sirseer-prcount.yml (current directory)
//   - ~/.sirseer/prcount.yaml
//   - ~/.sirseer/prcount.yml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
// The result is not validated; call Validate once flags have been applied.
// Errors wrap ErrInvalidConfig.
func LoadConfig(configPath string) (*Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", relaierrors.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func loadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-prcount.yaml",
			".sirseer-prcount.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "prcount.yaml"),
			filepath.Join(os.Getenv("HOME"), ".sirseer", "prcount.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Output.StatsDir = expandPath(cfg.Output.StatsDir)

	return cfg, nil
}

// dotEnvFiles lists the dotenv files to load, most specific first.
func dotEnvFiles() []string {
	var files []string
	if env := os.Getenv("APP_ENV"); env != "" {
		files = append(files, filepath.Join("env", ".env."+env))
	}
	return append(files, ".env")
}

// loadDotEnv loads the dotenv files that exist. godotenv.Load keeps values
// already set, so an earlier file wins over a later one.
func loadDotEnv() error {
	for _, path := range dotEnvFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Malformed numeric values are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	if v := os.Getenv("PRCOUNT_PAGE_SIZE"); v != "" {
		size, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("PRCOUNT_PAGE_SIZE: %w", err)
		}
		cfg.Counting.PageSize = size
	}
	if v := os.Getenv("PRCOUNT_RETRY_LIMIT"); v != "" {
		limit, err := parseNonNegativeInt(v)
		if err != nil {
			return fmt.Errorf("PRCOUNT_RETRY_LIMIT: %w", err)
		}
		cfg.Counting.RetryLimit = limit
	}
	if v := os.Getenv("PRCOUNT_MAX_CONCURRENCY"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("PRCOUNT_MAX_CONCURRENCY: %w", err)
		}
		cfg.Counting.MaxConcurrency = n
	}
	if v := os.Getenv("PRCOUNT_MIN_REQUEST_INTERVAL"); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("PRCOUNT_MIN_REQUEST_INTERVAL: %w", err)
		}
		cfg.Counting.MinRequestInterval = d
	}
	if v := os.Getenv("PRCOUNT_USE_CACHE"); v != "" {
		cfg.Counting.UseCache = parseBool(v)
	}

	if port := os.Getenv("APP_PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	if level := os.Getenv("PRCOUNT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	if format := os.Getenv("PRCOUNT_LOG_FORMAT"); format != "" {
		cfg.Log.Format = strings.ToLower(format)
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	i, err := parseNonNegativeInt(s)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseNonNegativeInt parses a string to an integer >= 0
func parseNonNegativeInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("value must not be negative, got: %d", i)
	}
	return i, nil
}

// parseInterval accepts a Go duration ("250ms", "2s") or a bare number of
// seconds.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("interval must not be negative, got: %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse interval '%s': %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("interval must not be negative, got: %s", d)
	}
	return d, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// GetStrategy returns the effective counting strategy for a repository,
// taking into account repository-specific overrides. The repo parameter
// should be in "owner/repo" format.
func (c *Config) GetStrategy(repo string) string {
	if repoConfig, ok := c.Repositories[repo]; ok && repoConfig.Strategy != "" {
		return repoConfig.Strategy
	}
	return c.Counting.DefaultStrategy
}

// Validate checks if the configuration contains valid values. The checks
// with the clearest messages run first; the struct tags catch the rest.
// Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", relaierrors.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Counting.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", c.Counting.PageSize)
	}
	if c.Counting.PageSize > github.MaxPageSize {
		return fmt.Errorf("page size %d exceeds GitHub API limit of %d", c.Counting.PageSize, github.MaxPageSize)
	}
	if c.GitHub.APIEndpoint == "" {
		return fmt.Errorf("GitHub API endpoint cannot be empty")
	}
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}
