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

// Package logger builds the zerolog logger shared by the CLI, the HTTP
// server and the counting core. Output goes to stderr so stdout stays
// reserved for count results.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Options configures the logger.
type Options struct {
	Level   string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
	Service string `yaml:"-"`
	Version string `yaml:"-"`

	// Writer defaults to os.Stderr.
	Writer io.Writer `yaml:"-"`
}

// New builds a logger from opts.
func New(opts Options) (zerolog.Logger, error) {
	opts.setDefaults()

	if err := validator.New().Struct(opts); err != nil {
		return zerolog.Nop(), fmt.Errorf("logger config validation error: %w", err)
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	w := opts.Writer
	if opts.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", opts.Service).
		Str("version", opts.Version).
		Logger(), nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func (o *Options) setDefaults() {
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Format == "" {
		o.Format = "json"
	}
	if o.Service == "" {
		o.Service = "sirseer-prcount"
	}
	if o.Writer == nil {
		o.Writer = os.Stderr
	}
}
