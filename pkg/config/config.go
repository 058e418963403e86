/*
	Copyright 2023 Google Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

		https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package config holds the options of the demo binary.
package config

import (
	"errors"
	"fmt"
	"slices"
)

// Options configures a dictionary load, trie build and completion run.
// Field tags name the matching command-line flags and config file keys.
type Options struct {
	DictFilename     string   `mapstructure:"dict-filename" json:"dictFilename" yaml:"dict-filename"`
	DictEncoding     string   `mapstructure:"dict-encoding" json:"dictEncoding" yaml:"dict-encoding"`
	Lowercase        bool     `mapstructure:"lowercase" json:"lowercase" yaml:"lowercase"`
	SkipInvalid      bool     `mapstructure:"skip-invalid" json:"skipInvalid" yaml:"skip-invalid"`
	Prefixes         []string `mapstructure:"prefix" json:"prefixes" yaml:"prefix"`
	PrefixesFilename string   `mapstructure:"prefixes-filename" json:"prefixesFilename" yaml:"prefixes-filename"`
	Mode             string   `mapstructure:"mode" json:"mode" yaml:"mode"`
	Concurrency      uint     `mapstructure:"concurrency" json:"concurrency" yaml:"concurrency"`
	BatchSize        int      `mapstructure:"batch-size" json:"batchSize" yaml:"batch-size"`
	Output           string   `mapstructure:"output" json:"output" yaml:"output"`
	PrintTree        bool     `mapstructure:"print-tree" json:"printTree" yaml:"print-tree"`
	DumpMetrics      bool     `mapstructure:"dump-metrics" json:"dumpMetrics" yaml:"dump-metrics"`
}

// Modes lists the accepted values of Options.Mode.
var Modes = []string{"serial", "concurrent", "measure"}

// Outputs lists the accepted values of Options.Output.
var Outputs = []string{"text", "json", "yaml"}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{
		DictEncoding: "utf-8",
		Mode:         "serial",
		Concurrency:  2,
		BatchSize:    5000,
		Output:       "text",
	}
}

// Validate reports every problem with o.
func (o *Options) Validate() error {
	var errs []error
	if o.DictFilename == "" {
		errs = append(errs, errors.New("a dictionary file is required"))
	}
	if !slices.Contains(Modes, o.Mode) {
		errs = append(errs, fmt.Errorf("unsupported mode %q, wanted one of %v", o.Mode, Modes))
	}
	if !slices.Contains(Outputs, o.Output) {
		errs = append(errs, fmt.Errorf("unsupported output %q, wanted one of %v", o.Output, Outputs))
	}
	if o.Concurrency == 0 {
		errs = append(errs, errors.New("concurrency must be at least 1"))
	}
	if o.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", o.BatchSize))
	}
	for _, p := range o.Prefixes {
		if p == "" {
			errs = append(errs, errors.New("prefixes must not be empty"))
			break
		}
	}
	return errors.Join(errs...)
}
