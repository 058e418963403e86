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

// Binary demo builds a compressed prefix tree from a dictionary and prints
// the completion lists of a set of prefixes.
//
// The input dictionary file should be a plain text file with one word per line.
// E.g., via `curl -o words.txt https://raw.githubusercontent.com/dwyl/english-words/a77cb15f4f5beb59c15b945f2415328a6b33c3b0/words.txt`,
// loaded with --lowercase --skip-invalid.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/google/go-prefixtree/pkg/batch"
	"github.com/google/go-prefixtree/pkg/config"
	"github.com/google/go-prefixtree/pkg/dict"
	"github.com/google/go-prefixtree/pkg/metrics"
	"github.com/google/go-prefixtree/pkg/pipeline"
	"github.com/google/go-prefixtree/pkg/treeprint"
	"github.com/google/go-prefixtree/prefixtree"
)

var (
	cfgFile   string
	logLevel  string
	envPrefix = "PREFIXTREE"
	opts      = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a compressed prefix tree from a dictionary and complete prefixes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(&opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
	SilenceUsage: true,
}

// initConfig reads the config file, if any, and PREFIXTREE_* environment
// variables into flags that weren't set on the command line.
func initConfig() {
	cfgErr := loadConfig(rootCmd, cfgFile)
	initLogger()
	if cfgErr != nil {
		log.Errorf("Read config error: %v", cfgErr)
	}
}

// loadConfig applies cfgFile and PREFIXTREE_* environment variables to the
// flags of cmd.  Flags set on the command line take precedence.
func loadConfig(cmd *cobra.Command, cfgFile string) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var cfgErr error
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		cfgErr = v.ReadInConfig()
	}
	if err := bindFlags(cmd, v); err != nil {
		return err
	}
	return cfgErr
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		val := v.GetString(f.Name)
		if f.Value.Type() == "stringSlice" {
			val = strings.Join(v.GetStringSlice(f.Name), ",")
		}
		if err := cmd.Flags().Set(f.Name, val); err != nil {
			bindErr = fmt.Errorf("can't apply configured %s=%q: %w", f.Name, val, err)
		}
	})
	return bindErr
}

func initFlags() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&logLevel, "log-level", "error", "Log level: trace, debug, info, warning, error")
	addFlags(rootCmd.Flags(), &opts)
}

func addFlags(f *pflag.FlagSet, o *config.Options) {
	f.StringVar(&o.DictFilename, "dict-filename", o.DictFilename, "The filename of a dictionary from which to construct the tree.")
	f.StringVar(&o.DictEncoding, "dict-encoding", o.DictEncoding, "Dictionary encoding: utf-8 or latin1.")
	f.BoolVar(&o.Lowercase, "lowercase", o.Lowercase, "Lowercase dictionary words before validating them.")
	f.BoolVar(&o.SkipInvalid, "skip-invalid", o.SkipInvalid, "Skip dictionary words that aren't lowercase a-z instead of failing.")
	f.StringSliceVar(&o.Prefixes, "prefix", o.Prefixes, "Prefixes to complete (repeatable).")
	f.StringVar(&o.PrefixesFilename, "prefixes-filename", o.PrefixesFilename, "A file of prefixes to complete, one per line.")
	f.StringVar(&o.Mode, "mode", o.Mode, `Completion mode:
  'serial' to complete prefixes in serial,
  'concurrent' to complete batches of prefixes in parallel via a pipeline,
  'measure' as 'concurrent', but reporting pipeline performance.`)
	f.UintVar(&o.Concurrency, "concurrency", o.Concurrency, "Completion workers in concurrent modes.")
	f.IntVar(&o.BatchSize, "batch-size", o.BatchSize, "The number of prefixes in a batch in concurrent modes.")
	f.StringVar(&o.Output, "output", o.Output, "Output format: text, json or yaml.")
	f.BoolVar(&o.PrintTree, "print-tree", o.PrintTree, "Print the tree before completing.")
	f.BoolVar(&o.DumpMetrics, "dump-metrics", o.DumpMetrics, "Print build and completion metrics at exit.")
}

func main() {
	initFlags()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run writes completion results to out, and the pipeline report of
// measure mode to report.
func run(opts *config.Options, out, report io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	d, err := dict.LoadFile(opts.DictFilename, dict.Options{
		Encoding:    opts.DictEncoding,
		Lowercase:   opts.Lowercase,
		SkipInvalid: opts.SkipInvalid,
	})
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	start := time.Now()
	tr, err := prefixtree.Build(d.Words)
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	st := tr.Stats()
	m.ObserveBuild(st, time.Since(start))
	log.WithFields(log.Fields{
		"words":  st.Words,
		"nodes":  st.Nodes,
		"splits": st.Splits,
	}).Infof("Prefix tree construction took %s.", time.Since(start))

	if opts.PrintTree {
		if err := treeprint.Fprint(out, tr.Root()); err != nil {
			return err
		}
	}

	prefixes := append([]string(nil), opts.Prefixes...)
	if opts.PrefixesFilename != "" {
		f, err := os.Open(opts.PrefixesFilename)
		if err != nil {
			return fmt.Errorf("failed to open prefixes: %w", err)
		}
		more, err := dict.ReadLines(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read prefixes: %w", err)
		}
		prefixes = append(prefixes, more...)
	}

	bo := batch.Options{
		Mode:            batch.Serial,
		Concurrency:     opts.Concurrency,
		BatchSize:       opts.BatchSize,
		InputBufferSize: 1,
		Metrics:         m,
	}
	var results []batch.Result
	switch opts.Mode {
	case "serial":
		results, err = batch.Complete(tr, prefixes, bo)
	case "concurrent":
		bo.Mode = batch.Concurrent
		results, err = batch.Complete(tr, prefixes, bo)
	case "measure":
		var pm *pipeline.Metrics
		results, pm, err = batch.Measure(tr, prefixes, bo)
		if err == nil {
			if _, err := fmt.Fprintln(report, pm.String()); err != nil {
				return err
			}
		}
	}
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}

	if err := writeResults(out, opts.Output, results); err != nil {
		return err
	}
	if opts.DumpMetrics {
		return metrics.Dump(out, reg)
	}
	return nil
}

func writeResults(w io.Writer, format string, results []batch.Result) error {
	switch format {
	case "json":
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case "yaml":
		b, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	for _, r := range results {
		completions := "(none)"
		if r.Found {
			completions = strings.Join(r.Words, " ")
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Prefix, completions); err != nil {
			return err
		}
	}
	return nil
}
