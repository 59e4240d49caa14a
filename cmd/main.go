// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docx-anonymiser/internal/batch"
	"docx-anonymiser/internal/config"
	"docx-anonymiser/internal/detector"
	"docx-anonymiser/internal/observability"
	"docx-anonymiser/internal/report"
	"docx-anonymiser/internal/version"
	"docx-anonymiser/internal/walker"

	"golang.org/x/term"
)

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	checks    string
	verbose   bool
	debug     bool
	noColor   bool
	recursive bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	checks    string
	verbose   bool
	debug     bool
	noColor   bool
	recursive bool
}

// resolveConfiguration resolves final configuration values from the config
// file and command line flags. Flags that were set explicitly win.
func resolveConfiguration(cfg *config.Config, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Checks to run
	final.checks = "all" // default fallback
	if cfg != nil && cfg.Defaults.Checks != "" {
		final.checks = cfg.Defaults.Checks
	}
	if isFlagSet("checks") && flags.checks != "" {
		final.checks = flags.checks
	}

	// Verbose
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}
	if !isTerminal(os.Stdout) {
		final.noColor = true
	}

	// Recursive
	if cfg != nil {
		final.recursive = cfg.Defaults.Recursive
	}
	if isFlagSet("recursive") {
		final.recursive = flags.recursive
	}

	return final
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// buildRegistry assembles the pattern registry from the resolved checks and
// the config file's custom patterns.
func buildRegistry(checks string, cfg *config.Config) (*detector.Registry, error) {
	opts, err := batch.ParseChecks(checks)
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Patterns {
		opts.Custom = append(opts.Custom, detector.CustomPattern{
			Name:    p.Name,
			Pattern: p.Pattern,
		})
	}
	return detector.NewRegistry(opts)
}

func main() {
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	checks := flag.String("checks", "", "Identifier classes to mask: IPV4, URL, EMAIL, MAC, PORT, HOSTNAME, or combinations like 'IPV4,URL' (default: all)")
	verbose := flag.Bool("verbose", false, "Display per-document processing details")
	debug := flag.Bool("debug", false, "Enable debug logging of pipeline operations")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	recursive := flag.Bool("recursive", false, "Also process documents in subfolders")
	watch := flag.Bool("watch", false, "Keep running and anonymise documents as they appear in the folder")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <folder>\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	folder := flag.Arg(0)

	cfg := loadConfiguration(*configFile)
	final := resolveConfiguration(cfg, &configFlags{
		checks:    *checks,
		verbose:   *verbose,
		debug:     *debug,
		noColor:   *noColor,
		recursive: *recursive,
	})

	registry, err := buildRegistry(final.checks, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level := observability.Metrics
	if final.debug {
		level = observability.Debug
	}
	observer := observability.NewObserver(level, os.Stderr)

	w := walker.New(registry, observer)
	processor := batch.NewProcessor(w, observer, final.verbose)
	renderer := report.NewRenderer(final.noColor)

	if *watch {
		runWatch(processor, renderer, folder)
		return
	}

	summary, err := processor.ProcessFolder(folder, final.recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Print(renderer.Render(summary))
	if summary.HasFailures() {
		os.Exit(1)
	}
}

// runWatch blocks processing documents as they appear, until interrupted.
func runWatch(processor *batch.Processor, renderer *report.Renderer, folder string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary report.Summary
	fmt.Printf("Watching %s for documents (Ctrl-C to stop)\n", folder)

	err := processor.Watch(ctx, folder, func(result batch.Result) {
		switch result.Outcome {
		case batch.OutcomeProcessed:
			summary.Processed++
			fmt.Printf("anonymised %s -> %s\n", result.Path, result.Output)
		case batch.OutcomeSkipped:
			summary.Skipped++
		case batch.OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, report.Failure{Path: result.Path, Err: result.Err})
		}
	})
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Print(renderer.Render(summary))
	if summary.HasFailures() {
		os.Exit(1)
	}
}
