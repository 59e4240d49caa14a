// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package batch discovers Word documents in a folder and runs the
// anonymisation pipeline over each of them.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docx-anonymiser/internal/detector"
	"docx-anonymiser/internal/document"
	"docx-anonymiser/internal/observability"
	"docx-anonymiser/internal/report"
	"docx-anonymiser/internal/walker"
)

// OutputPrefix is prepended to the base name of every anonymised copy.
// Files carrying it are never picked up as inputs.
const OutputPrefix = "Anonymised_"

// Outcome classifies what happened to a single document.
type Outcome int

const (
	// OutcomeProcessed means an anonymised copy was written
	OutcomeProcessed Outcome = iota

	// OutcomeSkipped means the document was left alone (unreadable or
	// already anonymised)
	OutcomeSkipped

	// OutcomeFailed means processing started but the copy could not be
	// written
	OutcomeFailed
)

// Result describes the processing of one document.
type Result struct {
	Path    string
	Output  string
	Outcome Outcome
	Stats   walker.Stats
	Err     error
}

// Processor runs the anonymisation pipeline over individual files.
type Processor struct {
	walker   *walker.Walker
	observer *observability.Observer
	verbose  bool
}

// NewProcessor creates a batch processor around the given walker.
func NewProcessor(w *walker.Walker, observer *observability.Observer, verbose bool) *Processor {
	if observer == nil {
		observer = observability.NewObserver(observability.Off, nil)
	}
	return &Processor{walker: w, observer: observer, verbose: verbose}
}

// ProcessFile anonymises one document. Unreadable documents and documents
// already carrying the anonymised marker are skipped; only a failure to
// write the output copy counts as a failure.
func (p *Processor) ProcessFile(path string) Result {
	finish := p.observer.StartTiming("batch", "process_file", path)

	doc, err := document.Load(path)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return Result{Path: path, Outcome: OutcomeSkipped, Err: err}
	}

	if doc.AlreadyAnonymised() {
		finish(true, map[string]interface{}{"skipped": "already anonymised"})
		return Result{Path: path, Outcome: OutcomeSkipped}
	}

	stats := p.walker.ProcessDocument(doc)

	doc.MarkAnonymised()

	output := OutputName(path)
	if err := doc.Save(output); err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return Result{Path: path, Outcome: OutcomeFailed, Stats: stats, Err: err}
	}

	finish(true, map[string]interface{}{
		"output":       output,
		"masked_spans": stats.MaskedSpans,
	})
	return Result{Path: path, Output: output, Outcome: OutcomeProcessed, Stats: stats}
}

// ProcessFolder anonymises every eligible document under folder and returns
// the batch summary. Individual failures never abort the batch.
func (p *Processor) ProcessFolder(folder string, recursive bool) (report.Summary, error) {
	paths, err := DiscoverDocuments(folder, recursive)
	if err != nil {
		return report.Summary{}, err
	}

	var summary report.Summary
	for _, path := range paths {
		result := p.ProcessFile(path)
		switch result.Outcome {
		case OutcomeProcessed:
			summary.Processed++
			if p.verbose {
				fmt.Printf("anonymised %s -> %s (%d spans masked)\n",
					result.Path, result.Output, result.Stats.MaskedSpans)
			}
		case OutcomeSkipped:
			summary.Skipped++
			if p.verbose && result.Err != nil {
				fmt.Printf("skipped %s: %v\n", result.Path, result.Err)
			}
		case OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, report.Failure{
				Path: result.Path,
				Err:  result.Err,
			})
		}
	}

	return summary, nil
}

// DiscoverDocuments lists the .docx files under folder that are eligible
// inputs. Previously generated output copies and Word lock files are
// excluded. With recursive set, subfolders are walked too.
func DiscoverDocuments(folder string, recursive bool) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a folder", folder)
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(folder, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() && EligibleDocument(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking folder %s: %w", folder, err)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("error reading folder %s: %w", folder, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && EligibleDocument(entry.Name()) {
			paths = append(paths, filepath.Join(folder, entry.Name()))
		}
	}
	return paths, nil
}

// EligibleDocument reports whether a file name is a candidate input.
func EligibleDocument(name string) bool {
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		return false
	}
	if strings.HasPrefix(name, OutputPrefix) {
		return false
	}
	// Word keeps a ~$ lock file next to any open document.
	if strings.HasPrefix(name, "~$") {
		return false
	}
	return true
}

// OutputName returns the path of the anonymised copy for an input document.
func OutputName(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	return filepath.Join(dir, OutputPrefix+base)
}

// ParseChecks converts the comma-separated checks flag into detector
// options. "all" or an empty string enables every built-in class; unknown
// names are rejected.
func ParseChecks(checks string) (detector.Options, error) {
	opts := detector.Options{Enabled: make(map[detector.Class]bool)}

	known := make(map[string]detector.Class)
	for _, class := range detector.BuiltinClasses() {
		known[strings.ToLower(string(class))] = class
		opts.Enabled[class] = false
	}

	if checks == "" || checks == "all" {
		for class := range opts.Enabled {
			opts.Enabled[class] = true
		}
		return opts, nil
	}

	for _, part := range strings.Split(checks, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		class, ok := known[name]
		if !ok {
			return detector.Options{}, fmt.Errorf("unknown check %q", part)
		}
		opts.Enabled[class] = true
	}

	enabledAny := false
	for _, on := range opts.Enabled {
		if on {
			enabledAny = true
			break
		}
	}
	if !enabledAny {
		return detector.Options{}, errors.New("no checks enabled")
	}

	return opts, nil
}
