// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report renders the end-of-run batch summary.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Failure records one document that could not be fully processed.
type Failure struct {
	Path string
	Err  error
}

// Summary aggregates outcomes across a batch run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// Renderer formats a Summary for terminal output
type Renderer struct {
	colors map[string]*color.Color
}

// NewRenderer creates a renderer. Color output is disabled globally when
// noColor is set.
func NewRenderer(noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

// Render formats the summary as text output
func (r *Renderer) Render(s Summary) string {
	var builder strings.Builder

	builder.WriteString(r.colors["white"].Sprint("Summary:"))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("  Anonymised: %s\n", r.colors["green"].Sprintf("%d", s.Processed)))
	builder.WriteString(fmt.Sprintf("  Skipped:    %s\n", r.colors["yellow"].Sprintf("%d", s.Skipped)))
	if s.Failed > 0 {
		builder.WriteString(fmt.Sprintf("  Failed:     %s\n", r.colors["red"].Sprintf("%d", s.Failed)))
	}

	for _, f := range s.Failures {
		builder.WriteString(fmt.Sprintf("  %s %s: %v\n", r.colors["red"].Sprint("error"), f.Path, f.Err))
	}

	return builder.String()
}

// HasFailures reports whether any document in the batch failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}
