// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"regexp"
)

// Class identifies a detector class. Registration order defines masking
// priority: when two classes match overlapping regions of the same text, the
// earlier-registered class's match wins and the later match is dropped.
type Class string

const (
	// ClassIPv4 matches dotted-quad IPv4 addresses
	ClassIPv4 Class = "IPV4"

	// ClassURL matches http and https URLs
	ClassURL Class = "URL"

	// ClassEmail matches email addresses
	ClassEmail Class = "EMAIL"

	// ClassMAC matches colon-separated MAC addresses
	ClassMAC Class = "MAC"

	// ClassPort matches prefixed port references such as "port 8443"
	ClassPort Class = "PORT"

	// ClassHostname matches hostnames and internal domain names
	ClassHostname Class = "HOSTNAME"
)

// builtinClasses lists the built-in detector classes in priority order.
var builtinClasses = []Class{
	ClassIPv4,
	ClassURL,
	ClassEmail,
	ClassMAC,
	ClassPort,
	ClassHostname,
}

// BuiltinClasses returns the built-in detector classes in priority order.
func BuiltinClasses() []Class {
	classes := make([]Class, len(builtinClasses))
	copy(classes, builtinClasses)
	return classes
}

// builtinPatterns maps each built-in class to its pattern source. The patterns
// deliberately target infrastructure identifiers only; vulnerability
// identifiers (CVE tokens) are handled by the exemption matcher and are never
// part of this set.
var builtinPatterns = map[Class]string{
	// IPv4 addresses (e.g. 192.168.1.10)
	ClassIPv4: `\b(?:\d{1,3}\.){3}\d{1,3}\b`,

	// URLs (http or https), up to the next whitespace
	ClassURL: `\bhttps?://[^\s]+`,

	// Email addresses
	ClassEmail: `\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`,

	// MAC addresses (e.g. AA:BB:CC:DD:EE:FF)
	ClassMAC: `\b(?:[0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}\b`,

	// Port numbers referenced as "port 443"
	ClassPort: `(?i)\bport\s+\d{1,5}\b`,

	// Hostnames and domains (e.g. internal.company.local)
	ClassHostname: `\b(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}\b`,
}

// exemptionPattern matches vulnerability identifiers. Any mask match that
// overlaps one of these spans is discarded entirely so that CVE tokens are
// never partially masked.
const exemptionPattern = `\bCVE-\d{4}-\d{4,}\b`

// Span is a half-open [Start, End) character range over a block's logical
// text, tagged with the detector class that produced it.
type Span struct {
	Start int
	End   int
	Class Class
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one character position.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// detectorPattern pairs a class with its compiled expression.
type detectorPattern struct {
	class Class
	regex *regexp.Regexp
}

// Registry holds the ordered detector set and the exemption matcher. A
// Registry is built once at process start and is read-only thereafter; Detect
// and IsExempt are pure functions over the configured pattern set and are safe
// for concurrent use.
type Registry struct {
	patterns  []detectorPattern
	exemption *regexp.Regexp
}

// CustomPattern is an operator-supplied detector loaded from configuration.
// Custom patterns register after the built-in classes, so built-ins win any
// overlap with them.
type CustomPattern struct {
	Name    string
	Pattern string
}

// Options controls registry construction.
type Options struct {
	// Enabled filters the built-in classes. A nil map enables every class;
	// otherwise only classes mapped to true are registered.
	Enabled map[Class]bool

	// Custom appends operator-defined detectors after the built-ins.
	Custom []CustomPattern
}

// NewRegistry builds a Registry from the given options. A malformed custom
// pattern is a ConfigurationError; callers are expected to treat it as fatal
// at startup rather than as a per-document failure.
func NewRegistry(opts Options) (*Registry, error) {
	r := &Registry{
		exemption: regexp.MustCompile(exemptionPattern),
	}

	for _, class := range builtinClasses {
		if opts.Enabled != nil && !opts.Enabled[class] {
			continue
		}
		r.patterns = append(r.patterns, detectorPattern{
			class: class,
			regex: regexp.MustCompile(builtinPatterns[class]),
		})
	}

	for _, custom := range opts.Custom {
		if custom.Name == "" {
			return nil, &ConfigurationError{
				Pattern: custom.Pattern,
				Message: "custom pattern has no name",
			}
		}
		re, err := regexp.Compile(custom.Pattern)
		if err != nil {
			return nil, &ConfigurationError{
				Pattern: custom.Pattern,
				Message: fmt.Sprintf("custom pattern %q does not compile", custom.Name),
				Cause:   err,
			}
		}
		r.patterns = append(r.patterns, detectorPattern{
			class: Class(custom.Name),
			regex: re,
		})
	}

	return r, nil
}

// DefaultRegistry builds a Registry with every built-in class enabled and no
// custom patterns.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Options{})
	if err != nil {
		// Built-in patterns are compile-time constants; this cannot happen.
		panic(err)
	}
	return r
}

// Classes returns the registered classes in priority order.
func (r *Registry) Classes() []Class {
	classes := make([]Class, 0, len(r.patterns))
	for _, p := range r.patterns {
		classes = append(classes, p.class)
	}
	return classes
}

// Detect returns every raw match across all detector classes. Matches are
// ordered by detector priority first, then left-to-right within a class.
// Overlap resolution between classes is the masking engine's job; Detect
// reports everything.
func (r *Registry) Detect(text string) []Span {
	var spans []Span
	for _, p := range r.patterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: loc[0], End: loc[1], Class: p.class})
		}
	}
	return spans
}

// Exemptions returns the exempt spans (vulnerability identifiers) in text,
// left to right.
func (r *Registry) Exemptions(text string) []Span {
	var spans []Span
	for _, loc := range r.exemption.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

// IsExempt reports whether the range [start, end) overlaps any exemption span
// in text.
func (r *Registry) IsExempt(text string, start, end int) bool {
	probe := Span{Start: start, End: end}
	for _, exempt := range r.Exemptions(text) {
		if probe.Overlaps(exempt) {
			return true
		}
	}
	return false
}
