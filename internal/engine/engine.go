// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine computes the final mask-span list for a block's logical
// text: raw detection, exemption filtering, and overlap resolution between
// detector classes.
package engine

import (
	"sort"

	"docx-anonymiser/internal/detector"
)

// ComputeMask returns the ordered, non-overlapping mask spans for text.
//
// Resolution rules:
//   - A mask match overlapping an exemption span (even partially) is discarded
//     entirely. When in doubt, preserve rather than mask: a vulnerability
//     identifier must never be partially masked just because a masking
//     pattern spuriously overlaps it.
//   - When matches of different classes overlap, the earlier-registered
//     class's span wins and the later match is dropped whole. Matches of the
//     same class never overlap by construction of the regex scan.
//
// The result is sorted ascending by start. A text with no matches yields nil,
// which is a normal, silent case.
func ComputeMask(text string, reg *detector.Registry) []detector.Span {
	exemptions := reg.Exemptions(text)

	var accepted []detector.Span
	// Detect reports spans in priority order, so a simple first-claim pass
	// implements first-registered-wins.
	for _, span := range reg.Detect(text) {
		if overlapsAny(span, exemptions) {
			continue
		}
		if overlapsAny(span, accepted) {
			continue
		}
		accepted = append(accepted, span)
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// overlapsAny reports whether span overlaps any span in the list.
func overlapsAny(span detector.Span, list []detector.Span) bool {
	for _, other := range list {
		if span.Overlaps(other) {
			return true
		}
	}
	return false
}
