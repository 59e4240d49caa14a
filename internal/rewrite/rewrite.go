// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package rewrite applies computed mask spans back onto a block's fragment
// sequence. Every character inside a mask span is replaced with the filler
// character, one for one; characters outside mask spans and all per-fragment
// formatting stay byte-for-byte identical, so fragment boundaries never
// shift.
package rewrite

import (
	"fmt"

	"docx-anonymiser/internal/detector"
	"docx-anonymiser/internal/document"
	"docx-anonymiser/internal/runmap"
)

// Filler is the fixed mask character. Masking is irreversible and
// length-preserving: each masked character becomes exactly one filler
// character.
const Filler byte = 'x'

// StructuralAnomalyError reports a block whose fragment sequence is
// inconsistent with the logical text its mapper was built from, or a mask
// span that falls outside the logical text. The block is left unmodified and
// processing continues with the next block.
type StructuralAnomalyError struct {
	Detail string
}

// Error implements the error interface
func (e *StructuralAnomalyError) Error() string {
	return "structural anomaly: " + e.Detail
}

// Apply rewrites the masked character ranges into the fragments through the
// mapper's reverse index. The rewrite is atomic per block: all spans are
// applied to scratch buffers first and committed only when every offset
// resolved, so an anomaly never leaves a block partially masked.
//
// The mapper must have been built from the current fragment texts; Apply
// verifies this defensively and refuses stale indexes.
func Apply(fragments []*document.Fragment, m *runmap.Mapper, spans []detector.Span) error {
	if len(spans) == 0 {
		return nil
	}

	total := 0
	for _, f := range fragments {
		total += len(f.Text)
	}
	if total != m.Len() || len(fragments) != m.FragmentCount() {
		return &StructuralAnomalyError{
			Detail: fmt.Sprintf("fragment sequence (%d runs, %d chars) does not match mapper (%d runs, %d chars)",
				len(fragments), total, m.FragmentCount(), m.Len()),
		}
	}

	scratch := make([][]byte, len(fragments))
	for _, span := range spans {
		if span.Start < 0 || span.End > m.Len() || span.Start > span.End {
			return &StructuralAnomalyError{
				Detail: fmt.Sprintf("mask span [%d,%d) outside logical text of length %d",
					span.Start, span.End, m.Len()),
			}
		}
		for offset := span.Start; offset < span.End; offset++ {
			idx, local, err := m.Resolve(offset)
			if err != nil {
				return &StructuralAnomalyError{Detail: err.Error()}
			}
			if scratch[idx] == nil {
				scratch[idx] = []byte(fragments[idx].Text)
			}
			scratch[idx][local] = Filler
		}
	}

	for i, buf := range scratch {
		if buf != nil {
			fragments[i].SetText(string(buf))
		}
	}
	return nil
}
