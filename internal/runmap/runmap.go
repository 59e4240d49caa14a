// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package runmap maps between a block's logical text and the formatted runs
// the text is split across. Word stores formatting at the run level, so a
// single sentence may be fragmented into many runs and an identifier to be
// masked can start, end, or span anywhere inside that split. The Mapper
// rebuilds the contiguous logical string for pattern matching and resolves
// logical offsets back to (run index, offset within run) for rewriting.
package runmap

import (
	"fmt"
	"sort"
	"strings"
)

// Mapper holds one block's logical text and its reverse index. A Mapper is
// valid only for the fragment sequence it was built from: any mutation of the
// fragment texts invalidates it, and it must be rebuilt rather than reused
// after a rewrite. Mappers are never shared across blocks.
type Mapper struct {
	text string

	// starts[i] is the logical offset of fragment i's first character.
	// Zero-length fragments have starts[i] == starts[i+1] and therefore own
	// no offsets.
	starts []int
}

// New builds a Mapper over the given fragment texts in order.
func New(fragments []string) *Mapper {
	var b strings.Builder
	starts := make([]int, len(fragments))
	for i, text := range fragments {
		starts[i] = b.Len()
		b.WriteString(text)
	}
	return &Mapper{text: b.String(), starts: starts}
}

// Text returns the block's logical text: the concatenation of all fragment
// texts in order.
func (m *Mapper) Text() string {
	return m.text
}

// Len returns the length of the logical text.
func (m *Mapper) Len() int {
	return len(m.text)
}

// FragmentCount returns the number of fragments the mapper was built from,
// including zero-length ones.
func (m *Mapper) FragmentCount() int {
	return len(m.starts)
}

// Resolve maps a logical-text offset to the owning fragment index and the
// local offset within that fragment. Ties at fragment boundaries resolve to
// the later fragment, which also skips zero-length fragments: they contribute
// no offsets and are never returned.
func (m *Mapper) Resolve(offset int) (fragment int, local int, err error) {
	if offset < 0 || offset >= len(m.text) {
		return 0, 0, fmt.Errorf("offset %d out of range [0, %d)", offset, len(m.text))
	}

	// First fragment whose start lies beyond the offset; the owner is the one
	// before it.
	i := sort.Search(len(m.starts), func(i int) bool {
		return m.starts[i] > offset
	})
	fragment = i - 1
	return fragment, offset - m.starts[fragment], nil
}
