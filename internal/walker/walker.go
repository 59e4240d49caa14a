// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package walker enumerates every text-bearing block in a document tree and
// runs the masking pipeline over each one: body paragraphs, every cell of
// every table (including tables nested inside cells, at any depth), and
// header and footer paragraphs and tables.
package walker

import (
	"docx-anonymiser/internal/detector"
	"docx-anonymiser/internal/document"
	"docx-anonymiser/internal/engine"
	"docx-anonymiser/internal/observability"
	"docx-anonymiser/internal/rewrite"
	"docx-anonymiser/internal/runmap"
)

// Stats summarises one document's traversal.
type Stats struct {
	// Blocks is the number of blocks visited
	Blocks int

	// MaskedBlocks is the number of blocks in which at least one span was masked
	MaskedBlocks int

	// MaskedSpans is the total number of mask spans applied
	MaskedSpans int

	// Anomalies holds per-block errors; the affected blocks were left
	// unmodified and traversal continued
	Anomalies []error
}

// Walker drives the masking pipeline over document trees. Blocks are
// processed strictly sequentially and independently; the run mapper is built
// fresh for each block and discarded after its rewrite.
type Walker struct {
	registry *detector.Registry
	observer *observability.Observer
}

// New creates a Walker using the given pattern registry.
func New(registry *detector.Registry, observer *observability.Observer) *Walker {
	if observer == nil {
		observer = observability.NewObserver(observability.Off, nil)
	}
	return &Walker{registry: registry, observer: observer}
}

// workItem is one pending node of the traversal: either a block to mask or a
// table to expand.
type workItem struct {
	block *document.Block
	table *document.Table
}

// ProcessDocument walks the whole tree in document order and masks each
// block. Per-block anomalies are collected into the returned Stats rather
// than aborting the document; the traversal itself never fails.
//
// The walk uses an explicit worklist instead of recursion, so arbitrarily
// deep table nesting cannot exhaust the call stack.
func (w *Walker) ProcessDocument(doc *document.Document) Stats {
	finish := w.observer.StartTiming("walker", "process_document", doc.Path())

	var stats Stats
	var stack []workItem

	// Seeds are pushed in reverse so popping yields document order: body
	// first, then headers, then footers.
	var seeds []workItem
	if doc.Body != nil {
		seeds = appendContainer(seeds, doc.Body.Blocks, doc.Body.Tables)
	}
	for _, h := range doc.Headers {
		seeds = appendContainer(seeds, h.Blocks, h.Tables)
	}
	for _, f := range doc.Footers {
		seeds = appendContainer(seeds, f.Blocks, f.Tables)
	}
	stack = pushReversed(stack, seeds)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case item.block != nil:
			w.processBlock(item.block, &stats)

		case item.table != nil:
			var children []workItem
			for _, row := range item.table.Rows {
				for _, cell := range row.Cells {
					children = appendContainer(children, cell.Blocks, cell.Tables)
				}
			}
			stack = pushReversed(stack, children)
		}
	}

	finish(true, map[string]interface{}{
		"blocks":        stats.Blocks,
		"masked_blocks": stats.MaskedBlocks,
		"masked_spans":  stats.MaskedSpans,
		"anomalies":     len(stats.Anomalies),
	})
	return stats
}

// processBlock runs mapper -> engine -> rewriter over one block. A block with
// no fragments or empty logical text is a no-op.
func (w *Walker) processBlock(block *document.Block, stats *Stats) {
	stats.Blocks++

	if len(block.Fragments) == 0 {
		return
	}

	mapper := runmap.New(block.Texts())
	if mapper.Len() == 0 {
		return
	}

	spans := engine.ComputeMask(mapper.Text(), w.registry)
	if len(spans) == 0 {
		return
	}

	if err := rewrite.Apply(block.Fragments, mapper, spans); err != nil {
		stats.Anomalies = append(stats.Anomalies, err)
		w.observer.LogOperation(observability.OperationData{
			Component: "walker",
			Operation: "rewrite_block",
			Success:   false,
			Metadata:  map[string]interface{}{"error": err.Error()},
		})
		return
	}

	stats.MaskedBlocks++
	stats.MaskedSpans += len(spans)
}

// appendContainer appends a container's blocks then tables as work items.
func appendContainer(items []workItem, blocks []*document.Block, tables []*document.Table) []workItem {
	for _, b := range blocks {
		items = append(items, workItem{block: b})
	}
	for _, t := range tables {
		items = append(items, workItem{table: t})
	}
	return items
}

// pushReversed pushes items so that the first item pops first.
func pushReversed(stack, items []workItem) []workItem {
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}
	return stack
}
