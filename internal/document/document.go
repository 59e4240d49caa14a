// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package document is the DOCX I/O adapter. A DOCX file is a ZIP archive of
// OOXML parts; this package opens the archive, parses the text-bearing parts
// (main document, headers, footers) into a structural tree of blocks and
// tables, and repackages the archive with the mutated parts on save.
//
// The tree exposes each run's text for masking while keeping the run's
// formatting inside the underlying XML node, which callers never touch.
// Structural identity (part ordering, element nesting) is preserved between
// load and save; only run text content changes.
package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
)

// mainDocumentPart is the OOXML part holding the document body.
const mainDocumentPart = "word/document.xml"

// Fragment is one formatted run of text (a w:t element). Only Text is ever
// mutated; the underlying XML node carries the run's formatting and is owned
// by this package.
type Fragment struct {
	Text string

	// node is the w:t element backing this fragment; nil for fragments
	// constructed directly in tests.
	node *xmlquery.Node
}

// SetText replaces the fragment's text in both the tree model and the backing
// XML node. The run's formatting properties are left untouched. This is the
// only mutation the adapter exposes; fragments are never reordered, split, or
// merged.
func (f *Fragment) SetText(text string) {
	f.Text = text
	if f.node != nil {
		setElementText(f.node, text)
	}
}

// Block is one paragraph-equivalent unit: an ordered fragment sequence whose
// concatenation is the paragraph's logical text.
type Block struct {
	Fragments []*Fragment
}

// Texts returns the fragment texts in order.
func (b *Block) Texts() []string {
	texts := make([]string, len(b.Fragments))
	for i, f := range b.Fragments {
		texts[i] = f.Text
	}
	return texts
}

// LogicalText returns the concatenation of all fragment texts.
func (b *Block) LogicalText() string {
	var sb strings.Builder
	for _, f := range b.Fragments {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// Table is an ordered sequence of rows. Cells may contain nested tables at
// any depth.
type Table struct {
	Rows []*Row
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []*Cell
}

// Cell holds a cell's paragraphs followed by its nested tables, in document
// order within each group.
type Cell struct {
	Blocks []*Block
	Tables []*Table
}

// Body is the main document body: top-level paragraphs and tables.
type Body struct {
	Blocks []*Block
	Tables []*Table
}

// HeaderFooter is the block collection of one header or footer part.
type HeaderFooter struct {
	// Name is the OOXML part name, e.g. "word/header1.xml"
	Name string

	Blocks []*Block
	Tables []*Table
}

// Document is a loaded DOCX file: the raw ZIP parts plus the parsed
// structural tree. A Document is exclusively owned by one caller at a time;
// it carries no synchronization.
type Document struct {
	Body    *Body
	Headers []*HeaderFooter
	Footers []*HeaderFooter

	path  string
	names []string                  // ZIP entry names in archive order
	files map[string][]byte         // entry name -> raw content
	parts map[string]*xmlquery.Node // parsed text-bearing parts
}

// Path returns the path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Load opens a DOCX file and builds its structural tree. Corrupt or
// non-conforming input fails with an UnreadableDocumentError.
func Load(path string) (*Document, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, &UnreadableDocumentError{Path: path, Cause: err}
	}
	defer reader.Close()

	doc := &Document{
		path:  path,
		files: make(map[string][]byte),
		parts: make(map[string]*xmlquery.Node),
	}

	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, &UnreadableDocumentError{Path: path, Cause: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &UnreadableDocumentError{Path: path, Cause: err}
		}
		doc.names = append(doc.names, file.Name)
		doc.files[file.Name] = content
	}

	if _, ok := doc.files[mainDocumentPart]; !ok {
		return nil, &UnreadableDocumentError{
			Path:  path,
			Cause: errors.New("word/document.xml not found in archive"),
		}
	}

	if err := doc.parseMainDocument(); err != nil {
		return nil, err
	}
	if err := doc.parseHeadersFooters(); err != nil {
		return nil, err
	}

	return doc, nil
}

// parseMainDocument parses word/document.xml into the Body tree.
func (d *Document) parseMainDocument() error {
	root, err := xmlquery.Parse(bytes.NewReader(d.files[mainDocumentPart]))
	if err != nil {
		return &UnreadableDocumentError{Path: d.path, Cause: err}
	}

	body := xmlquery.FindOne(root, "//*[local-name()='body']")
	if body == nil {
		return &UnreadableDocumentError{
			Path:  d.path,
			Cause: errors.New("document body not found"),
		}
	}

	d.parts[mainDocumentPart] = root
	blocks, tables := parseContainer(body)
	d.Body = &Body{Blocks: blocks, Tables: tables}
	return nil
}

// parseHeadersFooters parses every word/header*.xml and word/footer*.xml part.
// Parts are visited in sorted name order so traversal is deterministic.
func (d *Document) parseHeadersFooters() error {
	var headerNames, footerNames []string
	for _, name := range d.names {
		switch {
		case isHeaderPart(name):
			headerNames = append(headerNames, name)
		case isFooterPart(name):
			footerNames = append(footerNames, name)
		}
	}
	sort.Strings(headerNames)
	sort.Strings(footerNames)

	for _, name := range headerNames {
		hf, err := d.parseHeaderFooterPart(name, "hdr")
		if err != nil {
			return err
		}
		if hf != nil {
			d.Headers = append(d.Headers, hf)
		}
	}
	for _, name := range footerNames {
		hf, err := d.parseHeaderFooterPart(name, "ftr")
		if err != nil {
			return err
		}
		if hf != nil {
			d.Footers = append(d.Footers, hf)
		}
	}
	return nil
}

// parseHeaderFooterPart parses one header or footer part. A part missing its
// root element is skipped rather than failing the whole document.
func (d *Document) parseHeaderFooterPart(name, rootLocal string) (*HeaderFooter, error) {
	root, err := xmlquery.Parse(bytes.NewReader(d.files[name]))
	if err != nil {
		return nil, &UnreadableDocumentError{Path: d.path, Cause: err}
	}

	container := xmlquery.FindOne(root, "//*[local-name()='"+rootLocal+"']")
	if container == nil {
		return nil, nil
	}

	d.parts[name] = root
	blocks, tables := parseContainer(container)
	return &HeaderFooter{Name: name, Blocks: blocks, Tables: tables}, nil
}

func isHeaderPart(name string) bool {
	return strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml")
}

func isFooterPart(name string) bool {
	return strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml")
}

// parseContainer collects the paragraphs and tables that are direct children
// of a block container element (body, hdr, ftr, or table cell), in document
// order within each group.
func parseContainer(n *xmlquery.Node) ([]*Block, []*Table) {
	var blocks []*Block
	var tables []*Table
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "p":
			blocks = append(blocks, parseBlock(child))
		case "tbl":
			tables = append(tables, parseTable(child))
		}
	}
	return blocks, tables
}

// parseBlock builds a Block from a w:p element. Runs may sit below
// intermediate elements (hyperlinks, field containers), so every descendant
// w:t contributes a fragment, in document order.
func parseBlock(p *xmlquery.Node) *Block {
	block := &Block{}
	collectTextElements(p, block)
	return block
}

func collectTextElements(n *xmlquery.Node, block *Block) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		if child.Data == "t" {
			block.Fragments = append(block.Fragments, &Fragment{
				Text: elementText(child),
				node: child,
			})
			continue
		}
		collectTextElements(child, block)
	}
}

// parseTable builds a Table from a w:tbl element, recursing into nested
// tables through parseContainer.
func parseTable(tbl *xmlquery.Node) *Table {
	table := &Table{}
	for row := tbl.FirstChild; row != nil; row = row.NextSibling {
		if row.Type != xmlquery.ElementNode || row.Data != "tr" {
			continue
		}
		r := &Row{}
		for cell := row.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != xmlquery.ElementNode || cell.Data != "tc" {
				continue
			}
			blocks, tables := parseContainer(cell)
			r.Cells = append(r.Cells, &Cell{Blocks: blocks, Tables: tables})
		}
		table.Rows = append(table.Rows, r)
	}
	return table
}

// elementText concatenates the text content directly inside an element.
func elementText(n *xmlquery.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String()
}

// setElementText replaces the text content directly inside an element. When
// the decoder split the content into several text nodes, the first receives
// the full replacement and the rest are emptied, so serialization yields the
// text exactly once.
func setElementText(n *xmlquery.Node, text string) {
	first := true
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.TextNode && child.Type != xmlquery.CharDataNode {
			continue
		}
		if first {
			child.Data = text
			first = false
		} else {
			child.Data = ""
		}
	}
}
