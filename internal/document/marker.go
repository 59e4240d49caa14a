// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"regexp"
	"strings"
)

// corePropsPart holds the document's core properties, where the processed
// marker is embedded.
const corePropsPart = "docProps/core.xml"

// anonymisedKeyword marks a document as already processed.
const anonymisedKeyword = "anonymised"

var (
	keywordsRe      = regexp.MustCompile(`<cp:keywords>(.*?)</cp:keywords>`)
	emptyKeywordsRe = regexp.MustCompile(`<cp:keywords\s*/>`)
)

// AlreadyAnonymised reports whether the document carries the processed
// marker in its core-properties keywords. It is a pure predicate: documents
// without core properties are simply not marked.
func (d *Document) AlreadyAnonymised() bool {
	content, ok := d.files[corePropsPart]
	if !ok {
		return false
	}
	m := keywordsRe.FindSubmatch(content)
	if m == nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(m[1])), anonymisedKeyword)
}

// MarkAnonymised embeds the processed marker in the document's
// core-properties keywords so a later run can skip it. Documents without a
// core-properties part are left unmarked; the output-name prefix still
// prevents reprocessing in that case.
func (d *Document) MarkAnonymised() {
	content, ok := d.files[corePropsPart]
	if !ok || d.AlreadyAnonymised() {
		return
	}

	marker := []byte("<cp:keywords>" + anonymisedKeyword + "</cp:keywords>")

	switch {
	case emptyKeywordsRe.Match(content):
		content = emptyKeywordsRe.ReplaceAll(content, marker)
	case keywordsRe.Match(content):
		content = keywordsRe.ReplaceAllFunc(content, func(existing []byte) []byte {
			m := keywordsRe.FindSubmatch(existing)
			if len(m[1]) == 0 {
				return marker
			}
			return []byte("<cp:keywords>" + string(m[1]) + "; " + anonymisedKeyword + "</cp:keywords>")
		})
	default:
		closing := []byte("</cp:coreProperties>")
		if !bytes.Contains(content, closing) {
			return
		}
		content = bytes.Replace(content, closing, append(marker, closing...), 1)
	}

	d.files[corePropsPart] = content
}
