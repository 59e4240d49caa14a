// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"archive/zip"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n"

// Save writes the document to outputPath as a new DOCX archive. Parts that
// were parsed into the tree are reserialized with their mutated run text;
// every other part is copied byte-for-byte. Entry order matches the source
// archive. Persistence failures are reported as WriteError.
func (d *Document) Save(outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return &WriteError{Path: outputPath, Cause: err}
	}

	zw := zip.NewWriter(out)
	for _, name := range d.names {
		content := d.files[name]
		if root, ok := d.parts[name]; ok {
			content = serializePart(root)
		}

		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			out.Close()
			return &WriteError{Path: outputPath, Cause: err}
		}
		if _, err := w.Write(content); err != nil {
			zw.Close()
			out.Close()
			return &WriteError{Path: outputPath, Cause: err}
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return &WriteError{Path: outputPath, Cause: err}
	}
	if err := out.Close(); err != nil {
		return &WriteError{Path: outputPath, Cause: err}
	}
	return nil
}

// serializePart renders a parsed part back to XML. Word requires the XML
// declaration; xmlquery preserves a parsed one, so it is only prepended when
// the source part lacked it.
func serializePart(root *xmlquery.Node) []byte {
	out := root.OutputXML(false)
	if !strings.HasPrefix(out, "<?xml") {
		out = xmlDeclaration + out
	}
	return []byte(out)
}
