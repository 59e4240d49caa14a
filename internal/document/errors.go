// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import "fmt"

// UnreadableDocumentError reports a document that cannot be parsed: not a ZIP
// archive, missing its main part, or carrying malformed XML. Callers skip the
// document and continue the batch.
type UnreadableDocumentError struct {
	Path  string
	Cause error
}

// Error implements the error interface
func (e *UnreadableDocumentError) Error() string {
	return fmt.Sprintf("unreadable document %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping
func (e *UnreadableDocumentError) Unwrap() error {
	return e.Cause
}

// WriteError reports a failure to persist a processed document. The affected
// document is reported as failed; other documents are unaffected.
type WriteError struct {
	Path  string
	Cause error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping
func (e *WriteError) Unwrap() error {
	return e.Cause
}
