// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import "fmt"

// ConfigurationError reports a malformed detector pattern set. It is raised
// during registry construction and is fatal at process start; it never occurs
// per document.
type ConfigurationError struct {
	// Pattern is the offending pattern source
	Pattern string

	// Message describes what is wrong with the pattern
	Message string

	// Cause is the underlying error, typically a regexp compile failure
	Cause error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("detector configuration: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("detector configuration: %s", e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
