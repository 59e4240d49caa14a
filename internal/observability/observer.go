// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability provides structured operation logging for all
// components: per-operation timing with success and metadata, emitted as a
// JSON stream in debug mode.
package observability

import (
	"encoding/json"
	"io"
	"time"
)

// Level controls how much an Observer records.
type Level int

const (
	// Off disables all recording
	Off Level = 0

	// Metrics records operations without emitting output
	Metrics Level = 1

	// Debug records operations and emits them as JSON
	Debug Level = 2
)

// Observer implements observability for all components.
type Observer struct {
	level  Level
	writer io.Writer
}

// NewObserver creates an observability component writing to w.
func NewObserver(level Level, w io.Writer) *Observer {
	return &Observer{level: level, writer: w}
}

// OperationData describes one completed operation.
type OperationData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StartTiming begins timing an operation and returns a function that
// completes it. The returned function is safe to call exactly once.
func (o *Observer) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(OperationData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation records operation data. Output is only emitted in debug mode;
// lower levels discard it.
func (o *Observer) LogOperation(data OperationData) {
	if o.level != Debug || o.writer == nil {
		return
	}
	json.NewEncoder(o.writer).Encode(data)
}
