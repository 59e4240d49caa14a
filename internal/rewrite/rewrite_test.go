// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rewrite

import (
	"testing"

	"docx-anonymiser/internal/detector"
	"docx-anonymiser/internal/document"
	"docx-anonymiser/internal/runmap"
)

func makeFragments(texts ...string) []*document.Fragment {
	fragments := make([]*document.Fragment, len(texts))
	for i, t := range texts {
		fragments[i] = &document.Fragment{Text: t}
	}
	return fragments
}

func fragmentTexts(fragments []*document.Fragment) []string {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return texts
}

func TestApply_SpanCrossingFragmentBoundaries(t *testing.T) {
	// The address "10.10.14.23" is split over three runs.
	fragments := makeFragments("10.", "10.14.", "23 then")
	m := runmap.New(fragmentTexts(fragments))

	err := Apply(fragments, m, []detector.Span{
		{Start: 0, End: 11, Class: detector.ClassIPv4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"xxx", "xxxxxx", "xx then"}
	for i, expected := range want {
		if fragments[i].Text != expected {
			t.Errorf("fragment %d = %q, want %q", i, fragments[i].Text, expected)
		}
	}
}

func TestApply_PreservesLengthAndUnmaskedText(t *testing.T) {
	fragments := makeFragments("The server at ", "10.10.14.23", " failed.")
	m := runmap.New(fragmentTexts(fragments))

	err := Apply(fragments, m, []detector.Span{
		{Start: 14, End: 25, Class: detector.ClassIPv4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fragments[0].Text != "The server at " {
		t.Errorf("fragment before the span changed: %q", fragments[0].Text)
	}
	if fragments[1].Text != "xxxxxxxxxxx" {
		t.Errorf("masked fragment = %q", fragments[1].Text)
	}
	if fragments[2].Text != " failed." {
		t.Errorf("fragment after the span changed: %q", fragments[2].Text)
	}
}

func TestApply_MultipleSpans(t *testing.T) {
	fragments := makeFragments("10.0.0.1 and admin@company.local done")
	m := runmap.New(fragmentTexts(fragments))

	err := Apply(fragments, m, []detector.Span{
		{Start: 0, End: 8, Class: detector.ClassIPv4},
		{Start: 13, End: 32, Class: detector.ClassEmail},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragments[0].Text != "xxxxxxxx and xxxxxxxxxxxxxxxxxxx done" {
		t.Errorf("unexpected result %q", fragments[0].Text)
	}
}

func TestApply_NoSpansIsNoOp(t *testing.T) {
	fragments := makeFragments("clean text")
	m := runmap.New(fragmentTexts(fragments))

	if err := Apply(fragments, m, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragments[0].Text != "clean text" {
		t.Errorf("text changed: %q", fragments[0].Text)
	}
}

func TestApply_StaleMapperRejected(t *testing.T) {
	fragments := makeFragments("short")
	m := runmap.New([]string{"a much longer text"})

	err := Apply(fragments, m, []detector.Span{{Start: 0, End: 3}})
	if err == nil {
		t.Fatal("expected error for stale mapper")
	}
	if _, ok := err.(*StructuralAnomalyError); !ok {
		t.Errorf("expected StructuralAnomalyError, got %T", err)
	}
	if fragments[0].Text != "short" {
		t.Errorf("fragment modified despite anomaly: %q", fragments[0].Text)
	}
}

func TestApply_SpanOutOfRangeLeavesBlockUntouched(t *testing.T) {
	fragments := makeFragments("ab", "cd")
	m := runmap.New(fragmentTexts(fragments))

	err := Apply(fragments, m, []detector.Span{
		{Start: 0, End: 2},
		{Start: 3, End: 99},
	})
	if err == nil {
		t.Fatal("expected error for out-of-range span")
	}
	if _, ok := err.(*StructuralAnomalyError); !ok {
		t.Errorf("expected StructuralAnomalyError, got %T", err)
	}
	// Even the valid first span must not have been committed.
	if fragments[0].Text != "ab" || fragments[1].Text != "cd" {
		t.Errorf("block partially masked: %q %q", fragments[0].Text, fragments[1].Text)
	}
}
