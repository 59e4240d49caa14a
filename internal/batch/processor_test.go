// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"docx-anonymiser/internal/detector"
	"docx-anonymiser/internal/document"
	"docx-anonymiser/internal/walker"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>server 10.10.14.23 down, see CVE-2023-12345</w:t></w:r></w:p>
  </w:body>
</w:document>`

const testCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"><cp:keywords/></cp:coreProperties>`

func writeTestDocx(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"word/document.xml": testDocumentXML,
		"docProps/core.xml": testCoreXML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func newProcessor() *Processor {
	w := walker.New(detector.DefaultRegistry(), nil)
	return NewProcessor(w, nil, false)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.docx")
	writeTestDocx(t, input)

	result := newProcessor().ProcessFile(input)

	if result.Outcome != OutcomeProcessed {
		t.Fatalf("expected processed, got %v (err %v)", result.Outcome, result.Err)
	}
	if result.Output != filepath.Join(dir, "Anonymised_report.docx") {
		t.Errorf("unexpected output path %q", result.Output)
	}
	if result.Stats.MaskedSpans == 0 {
		t.Error("expected at least one masked span")
	}

	doc, err := document.Load(result.Output)
	if err != nil {
		t.Fatalf("cannot reload output: %v", err)
	}
	got := doc.Body.Blocks[0].LogicalText()
	want := "server xxxxxxxxxxx down, see CVE-2023-12345"
	if got != want {
		t.Errorf("output text = %q, want %q", got, want)
	}
	if !doc.AlreadyAnonymised() {
		t.Error("output should carry the anonymised marker")
	}
}

func TestProcessFile_SkipsMarkedDocument(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.docx")
	writeTestDocx(t, input)

	p := newProcessor()
	first := p.ProcessFile(input)
	if first.Outcome != OutcomeProcessed {
		t.Fatalf("first run: %v", first.Outcome)
	}

	// Processing the generated output again must be a skip.
	second := p.ProcessFile(first.Output)
	if second.Outcome != OutcomeSkipped {
		t.Errorf("expected already-marked document to be skipped, got %v", second.Outcome)
	}
}

func TestProcessFile_UnreadableSkipped(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.docx")
	if err := os.WriteFile(input, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := newProcessor().ProcessFile(input)
	if result.Outcome != OutcomeSkipped {
		t.Errorf("expected skip, got %v", result.Outcome)
	}
	if result.Err == nil {
		t.Error("expected the unreadable error to be reported")
	}
}

func TestProcessFolder(t *testing.T) {
	dir := t.TempDir()
	writeTestDocx(t, filepath.Join(dir, "a.docx"))
	writeTestDocx(t, filepath.Join(dir, "b.docx"))
	if err := os.WriteFile(filepath.Join(dir, "broken.docx"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := newProcessor().ProcessFolder(dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 2 {
		t.Errorf("processed = %d, want 2", summary.Processed)
	}
	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}
	if summary.Failed != 0 {
		t.Errorf("failed = %d, want 0", summary.Failed)
	}
}

func TestProcessFolder_NotAFolder(t *testing.T) {
	if _, err := newProcessor().ProcessFolder(filepath.Join(t.TempDir(), "missing"), false); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestDiscoverDocuments_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "archive")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestDocx(t, filepath.Join(dir, "top.docx"))
	writeTestDocx(t, filepath.Join(sub, "deep.docx"))

	flat, err := DiscoverDocuments(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 1 {
		t.Errorf("flat discovery found %d files, want 1", len(flat))
	}

	recursive, err := DiscoverDocuments(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(recursive) != 2 {
		t.Errorf("recursive discovery found %d files, want 2", len(recursive))
	}
}

func TestEligibleDocument(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"report.docx", true},
		{"Report.DOCX", true},
		{"Anonymised_report.docx", false},
		{"~$report.docx", false},
		{"report.doc", false},
		{"report.txt", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EligibleDocument(tc.name); got != tc.want {
				t.Errorf("EligibleDocument(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName(filepath.Join("reports", "q3.docx"))
	want := filepath.Join("reports", "Anonymised_q3.docx")
	if got != want {
		t.Errorf("OutputName = %q, want %q", got, want)
	}
}

func TestParseChecks(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		for _, input := range []string{"", "all"} {
			opts, err := ParseChecks(input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for class, on := range opts.Enabled {
				if !on {
					t.Errorf("expected %s enabled for input %q", class, input)
				}
			}
		}
	})

	t.Run("specific", func(t *testing.T) {
		opts, err := ParseChecks("ipv4, URL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !opts.Enabled[detector.ClassIPv4] || !opts.Enabled[detector.ClassURL] {
			t.Error("expected IPV4 and URL enabled")
		}
		if opts.Enabled[detector.ClassEmail] {
			t.Error("EMAIL should not be enabled")
		}
	})

	t.Run("unknown check", func(t *testing.T) {
		if _, err := ParseChecks("ipv4,bogus"); err == nil {
			t.Error("expected error for unknown check")
		}
	})

	t.Run("nothing enabled", func(t *testing.T) {
		if _, err := ParseChecks(" , "); err == nil {
			t.Error("expected error when no checks are enabled")
		}
	})
}
