package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestIngestSourcesPreservesOrder(t *testing.T) {
	sources := []Source{
		{Name: "b.xml", Reader: strings.NewReader(sampleCTe)},
		{Name: "a.xml", Reader: strings.NewReader(sampleCTe)},
		{Name: "c.xml", Reader: strings.NewReader("not xml at all <")},
	}

	results := IngestSources(sources)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []string{"b.xml", "a.xml", "c.xml"} {
		if results[i].Doc.SourceName != want {
			t.Errorf("result %d source = %q, want %q", i, results[i].Doc.SourceName, want)
		}
	}
	if !results[2].Degraded() {
		t.Error("malformed member should be degraded, not dropped")
	}
}

func TestIngestArchive(t *testing.T) {
	data := buildZip(t, map[string]string{
		"docs/one.xml":   sampleCTe,
		"docs/two.XML":   sampleCTe,
		"docs/notes.txt": "skip me",
		"three.xml":      "<CTe><broken",
	}, []string{"docs/one.xml", "docs/notes.txt", "docs/two.XML", "three.xml"})

	results, err := IngestArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 xml entries", len(results))
	}

	// Archive listing order, uppercase extension included, txt skipped.
	wantOrder := []string{"docs/one.xml", "docs/two.XML", "three.xml"}
	for i, want := range wantOrder {
		if results[i].Doc.SourceName != want {
			t.Errorf("result %d = %q, want %q", i, results[i].Doc.SourceName, want)
		}
	}

	if results[0].Degraded() {
		t.Errorf("unexpected warnings: %v", results[0].Warnings)
	}
	if !results[2].Degraded() {
		t.Error("broken member should degrade, not abort the batch")
	}
}

func TestIngestArchiveInvalid(t *testing.T) {
	data := []byte("this is not a zip archive")
	results, err := IngestArchive(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Fatal("expected error for unreadable archive")
	}
	if results != nil {
		t.Errorf("unreadable archive must not yield partial results, got %d", len(results))
	}
}
