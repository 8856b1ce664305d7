package extract

// ingest.go feeds raw document sources through extraction, preserving input
// order. Processing is best-effort: a source that cannot be read degrades to
// an empty document with a warning, and only an unreadable archive container
// aborts an operation.

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// Source is one raw shipment document awaiting extraction.
type Source struct {
	Name   string
	Reader io.Reader
}

// IngestSources extracts every source in order. Read failures degrade the
// affected item only; the returned slice always has one Result per source,
// in input order.
func IngestSources(sources []Source) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		raw, err := io.ReadAll(src.Reader)
		if err != nil {
			results = append(results, Result{
				Doc:      Document{SourceName: src.Name},
				Warnings: []string{fmt.Sprintf("reading source: %v", err)},
			})
			continue
		}
		results = append(results, ExtractDocument(src.Name, raw))
	}
	return results
}

// IngestArchive extracts every .xml entry (case-insensitive) of a ZIP
// archive, in the order the archive lists them. Directories and other entry
// types are skipped. An archive that cannot be opened returns an error and
// no partial results; unreadable members degrade individually.
func IngestArchive(r io.ReaderAt, size int64) ([]Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	var results []Result
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".xml") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			results = append(results, Result{
				Doc:      Document{SourceName: entry.Name},
				Warnings: []string{fmt.Sprintf("opening archive entry: %v", err)},
			})
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			results = append(results, Result{
				Doc:      Document{SourceName: entry.Name},
				Warnings: []string{fmt.Sprintf("reading archive entry: %v", err)},
			})
			continue
		}
		results = append(results, ExtractDocument(entry.Name, raw))
	}
	return results, nil
}
