package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/perpliq/perpliq/internal/domain"
)

// Archiver implements domain.ReportArchiver by serializing each completed
// report to JSON and uploading it to object storage. Reports are immutable
// once written; re-running an analysis produces a new object.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver that writes through the given BlobWriter.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveReport uploads the report as pretty-printed JSON at
// reports/{INSTRUMENT}/{RFC3339 timestamp}.json.
func (a *Archiver) ArchiveReport(ctx context.Context, report domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("s3blob: marshal report %s: %w", report.Instrument, err)
	}

	path := reportPath(report)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive report %s: %w", report.Instrument, err)
	}
	return nil
}

// ArchiveScan uploads every report from one scan run as a single JSON Lines
// object at scans/{RFC3339 timestamp}.jsonl, streamed through the multipart
// writer so a wide instrument list never has to be buffered whole.
func (a *Archiver) ArchiveScan(ctx context.Context, reports []domain.Report) error {
	if len(reports) == 0 {
		return nil
	}

	pr, pw := io.Pipe()
	go func() {
		enc := json.NewEncoder(pw)
		for _, report := range reports {
			if err := enc.Encode(report); err != nil {
				pw.CloseWithError(fmt.Errorf("s3blob: encode report %s: %w", report.Instrument, err))
				return
			}
		}
		pw.Close()
	}()

	path := scanPath(reports[0].GeneratedAt)
	err := a.writer.PutMultipart(ctx, path, pr, 0)
	// Unblocks the encoder if the upload stopped reading early.
	pr.Close()
	if err != nil {
		return fmt.Errorf("s3blob: archive scan: %w", err)
	}
	return nil
}

// reportPath builds the object key for a report, partitioned by instrument.
//
//	reports/BTC/2026-01-02T15:04:05Z.json
func reportPath(report domain.Report) string {
	instrument := strings.ToUpper(report.Instrument)
	ts := report.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")
	return fmt.Sprintf("reports/%s/%s.json", instrument, ts)
}

// scanPath builds the object key for a bulk scan export.
//
//	scans/2026-01-02T15:04:05Z.jsonl
func scanPath(ts time.Time) string {
	return "scans/" + ts.UTC().Format("2006-01-02T15:04:05Z") + ".jsonl"
}

// Compile-time interface checks.
var (
	_ domain.ReportArchiver = (*Archiver)(nil)
	_ domain.ScanArchiver   = (*Archiver)(nil)
)
