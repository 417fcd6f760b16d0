package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "recording-whisper/internal/app/errors"
)

// SegmentSeparator precedes every segment body after the first, so readers
// can tell where one chunk's text ends and the next begins.
const SegmentSeparator = "--- segment break ---"

// Header is the metadata block written exactly once at the top of a
// transcript document. Immutable after the first write.
type Header struct {
	SourceFile string
	CreatedAt  time.Time
	Model      string
}

// Document is the append-only transcript artifact. Every append is synced to
// disk before it returns, so a crash mid-run leaves a valid partial
// transcript, never a torn one.
type Document struct {
	file     *os.File
	path     string
	segments int
}

// Create opens a new transcript document at path, creating parent
// directories as needed, and writes the header block. It refuses to touch an
// existing file; a fresh path per run is the caller's job.
func Create(path string, header Header) (*Document, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrIOFailure, "cannot create output directory for %s: %v", path, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrIOFailure, "cannot create transcript file %s: %v", path, err)
	}

	d := &Document{file: file, path: path}
	if err := d.writeAndSync(formatHeader(header)); err != nil {
		file.Close()
		return nil, err
	}
	return d, nil
}

func formatHeader(h Header) string {
	return fmt.Sprintf("# Transcription Result\n# Source File: %s\n# Date: %s\n# Model: %s\n\n===== %s =====\n\n",
		h.SourceFile,
		h.CreatedAt.Format("2006-01-02 15:04:05"),
		h.Model,
		h.Model)
}

// AppendSegment writes one segment body, preceded by the separator when it
// is not the first, and flushes it to durable storage before returning.
func (d *Document) AppendSegment(text string) error {
	body := text
	if d.segments > 0 {
		body = "\n\n" + SegmentSeparator + "\n\n" + text
	}
	if err := d.writeAndSync(body); err != nil {
		return err
	}
	d.segments++
	return nil
}

func (d *Document) writeAndSync(s string) error {
	if _, err := d.file.WriteString(s); err != nil {
		return apperrors.Wrapf(apperrors.ErrIOFailure, "cannot write to %s: %v", d.path, err)
	}
	if err := d.file.Sync(); err != nil {
		return apperrors.Wrapf(apperrors.ErrIOFailure, "cannot sync %s: %v", d.path, err)
	}
	return nil
}

// Path returns the location of the document on disk.
func (d *Document) Path() string {
	return d.path
}

// SegmentCount returns the number of segment bodies written so far.
func (d *Document) SegmentCount() int {
	return d.segments
}

// Close ends the document with a final newline and releases the file handle.
// The document stays valid on disk whether or not Close is reached.
func (d *Document) Close() error {
	if d.segments > 0 {
		if _, err := d.file.WriteString("\n"); err != nil {
			d.file.Close()
			return apperrors.Wrapf(apperrors.ErrIOFailure, "cannot finalize %s: %v", d.path, err)
		}
	}
	if err := d.file.Close(); err != nil {
		return apperrors.Wrapf(apperrors.ErrIOFailure, "cannot close %s: %v", d.path, err)
	}
	return nil
}
