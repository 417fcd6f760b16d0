package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
)

// chunkDirPattern names the temp directories Split creates. RemoveChunks
// refuses to delete a directory that does not match it.
const chunkDirPattern = "a2t-chunks-"

// Segmenter splits a recording into contiguous time-window chunks that stay
// under a maximum duration. It never deletes chunk files; deletion rights
// belong to the caller.
type Segmenter struct {
	logger  *zap.Logger
	cmd     commandRunner
	tempDir tempDirCreator
}

type SegmenterOption func(*Segmenter)

// WithCommandRunner replaces the ffmpeg/ffprobe executor.
func WithCommandRunner(r commandRunner) SegmenterOption {
	return func(s *Segmenter) {
		s.cmd = r
	}
}

// WithTempDirCreator replaces the temp directory factory.
func WithTempDirCreator(t tempDirCreator) SegmenterOption {
	return func(s *Segmenter) {
		s.tempDir = t
	}
}

func NewSegmenter(logger *zap.Logger, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		logger:  logger,
		cmd:     osCommandRunner{},
		tempDir: osTempDirCreator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split cuts sourcePath into ceil(total/maxChunk) contiguous chunks of at
// most maxChunk each, the last one clamped to the recording's end. A source
// that already fits in one chunk is returned as-is, marked Original, with
// nothing written to disk. Chunk boundaries are pure wall-clock windows;
// words cut at a boundary are accepted.
func (s *Segmenter) Split(ctx context.Context, sourcePath string, maxChunk time.Duration) ([]model.Chunk, error) {
	if maxChunk <= 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "max chunk duration must be positive, got %v", maxChunk)
	}

	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSourceNotFound, "cannot resolve %s: %v", sourcePath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSourceNotFound, "cannot read %s: %v", sourcePath, err)
	}

	total, err := s.ProbeAudio(ctx, abs)
	if err != nil {
		return nil, err
	}

	if total <= maxChunk {
		return []model.Chunk{{
			Path:     abs,
			Ordinal:  0,
			Original: true,
			Start:    0,
			End:      total,
		}}, nil
	}

	// Ceiling division on nanosecond counts; the last window is clamped so
	// no window is ever empty.
	count := int((total + maxChunk - 1) / maxChunk)

	tempDir, err := s.tempDir.MkdirTemp("", chunkDirPattern+"*")
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrIOFailure, "failed to create chunk directory: %v", err)
	}

	s.logger.Info("splitting source audio",
		zap.String("source", filepath.Base(abs)),
		zap.Duration("total", total),
		zap.Duration("maxChunk", maxChunk),
		zap.Int("chunks", count))

	chunks := make([]model.Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := time.Duration(i) * maxChunk
		end := start + maxChunk
		if end > total {
			end = total
		}

		chunkPath := filepath.Join(tempDir, fmt.Sprintf("chunk_%03d.mp3", i))
		if err := s.extractChunk(ctx, abs, chunkPath, start, end); err != nil {
			// best-effort cleanup; original error takes precedence
			_ = os.RemoveAll(tempDir)
			return nil, err
		}

		chunks = append(chunks, model.Chunk{
			Path:    chunkPath,
			Ordinal: i,
			Start:   start,
			End:     end,
		})
	}

	return chunks, nil
}

func (s *Segmenter) extractChunk(ctx context.Context, sourcePath, chunkPath string, start, end time.Duration) error {
	args := []string{
		"-y",
		"-i", sourcePath,
		"-ss", formatFFmpegTime(start),
		"-to", formatFFmpegTime(end),
		"-vn", "-acodec", "libmp3lame",
		chunkPath,
	}

	output, err := s.cmd.CombinedOutput(ctx, "ffmpeg", args...)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrIOFailure,
			"FFmpeg error extracting %s: %v, output: %s", filepath.Base(chunkPath), err, output)
	}
	return nil
}

// formatFFmpegTime formats a duration for FFmpeg -ss/-to arguments.
func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, sec)
}

// RemoveChunks deletes the chunk files produced by Split and then their temp
// directory once it is empty. Chunks marked Original are never touched. Every
// failure is returned so the caller can log it; nothing here is fatal.
func RemoveChunks(chunks []model.Chunk) []error {
	var errs []error
	tempDirs := make(map[string]struct{})

	for _, chunk := range chunks {
		if chunk.Original {
			continue
		}
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove %s: %w", chunk.Path, err))
			continue
		}
		tempDirs[filepath.Dir(chunk.Path)] = struct{}{}
	}

	for dir := range tempDirs {
		if !strings.HasPrefix(filepath.Base(dir), chunkDirPattern) {
			// Safety check: never delete a directory Split did not create.
			continue
		}
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove %s: %w", dir, err))
		}
	}

	return errs
}
