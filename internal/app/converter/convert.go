package converter

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recording-whisper/internal/app/api"
	"recording-whisper/internal/app/audio"
	"recording-whisper/internal/app/cache"
	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
	"recording-whisper/internal/app/repository"
	"recording-whisper/internal/app/storage"
	"recording-whisper/internal/app/transcript"
	"recording-whisper/internal/app/util/files"
)

// Options carries the resolved run settings. The core never reads the
// process environment; everything arrives here.
type Options struct {
	Model     string
	Language  string
	OutputDir string
	MaxChunk  time.Duration
	Progress  ProgressConfig
}

// Converter drives one transcription run: split the source, submit chunks
// strictly in ordinal order, append each result to the transcript document
// with a durable flush, then clean up chunk artifacts. Journal, cache and
// archive are additive; their failures are warnings, never run failures.
type Converter struct {
	segmenter   *audio.Segmenter
	transcriber api.Transcriber
	journal     repository.RunDAO
	cache       cache.TranscriptCache
	archiver    storage.Archiver
	logger      *zap.Logger
	progress    *ProgressManager
	opts        Options
}

func NewConverter(segmenter *audio.Segmenter, transcriber api.Transcriber, journal repository.RunDAO,
	transcriptCache cache.TranscriptCache, archiver storage.Archiver, logger *zap.Logger, opts Options) *Converter {
	return &Converter{
		segmenter:   segmenter,
		transcriber: transcriber,
		journal:     journal,
		cache:       transcriptCache,
		archiver:    archiver,
		logger:      logger,
		progress:    NewProgressManager(opts.Progress),
		opts:        opts,
	}
}

func (c *Converter) Close() error {
	c.progress.Shutdown()
	return c.journal.Close()
}

// Convert is the single entry point for a run. A source that fits in one
// chunk degenerates to a single original chunk; there is no separate
// unsplit code path.
func (c *Converter) Convert(ctx context.Context, sourcePath, outputPath string) (model.RunResult, error) {
	chunks, err := c.segmenter.Split(ctx, sourcePath, c.opts.MaxChunk)
	if err != nil {
		return model.RunResult{}, err
	}

	if outputPath == "" {
		outputPath, err = files.GenerateOutputPath(c.opts.OutputDir, time.Now())
		if err != nil {
			c.cleanupChunks(chunks)
			return model.RunResult{}, apperrors.Wrapf(apperrors.ErrIOFailure, "cannot resolve output path: %v", err)
		}
	}

	return c.Run(ctx, sourcePath, chunks, outputPath)
}

// Run transcribes the prepared chunks into outputPath. Chunks are processed
// one at a time in ordinal order; on the first failure the run stops, but
// every segment already flushed stays in the file. Chunk artifacts that are
// not the original source are removed on both paths.
func (c *Converter) Run(ctx context.Context, sourcePath string, chunks []model.Chunk, outputPath string) (model.RunResult, error) {
	defer c.cleanupChunks(chunks)

	doc, err := transcript.Create(outputPath, transcript.Header{
		SourceFile: filepath.Base(sourcePath),
		CreatedAt:  time.Now(),
		Model:      c.opts.Model,
	})
	if err != nil {
		return model.RunResult{}, err
	}

	result := model.RunResult{
		OutputPath: outputPath,
		ChunkCount: len(chunks),
		Split:      len(chunks) > 1,
	}

	bar := c.progress.CreateBar(len(chunks), "Transcribing "+filepath.Base(sourcePath))
	defer c.progress.Wait()

	for _, chunk := range chunks {
		text, err := c.transcribeChunk(ctx, chunk)
		if err != nil {
			bar.Complete()
			doc.Close()
			result.ChunksTranscribed = doc.SegmentCount()
			c.recordRun(ctx, sourcePath, chunks, result, err)
			c.logger.Error("run failed, partial transcript kept",
				zap.String("output", outputPath),
				zap.Int("completedChunks", result.ChunksTranscribed),
				zap.Error(err))
			return result, err
		}

		if err := doc.AppendSegment(text); err != nil {
			bar.Complete()
			doc.Close()
			result.ChunksTranscribed = doc.SegmentCount()
			c.recordRun(ctx, sourcePath, chunks, result, err)
			return result, err
		}

		bar.Increment()
		c.logger.Info("chunk transcribed",
			zap.Int("ordinal", chunk.Ordinal),
			zap.Int("total", len(chunks)),
			zap.Duration("window", chunk.Duration()))
	}

	if err := doc.Close(); err != nil {
		result.ChunksTranscribed = len(chunks)
		c.recordRun(ctx, sourcePath, chunks, result, err)
		return result, err
	}

	result.ChunksTranscribed = len(chunks)
	c.recordRun(ctx, sourcePath, chunks, result, nil)
	c.archiveTranscript(ctx, outputPath, sourcePath)

	c.logger.Info("transcription completed",
		zap.String("source", filepath.Base(sourcePath)),
		zap.String("output", outputPath),
		zap.Int("chunks", len(chunks)))
	return result, nil
}

// transcribeChunk reads one chunk and turns it into text, consulting the
// content-addressed cache before calling the remote service.
func (c *Converter) transcribeChunk(ctx context.Context, chunk model.Chunk) (string, error) {
	data, err := os.ReadFile(chunk.Path)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrSourceNotFound, "cannot read %s: %v", chunk.Path, err)
	}

	key := cache.Key(data)
	if text, hit, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("cache lookup failed", zap.Int("ordinal", chunk.Ordinal), zap.Error(err))
	} else if hit {
		c.logger.Info("cache hit, skipping remote call", zap.Int("ordinal", chunk.Ordinal))
		return text, nil
	}

	text, err := c.transcriber.Transcribe(ctx, data, filepath.Base(chunk.Path))
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, text); err != nil {
		c.logger.Warn("cache store failed", zap.Int("ordinal", chunk.Ordinal), zap.Error(err))
	}
	return text, nil
}

func (c *Converter) recordRun(ctx context.Context, sourcePath string, chunks []model.Chunk, result model.RunResult, runErr error) {
	var total time.Duration
	for _, chunk := range chunks {
		total += chunk.Duration()
	}

	rec := model.RunRecord{
		ID:            uuid.NewString(),
		SourceFile:    filepath.Base(sourcePath),
		SourcePath:    sourcePath,
		OutputPath:    result.OutputPath,
		AudioDuration: total.Seconds(),
		ChunkCount:    result.ChunkCount,
		Model:         c.opts.Model,
		Language:      c.opts.Language,
		CompletedAt:   time.Now(),
	}
	if runErr != nil {
		rec.HasError = true
		rec.ErrorMessage = runErr.Error()
	}

	if err := c.journal.Record(ctx, rec); err != nil {
		c.logger.Warn("failed to record run in journal", zap.Error(err))
	}
}

func (c *Converter) archiveTranscript(ctx context.Context, outputPath, sourcePath string) {
	url, err := c.archiver.ArchiveTranscript(ctx, outputPath, filepath.Base(sourcePath))
	if err != nil {
		c.logger.Warn("failed to archive transcript", zap.Error(err))
		return
	}
	if url != "" {
		c.logger.Info("transcript archived", zap.String("url", url))
	}
}

func (c *Converter) cleanupChunks(chunks []model.Chunk) {
	for _, err := range audio.RemoveChunks(chunks) {
		c.logger.Warn("chunk cleanup failed", zap.Error(err))
	}
}
