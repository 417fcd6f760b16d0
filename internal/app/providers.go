package app

import (
	"context"
	"path/filepath"
	"time"

	openaiclient "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"recording-whisper/internal/app/api"
	"recording-whisper/internal/app/api/elevenlabs"
	"recording-whisper/internal/app/api/openai/whisper"
	"recording-whisper/internal/app/audio"
	"recording-whisper/internal/app/cache"
	"recording-whisper/internal/app/converter"
	"recording-whisper/internal/app/repository"
	"recording-whisper/internal/app/repository/pg"
	"recording-whisper/internal/app/repository/sqlite"
	"recording-whisper/internal/app/storage"
	"recording-whisper/internal/app/util/files"
	"recording-whisper/internal/config"
)

func provideSegmenter(logger *zap.Logger) *audio.Segmenter {
	return audio.NewSegmenter(logger)
}

func provideTranscriber(cfg *config.Config) api.Transcriber {
	if cfg.Provider == "elevenlabs" {
		elevenCfg := elevenlabs.Config{
			APIKey:   cfg.ElevenLabsKey,
			Language: cfg.Language,
		}
		// The shared model default belongs to the openai provider; leave
		// elevenlabs on its own default unless explicitly overridden.
		if cfg.Model != config.DefaultModel {
			elevenCfg.Model = cfg.Model
		}
		return elevenlabs.NewSTTProvider(elevenCfg)
	}
	return whisper.NewRemoteTranscriber(openaiclient.NewClient(cfg.OpenAIKey), cfg.Model, cfg.Language)
}

// provideRunDAO opens the configured journal backend. The journal is
// additive, so an unopenable backend degrades to a warning and a noop DAO
// instead of failing the run.
func provideRunDAO(cfg *config.Config, logger *zap.Logger) repository.RunDAO {
	if dsn := cfg.Database.PostgresDSN; dsn != "" {
		dao, err := pg.NewPostgresDB(dsn)
		if err != nil {
			logger.Warn("postgres journal unavailable, runs will not be recorded", zap.Error(err))
			return repository.NoopDAO{}
		}
		return dao
	}

	dbPath := cfg.Database.SQLitePath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.OutputDir, "a2t.db")
	}
	if err := files.EnsureDir(filepath.Dir(dbPath)); err != nil {
		logger.Warn("cannot create journal directory, runs will not be recorded", zap.Error(err))
		return repository.NoopDAO{}
	}
	dao, err := sqlite.NewSQLiteDB(dbPath)
	if err != nil {
		logger.Warn("sqlite journal unavailable, runs will not be recorded", zap.Error(err))
		return repository.NoopDAO{}
	}
	return dao
}

func provideCache(cfg *config.Config) cache.TranscriptCache {
	if cfg.Redis.Enabled() {
		return cache.NewRedisCache(cfg.Redis)
	}
	return cache.Noop{}
}

func provideArchiver(cfg *config.Config, logger *zap.Logger) storage.Archiver {
	if !cfg.Archive.Enabled() {
		return storage.NoopArchiver{}
	}
	archiver, err := storage.NewMinioArchiver(context.Background(), cfg.Archive)
	if err != nil {
		logger.Warn("object storage unavailable, transcripts will not be archived", zap.Error(err))
		return storage.NoopArchiver{}
	}
	return archiver
}

func provideOptions(cfg *config.Config) converter.Options {
	return converter.Options{
		Model:     cfg.Model,
		Language:  cfg.Language,
		OutputDir: cfg.OutputDir,
		MaxChunk:  time.Duration(cfg.MaxChunkSeconds) * time.Second,
		Progress: converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(false),
		},
	}
}
