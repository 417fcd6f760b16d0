//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"recording-whisper/internal/app/converter"
	"recording-whisper/internal/app/repository"
	"recording-whisper/internal/config"
)

// InitializeConverter assembles a Converter from the resolved configuration.
func InitializeConverter(cfg *config.Config, logger *zap.Logger) *converter.Converter {
	wire.Build(
		converter.NewConverter,
		provideSegmenter,
		provideTranscriber,
		provideRunDAO,
		provideCache,
		provideArchiver,
		provideOptions,
	)
	return nil
}

// InitializeRunDAO opens just the run journal, for commands that only read
// or export history.
func InitializeRunDAO(cfg *config.Config, logger *zap.Logger) repository.RunDAO {
	wire.Build(provideRunDAO)
	return nil
}
