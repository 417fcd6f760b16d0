package transcribe

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recording-whisper/internal/app"
	"recording-whisper/internal/config"
	"recording-whisper/internal/logger"
)

var (
	outputFile      string
	outputDir       string
	maxChunkSeconds int
	language        string
	modelName       string
	provider        string
)

func init() {
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"explicit transcript file path; auto-generated from a timestamp when omitted")
	Cmd.Flags().StringVarP(&outputDir, "output-dir", "d", config.DefaultOutputDir,
		"directory for auto-generated transcript files")
	Cmd.Flags().IntVarP(&maxChunkSeconds, "max-chunk-duration", "m", config.DefaultMaxChunkSeconds,
		"maximum duration of one transcription request in seconds; longer recordings are split")
	Cmd.Flags().StringVarP(&language, "language", "l", config.DefaultLanguage,
		"target language passed to the transcription service")
	Cmd.Flags().StringVar(&modelName, "model", config.DefaultModel,
		"transcription model identifier")
	Cmd.Flags().StringVar(&provider, "provider", config.DefaultProvider,
		"transcription provider: openai or elevenlabs")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audioFile>",
	Short: "Transcribe one audio file into a text transcript",
	Long: `Transcribe one audio file into a text transcript

- Recordings longer than the chunk ceiling are split into sequential chunks first
- Each chunk's text is appended to the transcript and flushed before the next one
- On failure the partial transcript is kept and its location reported`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
		settingsPath, _ := cmd.Root().PersistentFlags().GetString("settings")

		log := logger.MustNewLogger(verbose)
		defer log.Sync()

		cfg, err := config.Load(settingsPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		conv := app.InitializeConverter(cfg, log)
		defer conv.Close()

		result, err := conv.Convert(cmd.Context(), args[0], outputFile)
		if err != nil {
			if result.ChunksTranscribed > 0 {
				fmt.Fprintf(os.Stderr, "Partial transcript kept at %s (%d/%d chunks)\n",
					result.OutputPath, result.ChunksTranscribed, result.ChunkCount)
			}
			return err
		}

		fmt.Printf("Transcript written to %s (%d chunks)\n", result.OutputPath, result.ChunkCount)
		return nil
	},
}

// applyFlags overlays explicitly set flags onto the resolved configuration.
// Flags win over environment and settings file values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if cmd.Flags().Changed("max-chunk-duration") {
		cfg.MaxChunkSeconds = maxChunkSeconds
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = language
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = modelName
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = provider
	}
}
