package history

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"recording-whisper/internal/app"
	"recording-whisper/internal/app/model"
	"recording-whisper/internal/config"
	"recording-whisper/internal/logger"
)

var limit int

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:          "history",
	Short:        "List recent transcription runs from the journal",
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

		dao := app.InitializeRunDAO(cfg, log)
		defer dao.Close()

		records, err := dao.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		lines := lo.Map(records, func(rec model.RunRecord, _ int) string {
			status := lo.Ternary(rec.HasError, "FAILED", "ok")
			return fmt.Sprintf("%s  %-6s  %-30s  %4d chunks  %8.0fs  %s",
				rec.CompletedAt.Format("2006-01-02 15:04:05"),
				status, rec.SourceFile, rec.ChunkCount, rec.AudioDuration, rec.OutputPath)
		})
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}
