package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"recording-whisper/internal/app"
	xlsxexport "recording-whisper/internal/app/converter/export"
	"recording-whisper/internal/config"
	"recording-whisper/internal/logger"
)

var (
	outputFilePath string
	limit          int
)

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")
	Cmd.Flags().IntVarP(&limit, "limit", "n", 1000, "maximum number of runs to export")

	Cmd.MarkFlagRequired("outputFilePath")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:          "export",
	Short:        "Export the run journal to excel",
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

		if err := xlsxexport.ToExcel(records, outputFilePath); err != nil {
			return err
		}
		fmt.Printf("Exported %d runs to %s\n", len(records), outputFilePath)
		return nil
	},
}
