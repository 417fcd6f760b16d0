package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"recording-whisper/cmd/a2t/cmd/export"
	"recording-whisper/cmd/a2t/cmd/history"
	"recording-whisper/cmd/a2t/cmd/transcribe"
	"recording-whisper/cmd/a2t/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a2t",
	Short: "Turn long audio recordings into text transcripts",
	Long: `a2t converts a long-form audio recording into a text transcript using a
remote speech-to-text service.

- Recordings longer than the per-request ceiling are split into sequential chunks
- Chunks are transcribed strictly in order and appended to one transcript file
- Every finished chunk is flushed to disk, so an interrupted run keeps its progress
- Completed runs are recorded in a local journal`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().String("settings", "", "path to the a2t.yaml settings file")
}
