package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Vocab CLI - extract Japanese vocabulary candidates from images",
	Long: `Vocab CLI turns photos of Japanese text into a clean list of
dictionary-form vocabulary candidates.

It runs Google Cloud Vision OCR over several preprocessed variants of each
image, combines the recognized fragments into plausible words, filters out
particles, affixes and OCR garbage, and can cross-check the result against an
LLM vision model for readings, meanings and JLPT levels.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
