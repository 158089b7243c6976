package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [term...]",
	Short: "Run the noise classifier over terms and print the verdicts",
	Long: `Run each term through the same candidate filter the extraction
pipeline uses and print whether it would be accepted, and if not, why.

Useful for tuning the filter and for understanding why a word did or did not
appear in extraction output.`,
	Example: `  vocab classify 食べる お ます 学校
  vocab classify リリリリ 飲ので`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	for _, term := range args {
		reason := jptext.Classify(term)
		verdict := reason.String()
		if reason == jptext.ReasonNoisePattern {
			if rule := jptext.NoiseRuleName(jptext.Normalize(term)); rule != "" {
				verdict = fmt.Sprintf("%s (%s)", verdict, rule)
			}
		}
		fmt.Printf("%s\t%s\n", term, verdict)
	}
	return nil
}
